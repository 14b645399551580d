package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func matchEvent(matchID uuid.UUID, evtType EventType, payload interface{}) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateMatch,
		AggregateID:   matchID.String(),
		EventType:     evtType,
		PartitionKey:  matchID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewMatchStartedEvent records the confirmed → in_progress transition.
func NewMatchStartedEvent(m *Match, startedAt time.Time) OutboxDraft {
	return matchEvent(m.ID, EventMatchStarted, map[string]interface{}{
		"match_id":   m.ID.String(),
		"started_at": startedAt,
	})
}

// NewMatchCompletedEvent records the in_progress → completed transition.
// Downstream this is the signal that score entry is open.
func NewMatchCompletedEvent(m *Match, completedAt time.Time) OutboxDraft {
	return matchEvent(m.ID, EventMatchCompleted, map[string]interface{}{
		"match_id":     m.ID.String(),
		"completed_at": completedAt,
	})
}

// NewMatchFinalizedEvent records a consensus-agreed final score. Consumers
// use it to trigger statistics recalculation.
func NewMatchFinalizedEvent(matchID uuid.UUID, homeScore, awayScore, validations int) OutboxDraft {
	return matchEvent(matchID, EventMatchFinalized, map[string]interface{}{
		"match_id":    matchID.String(),
		"home_score":  homeScore,
		"away_score":  awayScore,
		"validations": validations,
	})
}

// NewMatchDisputedEvent records a validation conflict.
func NewMatchDisputedEvent(matchID uuid.UUID, reason string) OutboxDraft {
	return matchEvent(matchID, EventMatchDisputed, map[string]interface{}{
		"match_id": matchID.String(),
		"reason":   reason,
	})
}

// NewMatchCancelledEvent records a cancellation.
func NewMatchCancelledEvent(matchID uuid.UUID, reason string) OutboxDraft {
	return matchEvent(matchID, EventMatchCancelled, map[string]interface{}{
		"match_id": matchID.String(),
		"reason":   reason,
	})
}

// NewValidationRecordedEvent records a single score submission.
func NewValidationRecordedEvent(v *ValidationRecord) OutboxDraft {
	return matchEvent(v.MatchID, EventValidationRecorded, map[string]interface{}{
		"match_id":     v.MatchID.String(),
		"validator_id": v.ValidatorID.String(),
		"role":         string(v.Role),
		"home_score":   v.HomeScore,
		"away_score":   v.AwayScore,
	})
}

// NewParticipationRespondedEvent records a player's RSVP change.
func NewParticipationRespondedEvent(p *ParticipationRecord) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"participation_id": p.ID.String(),
		"match_id":         p.MatchID.String(),
		"player_id":        p.PlayerID.String(),
		"status":           string(p.Status),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateParticipation,
		AggregateID:   p.ID.String(),
		EventType:     EventParticipationResponded,
		PartitionKey:  p.MatchID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewQuorumAlertEvent records a quorum level below validated, for organizer
// monitoring.
func NewQuorumAlertEvent(matchID uuid.UUID, level string, homeConfirmed, awayConfirmed int) OutboxDraft {
	return matchEvent(matchID, EventQuorumAlert, map[string]interface{}{
		"match_id":       matchID.String(),
		"level":          level,
		"home_confirmed": homeConfirmed,
		"away_confirmed": awayConfirmed,
	})
}
