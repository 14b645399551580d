package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventMatchStarted           EventType = "fn.match.started"
	EventMatchCompleted         EventType = "fn.match.completed"
	EventMatchFinalized         EventType = "fn.match.finalized"
	EventMatchDisputed          EventType = "fn.match.disputed"
	EventMatchCancelled         EventType = "fn.match.cancelled"
	EventValidationRecorded     EventType = "fn.match.validation.recorded"
	EventParticipationResponded EventType = "fn.participation.responded"
	EventQuorumAlert            EventType = "fn.participation.quorum.alert"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateMatch         AggregateType = "match"
	AggregateParticipation AggregateType = "participation"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// OutboxRow is an OutboxDraft read back from the table with its sequence id.
type OutboxRow struct {
	SeqID int64
	OutboxDraft
}
