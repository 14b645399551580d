package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchConfirmed  MatchStatus = "confirmed"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchCancelled  MatchStatus = "cancelled"
)

// DefaultMatchDuration is the fixed match length used for automatic
// in_progress → completed transitions.
const DefaultMatchDuration = 120 * time.Minute

// ValidatorRole identifies who submitted a score validation.
type ValidatorRole string

const (
	RoleHomeManager ValidatorRole = "home_manager"
	RoleAwayManager ValidatorRole = "away_manager"
	RoleReferee     ValidatorRole = "referee"
)

// ValidRole reports whether r is one of the three known validator roles.
func ValidRole(r ValidatorRole) bool {
	switch r {
	case RoleHomeManager, RoleAwayManager, RoleReferee:
		return true
	}
	return false
}

// Match is the aggregate root. Scores and validation flags are owned by the
// validation flow; status and lifecycle timestamps by the lifecycle flow.
type Match struct {
	ID              uuid.UUID   `json:"id"`
	HomeTeamID      uuid.UUID   `json:"home_team_id"`
	AwayTeamID      *uuid.UUID  `json:"away_team_id,omitempty"`
	ScheduledAt     time.Time   `json:"scheduled_at"`
	DurationMinutes int         `json:"duration_minutes"`
	Status          MatchStatus `json:"status"`

	HomeScore *int `json:"home_score,omitempty"`
	AwayScore *int `json:"away_score,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	HomeValidated     bool       `json:"home_validated"`
	HomeValidatedAt   *time.Time `json:"home_validated_at,omitempty"`
	AwayValidated     bool       `json:"away_validated"`
	AwayValidatedAt   *time.Time `json:"away_validated_at,omitempty"`
	RefereeVerified   bool       `json:"referee_verified"`
	RefereeVerifiedAt *time.Time `json:"referee_verified_at,omitempty"`

	Disputed      bool    `json:"disputed"`
	DisputeReason *string `json:"dispute_reason,omitempty"`

	ParticipationValid bool `json:"participation_valid"`
	QuorumWarnings     int  `json:"quorum_warnings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanTransitionTo is the single authority on legal status transitions.
// Cancellation is allowed from any non-terminal state; everything else moves
// strictly forward.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	switch s {
	case MatchPending:
		return next == MatchConfirmed || next == MatchCancelled
	case MatchConfirmed:
		return next == MatchInProgress || next == MatchCancelled
	case MatchInProgress:
		return next == MatchCompleted || next == MatchCancelled
	}
	return false
}

// Duration returns the match length for lifecycle timing, falling back to
// the 120-minute default when the row carries no explicit duration.
func (m *Match) Duration() time.Duration {
	if m.DurationMinutes > 0 {
		return time.Duration(m.DurationMinutes) * time.Minute
	}
	return DefaultMatchDuration
}

// DueToStart reports whether a confirmed match should move to in_progress.
func (m *Match) DueToStart(now time.Time) bool {
	return m.Status == MatchConfirmed && !m.ScheduledAt.After(now)
}

// DueToComplete reports whether an in_progress match has run its full
// duration. A match that was never explicitly started counts from its
// scheduled kickoff.
func (m *Match) DueToComplete(now time.Time) bool {
	if m.Status != MatchInProgress {
		return false
	}
	start := m.ScheduledAt
	if m.StartedAt != nil {
		start = *m.StartedAt
	}
	return !start.Add(m.Duration()).After(now)
}

// HasScore reports whether both scores are set. The invariant is that they
// are set together or not at all.
func (m *Match) HasScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}
