package domain

import (
	"time"

	"github.com/google/uuid"
)

// ValidationRecord is one validator's score submission for a completed
// match. Append-only; unique per (match, validator, role).
type ValidationRecord struct {
	ID          uuid.UUID     `json:"id"`
	MatchID     uuid.UUID     `json:"match_id"`
	ValidatorID uuid.UUID     `json:"validator_id"`
	Role        ValidatorRole `json:"role"`
	HomeScore   int           `json:"home_score"`
	AwayScore   int           `json:"away_score"`
	Notes       *string       `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ValidateScores checks that a submitted score pair is well formed.
func ValidateScores(home, away int) error {
	if home < 0 || away < 0 {
		return ErrValidation("scores must be zero or positive")
	}
	return nil
}
