package domain

import (
	"time"

	"github.com/google/uuid"
)

// ParticipationStatus is a player's answer to a match invitation.
type ParticipationStatus string

const (
	ParticipationPending   ParticipationStatus = "pending"
	ParticipationConfirmed ParticipationStatus = "confirmed"
	ParticipationDeclined  ParticipationStatus = "declined"
	ParticipationMaybe     ParticipationStatus = "maybe"
)

// ValidResponse reports whether s is a status a player may set on their own
// record. Records are only ever created as pending.
func ValidResponse(s ParticipationStatus) bool {
	switch s {
	case ParticipationConfirmed, ParticipationDeclined, ParticipationMaybe:
		return true
	}
	return false
}

// ParticipationRecord is one player's confirmation state for one match.
// Unique per (match, player).
type ParticipationRecord struct {
	ID          uuid.UUID           `json:"id"`
	MatchID     uuid.UUID           `json:"match_id"`
	TeamID      uuid.UUID           `json:"team_id"`
	PlayerID    uuid.UUID           `json:"player_id"`
	Status      ParticipationStatus `json:"status"`
	Note        *string             `json:"note,omitempty"`
	RespondedAt *time.Time          `json:"responded_at,omitempty"`
	NotifiedAt  *time.Time          `json:"notified_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// QuorumSnapshot is one immutable row of the participation history log,
// appended on every quorum recomputation.
type QuorumSnapshot struct {
	ID            int64     `json:"id"`
	MatchID       uuid.UUID `json:"match_id"`
	HomeConfirmed int       `json:"home_confirmed"`
	AwayConfirmed int       `json:"away_confirmed"`
	HomeTotal     int       `json:"home_total"`
	AwayTotal     int       `json:"away_total"`
	IsValid       bool      `json:"is_valid"`
	Level         string    `json:"level"`
	RecordedAt    time.Time `json:"recorded_at"`
}
