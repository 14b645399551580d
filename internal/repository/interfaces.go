package repository

import (
	"context"
	"time"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// DB is a DBTX that can also open transactions. *pgxpool.Pool satisfies it.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// MatchRepository provides access to the matches table.
type MatchRepository interface {
	// FindByID returns a match by ID, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error)

	// ListDueForStart returns confirmed matches whose kickoff is at or
	// before now.
	ListDueForStart(ctx context.Context, db DBTX, now time.Time) ([]domain.Match, error)

	// ListDueForCompletion returns in_progress matches whose start time
	// (started_at, or scheduled_at when never explicitly started) plus
	// duration is at or before now.
	ListDueForCompletion(ctx context.Context, db DBTX, now time.Time) ([]domain.Match, error)

	// MarkInProgress transitions confirmed → in_progress, stamping
	// started_at unless already set. Returns false if the match was no
	// longer in the expected state.
	MarkInProgress(ctx context.Context, db DBTX, id uuid.UUID, now time.Time) (bool, error)

	// MarkCompleted transitions in_progress → completed, stamping
	// completed_at. Returns false if the match was no longer in_progress.
	MarkCompleted(ctx context.Context, db DBTX, id uuid.UUID, now time.Time) (bool, error)

	// MarkCancelled transitions a non-terminal match to cancelled.
	MarkCancelled(ctx context.Context, db DBTX, id uuid.UUID) (bool, error)

	// SetValidationFlag sets the per-role validated flag and timestamp.
	SetValidationFlag(ctx context.Context, db DBTX, id uuid.UUID, role domain.ValidatorRole, at time.Time) error

	// ApplyConsensus writes the agreed score, sets all three validation
	// flags and clears the dispute, as a single statement.
	ApplyConsensus(ctx context.Context, db DBTX, id uuid.UUID, homeScore, awayScore int, at time.Time) error

	// MarkDisputed flags the match as disputed with a reason. Scores are
	// left untouched.
	MarkDisputed(ctx context.Context, db DBTX, id uuid.UUID, reason string) error

	// UpdateQuorum persists the latest quorum validity and, when warned,
	// increments the warning counter.
	UpdateQuorum(ctx context.Context, db DBTX, id uuid.UUID, isValid, warned bool) error
}

// ValidationRepository provides access to match_validations. Rows are
// append-only; uniqueness on (match, validator, role) is enforced by the
// store and surfaced as a Conflict.
type ValidationRepository interface {
	// Insert appends a validation record. A duplicate (match, validator,
	// role) submission returns domain.ErrConflict, including when it loses
	// a concurrent race on the unique constraint.
	Insert(ctx context.Context, db DBTX, rec *domain.ValidationRecord) error

	// Exists reports whether this validator already submitted for the match
	// in the given role.
	Exists(ctx context.Context, db DBTX, matchID, validatorID uuid.UUID, role domain.ValidatorRole) (bool, error)

	// ListByMatch returns all validations for a match in submission order.
	ListByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.ValidationRecord, error)
}

// ParticipationRepository provides access to match_participations and the
// participation_status_history audit log.
type ParticipationRepository interface {
	// CreateForTeam inserts one pending record per active member of the
	// team. Existing (match, player) rows are left untouched. Returns the
	// number of rows actually created.
	CreateForTeam(ctx context.Context, db DBTX, matchID, teamID uuid.UUID) (int, error)

	// FindByID returns a participation record, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.ParticipationRecord, error)

	// UpdateResponse sets the player's status and note and stamps
	// responded_at, returning the updated record.
	UpdateResponse(ctx context.Context, db DBTX, id uuid.UUID, status domain.ParticipationStatus, note *string, at time.Time) (*domain.ParticipationRecord, error)

	// TallyForTeam counts confirmed and total participations for one team
	// in one match.
	TallyForTeam(ctx context.Context, db DBTX, matchID, teamID uuid.UUID) (confirmed, total int, err error)

	// InsertQuorumSnapshot appends an immutable history row.
	InsertQuorumSnapshot(ctx context.Context, db DBTX, snap domain.QuorumSnapshot) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event, within the same transaction as the
	// state change it describes.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublishedRows returns pending events in sequence order.
	FetchUnpublishedRows(ctx context.Context, db DBTX, limit int) ([]domain.OutboxRow, error)

	// MarkPublished removes delivered events.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
