package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

const matchColumns = `
	id, home_team_id, away_team_id, scheduled_at, duration_minutes, status,
	home_score, away_score, started_at, completed_at,
	home_validated, home_validated_at, away_validated, away_validated_at,
	referee_verified, referee_verified_at,
	disputed, dispute_reason, participation_valid, quorum_warnings,
	created_at, updated_at`

func (r *matchRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error) {
	row := db.QueryRow(ctx, `SELECT`+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *matchRepo) ListDueForStart(ctx context.Context, db DBTX, now time.Time) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT`+matchColumns+`
		FROM matches
		WHERE status = 'confirmed' AND scheduled_at <= $1
		ORDER BY scheduled_at ASC`, now)
	if err != nil {
		return nil, fmt.Errorf("list due for start: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *matchRepo) ListDueForCompletion(ctx context.Context, db DBTX, now time.Time) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT`+matchColumns+`
		FROM matches
		WHERE status = 'in_progress'
		  AND COALESCE(started_at, scheduled_at)
		      + make_interval(mins => duration_minutes) <= $1
		ORDER BY scheduled_at ASC`, now)
	if err != nil {
		return nil, fmt.Errorf("list due for completion: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

// MarkInProgress guards on the current status so a concurrent sweep or a
// manual trigger cannot apply the transition twice.
func (r *matchRepo) MarkInProgress(ctx context.Context, db DBTX, id uuid.UUID, now time.Time) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE matches
		SET status = 'in_progress',
		    started_at = COALESCE(started_at, $2),
		    updated_at = now()
		WHERE id = $1 AND status = 'confirmed'`, id, now)
	if err != nil {
		return false, fmt.Errorf("mark in progress: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *matchRepo) MarkCompleted(ctx context.Context, db DBTX, id uuid.UUID, now time.Time) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE matches
		SET status = 'completed',
		    completed_at = $2,
		    updated_at = now()
		WHERE id = $1 AND status = 'in_progress'`, id, now)
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *matchRepo) MarkCancelled(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE matches
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'confirmed', 'in_progress')`, id)
	if err != nil {
		return false, fmt.Errorf("mark cancelled: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *matchRepo) SetValidationFlag(ctx context.Context, db DBTX, id uuid.UUID, role domain.ValidatorRole, at time.Time) error {
	var query string
	switch role {
	case domain.RoleHomeManager:
		query = `UPDATE matches SET home_validated = true, home_validated_at = $2, updated_at = now() WHERE id = $1`
	case domain.RoleAwayManager:
		query = `UPDATE matches SET away_validated = true, away_validated_at = $2, updated_at = now() WHERE id = $1`
	case domain.RoleReferee:
		query = `UPDATE matches SET referee_verified = true, referee_verified_at = $2, updated_at = now() WHERE id = $1`
	default:
		return fmt.Errorf("unknown validator role: %s", role)
	}
	if _, err := db.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("set validation flag %s: %w", role, err)
	}
	return nil
}

// ApplyConsensus is a single statement so the score, the flags and the
// dispute clear land atomically.
func (r *matchRepo) ApplyConsensus(ctx context.Context, db DBTX, id uuid.UUID, homeScore, awayScore int, at time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE matches
		SET home_score = $2,
		    away_score = $3,
		    home_validated = true,
		    home_validated_at = COALESCE(home_validated_at, $4),
		    away_validated = true,
		    away_validated_at = COALESCE(away_validated_at, $4),
		    referee_verified = true,
		    referee_verified_at = COALESCE(referee_verified_at, $4),
		    disputed = false,
		    dispute_reason = NULL,
		    updated_at = now()
		WHERE id = $1`, id, homeScore, awayScore, at)
	if err != nil {
		return fmt.Errorf("apply consensus: %w", err)
	}
	return nil
}

func (r *matchRepo) MarkDisputed(ctx context.Context, db DBTX, id uuid.UUID, reason string) error {
	_, err := db.Exec(ctx, `
		UPDATE matches
		SET disputed = true, dispute_reason = $2, updated_at = now()
		WHERE id = $1 AND status = 'completed'`, id, reason)
	if err != nil {
		return fmt.Errorf("mark disputed: %w", err)
	}
	return nil
}

func (r *matchRepo) UpdateQuorum(ctx context.Context, db DBTX, id uuid.UUID, isValid, warned bool) error {
	_, err := db.Exec(ctx, `
		UPDATE matches
		SET participation_valid = $2,
		    quorum_warnings = quorum_warnings + CASE WHEN $3 THEN 1 ELSE 0 END,
		    updated_at = now()
		WHERE id = $1`, id, isValid, warned)
	if err != nil {
		return fmt.Errorf("update quorum: %w", err)
	}
	return nil
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(
		&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.ScheduledAt, &m.DurationMinutes, &m.Status,
		&m.HomeScore, &m.AwayScore, &m.StartedAt, &m.CompletedAt,
		&m.HomeValidated, &m.HomeValidatedAt, &m.AwayValidated, &m.AwayValidatedAt,
		&m.RefereeVerified, &m.RefereeVerifiedAt,
		&m.Disputed, &m.DisputeReason, &m.ParticipationValid, &m.QuorumWarnings,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan match: %w", err)
	}
	return &m, nil
}

func collectMatches(rows pgx.Rows) ([]domain.Match, error) {
	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}
