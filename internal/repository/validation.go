package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the Postgres error code for unique constraint breaks.
const pgUniqueViolation = "23505"

type validationRepo struct{}

// NewValidationRepository returns a pgx-backed ValidationRepository.
func NewValidationRepository() ValidationRepository {
	return &validationRepo{}
}

func (r *validationRepo) Insert(ctx context.Context, db DBTX, rec *domain.ValidationRecord) error {
	_, err := db.Exec(ctx, `
		INSERT INTO match_validations
		  (id, match_id, validator_id, validator_role, home_score, away_score, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.MatchID, rec.ValidatorID, string(rec.Role),
		rec.HomeScore, rec.AwayScore, rec.Notes, rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Losing a concurrent race on (match, validator, role) is the
			// same outcome as an explicit resubmission.
			return domain.ErrConflict("You have already validated this match")
		}
		return fmt.Errorf("insert validation: %w", err)
	}
	return nil
}

func (r *validationRepo) Exists(ctx context.Context, db DBTX, matchID, validatorID uuid.UUID, role domain.ValidatorRole) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS(
		  SELECT 1 FROM match_validations
		  WHERE match_id = $1 AND validator_id = $2 AND validator_role = $3
		)`, matchID, validatorID, string(role)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check validation exists: %w", err)
	}
	return exists, nil
}

func (r *validationRepo) ListByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.ValidationRecord, error) {
	rows, err := db.Query(ctx, `
		SELECT id, match_id, validator_id, validator_role, home_score, away_score, notes, created_at
		FROM match_validations
		WHERE match_id = $1
		ORDER BY created_at ASC, id ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list validations: %w", err)
	}
	defer rows.Close()

	var records []domain.ValidationRecord
	for rows.Next() {
		var v domain.ValidationRecord
		if err := rows.Scan(&v.ID, &v.MatchID, &v.ValidatorID, &v.Role,
			&v.HomeScore, &v.AwayScore, &v.Notes, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan validation: %w", err)
		}
		records = append(records, v)
	}
	return records, rows.Err()
}
