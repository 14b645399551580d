package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type participationRepo struct{}

// NewParticipationRepository returns a pgx-backed ParticipationRepository.
func NewParticipationRepository() ParticipationRepository {
	return &participationRepo{}
}

// CreateForTeam seeds one pending record per currently-active team member.
// ON CONFLICT DO NOTHING makes repeated invocations idempotent per
// (match, player).
func (r *participationRepo) CreateForTeam(ctx context.Context, db DBTX, matchID, teamID uuid.UUID) (int, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO match_participations (id, match_id, team_id, player_id, status, created_at)
		SELECT gen_random_uuid(), $1, $2, tm.player_id, 'pending', now()
		FROM team_members tm
		WHERE tm.team_id = $2 AND tm.active
		ON CONFLICT (match_id, player_id) DO NOTHING`, matchID, teamID)
	if err != nil {
		return 0, fmt.Errorf("create participations for team: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *participationRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.ParticipationRecord, error) {
	row := db.QueryRow(ctx, `
		SELECT id, match_id, team_id, player_id, status, note, responded_at, notified_at, created_at
		FROM match_participations WHERE id = $1`, id)
	return scanParticipation(row)
}

func (r *participationRepo) UpdateResponse(ctx context.Context, db DBTX, id uuid.UUID, status domain.ParticipationStatus, note *string, at time.Time) (*domain.ParticipationRecord, error) {
	row := db.QueryRow(ctx, `
		UPDATE match_participations
		SET status = $2, note = $3, responded_at = $4
		WHERE id = $1
		RETURNING id, match_id, team_id, player_id, status, note, responded_at, notified_at, created_at`,
		id, string(status), note, at)
	return scanParticipation(row)
}

func (r *participationRepo) TallyForTeam(ctx context.Context, db DBTX, matchID, teamID uuid.UUID) (int, int, error) {
	var confirmed, total int
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'confirmed'), COUNT(*)
		FROM match_participations
		WHERE match_id = $1 AND team_id = $2`, matchID, teamID).Scan(&confirmed, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("tally participations: %w", err)
	}
	return confirmed, total, nil
}

func (r *participationRepo) InsertQuorumSnapshot(ctx context.Context, db DBTX, snap domain.QuorumSnapshot) error {
	_, err := db.Exec(ctx, `
		INSERT INTO participation_status_history
		  (match_id, home_confirmed, away_confirmed, home_total, away_total, is_valid, level, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		snap.MatchID, snap.HomeConfirmed, snap.AwayConfirmed,
		snap.HomeTotal, snap.AwayTotal, snap.IsValid, snap.Level, snap.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quorum snapshot: %w", err)
	}
	return nil
}

func scanParticipation(row pgx.Row) (*domain.ParticipationRecord, error) {
	var p domain.ParticipationRecord
	err := row.Scan(&p.ID, &p.MatchID, &p.TeamID, &p.PlayerID,
		&p.Status, &p.Note, &p.RespondedAt, &p.NotifiedAt, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan participation: %w", err)
	}
	return &p, nil
}
