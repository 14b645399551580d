package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/repository"
)

// TeamRecord is one team's aggregate record across finalized matches.
type TeamRecord struct {
	TeamID       uuid.UUID `json:"team_id"`
	Played       int       `json:"played"`
	Wins         int       `json:"wins"`
	Draws        int       `json:"draws"`
	Losses       int       `json:"losses"`
	GoalsFor     int       `json:"goals_for"`
	GoalsAgainst int       `json:"goals_against"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Recalculator rebuilds team aggregate records from finalized matches.
type Recalculator struct {
	db      repository.DBTX
	matches repository.MatchRepository
	cache   Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewRecalculator creates a stats recalculator. cache may be nil.
func NewRecalculator(db repository.DBTX, matches repository.MatchRepository, cache Store, logger *slog.Logger) *Recalculator {
	return &Recalculator{
		db:      db,
		matches: matches,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// RecalculateForMatch recomputes both teams' records after a match finalizes.
// Matches that are not finalized yet are skipped, not failed; the consumer
// may see the event before a concurrent dispute resolution settles.
func (r *Recalculator) RecalculateForMatch(ctx context.Context, matchID uuid.UUID) error {
	m, err := r.matches.FindByID(ctx, r.db, matchID)
	if err != nil {
		return fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return domain.ErrNotFound("match", matchID.String())
	}
	if m.Status != domain.MatchCompleted || !m.HasScore() || m.Disputed {
		r.logger.Warn("skipping stats recalculation for non-finalized match",
			"match_id", matchID, "status", m.Status, "disputed", m.Disputed)
		return nil
	}

	teamIDs := []uuid.UUID{m.HomeTeamID}
	if m.AwayTeamID != nil {
		teamIDs = append(teamIDs, *m.AwayTeamID)
	}
	for _, teamID := range teamIDs {
		if err := r.recalculateTeam(ctx, teamID); err != nil {
			return fmt.Errorf("recalculate team %s: %w", teamID, err)
		}
	}
	r.logger.Info("team stats recalculated", "match_id", matchID, "teams", len(teamIDs))
	return nil
}

// recalculateTeam recomputes a team's full record from scratch and upserts it.
// A full recompute is idempotent under event replay.
func (r *Recalculator) recalculateTeam(ctx context.Context, teamID uuid.UUID) error {
	now := r.now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO team_stats (team_id, played, wins, draws, losses, goals_for, goals_against, updated_at)
		SELECT $1,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE (m.home_team_id = $1 AND m.home_score > m.away_score)
		                           OR (m.away_team_id = $1 AND m.away_score > m.home_score)),
		       COUNT(*) FILTER (WHERE m.home_score = m.away_score),
		       COUNT(*) FILTER (WHERE (m.home_team_id = $1 AND m.home_score < m.away_score)
		                           OR (m.away_team_id = $1 AND m.away_score < m.home_score)),
		       COALESCE(SUM(CASE WHEN m.home_team_id = $1 THEN m.home_score ELSE m.away_score END), 0),
		       COALESCE(SUM(CASE WHEN m.home_team_id = $1 THEN m.away_score ELSE m.home_score END), 0),
		       $2
		FROM matches m
		WHERE (m.home_team_id = $1 OR m.away_team_id = $1)
		  AND m.status = 'completed'
		  AND NOT m.disputed
		  AND m.home_score IS NOT NULL
		  AND m.away_score IS NOT NULL
		ON CONFLICT (team_id) DO UPDATE SET
		  played        = EXCLUDED.played,
		  wins          = EXCLUDED.wins,
		  draws         = EXCLUDED.draws,
		  losses        = EXCLUDED.losses,
		  goals_for     = EXCLUDED.goals_for,
		  goals_against = EXCLUDED.goals_against,
		  updated_at    = EXCLUDED.updated_at`,
		teamID, now)
	if err != nil {
		return err
	}

	if r.cache != nil {
		if err := InvalidateTeamRecord(ctx, r.cache, teamID); err != nil {
			r.logger.Warn("invalidate cached team record", "team_id", teamID, "error", err)
		}
	}
	return nil
}

// TeamStats reads a team's record, serving from cache when possible.
func (r *Recalculator) TeamStats(ctx context.Context, teamID uuid.UUID) (*TeamRecord, error) {
	if r.cache != nil {
		if rec, err := GetTeamRecord(ctx, r.cache, teamID); err == nil {
			return rec, nil
		}
	}

	row := r.db.QueryRow(ctx, `
		SELECT team_id, played, wins, draws, losses, goals_for, goals_against, updated_at
		FROM team_stats
		WHERE team_id = $1`, teamID)

	var rec TeamRecord
	err := row.Scan(&rec.TeamID, &rec.Played, &rec.Wins, &rec.Draws, &rec.Losses,
		&rec.GoalsFor, &rec.GoalsAgainst, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("team stats", teamID.String())
	}
	if err != nil {
		return nil, domain.ErrInternal("load team stats", err)
	}

	if r.cache != nil {
		if err := UpdateTeamRecord(ctx, r.cache, rec); err != nil {
			r.logger.Warn("cache team record", "team_id", teamID, "error", err)
		}
	}
	return &rec, nil
}
