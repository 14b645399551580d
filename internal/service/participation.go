package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/notify"
	"github.com/daRevrse/football-network/internal/policy"
	"github.com/daRevrse/football-network/internal/repository"
	"github.com/google/uuid"
)

// ParticipationService owns the per-player confirmation ledger and the
// quorum computation derived from it. Quorum is advisory: it feeds
// organizer monitoring and never blocks a lifecycle transition.
type ParticipationService struct {
	db             repository.DB
	matches        repository.MatchRepository
	participations repository.ParticipationRepository
	outbox         repository.OutboxRepository
	notifier       notify.Notifier
	logger         *slog.Logger
	now            func() time.Time
}

// NewParticipationService creates a ParticipationService.
func NewParticipationService(db repository.DB, matches repository.MatchRepository, participations repository.ParticipationRepository, outbox repository.OutboxRepository, notifier notify.Notifier, logger *slog.Logger) *ParticipationService {
	return &ParticipationService{
		db:             db,
		matches:        matches,
		participations: participations,
		outbox:         outbox,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

// CreateParticipationsResult reports how many records each side gained.
type CreateParticipationsResult struct {
	HomeCreated int `json:"home_created"`
	AwayCreated int `json:"away_created"`
}

// RespondResult is returned after a player updates their participation.
type RespondResult struct {
	Participation *domain.ParticipationRecord `json:"participation"`
	Quorum        policy.QuorumResult         `json:"quorum"`
}

// CreateForMatch seeds pending participation records for every active
// member of both rosters. Each team is one logical unit; the operation is
// idempotent per (match, player).
func (s *ParticipationService) CreateForMatch(ctx context.Context, matchID, homeTeamID, awayTeamID uuid.UUID) (*CreateParticipationsResult, error) {
	m, err := s.matches.FindByID(ctx, s.db, matchID)
	if err != nil {
		return nil, domain.ErrInternal("load match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}

	res := &CreateParticipationsResult{}
	res.HomeCreated, err = s.createForTeam(ctx, matchID, homeTeamID)
	if err != nil {
		return nil, domain.ErrInternal("create home participations", err)
	}
	res.AwayCreated, err = s.createForTeam(ctx, matchID, awayTeamID)
	if err != nil {
		return nil, domain.ErrInternal("create away participations", err)
	}

	s.logger.Info("participations created",
		"match_id", matchID,
		"home_created", res.HomeCreated,
		"away_created", res.AwayCreated,
	)
	return res, nil
}

func (s *ParticipationService) createForTeam(ctx context.Context, matchID, teamID uuid.UUID) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	created, err := s.participations.CreateForTeam(ctx, tx, matchID, teamID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return created, nil
}

// Respond records a player's answer, then recomputes and persists the
// match's quorum status in the same transaction: latest validity on the
// match row, a warning-counter bump when the level is warning, and an
// immutable history snapshot.
func (s *ParticipationService) Respond(ctx context.Context, participationID uuid.UUID, status domain.ParticipationStatus, note *string) (*RespondResult, error) {
	if !domain.ValidResponse(status) {
		return nil, domain.ErrValidation("status must be confirmed, declined or maybe")
	}

	p, err := s.participations.FindByID(ctx, s.db, participationID)
	if err != nil {
		return nil, domain.ErrInternal("load participation", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound("participation", participationID.String())
	}

	m, err := s.matches.FindByID(ctx, s.db, p.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("load match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", p.MatchID.String())
	}

	now := s.now()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	updated, err := s.participations.UpdateResponse(ctx, tx, participationID, status, note, now)
	if err != nil {
		return nil, domain.ErrInternal("update participation", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("participation", participationID.String())
	}

	quorum, err := s.computeQuorum(ctx, tx, m)
	if err != nil {
		return nil, domain.ErrInternal("compute quorum", err)
	}

	warned := quorum.Level == policy.QuorumWarning
	if err := s.matches.UpdateQuorum(ctx, tx, m.ID, quorum.IsValid, warned); err != nil {
		return nil, domain.ErrInternal("persist quorum", err)
	}
	if err := s.participations.InsertQuorumSnapshot(ctx, tx, domain.QuorumSnapshot{
		MatchID:       m.ID,
		HomeConfirmed: quorum.Home.Confirmed,
		AwayConfirmed: quorum.Away.Confirmed,
		HomeTotal:     quorum.Home.Total,
		AwayTotal:     quorum.Away.Total,
		IsValid:       quorum.IsValid,
		Level:         string(quorum.Level),
		RecordedAt:    now,
	}); err != nil {
		return nil, domain.ErrInternal("append quorum history", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewParticipationRespondedEvent(updated)); err != nil {
		return nil, domain.ErrInternal("record response event", err)
	}
	if quorum.Level != policy.QuorumValidated {
		evt := domain.NewQuorumAlertEvent(m.ID, string(quorum.Level), quorum.Home.Confirmed, quorum.Away.Confirmed)
		if err := s.outbox.Insert(ctx, tx, evt); err != nil {
			return nil, domain.ErrInternal("record quorum alert", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("participation updated",
		"participation_id", participationID,
		"match_id", m.ID,
		"status", status,
		"quorum_level", quorum.Level,
	)

	s.notifier.Notify(ctx, notify.Event{
		Type:    "participation.responded",
		MatchID: m.ID,
		TeamIDs: []uuid.UUID{p.TeamID},
		Data:    map[string]string{"status": string(status)},
	})

	return &RespondResult{Participation: updated, Quorum: quorum}, nil
}

// QuorumStatus computes the current quorum snapshot without persisting it.
func (s *ParticipationService) QuorumStatus(ctx context.Context, matchID uuid.UUID) (*policy.QuorumResult, error) {
	m, err := s.matches.FindByID(ctx, s.db, matchID)
	if err != nil {
		return nil, domain.ErrInternal("load match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}

	quorum, err := s.computeQuorum(ctx, s.db, m)
	if err != nil {
		return nil, domain.ErrInternal("compute quorum", err)
	}
	return &quorum, nil
}

func (s *ParticipationService) computeQuorum(ctx context.Context, db repository.DBTX, m *domain.Match) (policy.QuorumResult, error) {
	var home, away policy.TeamTally
	var err error

	home.Confirmed, home.Total, err = s.participations.TallyForTeam(ctx, db, m.ID, m.HomeTeamID)
	if err != nil {
		return policy.QuorumResult{}, err
	}
	if m.AwayTeamID != nil {
		away.Confirmed, away.Total, err = s.participations.TallyForTeam(ctx, db, m.ID, *m.AwayTeamID)
		if err != nil {
			return policy.QuorumResult{}, err
		}
	}
	return policy.EvaluateQuorum(home, away), nil
}
