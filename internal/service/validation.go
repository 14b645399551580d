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

// disputeReason is the standard reason written when validations never
// converge to a two-way agreement.
const disputeReason = "score validations do not agree"

// ValidationService handles score submissions and consensus resolution for
// completed matches.
type ValidationService struct {
	db          repository.DB
	matches     repository.MatchRepository
	validations repository.ValidationRepository
	outbox      repository.OutboxRepository
	notifier    notify.Notifier
	logger      *slog.Logger
	now         func() time.Time
}

// NewValidationService creates a ValidationService.
func NewValidationService(db repository.DB, matches repository.MatchRepository, validations repository.ValidationRepository, outbox repository.OutboxRepository, notifier notify.Notifier, logger *slog.Logger) *ValidationService {
	return &ValidationService{
		db:          db,
		matches:     matches,
		validations: validations,
		outbox:      outbox,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// SubmitValidationInput is one validator's score submission.
type SubmitValidationInput struct {
	MatchID     uuid.UUID            `json:"match_id"`
	ValidatorID uuid.UUID            `json:"validator_id"`
	Role        domain.ValidatorRole `json:"role"`
	HomeScore   int                  `json:"home_score"`
	AwayScore   int                  `json:"away_score"`
	Notes       *string              `json:"notes,omitempty"`
}

// SubmitValidationResult reports the recorded validation and the consensus
// state after it.
type SubmitValidationResult struct {
	ValidationID uuid.UUID               `json:"validation_id"`
	Consensus    policy.ConsensusVerdict `json:"consensus"`
}

// ValidationStatus is the read-side view of a match's validations.
type ValidationStatus struct {
	Validations []domain.ValidationRecord `json:"validations"`
	Consensus   policy.ConsensusVerdict   `json:"consensus"`
}

// Submit appends a validation record for a completed match, updates the
// per-role flag, and resolves consensus. The record, the flag and any
// consensus outcome are committed as one transaction; notifications go out
// after commit.
func (s *ValidationService) Submit(ctx context.Context, in SubmitValidationInput) (*SubmitValidationResult, error) {
	if !domain.ValidRole(in.Role) {
		return nil, domain.ErrValidation("unknown validator role: " + string(in.Role))
	}
	if err := domain.ValidateScores(in.HomeScore, in.AwayScore); err != nil {
		return nil, err
	}

	m, err := s.matches.FindByID(ctx, s.db, in.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("load match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", in.MatchID.String())
	}
	if m.Status != domain.MatchCompleted {
		return nil, domain.ErrInvalidState("match must be completed before validation")
	}

	now := s.now()
	rec := &domain.ValidationRecord{
		ID:          uuid.New(),
		MatchID:     in.MatchID,
		ValidatorID: in.ValidatorID,
		Role:        in.Role,
		HomeScore:   in.HomeScore,
		AwayScore:   in.AwayScore,
		Notes:       in.Notes,
		CreatedAt:   now,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	exists, err := s.validations.Exists(ctx, tx, in.MatchID, in.ValidatorID, in.Role)
	if err != nil {
		return nil, domain.ErrInternal("check existing validation", err)
	}
	if exists {
		return nil, domain.ErrConflict("You have already validated this match")
	}

	// The unique constraint on (match, validator, role) backs this insert;
	// a losing concurrent writer gets the same Conflict.
	if err := s.validations.Insert(ctx, tx, rec); err != nil {
		if appErr, ok := err.(*domain.AppError); ok {
			return nil, appErr
		}
		return nil, domain.ErrInternal("insert validation", err)
	}

	if err := s.matches.SetValidationFlag(ctx, tx, in.MatchID, in.Role, now); err != nil {
		return nil, domain.ErrInternal("set validation flag", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewValidationRecordedEvent(rec)); err != nil {
		return nil, domain.ErrInternal("record validation event", err)
	}

	all, err := s.validations.ListByMatch(ctx, tx, in.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("list validations", err)
	}
	verdict := policy.EvaluateConsensus(toSubmissions(all))

	switch {
	case verdict.HasConsensus:
		if err := s.matches.ApplyConsensus(ctx, tx, in.MatchID, verdict.HomeScore, verdict.AwayScore, now); err != nil {
			return nil, domain.ErrInternal("apply consensus", err)
		}
		if err := s.outbox.Insert(ctx, tx, domain.NewMatchFinalizedEvent(in.MatchID, verdict.HomeScore, verdict.AwayScore, verdict.Total)); err != nil {
			return nil, domain.ErrInternal("record finalized event", err)
		}

	case verdict.HasDispute:
		if err := s.matches.MarkDisputed(ctx, tx, in.MatchID, disputeReason); err != nil {
			return nil, domain.ErrInternal("mark disputed", err)
		}
		if err := s.outbox.Insert(ctx, tx, domain.NewMatchDisputedEvent(in.MatchID, disputeReason)); err != nil {
			return nil, domain.ErrInternal("record disputed event", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	switch {
	case verdict.HasConsensus:
		s.logger.Info("match finalized by consensus",
			"match_id", in.MatchID,
			"home_score", verdict.HomeScore,
			"away_score", verdict.AwayScore,
			"validations", verdict.Total,
		)
		s.notifyMatchTeams(ctx, m, "match.score.confirmed", map[string]int{
			"home_score": verdict.HomeScore,
			"away_score": verdict.AwayScore,
		})
	case verdict.HasDispute:
		s.logger.Warn("match disputed", "match_id", in.MatchID, "validations", verdict.Total)
		s.notifyMatchTeams(ctx, m, "match.score.disputed", map[string]string{"reason": disputeReason})
	}

	return &SubmitValidationResult{ValidationID: rec.ID, Consensus: verdict}, nil
}

// Status returns all validations for a match together with the current
// consensus snapshot.
func (s *ValidationService) Status(ctx context.Context, matchID uuid.UUID) (*ValidationStatus, error) {
	m, err := s.matches.FindByID(ctx, s.db, matchID)
	if err != nil {
		return nil, domain.ErrInternal("load match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}

	all, err := s.validations.ListByMatch(ctx, s.db, matchID)
	if err != nil {
		return nil, domain.ErrInternal("list validations", err)
	}
	return &ValidationStatus{
		Validations: all,
		Consensus:   policy.EvaluateConsensus(toSubmissions(all)),
	}, nil
}

func (s *ValidationService) notifyMatchTeams(ctx context.Context, m *domain.Match, eventType string, data interface{}) {
	teams := []uuid.UUID{m.HomeTeamID}
	if m.AwayTeamID != nil {
		teams = append(teams, *m.AwayTeamID)
	}
	s.notifier.Notify(ctx, notify.Event{
		Type:    eventType,
		MatchID: m.ID,
		TeamIDs: teams,
		Data:    data,
	})
}

func toSubmissions(records []domain.ValidationRecord) []policy.ScoreSubmission {
	subs := make([]policy.ScoreSubmission, len(records))
	for i, r := range records {
		subs[i] = policy.ScoreSubmission{
			ValidatorID: r.ValidatorID,
			Role:        r.Role,
			HomeScore:   r.HomeScore,
			AwayScore:   r.AwayScore,
		}
	}
	return subs
}
