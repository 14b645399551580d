package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/notify"
	"github.com/daRevrse/football-network/internal/repository"
	"github.com/google/uuid"
)

// LifecycleService owns match status transitions: the timed bulk sweep, the
// single-match check, and the manual start/complete/cancel triggers.
type LifecycleService struct {
	db       repository.DB
	matches  repository.MatchRepository
	outbox   repository.OutboxRepository
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewLifecycleService creates a LifecycleService.
func NewLifecycleService(db repository.DB, matches repository.MatchRepository, outbox repository.OutboxRepository, notifier notify.Notifier, logger *slog.Logger) *LifecycleService {
	return &LifecycleService{
		db:       db,
		matches:  matches,
		outbox:   outbox,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckResult reports the outcome of a single-match status check.
type CheckResult struct {
	PreviousStatus domain.MatchStatus `json:"previous_status"`
	CurrentStatus  domain.MatchStatus `json:"current_status"`
	Updated        bool               `json:"updated"`
}

// RunSweep applies the two automatic transitions to every due match and
// returns how many transitioned. Matches are processed independently: a
// failure is logged and skipped, and the next sweep re-evaluates it since
// the precondition still holds.
func (s *LifecycleService) RunSweep(ctx context.Context) (int, error) {
	now := s.now()
	count := 0

	dueStart, err := s.matches.ListDueForStart(ctx, s.db, now)
	if err != nil {
		return 0, fmt.Errorf("list due for start: %w", err)
	}
	for i := range dueStart {
		m := &dueStart[i]
		applied, err := s.startMatch(ctx, m, now)
		if err != nil {
			s.logger.Error("sweep: start transition failed", "match_id", m.ID, "error", err)
			continue
		}
		if applied {
			count++
		}
	}

	dueComplete, err := s.matches.ListDueForCompletion(ctx, s.db, now)
	if err != nil {
		return count, fmt.Errorf("list due for completion: %w", err)
	}
	for i := range dueComplete {
		m := &dueComplete[i]
		applied, err := s.completeMatch(ctx, m, now)
		if err != nil {
			s.logger.Error("sweep: complete transition failed", "match_id", m.ID, "error", err)
			continue
		}
		if applied {
			count++
		}
	}

	return count, nil
}

// CheckMatch applies the same two rules to a single match, on demand. At
// most one transition is applied per call.
func (s *LifecycleService) CheckMatch(ctx context.Context, matchID uuid.UUID) (*CheckResult, error) {
	m, err := s.matches.FindByID(ctx, s.db, matchID)
	if err != nil {
		return nil, domain.ErrInternal("load match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}

	now := s.now()
	prev := m.Status

	switch {
	case m.DueToStart(now):
		applied, err := s.startMatch(ctx, m, now)
		if err != nil {
			return nil, domain.ErrInternal("start match", err)
		}
		if !applied {
			return s.checkResultAfterRace(ctx, matchID, prev)
		}
		return &CheckResult{PreviousStatus: prev, CurrentStatus: domain.MatchInProgress, Updated: true}, nil

	case m.DueToComplete(now):
		applied, err := s.completeMatch(ctx, m, now)
		if err != nil {
			return nil, domain.ErrInternal("complete match", err)
		}
		if !applied {
			return s.checkResultAfterRace(ctx, matchID, prev)
		}
		return &CheckResult{PreviousStatus: prev, CurrentStatus: domain.MatchCompleted, Updated: true}, nil
	}

	return &CheckResult{PreviousStatus: prev, CurrentStatus: prev, Updated: false}, nil
}

// StartMatch is the manual confirmed → in_progress trigger, available to
// participants and referees ahead of the scheduled time.
func (s *LifecycleService) StartMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	m, err := s.loadForTransition(ctx, matchID, domain.MatchInProgress)
	if err != nil {
		return nil, err
	}
	applied, err := s.startMatch(ctx, m, s.now())
	if err != nil {
		return nil, domain.ErrInternal("start match", err)
	}
	if !applied {
		return nil, domain.ErrInvalidState("match status changed concurrently")
	}
	return s.reload(ctx, matchID)
}

// CompleteMatch is the manual in_progress → completed trigger.
func (s *LifecycleService) CompleteMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	m, err := s.loadForTransition(ctx, matchID, domain.MatchCompleted)
	if err != nil {
		return nil, err
	}
	applied, err := s.completeMatch(ctx, m, s.now())
	if err != nil {
		return nil, domain.ErrInternal("complete match", err)
	}
	if !applied {
		return nil, domain.ErrInvalidState("match status changed concurrently")
	}
	return s.reload(ctx, matchID)
}

// CancelMatch moves a non-terminal match to cancelled.
func (s *LifecycleService) CancelMatch(ctx context.Context, matchID uuid.UUID, reason string) error {
	m, err := s.loadForTransition(ctx, matchID, domain.MatchCancelled)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	cancelled, err := s.matches.MarkCancelled(ctx, tx, matchID)
	if err != nil {
		return domain.ErrInternal("cancel match", err)
	}
	if !cancelled {
		return domain.ErrInvalidState(fmt.Sprintf("match is no longer cancellable (status: %s)", m.Status))
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewMatchCancelledEvent(matchID, reason)); err != nil {
		return domain.ErrInternal("record cancel event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.notifyTeams(ctx, m, "match.cancelled", map[string]string{"reason": reason})
	return nil
}

// startMatch applies confirmed → in_progress in its own transaction. It
// reports false when a concurrent actor already moved the match, so callers
// do not count or announce a transition they did not make.
func (s *LifecycleService) startMatch(ctx context.Context, m *domain.Match, now time.Time) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	updated, err := s.matches.MarkInProgress(ctx, tx, m.ID, now)
	if err != nil {
		return false, err
	}
	if !updated {
		return false, nil
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewMatchStartedEvent(m, now)); err != nil {
		return false, fmt.Errorf("record start event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("match started", "match_id", m.ID, "scheduled_at", m.ScheduledAt)
	s.notifyTeams(ctx, m, "match.started", nil)
	return true, nil
}

// completeMatch applies in_progress → completed in its own transaction and
// tells both sides that score entry is open. Reports false when the match
// was already moved by a concurrent actor.
func (s *LifecycleService) completeMatch(ctx context.Context, m *domain.Match, now time.Time) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	updated, err := s.matches.MarkCompleted(ctx, tx, m.ID, now)
	if err != nil {
		return false, err
	}
	if !updated {
		return false, nil
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewMatchCompletedEvent(m, now)); err != nil {
		return false, fmt.Errorf("record complete event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("match completed", "match_id", m.ID)
	s.notifyTeams(ctx, m, "match.completed", map[string]string{
		"action_required": "score validation",
	})
	return true, nil
}

func (s *LifecycleService) loadForTransition(ctx context.Context, matchID uuid.UUID, next domain.MatchStatus) (*domain.Match, error) {
	m, err := s.matches.FindByID(ctx, s.db, matchID)
	if err != nil {
		return nil, domain.ErrInternal("load match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}
	if !m.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidState(fmt.Sprintf("cannot move match from %s to %s", m.Status, next))
	}
	return m, nil
}

// checkResultAfterRace reports the state a concurrent actor left the match
// in, without claiming the transition.
func (s *LifecycleService) checkResultAfterRace(ctx context.Context, matchID uuid.UUID, prev domain.MatchStatus) (*CheckResult, error) {
	m, err := s.reload(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &CheckResult{PreviousStatus: prev, CurrentStatus: m.Status, Updated: false}, nil
}

func (s *LifecycleService) reload(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	m, err := s.matches.FindByID(ctx, s.db, matchID)
	if err != nil {
		return nil, domain.ErrInternal("reload match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}
	return m, nil
}

// notifyTeams fans an event out to both sides. Notification is best-effort
// and never fails the transition that produced it.
func (s *LifecycleService) notifyTeams(ctx context.Context, m *domain.Match, eventType string, data interface{}) {
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
