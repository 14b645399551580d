package infra

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Sweeper is the subset of the lifecycle service the MatchSweeper drives.
type Sweeper interface {
	RunSweep(ctx context.Context) (int, error)
}

// MatchSweeper runs the match lifecycle sweep on a fixed interval.
// A tick that arrives while a sweep is still running is skipped,
// so sweeps never overlap.
type MatchSweeper struct {
	svc      Sweeper
	logger   *slog.Logger
	interval time.Duration
	inFlight atomic.Bool
}

// NewMatchSweeper creates a sweeper. A non-positive interval defaults to one minute.
func NewMatchSweeper(svc Sweeper, interval time.Duration, logger *slog.Logger) *MatchSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &MatchSweeper{svc: svc, logger: logger, interval: interval}
}

// Start begins sweeping in a goroutine. Stops when ctx is cancelled.
func (s *MatchSweeper) Start(ctx context.Context) {
	s.logger.Info("match sweeper started", "interval", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("match sweeper stopped")
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Sweep runs a single sweep unless one is already in flight.
func (s *MatchSweeper) Sweep(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("sweep still running, skipping tick")
		return
	}
	defer s.inFlight.Store(false)

	transitioned, err := s.svc.RunSweep(ctx)
	if err != nil {
		s.logger.Error("match sweep failed", "error", err)
		return
	}
	if transitioned > 0 {
		s.logger.Info("match sweep complete", "transitioned", transitioned)
	}
}
