package inactivity

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultEvaluationInterval is how often the scheduler triggers a run.
const DefaultEvaluationInterval = 24 * time.Hour

// Scheduler drives the evaluator on a fixed interval. The core itself is
// trigger-agnostic; this is just the in-process stand-in for an external
// cron, and the admin endpoint can trigger runs independently.
type Scheduler struct {
	evaluator *Evaluator
	interval  time.Duration
	logger    *slog.Logger
	started   atomic.Bool
}

// NewScheduler creates a Scheduler firing every interval.
func NewScheduler(evaluator *Evaluator, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultEvaluationInterval
	}
	return &Scheduler{
		evaluator: evaluator,
		interval:  interval,
		logger:    logger.With("component", "inactivity.scheduler"),
	}
}

// Run starts the scheduler loop. Blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("scheduler already started")
	}

	s.logger.Info("inactivity scheduler started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("inactivity scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.evaluator.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if errors.Is(err, ErrRunInProgress) {
					s.logger.Warn("skipped scheduled run, another run in progress")
					continue
				}
				s.logger.Error("scheduled run failed", "error", err)
			}
		}
	}
}
