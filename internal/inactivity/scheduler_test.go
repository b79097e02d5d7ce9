package inactivity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSchedulerRunOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEvalFixture(now)
	s := NewScheduler(f.evaluator, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}

	// The loop is single-use; a second Run refuses without blocking.
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("second Run() should fail")
	}
}

func TestSchedulerDefaultInterval(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newEvalFixture(now)

	s := NewScheduler(f.evaluator, 0, discardLogger())
	if s.interval != DefaultEvaluationInterval {
		t.Errorf("interval = %v, want %v", s.interval, DefaultEvaluationInterval)
	}
}
