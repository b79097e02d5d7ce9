package inactivity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lifevault/lifevault/internal/metrics"
	"github.com/lifevault/lifevault/internal/model"
)

// Evaluator runs one batch pass over all active users, classifying each
// user's silence and routing to the dispatcher or the discloser.
//
// The evaluator assumes at most one concurrent run; the optional RunLock
// makes the accidental-overlap case a no-op rather than a correctness
// hazard.
type Evaluator struct {
	users      UserStore
	dispatcher *Dispatcher
	discloser  *Discloser
	graceDays  int
	lock       RunLock
	clock      Clock
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// NewEvaluator creates an Evaluator. lock may be nil when the deployment
// guarantees a single instance.
func NewEvaluator(users UserStore, dispatcher *Dispatcher, discloser *Discloser, graceDays int, lock RunLock, clock Clock, logger *slog.Logger, recorder metrics.Recorder) *Evaluator {
	if graceDays <= 0 {
		graceDays = DefaultGracePeriodDays
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Evaluator{
		users:      users,
		dispatcher: dispatcher,
		discloser:  discloser,
		graceDays:  graceDays,
		lock:       lock,
		clock:      clock,
		logger:     logger.With("component", "inactivity.evaluator"),
		metrics:    recorder,
	}
}

// RunSummary reports what a single evaluation pass did.
type RunSummary struct {
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration_ns"`
	UsersEvaluated int           `json:"users_evaluated"`
	WarningsSent   int           `json:"warnings_sent"`
	Disclosures    int           `json:"disclosures"`
	Failures       int           `json:"failures"`
}

// Run evaluates every active user once. A failure in one user's unit is
// counted and logged but never aborts the pass. Returns ErrRunInProgress
// when another run holds the lock.
func (e *Evaluator) Run(ctx context.Context) (*RunSummary, error) {
	if e.lock != nil {
		release, ok, err := e.lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return nil, ErrRunInProgress
		}
		defer release()
	}

	now := e.clock.Now()
	summary := &RunSummary{StartedAt: now}

	users, err := e.users.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	e.logger.Info("evaluation run started", "active_users", len(users))

	for _, user := range users {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		summary.UsersEvaluated++
		outcome, err := e.evaluateUser(ctx, user, now)
		if err != nil {
			summary.Failures++
			e.metrics.IncEvaluationFailure()
			e.logger.Error("user evaluation failed",
				"user_id", user.ID,
				"error", err,
			)
			continue
		}

		switch outcome.Action {
		case ActionWarn:
			summary.WarningsSent++
		case ActionDisclose:
			summary.Disclosures++
		}
	}

	summary.Duration = e.clock.Now().Sub(now)
	e.metrics.ObserveEvaluationRun(summary.Duration, summary.UsersEvaluated, summary.Failures)
	e.logger.Info("evaluation run finished",
		"users_evaluated", summary.UsersEvaluated,
		"warnings_sent", summary.WarningsSent,
		"disclosures", summary.Disclosures,
		"failures", summary.Failures,
		"duration_ms", summary.Duration.Milliseconds(),
	)

	return summary, nil
}

// evaluateUser classifies one user and executes the resulting action.
// The returned outcome reflects what actually happened: an already
// disclosed episode reports ActionNone.
func (e *Evaluator) evaluateUser(ctx context.Context, user *model.User, now time.Time) (Outcome, error) {
	days := DaysInactive(user.LastActivityAt, now)
	outcome := Classify(days, user.InactivityPeriodDays, e.graceDays)

	switch outcome.Action {
	case ActionNone:
		return outcome, nil

	case ActionWarn:
		if err := e.dispatcher.SendWarning(ctx, user, outcome.Tier, days); err != nil {
			return outcome, err
		}
		return outcome, nil

	case ActionDisclose:
		done, err := e.discloser.Disclosed(ctx, user)
		if err != nil {
			return outcome, err
		}
		if done {
			// Episode already disclosed; idempotent no-op.
			return Outcome{Action: ActionNone, DaysInactive: days}, nil
		}
		if err := e.discloser.Reveal(ctx, user); err != nil {
			return outcome, err
		}
		return outcome, nil

	default:
		return outcome, fmt.Errorf("unknown action %d", outcome.Action)
	}
}
