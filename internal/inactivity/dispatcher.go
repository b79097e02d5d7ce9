package inactivity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lifevault/lifevault/internal/metrics"
	"github.com/lifevault/lifevault/internal/model"
)

// Dispatcher turns a classified warning tier into an outbound email plus
// the bookkeeping around it.
type Dispatcher struct {
	users    UserStore
	email    WarningSender
	log      ActivityLogger
	verifier *Verifier
	clock    Clock
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(users UserStore, email WarningSender, log ActivityLogger, verifier *Verifier, clock Clock, logger *slog.Logger, recorder metrics.Recorder) *Dispatcher {
	if clock == nil {
		clock = SystemClock{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Dispatcher{
		users:    users,
		email:    email,
		log:      log,
		verifier: verifier,
		clock:    clock,
		logger:   logger.With("component", "inactivity.dispatcher"),
		metrics:  recorder,
	}
}

// SendWarning delivers one warning of the given tier to the user.
//
// Ordering matters: the reactivation token is generated and persisted
// before the email that references it, so a token-storage failure can never
// produce a dead link. If the send itself fails the whole unit fails and
// lastNotificationCheckAt is left untouched; the next scheduled run will
// classify the user again and retry.
func (d *Dispatcher) SendWarning(ctx context.Context, user *model.User, tier model.WarningTier, daysInactive int) error {
	token, err := d.verifier.Issue(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("issue reactivation token: %w", err)
	}

	if err := d.email.SendWarning(ctx, user, tier, daysInactive, token); err != nil {
		return fmt.Errorf("send %s: %w", tier, err)
	}

	if err := d.users.TouchNotificationCheck(ctx, user.ID, d.clock.Now()); err != nil {
		return fmt.Errorf("update notification check: %w", err)
	}

	desc := fmt.Sprintf("Inactivity %s sent after %d days", tier, daysInactive)
	if err := d.log.Record(ctx, user.ID, model.ActivityInactivityCheck, desc); err != nil {
		d.logger.Warn("failed to record inactivity check", "user_id", user.ID, "error", err)
	}

	d.logger.Info("warning sent",
		"user_id", user.ID,
		"tier", tier.String(),
		"days_inactive", daysInactive,
	)
	d.metrics.IncWarningSent(tier.String())

	return nil
}
