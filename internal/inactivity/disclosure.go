package inactivity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lifevault/lifevault/internal/metrics"
	"github.com/lifevault/lifevault/internal/model"
)

// Discloser performs the one-time, irreversible vault reveal to a user's
// verified trusted contacts.
type Discloser struct {
	users    UserStore
	contacts ContactStore
	email    WarningSender
	log      ActivityLogger
	signer   AccessSigner
	clock    Clock
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewDiscloser creates a Discloser.
func NewDiscloser(users UserStore, contacts ContactStore, email WarningSender, log ActivityLogger, signer AccessSigner, clock Clock, logger *slog.Logger, recorder metrics.Recorder) *Discloser {
	if clock == nil {
		clock = SystemClock{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Discloser{
		users:    users,
		contacts: contacts,
		email:    email,
		log:      log,
		signer:   signer,
		clock:    clock,
		logger:   logger.With("component", "inactivity.discloser"),
		metrics:  recorder,
	}
}

// Disclosed reports whether the user's current episode has already been
// disclosed. Any contact with isNotified set marks the episode complete;
// the user-level timestamp covers users with zero verified contacts.
func (d *Discloser) Disclosed(ctx context.Context, user *model.User) (bool, error) {
	if user.VaultRevealedAt != nil {
		return true, nil
	}

	contacts, err := d.contacts.FindByUser(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("load contacts: %w", err)
	}
	for _, c := range contacts {
		if c.IsNotified {
			return true, nil
		}
	}
	return false, nil
}

// Reveal notifies every verified contact exactly once, then writes a single
// VAULT_REVEALED activity entry, even when no verified contact exists.
// Unverified contacts are permanently excluded from this episode.
//
// Each contact is marked notified only after its email is accepted for
// delivery, so a send failure leaves that contact unmarked. A failed send
// is logged and the remaining contacts are still processed. If every send
// fails the episode is left open: no marker, no log entry, and the next
// run retries. Any successfully notified contact completes the episode.
func (d *Discloser) Reveal(ctx context.Context, user *model.User) error {
	verified, err := d.contacts.FindVerifiedByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load verified contacts: %w", err)
	}

	now := d.clock.Now()
	notified := 0

	for _, contact := range verified {
		ref := d.signer.AccessReference(contact.ID)
		if err := d.email.SendDisclosure(ctx, contact, user, ref); err != nil {
			d.logger.Error("disclosure email failed",
				"user_id", user.ID,
				"contact_id", contact.ID,
				"error", err,
			)
			continue
		}

		if err := d.contacts.MarkNotified(ctx, contact.ID, now); err != nil {
			return fmt.Errorf("mark contact %s notified: %w", contact.ID, err)
		}
		notified++
	}

	if len(verified) > 0 && notified == 0 {
		return fmt.Errorf("disclosure emails failed for all %d verified contacts", len(verified))
	}

	if err := d.users.MarkVaultRevealed(ctx, user.ID, now); err != nil {
		return fmt.Errorf("mark vault revealed: %w", err)
	}

	desc := "Vault information revealed to trusted contacts due to extended inactivity"
	if err := d.log.Record(ctx, user.ID, model.ActivityVaultRevealed, desc); err != nil {
		d.logger.Warn("failed to record vault reveal", "user_id", user.ID, "error", err)
	}

	d.logger.Info("vault revealed",
		"user_id", user.ID,
		"contacts_notified", notified,
		"contacts_verified", len(verified),
	)
	d.metrics.IncVaultRevealed()

	return nil
}
