package inactivity

import (
	"context"
	"testing"
	"time"

	"github.com/lifevault/lifevault/internal/model"
)

func contact(id, userID string, verified bool) *model.TrustedContact {
	return &model.TrustedContact{
		ID:         id,
		UserID:     userID,
		Name:       "Contact " + id,
		Email:      id + "@test.local",
		IsVerified: verified,
	}
}

func newDiscloserFixture(now time.Time, user *model.User, contacts ...*model.TrustedContact) (*Discloser, *fakeUserStore, *fakeContactStore, *fakeSender, *fakeActivityLog) {
	users := newFakeUserStore(user)
	store := &fakeContactStore{contacts: contacts}
	sender := &fakeSender{}
	log := &fakeActivityLog{}
	d := NewDiscloser(users, store, sender, log, staticSigner{}, fixedClock{now}, discardLogger(), nil)
	return d, users, store, sender, log
}

func TestDiscloserReveal(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("notifies only verified contacts", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -200))
		d, users, store, sender, log := newDiscloserFixture(now, user,
			contact("c1", "u1", true),
			contact("c2", "u1", false),
			contact("c3", "u1", true),
		)

		if err := d.Reveal(context.Background(), user); err != nil {
			t.Fatalf("Reveal() error = %v", err)
		}

		if len(sender.disclosures) != 2 {
			t.Fatalf("disclosures = %d, want 2", len(sender.disclosures))
		}
		for _, sent := range sender.disclosures {
			if sent.accessRef != "ref-"+sent.contactID {
				t.Errorf("access ref = %q, want contact-specific reference", sent.accessRef)
			}
		}

		for _, c := range store.contacts {
			wantNotified := c.IsVerified
			if c.IsNotified != wantNotified {
				t.Errorf("contact %s notified = %v, want %v", c.ID, c.IsNotified, wantNotified)
			}
		}

		if users.get("u1").VaultRevealedAt == nil {
			t.Error("vault-revealed marker not set")
		}

		entries := log.byKind(model.ActivityVaultRevealed)
		if len(entries) != 1 {
			t.Errorf("VAULT_REVEALED entries = %d, want 1", len(entries))
		}
	})

	t.Run("zero verified contacts still completes the episode", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -200))
		d, users, _, sender, log := newDiscloserFixture(now, user,
			contact("c1", "u1", false),
		)

		if err := d.Reveal(context.Background(), user); err != nil {
			t.Fatalf("Reveal() error = %v", err)
		}

		if len(sender.disclosures) != 0 {
			t.Errorf("disclosures = %d, want 0", len(sender.disclosures))
		}
		if users.get("u1").VaultRevealedAt == nil {
			t.Error("episode not marked complete without contacts")
		}
		if len(log.byKind(model.ActivityVaultRevealed)) != 1 {
			t.Error("missing VAULT_REVEALED entry")
		}
	})

	t.Run("send failure skips that contact and continues", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -200))
		d, _, store, sender, _ := newDiscloserFixture(now, user,
			contact("c1", "u1", true),
			contact("c2", "u1", true),
		)
		sender.failContactIDs = map[string]bool{"c1": true}

		if err := d.Reveal(context.Background(), user); err != nil {
			t.Fatalf("Reveal() error = %v", err)
		}

		var c1, c2 *model.TrustedContact
		for _, c := range store.contacts {
			switch c.ID {
			case "c1":
				c1 = c
			case "c2":
				c2 = c
			}
		}
		if c1.IsNotified {
			t.Error("contact with failed send was marked notified")
		}
		if !c2.IsNotified {
			t.Error("contact with successful send was not marked notified")
		}
	})

	t.Run("all sends failing leaves the episode open for retry", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -200))
		d, users, _, sender, log := newDiscloserFixture(now, user,
			contact("c1", "u1", true),
			contact("c2", "u1", true),
		)
		sender.failContactIDs = map[string]bool{"c1": true, "c2": true}

		if err := d.Reveal(context.Background(), user); err == nil {
			t.Fatal("Reveal() should fail when no contact could be notified")
		}

		if users.get("u1").VaultRevealedAt != nil {
			t.Error("vault-revealed marker set despite zero notifications")
		}
		if entries := log.byKind(model.ActivityVaultRevealed); len(entries) != 0 {
			t.Errorf("VAULT_REVEALED entries = %d, want 0", len(entries))
		}
		disclosed, err := d.Disclosed(context.Background(), users.get("u1"))
		if err != nil {
			t.Fatalf("Disclosed() error = %v", err)
		}
		if disclosed {
			t.Error("episode marked disclosed after a total send failure")
		}

		// Mail recovers before the next run; the retry completes.
		sender.failContactIDs = nil
		if err := d.Reveal(context.Background(), user); err != nil {
			t.Fatalf("Reveal() retry error = %v", err)
		}
		if len(sender.disclosures) != 2 {
			t.Errorf("disclosures after retry = %d, want 2", len(sender.disclosures))
		}
		if users.get("u1").VaultRevealedAt == nil {
			t.Error("vault-revealed marker not set after successful retry")
		}
	})
}

func TestDiscloserDisclosed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("fresh episode is not disclosed", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -200))
		d, _, _, _, _ := newDiscloserFixture(now, user, contact("c1", "u1", true))

		done, err := d.Disclosed(context.Background(), user)
		if err != nil {
			t.Fatalf("Disclosed() error = %v", err)
		}
		if done {
			t.Error("Disclosed() = true for a fresh episode")
		}
	})

	t.Run("any notified contact marks the episode complete", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -200))
		notified := contact("c1", "u1", true)
		notified.IsNotified = true
		d, _, _, _, _ := newDiscloserFixture(now, user, notified, contact("c2", "u1", true))

		done, err := d.Disclosed(context.Background(), user)
		if err != nil {
			t.Fatalf("Disclosed() error = %v", err)
		}
		if !done {
			t.Error("Disclosed() = false with a notified contact")
		}
	})

	t.Run("user-level marker covers zero-contact episodes", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -200))
		revealed := now.AddDate(0, 0, -1)
		user.VaultRevealedAt = &revealed
		d, _, _, _, _ := newDiscloserFixture(now, user)

		done, err := d.Disclosed(context.Background(), user)
		if err != nil {
			t.Fatalf("Disclosed() error = %v", err)
		}
		if !done {
			t.Error("Disclosed() = false despite user-level marker")
		}
	})

	t.Run("reveal then disclosed is idempotent", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -200))
		d, users, _, sender, log := newDiscloserFixture(now, user, contact("c1", "u1", true))

		if err := d.Reveal(context.Background(), user); err != nil {
			t.Fatalf("Reveal() error = %v", err)
		}

		done, err := d.Disclosed(context.Background(), users.get("u1"))
		if err != nil {
			t.Fatalf("Disclosed() error = %v", err)
		}
		if !done {
			t.Fatal("Disclosed() = false after Reveal()")
		}

		if len(sender.disclosures) != 1 || len(log.byKind(model.ActivityVaultRevealed)) != 1 {
			t.Error("reveal side effects not exactly-once")
		}
	})
}
