package inactivity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lifevault/lifevault/internal/model"
)

func newDispatcherFixture(now time.Time, user *model.User) (*Dispatcher, *fakeUserStore, *fakeSender, *fakeActivityLog) {
	users := newFakeUserStore(user)
	sender := &fakeSender{}
	log := &fakeActivityLog{}
	clock := fixedClock{now}
	verifier := NewVerifier(users, log, clock, discardLogger(), nil)
	d := NewDispatcher(users, sender, log, verifier, clock, discardLogger(), nil)
	return d, users, sender, log
}

func TestDispatcherSendWarning(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lastCheck := now.AddDate(0, 0, -10)

	t.Run("delivers mail with a live token", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -90))
		user.LastNotificationCheckAt = lastCheck
		d, users, sender, log := newDispatcherFixture(now, user)

		if err := d.SendWarning(context.Background(), user, model.TierFiftyPercent, 90); err != nil {
			t.Fatalf("SendWarning() error = %v", err)
		}

		if len(sender.warnings) != 1 {
			t.Fatalf("warnings sent = %d, want 1", len(sender.warnings))
		}
		sent := sender.warnings[0]
		if sent.tier != model.TierFiftyPercent || sent.days != 90 {
			t.Errorf("sent = %+v, want 50%% tier at 90 days", sent)
		}

		// The token in the email must be the one persisted on the user.
		stored := users.get("u1")
		if stored.ActivityToken == nil || *stored.ActivityToken != sent.token {
			t.Error("emailed token does not match the stored token")
		}
		if !stored.LastNotificationCheckAt.Equal(now) {
			t.Error("lastNotificationCheckAt not advanced after send")
		}

		entries := log.byKind(model.ActivityInactivityCheck)
		if len(entries) != 1 {
			t.Fatalf("activity entries = %d, want 1", len(entries))
		}
		if !strings.Contains(entries[0].description, "90 days") {
			t.Errorf("description = %q, want day count", entries[0].description)
		}
	})

	t.Run("send failure leaves bookkeeping untouched", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -90))
		user.LastNotificationCheckAt = lastCheck
		d, users, sender, log := newDispatcherFixture(now, user)
		sender.failWarnings = true

		if err := d.SendWarning(context.Background(), user, model.TierFinalWeek, 175); err == nil {
			t.Fatal("SendWarning() error = nil, want failure")
		}

		if !users.get("u1").LastNotificationCheckAt.Equal(lastCheck) {
			t.Error("lastNotificationCheckAt advanced despite failed send")
		}
		if len(log.entries) != 0 {
			t.Error("activity recorded despite failed send")
		}
	})

	t.Run("token issue failure aborts before any send", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", now.AddDate(0, 0, -90))
		d, users, sender, _ := newDispatcherFixture(now, user)
		users.failSetToken = true

		if err := d.SendWarning(context.Background(), user, model.TierGracePeriod, 182); err == nil {
			t.Fatal("SendWarning() error = nil, want failure")
		}
		if len(sender.warnings) != 0 {
			t.Error("email sent despite token storage failure")
		}
	})
}
