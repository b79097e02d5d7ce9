package inactivity

import (
	"context"
	"testing"
	"time"

	"github.com/lifevault/lifevault/internal/model"
)

func testUser(id string, lastActivity time.Time) *model.User {
	return &model.User{
		ID:                      id,
		Email:                   id + "@test.local",
		FirstName:               "Test",
		LastActivityAt:          lastActivity,
		LastNotificationCheckAt: lastActivity,
		IsActive:                true,
		InactivityPeriodDays:    180,
	}
}

func TestVerifierIssue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	user := testUser("u1", now.AddDate(0, 0, -90))
	users := newFakeUserStore(user)
	v := NewVerifier(users, &fakeActivityLog{}, fixedClock{now}, discardLogger(), nil)

	token, err := v.Issue(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if len(token) != tokenBytes*2 {
		t.Errorf("token length = %d, want %d hex chars", len(token), tokenBytes*2)
	}

	stored := users.get("u1")
	if stored.ActivityToken == nil || *stored.ActivityToken != token {
		t.Error("token not persisted on user")
	}
	wantExpiry := now.Add(TokenValidity)
	if stored.ActivityTokenExpiry == nil || !stored.ActivityTokenExpiry.Equal(wantExpiry) {
		t.Errorf("expiry = %v, want %v", stored.ActivityTokenExpiry, wantExpiry)
	}
}

func TestVerifierIssueReplacesPrevious(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	users := newFakeUserStore(testUser("u1", now.AddDate(0, 0, -90)))
	v := NewVerifier(users, &fakeActivityLog{}, fixedClock{now}, discardLogger(), nil)

	first, err := v.Issue(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	second, err := v.Issue(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens")
	}

	if v.Redeem(context.Background(), first) {
		t.Error("replaced token was still redeemable")
	}
	if !v.Redeem(context.Background(), second) {
		t.Error("current token was not redeemable")
	}
}

func TestVerifierRedeem(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lastActivity := now.AddDate(0, 0, -90)

	t.Run("success resets clock and consumes token", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", lastActivity)
		revealed := now.AddDate(0, 0, -1)
		user.VaultRevealedAt = &revealed
		users := newFakeUserStore(user)
		log := &fakeActivityLog{}
		v := NewVerifier(users, log, fixedClock{now}, discardLogger(), nil)

		token, err := v.Issue(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		if !v.Redeem(context.Background(), token) {
			t.Fatal("Redeem() = false, want true")
		}

		stored := users.get("u1")
		if !stored.LastActivityAt.Equal(now) {
			t.Errorf("LastActivityAt = %v, want %v", stored.LastActivityAt, now)
		}
		if stored.ActivityToken != nil {
			t.Error("token not cleared after redemption")
		}
		if stored.VaultRevealedAt != nil {
			t.Error("vault-revealed marker not lifted on reactivation")
		}

		entries := log.byKind(model.ActivityInactivityCheck)
		if len(entries) != 1 {
			t.Fatalf("activity entries = %d, want 1", len(entries))
		}
		if entries[0].userID != "u1" {
			t.Errorf("entry user = %s, want u1", entries[0].userID)
		}
	})

	t.Run("single use", func(t *testing.T) {
		t.Parallel()

		users := newFakeUserStore(testUser("u1", lastActivity))
		v := NewVerifier(users, &fakeActivityLog{}, fixedClock{now}, discardLogger(), nil)

		token, err := v.Issue(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		if !v.Redeem(context.Background(), token) {
			t.Fatal("first Redeem() = false, want true")
		}
		if v.Redeem(context.Background(), token) {
			t.Error("second Redeem() = true, want false")
		}
	})

	t.Run("expired token fails silently", func(t *testing.T) {
		t.Parallel()

		user := testUser("u1", lastActivity)
		users := newFakeUserStore(user)
		log := &fakeActivityLog{}
		v := NewVerifier(users, log, fixedClock{now}, discardLogger(), nil)

		token, err := v.Issue(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		// Redeem well past the validity window.
		late := NewVerifier(users, log, fixedClock{now.Add(TokenValidity + time.Hour)}, discardLogger(), nil)
		if late.Redeem(context.Background(), token) {
			t.Fatal("Redeem() after expiry = true, want false")
		}

		stored := users.get("u1")
		if !stored.LastActivityAt.Equal(lastActivity) {
			t.Error("failed redemption mutated the silence clock")
		}
		if len(log.entries) != 0 {
			t.Error("failed redemption produced an activity entry")
		}
	})

	t.Run("unknown and empty tokens fail", func(t *testing.T) {
		t.Parallel()

		users := newFakeUserStore(testUser("u1", lastActivity))
		v := NewVerifier(users, &fakeActivityLog{}, fixedClock{now}, discardLogger(), nil)

		if v.Redeem(context.Background(), "deadbeef") {
			t.Error("unknown token redeemed")
		}
		if v.Redeem(context.Background(), "") {
			t.Error("empty token redeemed")
		}
	})
}
