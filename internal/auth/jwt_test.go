package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

var testSecret = []byte("test-signing-secret")

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := IssueSessionToken("user-1", "ada@test.local", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	claims, err := ParseSessionToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Email != "ada@test.local" {
		t.Errorf("Email = %q, want ada@test.local", claims.Email)
	}
}

func TestParseSessionTokenFailures(t *testing.T) {
	t.Parallel()

	valid, err := IssueSessionToken("user-1", "ada@test.local", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	expired, err := IssueSessionToken("user-1", "ada@test.local", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{"empty token", "", testSecret},
		{"garbage token", "not.a.jwt", testSecret},
		{"wrong secret", valid, []byte("other-secret")},
		{"expired", expired, testSecret},
		{"tampered payload", valid[:len(valid)-3] + "xyz", testSecret},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseSessionToken(tt.token, tt.secret); !errors.Is(err, ErrInvalidSession) {
				t.Errorf("ParseSessionToken() error = %v, want ErrInvalidSession", err)
			}
		})
	}
}

func TestSessionContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if SessionFromContext(ctx) != nil {
		t.Error("empty context should have no session")
	}
	if UserIDFromContext(ctx) != "" {
		t.Error("empty context should have no user ID")
	}

	ctx = ContextWithSession(ctx, &Session{UserID: "user-1", Email: "ada@test.local"})
	s := SessionFromContext(ctx)
	if s == nil || s.UserID != "user-1" {
		t.Errorf("SessionFromContext() = %+v, want user-1", s)
	}
	if UserIDFromContext(ctx) != "user-1" {
		t.Errorf("UserIDFromContext() = %q, want user-1", UserIDFromContext(ctx))
	}
}
