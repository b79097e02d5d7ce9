package inactivity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lifevault/lifevault/internal/metrics"
	"github.com/lifevault/lifevault/internal/model"
)

const (
	// tokenBytes of entropy per reactivation token (64 hex chars).
	tokenBytes = 32
	// TokenValidity is how long a reactivation link stays redeemable.
	TokenValidity = 7 * 24 * time.Hour
)

// Verifier issues and redeems one-click reactivation tokens. Redemption is
// the only way besides login that a user's silence clock resets.
type Verifier struct {
	users   UserStore
	log     ActivityLogger
	clock   Clock
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewVerifier creates a Verifier.
func NewVerifier(users UserStore, log ActivityLogger, clock Clock, logger *slog.Logger, recorder metrics.Recorder) *Verifier {
	if clock == nil {
		clock = SystemClock{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Verifier{
		users:   users,
		log:     log,
		clock:   clock,
		logger:  logger.With("component", "inactivity.verifier"),
		metrics: recorder,
	}
}

// Issue generates a fresh single-use token for the user, persists it with a
// seven-day expiry, and returns the token string. Any previously issued
// token is replaced, preserving the one-outstanding-token invariant.
func (v *Verifier) Issue(ctx context.Context, userID string) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(b)

	expiresAt := v.clock.Now().Add(TokenValidity)
	if err := v.users.SetActivityToken(ctx, userID, token, expiresAt); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	return token, nil
}

// Redeem validates a token and, on success, resets the user's silence clock
// and consumes the token. Returns false for an unknown or expired token
// with no mutation and no log entry; callers must not be able to tell the
// two failure cases apart.
//
// The match-and-clear is a single conditional update in the store, so a
// token cannot be redeemed twice even under concurrent requests.
func (v *Verifier) Redeem(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	now := v.clock.Now()
	user, err := v.users.RedeemActivityToken(ctx, token, now)
	if err != nil {
		if !errors.Is(err, ErrTokenInvalid) {
			v.logger.Error("token redemption failed", "error", err)
		}
		v.metrics.IncTokenRedemption("failed")
		return false
	}

	if err := v.log.Record(ctx, user.ID, model.ActivityInactivityCheck, "User confirmed activity via email link"); err != nil {
		// The reset already committed; a lost log entry is not worth
		// failing the redemption over.
		v.logger.Warn("failed to record reactivation", "user_id", user.ID, "error", err)
	}

	v.logger.Info("activity confirmed via link", "user_id", user.ID)
	v.metrics.IncTokenRedemption("success")
	return true
}
