package inactivity

import (
	"context"
	"errors"
	"time"

	"github.com/lifevault/lifevault/internal/model"
)

// Collaborator errors surfaced by store implementations.
var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenInvalid is returned for a reactivation token that does not
	// match any user or has expired. The two cases are intentionally not
	// distinguishable.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrRunInProgress is returned when an evaluation run is refused
	// because another run holds the lock.
	ErrRunInProgress = errors.New("evaluation run already in progress")
)

// UserStore is the slice of user persistence the core needs.
type UserStore interface {
	ListActiveUsers(ctx context.Context) ([]*model.User, error)

	// SetActivityToken stores a freshly issued reactivation token and its
	// expiry on the user, replacing any previous token.
	SetActivityToken(ctx context.Context, userID, token string, expiresAt time.Time) error

	// RedeemActivityToken atomically clears the token and resets both
	// activity timestamps for the user holding an unexpired token equal
	// to the input. Returns ErrTokenInvalid when no such user exists,
	// whether the token is wrong or merely expired.
	RedeemActivityToken(ctx context.Context, token string, now time.Time) (*model.User, error)

	// TouchNotificationCheck advances lastNotificationCheckAt.
	TouchNotificationCheck(ctx context.Context, userID string, at time.Time) error

	// MarkVaultRevealed records episode completion on the user.
	MarkVaultRevealed(ctx context.Context, userID string, at time.Time) error
}

// ContactStore is the slice of trusted-contact persistence the core needs.
type ContactStore interface {
	FindByUser(ctx context.Context, userID string) ([]*model.TrustedContact, error)
	FindVerifiedByUser(ctx context.Context, userID string) ([]*model.TrustedContact, error)

	// MarkNotified sets isNotified and notifiedAt. The transition is
	// monotonic; implementations must never unset it.
	MarkNotified(ctx context.Context, contactID string, at time.Time) error
}

// WarningSender delivers outbound mail. Implementations report delivery
// failure; the core never advances bookkeeping past a failed send.
type WarningSender interface {
	SendWarning(ctx context.Context, user *model.User, tier model.WarningTier, daysInactive int, token string) error
	SendDisclosure(ctx context.Context, contact *model.TrustedContact, user *model.User, accessRef string) error
}

// ActivityLogger appends audit entries for a user.
type ActivityLogger interface {
	Record(ctx context.Context, userID string, kind model.ActivityKind, description string) error
}

// AccessSigner mints the contact-specific vault access reference included
// in disclosure mail.
type AccessSigner interface {
	AccessReference(contactID string) string
}

// RunLock guards the batch entry point against overlapping runs. Acquire
// returns ok=false without error when another run holds the lock.
type RunLock interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}
