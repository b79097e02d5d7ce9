// Package model defines domain entities for the application.
package model

import "time"

// Bounds for the user-configurable inactivity period.
const (
	MinInactivityPeriodDays     = 30
	MaxInactivityPeriodDays     = 730
	DefaultInactivityPeriodDays = 180
)

// User represents a vault owner being watched by the inactivity evaluator.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PhoneNumber  string `json:"phone_number,omitempty"`

	// LastActivityAt is the start of the current silence episode. It is
	// reset only by login or by a successful one-click reactivation.
	LastActivityAt          time.Time `json:"last_activity_at"`
	LastNotificationCheckAt time.Time `json:"last_notification_check_at"`

	// IsActive gates evaluation entirely; disabled accounts are never
	// warned or disclosed.
	IsActive             bool `json:"is_active"`
	InactivityPeriodDays int  `json:"inactivity_period_days"`

	// ActivityToken is the single-use reactivation secret, nil when no
	// token is outstanding. At most one unexpired token exists per user.
	ActivityToken        *string    `json:"-"`
	ActivityTokenExpiry  *time.Time `json:"-"`

	// VaultRevealedAt marks episode completion for users whose vault was
	// disclosed. Contact NotifiedAt flags remain the primary marker; this
	// timestamp covers the zero-verified-contact case.
	VaultRevealedAt *time.Time `json:"vault_revealed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// FullName returns the user's display name for outbound messages.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ValidInactivityPeriod reports whether a configured period is in bounds.
func ValidInactivityPeriod(days int) bool {
	return days >= MinInactivityPeriodDays && days <= MaxInactivityPeriodDays
}
