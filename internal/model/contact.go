package model

import "time"

// TrustedContact is a person designated to receive the vault disclosure.
// A contact becomes eligible for disclosure only after verifying their
// email address.
type TrustedContact struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Relationship string `json:"relationship"`

	// VerificationToken is sent to the contact when they are added.
	VerificationToken string     `json:"-"`
	IsVerified        bool       `json:"is_verified"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`

	// IsNotified is monotonic: once the disclosure engine has notified a
	// contact it is never reset, and NotifiedAt is set exactly once.
	IsNotified bool       `json:"is_notified"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
