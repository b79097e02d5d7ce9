// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/lifevault/lifevault/internal/model"
)

// SignupRequest represents the request body for creating an account.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SessionResponse is returned by signup and login.
type SessionResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	PhoneNumber          string     `json:"phone_number,omitempty"`
	LastActivityAt       time.Time  `json:"last_activity_at"`
	InactivityPeriodDays int        `json:"inactivity_period_days"`
	VaultRevealedAt      *time.Time `json:"vault_revealed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// UpdateProfileRequest represents the request body for profile updates.
type UpdateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// UpdateInactivityPeriodRequest configures the silence threshold.
type UpdateInactivityPeriodRequest struct {
	InactivityPeriodDays int `json:"inactivity_period_days"`
}

// CreateAssetRequest represents the request body for adding an asset.
type CreateAssetRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Value    string   `json:"value"`
	Notes    string   `json:"notes,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// UpdateAssetRequest represents the request body for updating an asset.
// Nil fields are left unchanged.
type UpdateAssetRequest struct {
	Name     *string   `json:"name,omitempty"`
	Category *string   `json:"category,omitempty"`
	Value    *string   `json:"value,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// AssetResponse represents an asset in API responses. The stored value is
// only included when the caller is entitled to read it.
type AssetResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Value     string    `json:"value,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateContactRequest represents the request body for adding a trusted contact.
type CreateContactRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Relationship string `json:"relationship"`
}

// ContactResponse represents a trusted contact in API responses.
type ContactResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	Relationship string     `json:"relationship"`
	IsVerified   bool       `json:"is_verified"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	IsNotified   bool       `json:"is_notified"`
	NotifiedAt   *time.Time `json:"notified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ActivityLogResponse represents an audit entry in API responses.
type ActivityLogResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityLogListResponse is a page of audit entries.
type ActivityLogListResponse struct {
	Data   []ActivityLogResponse `json:"data"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// VaultAccessResponse is returned to a verified contact after disclosure.
type VaultAccessResponse struct {
	OwnerName  string          `json:"owner_name"`
	OwnerEmail string          `json:"owner_email"`
	RevealedAt *time.Time      `json:"revealed_at,omitempty"`
	Assets     []AssetResponse `json:"assets"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:                   user.ID,
		Email:                user.Email,
		FirstName:            user.FirstName,
		LastName:             user.LastName,
		PhoneNumber:          user.PhoneNumber,
		LastActivityAt:       user.LastActivityAt,
		InactivityPeriodDays: user.InactivityPeriodDays,
		VaultRevealedAt:      user.VaultRevealedAt,
		CreatedAt:            user.CreatedAt,
	}
}

// ToAssetResponse converts an Asset model to AssetResponse DTO.
// The decrypted value is supplied by the caller; pass "" to omit it.
func ToAssetResponse(asset *model.Asset, value string) *AssetResponse {
	return &AssetResponse{
		ID:        asset.ID,
		Name:      asset.Name,
		Category:  asset.Category,
		Value:     value,
		Notes:     asset.Notes,
		Tags:      asset.Tags,
		CreatedAt: asset.CreatedAt,
		UpdatedAt: asset.UpdatedAt,
	}
}

// ToContactResponse converts a TrustedContact model to ContactResponse DTO.
func ToContactResponse(contact *model.TrustedContact) *ContactResponse {
	return &ContactResponse{
		ID:           contact.ID,
		Name:         contact.Name,
		Email:        contact.Email,
		PhoneNumber:  contact.PhoneNumber,
		Relationship: contact.Relationship,
		IsVerified:   contact.IsVerified,
		VerifiedAt:   contact.VerifiedAt,
		IsNotified:   contact.IsNotified,
		NotifiedAt:   contact.NotifiedAt,
		CreatedAt:    contact.CreatedAt,
	}
}

// ToActivityLogResponse converts an ActivityLog model to its DTO.
func ToActivityLogResponse(entry *model.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:          entry.ID,
		Kind:        string(entry.Kind),
		Description: entry.Description,
		IPAddress:   entry.IPAddress,
		CreatedAt:   entry.CreatedAt,
	}
}
