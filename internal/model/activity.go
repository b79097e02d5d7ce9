package model

import "time"

// ActivityKind is the closed set of activity-log entry kinds.
type ActivityKind string

const (
	ActivityLogin           ActivityKind = "LOGIN"
	ActivitySettingsUpdated ActivityKind = "SETTINGS_UPDATED"
	ActivityAssetAdded      ActivityKind = "ASSET_ADDED"
	ActivityAssetUpdated    ActivityKind = "ASSET_UPDATED"
	ActivityAssetDeleted    ActivityKind = "ASSET_DELETED"
	ActivityContactAdded    ActivityKind = "CONTACT_ADDED"
	ActivityContactRemoved  ActivityKind = "CONTACT_REMOVED"
	ActivityContactVerified ActivityKind = "CONTACT_VERIFIED"
	ActivityInactivityCheck ActivityKind = "INACTIVITY_CHECK"
	ActivityVaultRevealed   ActivityKind = "VAULT_REVEALED"
)

// IsValid reports whether the kind is one of the known activity kinds.
func (k ActivityKind) IsValid() bool {
	switch k {
	case ActivityLogin, ActivitySettingsUpdated,
		ActivityAssetAdded, ActivityAssetUpdated, ActivityAssetDeleted,
		ActivityContactAdded, ActivityContactRemoved, ActivityContactVerified,
		ActivityInactivityCheck, ActivityVaultRevealed:
		return true
	}
	return false
}

// ActivityLog is an append-only audit record of what happened to an account.
type ActivityLog struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Kind        ActivityKind `json:"kind"`
	Description string       `json:"description"`
	IPAddress   string       `json:"ip_address,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
