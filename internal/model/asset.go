package model

import "time"

// Asset categories mirror what the UI offers; free-form values are allowed.
const (
	AssetCategoryFinancial = "financial"
	AssetCategoryDigital   = "digital"
	AssetCategoryProperty  = "property"
	AssetCategoryDocument  = "document"
	AssetCategoryOther     = "other"
)

// Asset is a single vault entry. The value is encrypted at rest and only
// decrypted for the owner, or for a verified contact after disclosure.
type Asset struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Category string `json:"category"`

	// EncryptedValue is the AES-GCM sealed secret (account numbers,
	// credentials, locations). Never logged or returned raw.
	EncryptedValue []byte `json:"-"`

	Notes string   `json:"notes,omitempty"`
	Tags  []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
