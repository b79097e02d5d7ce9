// Command seed-demo-user creates a demo account with a few vault assets
// and one trusted contact, for local development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/lifevault/lifevault/internal/auth"
	"github.com/lifevault/lifevault/internal/model"
	"github.com/lifevault/lifevault/internal/repository"
	"github.com/lifevault/lifevault/internal/vault"
)

type output struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	ContactID string `json:"contact_id"`
	Assets    int    `json:"assets"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		encKey      = flag.String("encryption-key", os.Getenv("VAULT_ENCRYPTION_KEY"), "Hex-encoded 32-byte vault encryption key")
		email       = flag.String("email", "demo@lifevault.local", "Demo user email")
		password    = flag.String("password", "demo-password-1", "Demo user password")
		periodDays  = flag.Int("period-days", model.DefaultInactivityPeriodDays, "Inactivity period in days")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if !model.ValidInactivityPeriod(*periodDays) {
		fmt.Fprintf(os.Stderr, "period-days must be between %d and %d\n", model.MinInactivityPeriodDays, model.MaxInactivityPeriodDays)
		os.Exit(1)
	}

	cipher, err := vault.NewCipher(*encKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid encryption key:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repository.Migrate(ctx, *databaseURL); err != nil {
		fmt.Fprintln(os.Stderr, "run migrations:", err)
		os.Exit(1)
	}

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:                      uuid.New().String(),
		Email:                   *email,
		PasswordHash:            hash,
		FirstName:               "Demo",
		LastName:                "User",
		LastActivityAt:          now,
		LastNotificationCheckAt: now,
		IsActive:                true,
		InactivityPeriodDays:    *periodDays,
		CreatedAt:               now,
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fmt.Fprintln(os.Stderr, "user already exists:", *email)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "create user:", err)
		os.Exit(1)
	}

	assets := []struct {
		name, category, value, notes string
		tags                         []string
	}{
		{"Checking account", model.AssetCategoryFinancial, "IBAN DE02 1203 0000 0000 2020 51", "Primary salary account", []string{"bank", "primary"}},
		{"Password manager", model.AssetCategoryDigital, "master passphrase: correct-horse-battery-staple", "1Password family vault", []string{"credentials"}},
		{"Safe deposit box", model.AssetCategoryProperty, "Box 41, Main Street branch, key in desk drawer", "", nil},
	}

	for _, a := range assets {
		sealed, err := cipher.Encrypt(a.value)
		if err != nil {
			fmt.Fprintln(os.Stderr, "encrypt asset:", err)
			os.Exit(1)
		}
		asset := &model.Asset{
			ID:             uuid.New().String(),
			UserID:         user.ID,
			Name:           a.name,
			Category:       a.category,
			EncryptedValue: sealed,
			Notes:          a.notes,
			Tags:           a.tags,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repo.CreateAsset(ctx, asset); err != nil {
			fmt.Fprintln(os.Stderr, "create asset:", err)
			os.Exit(1)
		}
	}

	contact := &model.TrustedContact{
		ID:                uuid.New().String(),
		UserID:            user.ID,
		Name:              "Jordan Demo",
		Email:             "jordan@lifevault.local",
		Relationship:      "sibling",
		VerificationToken: uuid.New().String(),
		CreatedAt:         now,
	}
	if err := repo.CreateContact(ctx, contact); err != nil {
		fmt.Fprintln(os.Stderr, "create contact:", err)
		os.Exit(1)
	}
	// Pre-verify so disclosure can be exercised right away.
	if _, err := repo.VerifyContact(ctx, contact.VerificationToken, now); err != nil {
		fmt.Fprintln(os.Stderr, "verify contact:", err)
		os.Exit(1)
	}

	out := output{
		UserID:    user.ID,
		Email:     user.Email,
		Password:  *password,
		ContactID: contact.ID,
		Assets:    len(assets),
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Demo user created")
	fmt.Println("  user id: ", out.UserID)
	fmt.Println("  email:   ", out.Email)
	fmt.Println("  password:", out.Password)
	fmt.Println("  contact: ", out.ContactID)
	fmt.Println("  assets:  ", out.Assets)
}
