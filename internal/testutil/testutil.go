// Package testutil provides helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lifevault/lifevault/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730730

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncateAll empties every application table. Migrations must have run.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		TRUNCATE activity_logs, assets, trusted_contacts, users CASCADE
	`)
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates an active user whose silence episode started now.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:                      uuid.New().String(),
		Email:                   email,
		PasswordHash:            "$argon2id$v=19$m=65536,t=1,p=4$dGVzdHNhbHQ$dGVzdGhhc2g",
		FirstName:               "Test",
		LastName:                "User",
		LastActivityAt:          now,
		LastNotificationCheckAt: now,
		IsActive:                true,
		InactivityPeriodDays:    model.DefaultInactivityPeriodDays,
		CreatedAt:               now,
	}
}

// NewTestContact creates an unverified trusted contact for the user.
func NewTestContact(t testing.TB, userID, email string) *model.TrustedContact {
	t.Helper()
	now := time.Now().UTC()
	return &model.TrustedContact{
		ID:                uuid.New().String(),
		UserID:            userID,
		Name:              "Test Contact",
		Email:             email,
		Relationship:      "friend",
		VerificationToken: uuid.New().String(),
		CreatedAt:         now,
	}
}

// NewTestAsset creates an asset with a pre-sealed placeholder value.
func NewTestAsset(t testing.TB, userID, name string) *model.Asset {
	t.Helper()
	now := time.Now().UTC()
	return &model.Asset{
		ID:             uuid.New().String(),
		UserID:         userID,
		Name:           name,
		Category:       model.AssetCategoryOther,
		EncryptedValue: []byte("sealed-placeholder"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@test.local", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
