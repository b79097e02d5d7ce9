package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lifevault/lifevault/internal/inactivity"
	"github.com/lifevault/lifevault/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `
	id, email, password_hash, first_name, last_name, phone_number,
	last_activity_at, last_notification_check_at, is_active,
	inactivity_period_days, activity_token, activity_token_expiry,
	vault_revealed_at, created_at
`

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, phone_number,
			last_activity_at, last_notification_check_at, is_active,
			inactivity_period_days, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.LastActivityAt,
		user.LastNotificationCheckAt,
		user.IsActive,
		user.InactivityPeriodDays,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id), "get user by ID")
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email), "get user by email")
}

// ListActiveUsers returns every user eligible for inactivity evaluation.
func (r *Repository) ListActiveUsers(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// UpdateProfile updates the user's profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, userID, firstName, lastName, phoneNumber string) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, phone_number = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, firstName, lastName, phoneNumber)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the user's password hash.
func (r *Repository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateInactivityPeriod changes the user's configured inactivity period.
func (r *Repository) UpdateInactivityPeriod(ctx context.Context, userID string, days int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET inactivity_period_days = $2 WHERE id = $1`, userID, days)
	if err != nil {
		return fmt.Errorf("failed to update inactivity period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// TouchActivity resets the user's silence clock, starting a new episode.
// Clears the vault-revealed marker so a reactivated user is watched again.
func (r *Repository) TouchActivity(ctx context.Context, userID string, at time.Time) error {
	query := `
		UPDATE users
		SET last_activity_at = $2, vault_revealed_at = NULL
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, at)
	if err != nil {
		return fmt.Errorf("failed to touch activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// TouchNotificationCheck advances lastNotificationCheckAt.
func (r *Repository) TouchNotificationCheck(ctx context.Context, userID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_notification_check_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to touch notification check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// MarkVaultRevealed records episode completion on the user.
func (r *Repository) MarkVaultRevealed(ctx context.Context, userID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET vault_revealed_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to mark vault revealed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActivityToken stores a reactivation token and its expiry, replacing
// any previously issued token.
func (r *Repository) SetActivityToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET activity_token = $2, activity_token_expiry = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set activity token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RedeemActivityToken consumes an unexpired reactivation token in a single
// conditional update: the token is cleared, both activity timestamps are
// reset, and any vault-revealed marker is lifted. Returns
// inactivity.ErrTokenInvalid whether the token is unknown or expired, so
// callers cannot distinguish the two.
func (r *Repository) RedeemActivityToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	query := `
		UPDATE users
		SET last_activity_at = $2,
		    last_notification_check_at = $2,
		    activity_token = NULL,
		    activity_token_expiry = NULL,
		    vault_revealed_at = NULL
		WHERE activity_token = $1
		  AND activity_token_expiry > $2
		  AND is_active
		RETURNING ` + userColumns

	user, err := r.scanUser(r.pool.QueryRow(ctx, query, token, now), "redeem activity token")
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, inactivity.ErrTokenInvalid
		}
		return nil, err
	}
	return user, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for user scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanUser(row rowScanner, op string) (*model.User, error) {
	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return user, nil
}

func scanUserRow(row rowScanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.LastActivityAt,
		&user.LastNotificationCheckAt,
		&user.IsActive,
		&user.InactivityPeriodDays,
		&user.ActivityToken,
		&user.ActivityTokenExpiry,
		&user.VaultRevealedAt,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
