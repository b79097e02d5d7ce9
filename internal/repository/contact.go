package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lifevault/lifevault/internal/model"
)

// ErrContactNotFound is returned when a trusted contact does not exist.
var ErrContactNotFound = errors.New("trusted contact not found")

const contactColumns = `
	id, user_id, name, email, phone_number, relationship,
	verification_token, is_verified, verified_at,
	is_notified, notified_at, created_at
`

// CreateContact inserts a new trusted contact.
func (r *Repository) CreateContact(ctx context.Context, contact *model.TrustedContact) error {
	query := `
		INSERT INTO trusted_contacts (
			id, user_id, name, email, phone_number, relationship,
			verification_token, is_verified, is_notified, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		contact.ID,
		contact.UserID,
		contact.Name,
		contact.Email,
		contact.PhoneNumber,
		contact.Relationship,
		contact.VerificationToken,
		contact.IsVerified,
		contact.IsNotified,
		contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// GetContactByID retrieves a trusted contact by ID.
func (r *Repository) GetContactByID(ctx context.Context, id string) (*model.TrustedContact, error) {
	query := `SELECT ` + contactColumns + ` FROM trusted_contacts WHERE id = $1`
	return r.scanContact(r.pool.QueryRow(ctx, query, id))
}

// FindByUser returns all trusted contacts of a user.
func (r *Repository) FindByUser(ctx context.Context, userID string) ([]*model.TrustedContact, error) {
	query := `SELECT ` + contactColumns + ` FROM trusted_contacts WHERE user_id = $1 ORDER BY created_at`
	return r.queryContacts(ctx, query, userID)
}

// FindVerifiedByUser returns the user's contacts eligible for disclosure.
func (r *Repository) FindVerifiedByUser(ctx context.Context, userID string) ([]*model.TrustedContact, error) {
	query := `SELECT ` + contactColumns + ` FROM trusted_contacts WHERE user_id = $1 AND is_verified ORDER BY created_at`
	return r.queryContacts(ctx, query, userID)
}

// VerifyContact marks the contact holding the verification token as
// verified. Verification is idempotent: an already verified contact keeps
// its original verified_at.
func (r *Repository) VerifyContact(ctx context.Context, token string, at time.Time) (*model.TrustedContact, error) {
	query := `
		UPDATE trusted_contacts
		SET is_verified = TRUE,
		    verified_at = COALESCE(verified_at, $2)
		WHERE verification_token = $1
		RETURNING ` + contactColumns

	return r.scanContact(r.pool.QueryRow(ctx, query, token, at))
}

// MarkNotified sets the monotonic notified flag. notified_at is written
// only on the first transition.
func (r *Repository) MarkNotified(ctx context.Context, contactID string, at time.Time) error {
	query := `
		UPDATE trusted_contacts
		SET is_notified = TRUE,
		    notified_at = COALESCE(notified_at, $2)
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, contactID, at)
	if err != nil {
		return fmt.Errorf("failed to mark contact notified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

// DeleteContact removes a contact owned by the given user.
func (r *Repository) DeleteContact(ctx context.Context, userID, contactID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trusted_contacts WHERE id = $1 AND user_id = $2`, contactID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

func (r *Repository) queryContacts(ctx context.Context, query string, args ...any) ([]*model.TrustedContact, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*model.TrustedContact
	for rows.Next() {
		contact, err := scanContactRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, nil
}

func (r *Repository) scanContact(row rowScanner) (*model.TrustedContact, error) {
	contact, err := scanContactRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

func scanContactRow(row rowScanner) (*model.TrustedContact, error) {
	var contact model.TrustedContact
	err := row.Scan(
		&contact.ID,
		&contact.UserID,
		&contact.Name,
		&contact.Email,
		&contact.PhoneNumber,
		&contact.Relationship,
		&contact.VerificationToken,
		&contact.IsVerified,
		&contact.VerifiedAt,
		&contact.IsNotified,
		&contact.NotifiedAt,
		&contact.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}
