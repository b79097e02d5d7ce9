package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/lifevault/lifevault/internal/model"
)

// ErrAssetNotFound is returned when an asset does not exist.
var ErrAssetNotFound = errors.New("asset not found")

const assetColumns = `
	id, user_id, name, category, encrypted_value, notes, tags,
	created_at, updated_at
`

// CreateAsset inserts a new vault asset.
func (r *Repository) CreateAsset(ctx context.Context, asset *model.Asset) error {
	query := `
		INSERT INTO assets (
			id, user_id, name, category, encrypted_value, notes, tags,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		asset.ID,
		asset.UserID,
		asset.Name,
		asset.Category,
		asset.EncryptedValue,
		asset.Notes,
		pq.Array(asset.Tags),
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetAssetByID retrieves an asset owned by the given user.
func (r *Repository) GetAssetByID(ctx context.Context, userID, assetID string) (*model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 AND user_id = $2`
	return scanAsset(r.pool.QueryRow(ctx, query, assetID, userID))
}

// ListAssetsByUser returns all of a user's assets.
func (r *Repository) ListAssetsByUser(ctx context.Context, userID string) ([]*model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*model.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}

// UpdateAsset updates a user's asset in place.
func (r *Repository) UpdateAsset(ctx context.Context, asset *model.Asset, at time.Time) error {
	query := `
		UPDATE assets
		SET name = $3, category = $4, encrypted_value = $5, notes = $6,
		    tags = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query,
		asset.ID,
		asset.UserID,
		asset.Name,
		asset.Category,
		asset.EncryptedValue,
		asset.Notes,
		pq.Array(asset.Tags),
		at,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// DeleteAsset removes an asset owned by the given user.
func (r *Repository) DeleteAsset(ctx context.Context, userID, assetID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1 AND user_id = $2`, assetID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func scanAsset(row rowScanner) (*model.Asset, error) {
	var asset model.Asset
	err := row.Scan(
		&asset.ID,
		&asset.UserID,
		&asset.Name,
		&asset.Category,
		&asset.EncryptedValue,
		&asset.Notes,
		pq.Array(&asset.Tags),
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}
	return &asset, nil
}
