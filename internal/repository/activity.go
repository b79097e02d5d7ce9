package repository

import (
	"context"
	"fmt"

	"github.com/lifevault/lifevault/internal/model"
)

// InsertActivityLogs appends a batch of activity entries. Used by the
// activity stream worker; single entries go through the same path.
func (r *Repository) InsertActivityLogs(ctx context.Context, entries []*model.ActivityLog) error {
	if len(entries) == 0 {
		return nil
	}

	batch := `
		INSERT INTO activity_logs (id, user_id, kind, description, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin activity batch: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, entry := range entries {
		if _, err := tx.Exec(ctx, batch,
			entry.ID,
			entry.UserID,
			entry.Kind,
			entry.Description,
			entry.IPAddress,
			entry.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert activity log: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit activity batch: %w", err)
	}
	return nil
}

// ListActivityLogs returns a page of a user's activity, newest first.
func (r *Repository) ListActivityLogs(ctx context.Context, userID string, limit, offset int) ([]*model.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, user_id, kind, description, ip_address, created_at
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []*model.ActivityLog
	for rows.Next() {
		var entry model.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Kind,
			&entry.Description,
			&entry.IPAddress,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity logs: %w", err)
	}

	return entries, nil
}
