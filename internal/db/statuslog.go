package db

import (
	"context"
	"fmt"
	"time"

	"dastarkhan/internal/model"
)

// AppendStatusLog inserts an immutable status transition record.
func (db *DB) AppendStatusLog(ctx context.Context, entry model.StatusLogEntry) error {
	at := entry.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO status_logs (store_id, action, restriction_type, reason, actor, origin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.StoreID, string(entry.Action), string(entry.RestrictionType),
		entry.Reason, entry.Actor, string(entry.Origin), at,
	)
	if err != nil {
		return fmt.Errorf("append status log: %w", err)
	}
	return nil
}

// ListStatusLogs returns transition records for a store, newest first.
func (db *DB) ListStatusLogs(ctx context.Context, storeID int64, limit int) ([]model.StatusLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, store_id, action, restriction_type, reason, actor, origin, created_at
		FROM status_logs
		WHERE store_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		storeID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.StatusLogEntry
	for rows.Next() {
		var e model.StatusLogEntry
		if err := rows.Scan(&e.ID, &e.StoreID, &e.Action, &e.RestrictionType, &e.Reason, &e.Actor, &e.Origin, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteOldStatusLogs removes transition records older than the duration and
// returns how many were deleted.
func (db *DB) DeleteOldStatusLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := db.ExecContext(ctx,
		"DELETE FROM status_logs WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
