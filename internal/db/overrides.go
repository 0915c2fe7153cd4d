package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dastarkhan/internal/model"
)

// GetOverride returns the override row for a store, creating the neutral row
// lazily on first use. The row is mutated in place for the store's lifetime
// and never deleted.
func (db *DB) GetOverride(ctx context.Context, storeID int64) (*model.AvailabilityOverride, error) {
	ov, err := db.getOverride(ctx, storeID)
	if err == nil {
		return ov, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now()
	_, err = db.ExecContext(ctx, `
		INSERT INTO availability_overrides (store_id, auto_open_from_schedule, created_at, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(store_id) DO NOTHING`,
		storeID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create override: %w", err)
	}
	return db.getOverride(ctx, storeID)
}

func (db *DB) getOverride(ctx context.Context, storeID int64) (*model.AvailabilityOverride, error) {
	var o model.AvailabilityOverride
	var closeUntil, toggledAt sql.NullTime
	var toggledBy, origin sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT store_id, manual_close_until, block_auto_open, restriction_type,
		       auto_open_from_schedule, last_toggled_by, last_toggled_at,
		       last_toggle_origin, updated_at
		FROM availability_overrides
		WHERE store_id = ?`,
		storeID,
	).Scan(
		&o.StoreID, &closeUntil, &o.BlockAutoOpen, &o.RestrictionType,
		&o.AutoOpenFromSchedule, &toggledBy, &toggledAt, &origin, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if closeUntil.Valid {
		t := closeUntil.Time
		o.ManualCloseUntil = &t
	}
	if toggledBy.Valid {
		o.LastToggledBy = toggledBy.String
	}
	if toggledAt.Valid {
		t := toggledAt.Time
		o.LastToggledAt = &t
	}
	if origin.Valid {
		o.LastToggleOrigin = model.ToggleOrigin(origin.String)
	}
	return &o, nil
}

// SaveOverride writes the override row back.
func (db *DB) SaveOverride(ctx context.Context, o *model.AvailabilityOverride) error {
	if o == nil {
		return fmt.Errorf("override is nil")
	}

	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO availability_overrides (
			store_id, manual_close_until, block_auto_open, restriction_type,
			auto_open_from_schedule, last_toggled_by, last_toggled_at,
			last_toggle_origin, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(store_id) DO UPDATE SET
			manual_close_until = excluded.manual_close_until,
			block_auto_open = excluded.block_auto_open,
			restriction_type = excluded.restriction_type,
			auto_open_from_schedule = excluded.auto_open_from_schedule,
			last_toggled_by = excluded.last_toggled_by,
			last_toggled_at = excluded.last_toggled_at,
			last_toggle_origin = excluded.last_toggle_origin,
			updated_at = excluded.updated_at`,
		o.StoreID, timePtr(o.ManualCloseUntil), o.BlockAutoOpen, string(o.RestrictionType),
		o.AutoOpenFromSchedule, nullable(o.LastToggledBy), timePtr(o.LastToggledAt),
		nullable(string(o.LastToggleOrigin)), now, now,
	)
	return err
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
