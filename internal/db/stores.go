package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dastarkhan/internal/availability"
	"dastarkhan/internal/localtime"
	"dastarkhan/internal/model"

	"github.com/google/uuid"
)

const storeColumns = `id, public_id, name, timezone, operational_status,
	is_accepting_orders, status_version, is_active, created_at, updated_at`

// CreateStore inserts a store. A missing public id or timezone gets a
// generated UUID and the default zone.
func (db *DB) CreateStore(ctx context.Context, store *model.Store) error {
	if store.PublicID == "" {
		store.PublicID = uuid.NewString()
	}
	if store.Timezone == "" {
		store.Timezone = localtime.DefaultTimezone
	}
	if store.OperationalStatus == "" {
		store.OperationalStatus = model.StatusClosed
	}

	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO stores (public_id, name, timezone, operational_status,
			is_accepting_orders, status_version, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		store.PublicID, store.Name, store.Timezone, store.OperationalStatus,
		store.OperationalStatus.AcceptingOrders(), store.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	store.ID, err = res.LastInsertId()
	return err
}

// GetByID returns a store by internal id.
func (db *DB) GetByID(ctx context.Context, storeID int64) (*model.Store, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE id = ?`, storeID)
	return scanStore(row)
}

// GetByPublicID returns a store by its public UUID.
func (db *DB) GetByPublicID(ctx context.Context, publicID string) (*model.Store, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE public_id = ?`, publicID)
	return scanStore(row)
}

func scanStore(row *sql.Row) (*model.Store, error) {
	var s model.Store
	err := row.Scan(
		&s.ID, &s.PublicID, &s.Name, &s.Timezone, &s.OperationalStatus,
		&s.IsAcceptingOrders, &s.StatusVersion, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, availability.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return &s, nil
}

// UpdateStatusVersioned writes the status only if status_version still
// matches, bumping the version on success. A concurrent writer that advanced
// the version first yields ErrVersionConflict.
func (db *DB) UpdateStatusVersioned(ctx context.Context, storeID, version int64, status model.Status) error {
	res, err := db.ExecContext(ctx, `
		UPDATE stores
		SET operational_status = ?, is_accepting_orders = ?,
		    status_version = status_version + 1, updated_at = ?
		WHERE id = ? AND status_version = ?`,
		status, status.AcceptingOrders(), time.Now(), storeID, version,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := db.GetByID(ctx, storeID); err != nil {
			return err
		}
		return availability.ErrVersionConflict
	}
	return nil
}

// SetStatus writes the status unconditionally, still bumping the version so
// in-flight conditional updates lose cleanly.
func (db *DB) SetStatus(ctx context.Context, storeID int64, status model.Status) error {
	res, err := db.ExecContext(ctx, `
		UPDATE stores
		SET operational_status = ?, is_accepting_orders = ?,
		    status_version = status_version + 1, updated_at = ?
		WHERE id = ?`,
		status, status.AcceptingOrders(), time.Now(), storeID,
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return availability.ErrStoreNotFound
	}
	return nil
}
