// Package db implements SQLite persistence for stores, operating hours,
// availability overrides and the status log.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the availability service.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Stores
		`CREATE TABLE IF NOT EXISTS stores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			public_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			timezone TEXT NOT NULL DEFAULT 'Asia/Kolkata',
			operational_status TEXT NOT NULL DEFAULT 'CLOSED',
			is_accepting_orders BOOLEAN NOT NULL DEFAULT 0,
			status_version INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Weekly operating hours, one row per (store, weekday)
		`CREATE TABLE IF NOT EXISTS store_operating_hours (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			store_id INTEGER NOT NULL,
			weekday INTEGER NOT NULL,
			is_open BOOLEAN NOT NULL DEFAULT 0,
			is_24_hours BOOLEAN NOT NULL DEFAULT 0,
			is_closed_day BOOLEAN NOT NULL DEFAULT 0,
			slot1_start TEXT,
			slot1_end TEXT,
			slot2_start TEXT,
			slot2_end TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(store_id, weekday),
			FOREIGN KEY (store_id) REFERENCES stores(id)
		)`,

		// Availability overrides, one row per store
		`CREATE TABLE IF NOT EXISTS availability_overrides (
			store_id INTEGER PRIMARY KEY,
			manual_close_until DATETIME,
			block_auto_open BOOLEAN NOT NULL DEFAULT 0,
			restriction_type TEXT NOT NULL DEFAULT '',
			auto_open_from_schedule BOOLEAN NOT NULL DEFAULT 1,
			last_toggled_by TEXT,
			last_toggled_at DATETIME,
			last_toggle_origin TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (store_id) REFERENCES stores(id)
		)`,

		// Append-only status transition log
		`CREATE TABLE IF NOT EXISTS status_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			store_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			restriction_type TEXT NOT NULL DEFAULT '',
			reason TEXT,
			actor TEXT NOT NULL,
			origin TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (store_id) REFERENCES stores(id)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_stores_active ON stores(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_hours_store_weekday ON store_operating_hours(store_id, weekday)`,
		`CREATE INDEX IF NOT EXISTS idx_status_logs_store ON status_logs(store_id, created_at)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
