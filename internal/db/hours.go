package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dastarkhan/internal/model"
)

// DayHoursRow is the persisted form of one weekday of a store's schedule.
type DayHoursRow struct {
	StoreID     int64
	Weekday     time.Weekday
	IsOpen      bool
	Is24Hours   bool
	IsClosedDay bool
	Slot1Start  string
	Slot1End    string
	Slot2Start  string
	Slot2End    string
}

// GetOperatingHours loads the weekly operating hours for a store. A store
// with no configured rows yields (nil, nil).
func (db *DB) GetOperatingHours(ctx context.Context, storeID int64) (*model.OperatingHours, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT weekday, is_open, is_24_hours, is_closed_day,
		       slot1_start, slot1_end, slot2_start, slot2_end
		FROM store_operating_hours
		WHERE store_id = ?
		ORDER BY weekday`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query operating hours: %w", err)
	}
	defer rows.Close()

	hours := &model.OperatingHours{
		StoreID:    storeID,
		ClosedDays: make(map[time.Weekday]bool),
	}

	found := false
	for rows.Next() {
		var weekday int
		var isOpen, is24, isClosed bool
		var s1s, s1e, s2s, s2e sql.NullString
		if err := rows.Scan(&weekday, &isOpen, &is24, &isClosed, &s1s, &s1e, &s2s, &s2e); err != nil {
			return nil, fmt.Errorf("scan operating hours: %w", err)
		}
		if weekday < 0 || weekday > 6 {
			continue
		}
		found = true

		day := model.DayHours{Open: isOpen, Is24Hours: is24}
		if s1s.Valid && s1e.Valid && s1s.String != "" {
			day.Slots = append(day.Slots, model.Slot{Start: s1s.String, End: s1e.String})
		}
		if s2s.Valid && s2e.Valid && s2s.String != "" {
			day.Slots = append(day.Slots, model.Slot{Start: s2s.String, End: s2e.String})
		}
		hours.Days[weekday] = day
		if isClosed {
			hours.ClosedDays[time.Weekday(weekday)] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return hours, nil
}

// UpsertDayHours creates or replaces one weekday row of a store's schedule.
func (db *DB) UpsertDayHours(ctx context.Context, row DayHoursRow) error {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO store_operating_hours (
			store_id, weekday, is_open, is_24_hours, is_closed_day,
			slot1_start, slot1_end, slot2_start, slot2_end, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(store_id, weekday) DO UPDATE SET
			is_open = excluded.is_open,
			is_24_hours = excluded.is_24_hours,
			is_closed_day = excluded.is_closed_day,
			slot1_start = excluded.slot1_start,
			slot1_end = excluded.slot1_end,
			slot2_start = excluded.slot2_start,
			slot2_end = excluded.slot2_end,
			updated_at = excluded.updated_at`,
		row.StoreID, int(row.Weekday), row.IsOpen, row.Is24Hours, row.IsClosedDay,
		nullable(row.Slot1Start), nullable(row.Slot1End),
		nullable(row.Slot2Start), nullable(row.Slot2End), now, now,
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
