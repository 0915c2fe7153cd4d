package model

import "time"

// Slot is a contiguous open interval within a day, "HH:MM" bounds.
// A slot wraps past midnight when End <= Start.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Wraps reports whether the slot spans into the next calendar day.
func (s Slot) Wraps() bool {
	return s.End <= s.Start
}

// DayHours describes one weekday of a store's weekly schedule.
type DayHours struct {
	Open      bool   `json:"open"`
	Is24Hours bool   `json:"is_24_hours"`
	Slots     []Slot `json:"slots"` // up to two
}

// OperatingHours is the weekly operating-hours record for a store.
// Days is indexed by time.Weekday (0=Sunday..6=Saturday). ClosedDays are
// weekdays blacked out regardless of the day's open flag.
type OperatingHours struct {
	StoreID    int64                 `json:"store_id"`
	Days       [7]DayHours           `json:"days"`
	ClosedDays map[time.Weekday]bool `json:"closed_days"`
}

// Day returns the schedule for a weekday.
func (h *OperatingHours) Day(d time.Weekday) DayHours {
	return h.Days[int(d)]
}

// IsClosedDay reports whether a weekday is explicitly blacked out.
func (h *OperatingHours) IsClosedDay(d time.Weekday) bool {
	return h.ClosedDays[d]
}
