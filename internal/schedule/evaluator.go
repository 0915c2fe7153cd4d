// Package schedule evaluates weekly operating hours against an instant.
package schedule

import (
	"time"

	"dastarkhan/internal/localtime"
	"dastarkhan/internal/model"
)

// SlotInfo is the HH:MM rendering of a slot for API responses.
type SlotInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// lookahead is how many days past today NextOpen scans.
const lookahead = 7

// IsWithinHours reports whether the store should be open "by schedule" at the
// given instant. Closed days always win over the day's open flag; a 24-hour
// day is open regardless of slots; an open day with no slots has no open
// interval. A slot whose end is not after its start wraps past midnight.
func IsWithinHours(hours *model.OperatingHours, at time.Time, timezone string) bool {
	if hours == nil {
		return false
	}

	weekday, minutes := localtime.Resolve(at, timezone)
	if hours.IsClosedDay(weekday) {
		return false
	}

	day := hours.Day(weekday)
	if !day.Open {
		return false
	}
	if day.Is24Hours {
		return true
	}

	for _, slot := range day.Slots {
		if slotCovers(slot, minutes) {
			return true
		}
	}
	return false
}

// slotCovers checks minutes-since-midnight against a slot, treating a wrapped
// slot [start, end+24h) as covering both its evening and morning portions.
func slotCovers(slot model.Slot, minutes int) bool {
	start, err := localtime.MinutesOf(slot.Start)
	if err != nil {
		return false
	}
	end, err := localtime.MinutesOf(slot.End)
	if err != nil {
		return false
	}
	if slot.Wraps() {
		return minutes >= start || minutes < end
	}
	return minutes >= start && minutes < end
}

// NextOpen returns the next instant strictly after from at which the schedule
// opens, scanning today and the following seven days. A 24-hour day never
// contributes an opening event. Returns false when no future opening exists.
func NextOpen(hours *model.OperatingHours, timezone string, from time.Time) (time.Time, bool) {
	if hours == nil {
		return time.Time{}, false
	}

	loc := localtime.Location(timezone)
	local := from.In(loc)

	for offset := 0; offset <= lookahead; offset++ {
		dayStart := time.Date(local.Year(), local.Month(), local.Day()+offset, 0, 0, 0, 0, loc)
		weekday := dayStart.Weekday()

		if hours.IsClosedDay(weekday) {
			continue
		}
		day := hours.Day(weekday)
		if !day.Open || day.Is24Hours {
			continue
		}

		if at, ok := firstSlotStart(day, dayStart, from, loc); ok {
			return at, true
		}
	}
	return time.Time{}, false
}

// firstSlotStart picks the earliest slot start on the day strictly after
// the reference instant.
func firstSlotStart(day model.DayHours, dayStart, after time.Time, loc *time.Location) (time.Time, bool) {
	var best time.Time
	for _, slot := range day.Slots {
		start, err := localtime.MinutesOf(slot.Start)
		if err != nil {
			continue
		}
		at := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), start/60, start%60, 0, 0, loc)
		if !at.After(after) {
			continue
		}
		if best.IsZero() || at.Before(best) {
			best = at
		}
	}
	if best.IsZero() {
		return time.Time{}, false
	}
	return best, true
}

// NextDayFirstSlot returns tomorrow's first scheduled slot start, or false if
// tomorrow has no opening. A 24-hour tomorrow opens at midnight.
func NextDayFirstSlot(hours *model.OperatingHours, timezone string, from time.Time) (time.Time, bool) {
	if hours == nil {
		return time.Time{}, false
	}

	loc := localtime.Location(timezone)
	local := from.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	weekday := dayStart.Weekday()

	if hours.IsClosedDay(weekday) {
		return time.Time{}, false
	}
	day := hours.Day(weekday)
	if !day.Open {
		return time.Time{}, false
	}
	if day.Is24Hours {
		return dayStart, true
	}
	return firstSlotStart(day, dayStart, dayStart.Add(-time.Minute), loc)
}

// IsScheduledClosed reports whether the instant falls on a day the schedule
// closes by design: an explicit closed day or a day whose open flag is off.
func IsScheduledClosed(hours *model.OperatingHours, at time.Time, timezone string) bool {
	if hours == nil {
		return false
	}
	weekday, _ := localtime.Resolve(at, timezone)
	return hours.IsClosedDay(weekday) || !hours.Day(weekday).Open
}

// TodaySlots renders the slots effective for the instant's local weekday.
// Empty when the day is closed; a single {00:00, 23:59} slot for 24-hour days.
func TodaySlots(hours *model.OperatingHours, at time.Time, timezone string) []SlotInfo {
	if hours == nil {
		return []SlotInfo{}
	}

	weekday, _ := localtime.Resolve(at, timezone)
	if hours.IsClosedDay(weekday) {
		return []SlotInfo{}
	}
	day := hours.Day(weekday)
	if !day.Open {
		return []SlotInfo{}
	}
	if day.Is24Hours {
		return []SlotInfo{{Start: "00:00", End: "23:59"}}
	}

	slots := make([]SlotInfo, 0, len(day.Slots))
	for _, slot := range day.Slots {
		if _, err := localtime.MinutesOf(slot.Start); err != nil {
			continue
		}
		if _, err := localtime.MinutesOf(slot.End); err != nil {
			continue
		}
		slots = append(slots, SlotInfo{Start: slot.Start, End: slot.End})
	}
	return slots
}

// LocalDate formats the instant's calendar date in the store's timezone.
func LocalDate(at time.Time, timezone string) string {
	return at.In(localtime.Location(timezone)).Format("2006-01-02")
}
