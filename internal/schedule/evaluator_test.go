package schedule

import (
	"testing"
	"time"

	"dastarkhan/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// everyDay builds a week where each day carries the same hours.
func everyDay(day model.DayHours) *model.OperatingHours {
	hours := &model.OperatingHours{
		StoreID:    1,
		ClosedDays: make(map[time.Weekday]bool),
	}
	for i := range hours.Days {
		hours.Days[i] = day
	}
	return hours
}

func dayTime(weekdayOffset, hour, minute int) time.Time {
	// 2026-01-04 is a Sunday; offset matches time.Weekday numbering.
	return time.Date(2026, 1, 4+weekdayOffset, hour, minute, 0, 0, time.UTC)
}

func TestIsWithinHours(t *testing.T) {
	standard := everyDay(model.DayHours{
		Open:  true,
		Slots: []model.Slot{{Start: "09:00", End: "17:00"}},
	})

	tests := []struct {
		name  string
		hours *model.OperatingHours
		at    time.Time
		want  bool
	}{
		{"nil hours", nil, dayTime(1, 12, 0), false},
		{"inside slot", standard, dayTime(1, 12, 0), true},
		{"start is inclusive", standard, dayTime(1, 9, 0), true},
		{"end is exclusive", standard, dayTime(1, 17, 0), false},
		{"before opening", standard, dayTime(1, 8, 59), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithinHours(tt.hours, tt.at, "UTC"))
		})
	}

	t.Run("closed day wins over open flag", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: true, Is24Hours: true})
		hours.ClosedDays[time.Monday] = true
		assert.False(t, IsWithinHours(hours, dayTime(1, 12, 0), "UTC"))
		assert.True(t, IsWithinHours(hours, dayTime(2, 12, 0), "UTC"))
	})

	t.Run("open flag off means no interval", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: false, Slots: []model.Slot{{Start: "09:00", End: "17:00"}}})
		assert.False(t, IsWithinHours(hours, dayTime(1, 12, 0), "UTC"))
	})

	t.Run("open day with no slots", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: true})
		assert.False(t, IsWithinHours(hours, dayTime(1, 12, 0), "UTC"))
	})

	t.Run("24 hour day ignores slots", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: true, Is24Hours: true})
		assert.True(t, IsWithinHours(hours, dayTime(1, 3, 0), "UTC"))
	})

	t.Run("overnight slot covers both sides of midnight", func(t *testing.T) {
		hours := everyDay(model.DayHours{
			Open:  true,
			Slots: []model.Slot{{Start: "22:00", End: "02:00"}},
		})
		assert.True(t, IsWithinHours(hours, dayTime(1, 23, 30), "UTC"))
		assert.True(t, IsWithinHours(hours, dayTime(2, 1, 30), "UTC"))
		assert.False(t, IsWithinHours(hours, dayTime(2, 12, 0), "UTC"))
		assert.False(t, IsWithinHours(hours, dayTime(2, 2, 0), "UTC"))
	})

	t.Run("timezone shifts the local weekday", func(t *testing.T) {
		// 20:00 UTC Monday is 01:30 Tuesday in Kolkata.
		hours := everyDay(model.DayHours{Open: true, Slots: []model.Slot{{Start: "01:00", End: "05:00"}}})
		assert.True(t, IsWithinHours(hours, dayTime(1, 20, 0), "Asia/Kolkata"))
		assert.False(t, IsWithinHours(hours, dayTime(1, 20, 0), "UTC"))
	})
}

func TestNextOpen(t *testing.T) {
	standard := everyDay(model.DayHours{
		Open:  true,
		Slots: []model.Slot{{Start: "09:00", End: "17:00"}},
	})

	t.Run("later today", func(t *testing.T) {
		at, ok := NextOpen(standard, "UTC", dayTime(1, 7, 0))
		require.True(t, ok)
		assert.Equal(t, dayTime(1, 9, 0), at.UTC())
	})

	t.Run("after close rolls to tomorrow", func(t *testing.T) {
		at, ok := NextOpen(standard, "UTC", dayTime(1, 18, 0))
		require.True(t, ok)
		assert.Equal(t, dayTime(2, 9, 0), at.UTC())
	})

	t.Run("skips closed days", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: true, Slots: []model.Slot{{Start: "09:00", End: "17:00"}}})
		hours.ClosedDays[time.Tuesday] = true
		at, ok := NextOpen(hours, "UTC", dayTime(1, 18, 0))
		require.True(t, ok)
		assert.Equal(t, dayTime(3, 9, 0), at.UTC())
	})

	t.Run("strictly after the reference instant", func(t *testing.T) {
		at, ok := NextOpen(standard, "UTC", dayTime(1, 9, 0))
		require.True(t, ok)
		assert.Equal(t, dayTime(2, 9, 0), at.UTC())
	})

	t.Run("no slots anywhere", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: false})
		_, ok := NextOpen(hours, "UTC", dayTime(1, 12, 0))
		assert.False(t, ok)
	})

	t.Run("nil hours", func(t *testing.T) {
		_, ok := NextOpen(nil, "UTC", dayTime(1, 12, 0))
		assert.False(t, ok)
	})
}

func TestNextOpenAcrossDSTBoundary(t *testing.T) {
	hours := everyDay(model.DayHours{
		Open:  true,
		Slots: []model.Slot{{Start: "09:00", End: "17:00"}},
	})

	// Saturday 2026-03-07 20:00 in New York; clocks spring forward overnight.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	from := time.Date(2026, 3, 7, 20, 0, 0, 0, loc)

	at, ok := NextOpen(hours, "America/New_York", from)
	require.True(t, ok)
	// Sunday 09:00 EDT is 13:00 UTC, not the 14:00 UTC an EST offset would give.
	assert.Equal(t, time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC), at.UTC())

	// 07:30 UTC that morning is only 03:30 local, still outside hours.
	assert.False(t, IsWithinHours(hours, time.Date(2026, 3, 8, 7, 30, 0, 0, time.UTC), "America/New_York"))
	assert.True(t, IsWithinHours(hours, at, "America/New_York"))
}

func TestNextDayFirstSlot(t *testing.T) {
	t.Run("tomorrow first slot", func(t *testing.T) {
		hours := everyDay(model.DayHours{
			Open:  true,
			Slots: []model.Slot{{Start: "11:00", End: "15:00"}, {Start: "08:00", End: "10:00"}},
		})
		at, ok := NextDayFirstSlot(hours, "UTC", dayTime(1, 23, 0))
		require.True(t, ok)
		assert.Equal(t, dayTime(2, 8, 0), at.UTC())
	})

	t.Run("tomorrow is a closed day", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: true, Slots: []model.Slot{{Start: "09:00", End: "17:00"}}})
		hours.ClosedDays[time.Tuesday] = true
		_, ok := NextDayFirstSlot(hours, "UTC", dayTime(1, 23, 0))
		assert.False(t, ok)
	})

	t.Run("24 hour tomorrow opens at midnight", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: true, Is24Hours: true})
		at, ok := NextDayFirstSlot(hours, "UTC", dayTime(1, 23, 0))
		require.True(t, ok)
		assert.Equal(t, dayTime(2, 0, 0), at.UTC())
	})
}

func TestIsScheduledClosed(t *testing.T) {
	hours := everyDay(model.DayHours{Open: true, Slots: []model.Slot{{Start: "09:00", End: "17:00"}}})
	hours.ClosedDays[time.Monday] = true
	hours.Days[int(time.Wednesday)] = model.DayHours{Open: false}

	assert.True(t, IsScheduledClosed(hours, dayTime(1, 12, 0), "UTC"))
	assert.False(t, IsScheduledClosed(hours, dayTime(2, 12, 0), "UTC"))
	assert.True(t, IsScheduledClosed(hours, dayTime(3, 12, 0), "UTC"))
	assert.False(t, IsScheduledClosed(nil, dayTime(1, 12, 0), "UTC"))
}

func TestTodaySlots(t *testing.T) {
	t.Run("normal day", func(t *testing.T) {
		hours := everyDay(model.DayHours{
			Open:  true,
			Slots: []model.Slot{{Start: "09:00", End: "13:00"}, {Start: "16:00", End: "22:00"}},
		})
		slots := TodaySlots(hours, dayTime(1, 12, 0), "UTC")
		require.Len(t, slots, 2)
		assert.Equal(t, SlotInfo{Start: "09:00", End: "13:00"}, slots[0])
	})

	t.Run("closed day is empty", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: true, Slots: []model.Slot{{Start: "09:00", End: "17:00"}}})
		hours.ClosedDays[time.Monday] = true
		assert.Empty(t, TodaySlots(hours, dayTime(1, 12, 0), "UTC"))
	})

	t.Run("24 hour day renders full span", func(t *testing.T) {
		hours := everyDay(model.DayHours{Open: true, Is24Hours: true})
		slots := TodaySlots(hours, dayTime(1, 12, 0), "UTC")
		require.Len(t, slots, 1)
		assert.Equal(t, SlotInfo{Start: "00:00", End: "23:59"}, slots[0])
	})
}

func TestLocalDate(t *testing.T) {
	// 20:00 UTC Monday is already Tuesday in Kolkata.
	at := dayTime(1, 20, 0)
	assert.Equal(t, "2026-01-05", LocalDate(at, "UTC"))
	assert.Equal(t, "2026-01-06", LocalDate(at, "Asia/Kolkata"))
}
