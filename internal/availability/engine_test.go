package availability

import (
	"context"
	"testing"
	"time"

	"dastarkhan/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ at time.Time }

func (c *fixedClock) Now() time.Time { return c.at }

type fakeStores struct {
	store     *model.Store
	conflicts int    // UpdateStatusVersioned fails this many times
	applied   func() // runs when a conflict is reported, to simulate the winner
}

func (f *fakeStores) GetByID(_ context.Context, storeID int64) (*model.Store, error) {
	if f.store == nil || f.store.ID != storeID {
		return nil, ErrStoreNotFound
	}
	copied := *f.store
	return &copied, nil
}

func (f *fakeStores) GetByPublicID(_ context.Context, publicID string) (*model.Store, error) {
	if f.store == nil || f.store.PublicID != publicID {
		return nil, ErrStoreNotFound
	}
	copied := *f.store
	return &copied, nil
}

func (f *fakeStores) UpdateStatusVersioned(_ context.Context, storeID, version int64, status model.Status) error {
	if f.conflicts > 0 {
		f.conflicts--
		if f.applied != nil {
			f.applied()
		}
		return ErrVersionConflict
	}
	if f.store.StatusVersion != version {
		return ErrVersionConflict
	}
	f.store.OperationalStatus = status
	f.store.IsAcceptingOrders = status.AcceptingOrders()
	f.store.StatusVersion++
	return nil
}

func (f *fakeStores) SetStatus(_ context.Context, storeID int64, status model.Status) error {
	f.store.OperationalStatus = status
	f.store.IsAcceptingOrders = status.AcceptingOrders()
	f.store.StatusVersion++
	return nil
}

type fakeOverrides struct {
	override *model.AvailabilityOverride
}

func (f *fakeOverrides) GetOverride(_ context.Context, storeID int64) (*model.AvailabilityOverride, error) {
	if f.override == nil {
		f.override = model.NewOverride(storeID)
	}
	copied := *f.override
	return &copied, nil
}

func (f *fakeOverrides) SaveOverride(_ context.Context, override *model.AvailabilityOverride) error {
	copied := *override
	f.override = &copied
	return nil
}

type fakeHours struct {
	hours *model.OperatingHours
	err   error
}

func (f *fakeHours) GetOperatingHours(context.Context, int64) (*model.OperatingHours, error) {
	return f.hours, f.err
}

type fakeLogs struct {
	entries []model.StatusLogEntry
	err     error
}

func (f *fakeLogs) AppendStatusLog(_ context.Context, entry model.StatusLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fixture struct {
	engine    *Engine
	stores    *fakeStores
	overrides *fakeOverrides
	hours     *fakeHours
	logs      *fakeLogs
	clock     *fixedClock
}

// nineToFive builds a week of identical 09:00-17:00 days.
func nineToFive() *model.OperatingHours {
	hours := &model.OperatingHours{
		StoreID:    1,
		ClosedDays: make(map[time.Weekday]bool),
	}
	for i := range hours.Days {
		hours.Days[i] = model.DayHours{
			Open:  true,
			Slots: []model.Slot{{Start: "09:00", End: "17:00"}},
		}
	}
	return hours
}

// monday returns 2026-01-05 (a Monday) at the given UTC time.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 1, 5, hour, minute, 0, 0, time.UTC)
}

func newFixture(t *testing.T, status model.Status, at time.Time) *fixture {
	t.Helper()

	stores := &fakeStores{store: &model.Store{
		ID:                1,
		PublicID:          "st-1",
		Name:              "Tandoor House",
		Timezone:          "UTC",
		OperationalStatus: status,
		IsAcceptingOrders: status.AcceptingOrders(),
		StatusVersion:     3,
		IsActive:          true,
	}}
	overrides := &fakeOverrides{override: model.NewOverride(1)}
	hours := &fakeHours{hours: nineToFive()}
	logs := &fakeLogs{}
	clock := &fixedClock{at: at}

	engine := NewEngine(stores, overrides, hours, logs, nil)
	engine.UseClock(clock)

	return &fixture{engine: engine, stores: stores, overrides: overrides, hours: hours, logs: logs, clock: clock}
}

func TestStatusAutoOpen(t *testing.T) {
	f := newFixture(t, model.StatusClosed, monday(10, 0))

	view, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusOpen, view.Status)
	assert.True(t, view.IsAcceptingOrders)
	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, model.LogActionOpen, f.logs.entries[0].Action)
	assert.Equal(t, model.OriginAutoOpen, f.logs.entries[0].Origin)
	assert.Equal(t, "system", f.logs.entries[0].Actor)
	assert.Nil(t, view.OpensAt)
}

func TestStatusIdempotent(t *testing.T) {
	f := newFixture(t, model.StatusClosed, monday(10, 0))

	_, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)
	version := f.stores.store.StatusVersion

	// Same instant, no concurrent writer: the second call is a no-op.
	view, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, view.Status)
	assert.Equal(t, version, f.stores.store.StatusVersion)
	assert.Len(t, f.logs.entries, 1)
}

func TestStatusAutoOpenSuppressed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"outside hours", func(f *fixture) { f.clock.at = monday(7, 0) }},
		{"manual lock", func(f *fixture) { f.overrides.override.BlockAutoOpen = true }},
		{"schedule automation off", func(f *fixture) { f.overrides.override.AutoOpenFromSchedule = false }},
		{"pending manual close", func(f *fixture) {
			until := monday(15, 0)
			f.overrides.override.ManualCloseUntil = &until
		}},
		{"closed day", func(f *fixture) { f.hours.hours.ClosedDays[time.Monday] = true }},
		{"no hours configured", func(f *fixture) { f.hours.hours = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, model.StatusClosed, monday(10, 0))
			tt.setup(f)

			view, err := f.engine.Status(context.Background(), "st-1")
			require.NoError(t, err)
			assert.Equal(t, model.StatusClosed, view.Status)
			assert.Empty(t, f.logs.entries)
		})
	}
}

func TestStatusManualCloseExpiryReopens(t *testing.T) {
	f := newFixture(t, model.StatusClosed, monday(12, 0))
	until := monday(11, 0)
	f.overrides.override.ManualCloseUntil = &until
	f.overrides.override.RestrictionType = model.RestrictionTemporary

	view, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusOpen, view.Status)
	assert.Nil(t, f.overrides.override.ManualCloseUntil)
	assert.Equal(t, model.RestrictionNone, f.overrides.override.RestrictionType)
	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, model.OriginAutoOpen, f.logs.entries[0].Origin)
}

func TestStatusManualCloseExpiryOutsideHours(t *testing.T) {
	f := newFixture(t, model.StatusClosed, monday(20, 0))
	until := monday(18, 0)
	f.overrides.override.ManualCloseUntil = &until
	f.overrides.override.RestrictionType = model.RestrictionTemporary

	view, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)

	// The lapsed override is cleared, but outside hours the store stays closed
	// and nothing is logged.
	assert.Equal(t, model.StatusClosed, view.Status)
	assert.Nil(t, f.overrides.override.ManualCloseUntil)
	assert.Equal(t, model.RestrictionNone, f.overrides.override.RestrictionType)
	assert.Empty(t, f.logs.entries)
}

func TestStatusManualCloseExpiryUnderLock(t *testing.T) {
	f := newFixture(t, model.StatusClosed, monday(12, 0))
	until := monday(11, 0)
	f.overrides.override.ManualCloseUntil = &until
	f.overrides.override.BlockAutoOpen = true
	f.overrides.override.RestrictionType = model.RestrictionHold

	view, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)

	// Only the lapsed instant is cleared; the hold keeps the store closed.
	assert.Equal(t, model.StatusClosed, view.Status)
	assert.Nil(t, f.overrides.override.ManualCloseUntil)
	assert.Equal(t, model.RestrictionHold, f.overrides.override.RestrictionType)
	assert.True(t, f.overrides.override.BlockAutoOpen)
	assert.Empty(t, f.logs.entries)
}

func TestStatusAutoClose(t *testing.T) {
	f := newFixture(t, model.StatusOpen, monday(18, 0))

	view, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusClosed, view.Status)
	assert.False(t, view.IsAcceptingOrders)
	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, model.LogActionClosed, f.logs.entries[0].Action)
	assert.Equal(t, model.OriginAutoClose, f.logs.entries[0].Origin)
}

func TestStatusAutoCloseSuppressed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"within hours", func(f *fixture) { f.clock.at = monday(12, 0) }},
		{"pending manual close", func(f *fixture) {
			until := monday(23, 0)
			f.overrides.override.ManualCloseUntil = &until
		}},
		{"schedule automation off", func(f *fixture) { f.overrides.override.AutoOpenFromSchedule = false }},
		{"no hours configured", func(f *fixture) { f.hours.hours = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, model.StatusOpen, monday(18, 0))
			tt.setup(f)

			view, err := f.engine.Status(context.Background(), "st-1")
			require.NoError(t, err)
			assert.Equal(t, model.StatusOpen, view.Status)
			assert.Empty(t, f.logs.entries)
		})
	}
}

func TestStatusVersionConflictAdoptsWinner(t *testing.T) {
	f := newFixture(t, model.StatusClosed, monday(10, 0))
	f.stores.conflicts = 1
	f.stores.applied = func() {
		// Simulate the concurrent caller having opened the store.
		f.stores.store.OperationalStatus = model.StatusOpen
		f.stores.store.IsAcceptingOrders = true
		f.stores.store.StatusVersion++
	}

	view, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)

	// The loser adopts the winner's result without a second write or log.
	assert.Equal(t, model.StatusOpen, view.Status)
	assert.Empty(t, f.logs.entries)
}

func TestStatusHoursLoadFailureDegrades(t *testing.T) {
	f := newFixture(t, model.StatusOpen, monday(12, 0))
	f.hours.hours = nil
	f.hours.err = assert.AnError

	view, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)

	// Unreadable hours never force a transition in either direction.
	assert.Equal(t, model.StatusOpen, view.Status)
	assert.Empty(t, f.logs.entries)
}

func TestStatusUnknownStore(t *testing.T) {
	f := newFixture(t, model.StatusOpen, monday(12, 0))

	_, err := f.engine.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestStatusLogFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t, model.StatusClosed, monday(10, 0))
	f.logs.err = assert.AnError

	view, err := f.engine.Status(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, view.Status)
}

func TestViewOpensAt(t *testing.T) {
	t.Run("closed with pending manual close", func(t *testing.T) {
		f := newFixture(t, model.StatusClosed, monday(12, 0))
		until := monday(15, 0)
		f.overrides.override.ManualCloseUntil = &until
		f.overrides.override.BlockAutoOpen = true

		view, err := f.engine.Status(context.Background(), "st-1")
		require.NoError(t, err)
		require.NotNil(t, view.OpensAt)
		assert.Equal(t, until, view.OpensAt.UTC())
		assert.True(t, view.WithinHoursButRestricted)
	})

	t.Run("closed outside hours shows next opening", func(t *testing.T) {
		f := newFixture(t, model.StatusClosed, monday(20, 0))

		view, err := f.engine.Status(context.Background(), "st-1")
		require.NoError(t, err)
		require.NotNil(t, view.OpensAt)
		assert.Equal(t, time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC), view.OpensAt.UTC())
		assert.False(t, view.WithinHoursButRestricted)
	})

	t.Run("scheduled closed day shows no countdown", func(t *testing.T) {
		f := newFixture(t, model.StatusClosed, monday(12, 0))
		f.hours.hours.ClosedDays[time.Monday] = true

		view, err := f.engine.Status(context.Background(), "st-1")
		require.NoError(t, err)
		assert.Nil(t, view.OpensAt)
		assert.True(t, view.IsTodayScheduledClosed)
		assert.Empty(t, view.TodaySlots)
	})
}
