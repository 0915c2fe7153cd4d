// Package availability decides whether a store is open or closed, reconciling
// the persisted status against the weekly schedule and manual overrides.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dastarkhan/internal/events"
	"dastarkhan/internal/localtime"
	"dastarkhan/internal/metrics"
	"dastarkhan/internal/model"
	"dastarkhan/internal/schedule"

	"github.com/rs/zerolog"
)

// systemActor attributes schedule-driven transitions.
const systemActor = "system"

// Engine is the availability state machine. It is re-evaluated lazily on each
// read or write request; there is no background scheduler.
type Engine struct {
	stores    StoreRepository
	overrides OverrideRepository
	hours     HoursRepository
	logs      LogSink
	clock     Clock
	bus       *events.EventBus
	log       zerolog.Logger
}

// NewEngine wires the engine with its collaborators.
func NewEngine(stores StoreRepository, overrides OverrideRepository, hours HoursRepository, logs LogSink, logger *zerolog.Logger) *Engine {
	e := &Engine{
		stores:    stores,
		overrides: overrides,
		hours:     hours,
		logs:      logs,
		clock:     SystemClock(),
	}
	if logger != nil {
		e.log = *logger
	}
	return e
}

// UseClock replaces the wall clock, letting tests pin arbitrary instants.
func (e *Engine) UseClock(clock Clock) {
	if clock != nil {
		e.clock = clock
	}
}

// UseEventBus enables transition event publishing.
func (e *Engine) UseEventBus(bus *events.EventBus) {
	e.bus = bus
}

// Status reconciles and returns the effective availability view for a store,
// identified by its public id.
func (e *Engine) Status(ctx context.Context, publicID string) (*StatusView, error) {
	store, ov, hours, err := e.load(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return e.reconcile(ctx, store, ov, hours)
}

// load fetches the store, its override row (created lazily) and its operating
// hours. A failed hours read degrades to nil hours: the store then can never
// be "within hours", so it cannot spuriously auto-open, but explicit actions
// still work.
func (e *Engine) load(ctx context.Context, publicID string) (*model.Store, *model.AvailabilityOverride, *model.OperatingHours, error) {
	store, err := e.stores.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, nil, nil, err
	}

	ov, err := e.overrides.GetOverride(ctx, store.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load override: %w", err)
	}

	hours, err := e.hours.GetOperatingHours(ctx, store.ID)
	if err != nil {
		e.log.Warn().Err(err).Int64("store_id", store.ID).Msg("operating hours unavailable, treating store as outside hours")
		hours = nil
	}
	return store, ov, hours, nil
}

// reconcile applies the transition rules in order. Each rule runs only if no
// earlier rule already decided the status; rule 2's cleanup paths do not
// count as a decision. The procedure is idempotent: with no wall-clock
// advance and no concurrent writer, a second call changes nothing and logs
// nothing.
func (e *Engine) reconcile(ctx context.Context, store *model.Store, ov *model.AvailabilityOverride, hours *model.OperatingHours) (*StatusView, error) {
	now := e.clock.Now()
	within := schedule.IsWithinHours(hours, now, store.Timezone)

	decided := false

	if e.canAutoOpen(store, ov, hours, now, within) {
		if err := e.autoOpen(ctx, store, ov, now); err != nil {
			return nil, err
		}
		decided = true
	}

	if !decided && ov.ManualCloseExpired(now) {
		d, err := e.expireManualClose(ctx, store, ov, now, within)
		if err != nil {
			return nil, err
		}
		decided = d
	}

	if !decided && e.shouldAutoClose(store, ov, hours, now, within) {
		if err := e.autoClose(ctx, store, ov, now); err != nil {
			return nil, err
		}
	}

	return e.buildView(store, ov, hours, now), nil
}

// canAutoOpen is rule 1: a closed store opens when the schedule says so and
// no override suppresses it. An expired manual-close instant still blocks
// this rule; clearing it is rule 2's job, which keeps reconciliation
// idempotent.
func (e *Engine) canAutoOpen(store *model.Store, ov *model.AvailabilityOverride, hours *model.OperatingHours, now time.Time, within bool) bool {
	if store.OperationalStatus != model.StatusClosed {
		return false
	}
	if ov.BlockAutoOpen || !ov.AutoOpenFromSchedule {
		return false
	}
	if ov.ManualCloseUntil != nil {
		return false
	}
	if hours == nil {
		return false
	}
	weekday, _ := localtime.Resolve(now, store.Timezone)
	if hours.IsClosedDay(weekday) {
		return false
	}
	return within
}

// autoOpen performs the rule-1 transition through a conditional versioned
// update. A version conflict means a concurrent caller already opened the
// store: its result is adopted as-is, with no second write and no duplicate
// log entry.
func (e *Engine) autoOpen(ctx context.Context, store *model.Store, ov *model.AvailabilityOverride, now time.Time) error {
	err := e.stores.UpdateStatusVersioned(ctx, store.ID, store.StatusVersion, model.StatusOpen)
	if errors.Is(err, ErrVersionConflict) {
		fresh, ferr := e.stores.GetByID(ctx, store.ID)
		if ferr != nil {
			return ferr
		}
		*store = *fresh
		freshOv, ferr := e.overrides.GetOverride(ctx, store.ID)
		if ferr != nil {
			return fmt.Errorf("reload override: %w", ferr)
		}
		*ov = *freshOv
		return nil
	}
	if err != nil {
		return fmt.Errorf("auto-open status write: %w", err)
	}

	store.OperationalStatus = model.StatusOpen
	store.IsAcceptingOrders = true
	store.StatusVersion++

	ov.Attribute(systemActor, model.OriginAutoOpen, now)
	if err := e.overrides.SaveOverride(ctx, ov); err != nil {
		return fmt.Errorf("save override: %w", err)
	}

	e.appendLog(ctx, model.StatusLogEntry{
		StoreID:   store.ID,
		Action:    model.LogActionOpen,
		Actor:     systemActor,
		Origin:    model.OriginAutoOpen,
		CreatedAt: now,
	})
	e.publish(events.TypeStoreOpened, store, model.OriginAutoOpen, now)
	metrics.IncTransition(string(model.OriginAutoOpen))
	return nil
}

// expireManualClose is rule 2: a lapsed manual-close instant is cleared, and
// the store reopens only when automation is permitted and the schedule
// currently allows it. The cleanup-only paths write no status and log
// nothing; the returned bool reports whether the status outcome was decided.
func (e *Engine) expireManualClose(ctx context.Context, store *model.Store, ov *model.AvailabilityOverride, now time.Time, within bool) (bool, error) {
	autoPermitted := !ov.BlockAutoOpen && ov.AutoOpenFromSchedule

	if autoPermitted && within && store.OperationalStatus == model.StatusClosed {
		ov.ManualCloseUntil = nil
		ov.RestrictionType = model.RestrictionNone
		ov.Attribute(systemActor, model.OriginAutoOpen, now)
		if err := e.overrides.SaveOverride(ctx, ov); err != nil {
			return false, fmt.Errorf("save override: %w", err)
		}
		if err := e.stores.SetStatus(ctx, store.ID, model.StatusOpen); err != nil {
			return false, fmt.Errorf("expiry status write: %w", err)
		}
		store.OperationalStatus = model.StatusOpen
		store.IsAcceptingOrders = true
		store.StatusVersion++

		e.appendLog(ctx, model.StatusLogEntry{
			StoreID:   store.ID,
			Action:    model.LogActionOpen,
			Actor:     systemActor,
			Origin:    model.OriginAutoOpen,
			CreatedAt: now,
		})
		e.publish(events.TypeStoreOpened, store, model.OriginAutoOpen, now)
		metrics.IncTransition(string(model.OriginAutoOpen))
		return true, nil
	}

	if autoPermitted {
		// Schedule does not currently allow opening (or the store is already
		// open): clear the lapsed override, leave the status alone.
		ov.ManualCloseUntil = nil
		ov.RestrictionType = model.RestrictionNone
		if err := e.overrides.SaveOverride(ctx, ov); err != nil {
			return false, fmt.Errorf("save override: %w", err)
		}
		return false, nil
	}

	// Auto-open not permitted: only the lapsed instant is cleared, the hold
	// and restriction persist.
	ov.ManualCloseUntil = nil
	if err := e.overrides.SaveOverride(ctx, ov); err != nil {
		return false, fmt.Errorf("save override: %w", err)
	}
	return false, nil
}

// shouldAutoClose is rule 3: an open store closes when the schedule says it
// is outside hours, schedule automation is on, and no manual close is
// pending. A manual hold does not suppress closing.
func (e *Engine) shouldAutoClose(store *model.Store, ov *model.AvailabilityOverride, hours *model.OperatingHours, now time.Time, within bool) bool {
	if store.OperationalStatus != model.StatusOpen {
		return false
	}
	if ov.ManualCloseActive(now) {
		return false
	}
	if !ov.AutoOpenFromSchedule {
		return false
	}
	if hours == nil {
		return false
	}
	return !within
}

func (e *Engine) autoClose(ctx context.Context, store *model.Store, ov *model.AvailabilityOverride, now time.Time) error {
	ov.Attribute(systemActor, model.OriginAutoClose, now)
	if err := e.overrides.SaveOverride(ctx, ov); err != nil {
		return fmt.Errorf("save override: %w", err)
	}
	if err := e.stores.SetStatus(ctx, store.ID, model.StatusClosed); err != nil {
		return fmt.Errorf("auto-close status write: %w", err)
	}
	store.OperationalStatus = model.StatusClosed
	store.IsAcceptingOrders = false
	store.StatusVersion++

	e.appendLog(ctx, model.StatusLogEntry{
		StoreID:   store.ID,
		Action:    model.LogActionClosed,
		Actor:     systemActor,
		Origin:    model.OriginAutoClose,
		CreatedAt: now,
	})
	e.publish(events.TypeStoreClosed, store, model.OriginAutoClose, now)
	metrics.IncTransition(string(model.OriginAutoClose))
	return nil
}

// appendLog writes a status log entry best-effort. The transition is
// authoritative; a failed append is counted and logged, never propagated.
func (e *Engine) appendLog(ctx context.Context, entry model.StatusLogEntry) {
	if e.logs == nil {
		return
	}
	if err := e.logs.AppendStatusLog(ctx, entry); err != nil {
		metrics.IncLogAppendFailure()
		e.log.Warn().Err(err).
			Int64("store_id", entry.StoreID).
			Str("action", string(entry.Action)).
			Msg("status log append failed")
	}
}

func (e *Engine) publish(eventType string, store *model.Store, origin model.ToggleOrigin, at time.Time) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.Event{
		Type:      eventType,
		StoreID:   store.ID,
		PublicID:  store.PublicID,
		Status:    store.OperationalStatus,
		Origin:    origin,
		CreatedAt: at,
	})
}
