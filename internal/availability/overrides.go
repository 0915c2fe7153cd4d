package availability

import (
	"context"
	"fmt"
	"time"

	"dastarkhan/internal/events"
	"dastarkhan/internal/metrics"
	"dastarkhan/internal/model"
	"dastarkhan/internal/schedule"
)

// FallbackActor labels actions whose caller identity cannot be resolved.
const FallbackActor = "Store Owner"

// Temporary closure duration bounds, in minutes.
const (
	MinClosureMinutes = 1
	MaxClosureMinutes = 1440
)

func normalizeActor(actor string) string {
	if actor == "" {
		return FallbackActor
	}
	return actor
}

// Open unconditionally opens a store, clearing every manual restriction.
func (e *Engine) Open(ctx context.Context, publicID, actor string) (*StatusView, error) {
	store, ov, hours, err := e.load(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	actor = normalizeActor(actor)

	ov.ManualCloseUntil = nil
	ov.BlockAutoOpen = false
	ov.RestrictionType = model.RestrictionNone
	ov.Attribute(actor, model.OriginMerchant, now)
	if err := e.overrides.SaveOverride(ctx, ov); err != nil {
		return nil, fmt.Errorf("save override: %w", err)
	}
	if err := e.stores.SetStatus(ctx, store.ID, model.StatusOpen); err != nil {
		return nil, fmt.Errorf("open status write: %w", err)
	}
	store.OperationalStatus = model.StatusOpen
	store.IsAcceptingOrders = true
	store.StatusVersion++

	e.appendLog(ctx, model.StatusLogEntry{
		StoreID:   store.ID,
		Action:    model.LogActionOpen,
		Actor:     actor,
		Origin:    model.OriginMerchant,
		CreatedAt: now,
	})
	e.publish(events.TypeStoreOpened, store, model.OriginMerchant, now)
	metrics.IncOverrideAction("manual_open")
	metrics.IncTransition(string(model.OriginMerchant))

	return e.buildView(store, ov, hours, now), nil
}

// Close closes a store with the requested closure kind. The request is
// validated before any state is read; a temporary closure needs a duration
// between 1 and 1440 minutes.
func (e *Engine) Close(ctx context.Context, publicID string, kind model.ClosureKind, durationMinutes int, reason, actor string) (*StatusView, error) {
	switch kind {
	case model.ClosureTemporary:
		if durationMinutes < MinClosureMinutes || durationMinutes > MaxClosureMinutes {
			return nil, validationErrorf(fmt.Sprintf("duration_minutes must be between %d and %d", MinClosureMinutes, MaxClosureMinutes))
		}
	case model.ClosureToday, model.ClosureManualHold:
	default:
		return nil, validationErrorf(fmt.Sprintf("unknown closure_type %q", kind))
	}

	store, ov, hours, err := e.load(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	actor = normalizeActor(actor)

	switch kind {
	case model.ClosureManualHold:
		// Indefinite hold; any pending close instant is left untouched.
		ov.BlockAutoOpen = true
		ov.RestrictionType = model.RestrictionHold
	case model.ClosureToday:
		until, ok := schedule.NextDayFirstSlot(hours, store.Timezone, now)
		if !ok {
			until = now.Add(24 * time.Hour)
		}
		ov.ManualCloseUntil = &until
		ov.RestrictionType = model.RestrictionToday
	case model.ClosureTemporary:
		until := now.Add(time.Duration(durationMinutes) * time.Minute)
		ov.ManualCloseUntil = &until
		ov.RestrictionType = model.RestrictionTemporary
	}

	ov.Attribute(actor, model.OriginMerchant, now)
	if err := e.overrides.SaveOverride(ctx, ov); err != nil {
		return nil, fmt.Errorf("save override: %w", err)
	}
	if err := e.stores.SetStatus(ctx, store.ID, model.StatusClosed); err != nil {
		return nil, fmt.Errorf("close status write: %w", err)
	}
	store.OperationalStatus = model.StatusClosed
	store.IsAcceptingOrders = false
	store.StatusVersion++

	e.appendLog(ctx, model.StatusLogEntry{
		StoreID:         store.ID,
		Action:          model.LogActionClosed,
		RestrictionType: ov.RestrictionType,
		Reason:          reason,
		Actor:           actor,
		Origin:          model.OriginMerchant,
		CreatedAt:       now,
	})
	e.publish(events.TypeStoreClosed, store, model.OriginMerchant, now)
	metrics.IncOverrideAction("manual_close")
	metrics.IncTransition(string(model.OriginMerchant))

	return e.buildView(store, ov, hours, now), nil
}

// SetManualLock toggles the auto-open suppression lock without changing the
// current status. Enabling it marks a manual hold unless a different
// restriction is already active; disabling it clears the restriction only if
// it was the hold itself.
func (e *Engine) SetManualLock(ctx context.Context, publicID string, enabled bool, actor string) (*StatusView, error) {
	store, ov, hours, err := e.load(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	actor = normalizeActor(actor)

	action := model.LogActionLockOff
	if enabled {
		action = model.LogActionLockOn
		ov.BlockAutoOpen = true
		if ov.RestrictionType == model.RestrictionNone {
			ov.RestrictionType = model.RestrictionHold
		}
	} else {
		ov.BlockAutoOpen = false
		if ov.RestrictionType == model.RestrictionHold {
			ov.RestrictionType = model.RestrictionNone
		}
	}

	ov.Attribute(actor, model.OriginMerchant, now)
	if err := e.overrides.SaveOverride(ctx, ov); err != nil {
		return nil, fmt.Errorf("save override: %w", err)
	}

	e.appendLog(ctx, model.StatusLogEntry{
		StoreID:         store.ID,
		Action:          action,
		RestrictionType: ov.RestrictionType,
		Actor:           actor,
		Origin:          model.OriginMerchant,
		CreatedAt:       now,
	})
	metrics.IncOverrideAction("update_manual_lock")

	return e.buildView(store, ov, hours, now), nil
}
