package availability

import (
	"time"

	"dastarkhan/internal/model"
	"dastarkhan/internal/schedule"
)

// StatusView is the effective availability of a store after reconciliation,
// plus the diagnostic fields read endpoints expose.
type StatusView struct {
	StoreID                  int64                 `json:"store_id"`
	PublicID                 string                `json:"public_id"`
	Status                   model.Status          `json:"status"`
	IsAcceptingOrders        bool                  `json:"is_accepting_orders"`
	ManualCloseUntil         *time.Time            `json:"manual_close_until,omitempty"`
	OpensAt                  *time.Time            `json:"opens_at,omitempty"`
	AutoOpenFromSchedule     bool                  `json:"auto_open_from_schedule"`
	BlockAutoOpen            bool                  `json:"block_auto_open"`
	RestrictionType          model.RestrictionType `json:"restriction_type,omitempty"`
	TodayDate                string                `json:"today_date"`
	TodaySlots               []schedule.SlotInfo   `json:"today_slots"`
	IsTodayScheduledClosed   bool                  `json:"is_today_scheduled_closed"`
	LastToggledBy            string                `json:"last_toggled_by,omitempty"`
	LastToggledAt            *time.Time            `json:"last_toggled_at,omitempty"`
	LastToggleOrigin         model.ToggleOrigin    `json:"last_toggle_origin,omitempty"`
	WithinHoursButRestricted bool                  `json:"within_hours_but_restricted"`
}

// buildView derives the read-time fields from reconciled state. OpensAt is
// nil for an open store and for a day that is closed by design: no countdown
// is shown for a scheduled closed day.
func (e *Engine) buildView(store *model.Store, ov *model.AvailabilityOverride, hours *model.OperatingHours, now time.Time) *StatusView {
	within := schedule.IsWithinHours(hours, now, store.Timezone)
	scheduledClosed := schedule.IsScheduledClosed(hours, now, store.Timezone)

	v := &StatusView{
		StoreID:                store.ID,
		PublicID:               store.PublicID,
		Status:                 store.OperationalStatus,
		IsAcceptingOrders:      store.OperationalStatus.AcceptingOrders(),
		ManualCloseUntil:       ov.ManualCloseUntil,
		AutoOpenFromSchedule:   ov.AutoOpenFromSchedule,
		BlockAutoOpen:          ov.BlockAutoOpen,
		RestrictionType:        ov.RestrictionType,
		TodayDate:              schedule.LocalDate(now, store.Timezone),
		TodaySlots:             schedule.TodaySlots(hours, now, store.Timezone),
		IsTodayScheduledClosed: scheduledClosed,
		LastToggledBy:          ov.LastToggledBy,
		LastToggledAt:          ov.LastToggledAt,
		LastToggleOrigin:       ov.LastToggleOrigin,
	}

	if store.OperationalStatus == model.StatusClosed {
		if !scheduledClosed {
			if ov.ManualCloseUntil != nil {
				v.OpensAt = ov.ManualCloseUntil
			} else if at, ok := schedule.NextOpen(hours, store.Timezone, now); ok {
				v.OpensAt = &at
			}
		}
		v.WithinHoursButRestricted = within &&
			(ov.BlockAutoOpen || ov.ManualCloseActive(now) || !ov.AutoOpenFromSchedule)
	}

	return v
}
