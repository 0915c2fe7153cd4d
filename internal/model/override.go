package model

import "time"

// RestrictionType classifies an active manual restriction on a store.
type RestrictionType string

const (
	RestrictionNone      RestrictionType = ""
	RestrictionTemporary RestrictionType = "TEMPORARY"
	RestrictionToday     RestrictionType = "CLOSED_TODAY"
	RestrictionHold      RestrictionType = "MANUAL_HOLD"
)

// ToggleOrigin records what caused the last status toggle.
type ToggleOrigin string

const (
	OriginMerchant  ToggleOrigin = "MERCHANT"
	OriginAutoOpen  ToggleOrigin = "AUTO_OPEN"
	OriginAutoClose ToggleOrigin = "AUTO_CLOSE"
)

// ClosureKind selects the behavior of a manual close request.
type ClosureKind string

const (
	ClosureTemporary  ClosureKind = "temporary"
	ClosureToday      ClosureKind = "today"
	ClosureManualHold ClosureKind = "manual_hold"
)

// AvailabilityOverride is the mutable per-store override row. It is created
// lazily on first use and only ever reset to its neutral state, never deleted.
type AvailabilityOverride struct {
	StoreID              int64           `json:"store_id"`
	ManualCloseUntil     *time.Time      `json:"manual_close_until,omitempty"`
	BlockAutoOpen        bool            `json:"block_auto_open"`
	RestrictionType      RestrictionType `json:"restriction_type,omitempty"`
	AutoOpenFromSchedule bool            `json:"auto_open_from_schedule"`
	LastToggledBy        string          `json:"last_toggled_by,omitempty"`
	LastToggledAt        *time.Time      `json:"last_toggled_at,omitempty"`
	LastToggleOrigin     ToggleOrigin    `json:"last_toggle_origin,omitempty"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// NewOverride returns the neutral override state for a store.
func NewOverride(storeID int64) *AvailabilityOverride {
	return &AvailabilityOverride{
		StoreID:              storeID,
		AutoOpenFromSchedule: true,
	}
}

// ManualCloseActive reports whether a manual close instant is set and still
// in the future at the given time.
func (o *AvailabilityOverride) ManualCloseActive(now time.Time) bool {
	return o.ManualCloseUntil != nil && now.Before(*o.ManualCloseUntil)
}

// ManualCloseExpired reports whether a manual close instant is set but has
// already lapsed.
func (o *AvailabilityOverride) ManualCloseExpired(now time.Time) bool {
	return o.ManualCloseUntil != nil && !now.Before(*o.ManualCloseUntil)
}

// Attribute stamps the attribution fields for a toggle.
func (o *AvailabilityOverride) Attribute(by string, origin ToggleOrigin, at time.Time) {
	o.LastToggledBy = by
	o.LastToggledAt = &at
	o.LastToggleOrigin = origin
}
