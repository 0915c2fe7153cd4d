package model

import "time"

// LogAction is the kind of event recorded in the status log.
type LogAction string

const (
	LogActionOpen    LogAction = "OPEN"
	LogActionClosed  LogAction = "CLOSED"
	LogActionLockOn  LogAction = "LOCK_ON"
	LogActionLockOff LogAction = "LOCK_OFF"
)

// StatusLogEntry is an immutable audit record of a store status transition.
// The engine only ever appends these; it never reads them back for decisions.
type StatusLogEntry struct {
	ID              int64           `json:"id"`
	StoreID         int64           `json:"store_id"`
	Action          LogAction       `json:"action"`
	RestrictionType RestrictionType `json:"restriction_type,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	Actor           string          `json:"actor"`
	Origin          ToggleOrigin    `json:"origin"`
	CreatedAt       time.Time       `json:"created_at"`
}
