package availability

import (
	"context"
	"errors"
	"time"

	"dastarkhan/internal/model"
)

var (
	// ErrStoreNotFound is returned when a store id cannot be resolved.
	ErrStoreNotFound = errors.New("store not found")

	// ErrVersionConflict is returned by conditional status updates when a
	// concurrent writer advanced the status version first.
	ErrVersionConflict = errors.New("status version conflict")
)

// StoreRepository loads stores and writes their operational status.
type StoreRepository interface {
	GetByID(ctx context.Context, storeID int64) (*model.Store, error)
	GetByPublicID(ctx context.Context, publicID string) (*model.Store, error)

	// UpdateStatusVersioned writes the status only if the stored version
	// still matches; returns ErrVersionConflict otherwise.
	UpdateStatusVersioned(ctx context.Context, storeID, version int64, status model.Status) error

	// SetStatus writes the status unconditionally.
	SetStatus(ctx context.Context, storeID int64, status model.Status) error
}

// OverrideRepository loads and saves the per-store override row. GetOverride
// creates the neutral row lazily on first use.
type OverrideRepository interface {
	GetOverride(ctx context.Context, storeID int64) (*model.AvailabilityOverride, error)
	SaveOverride(ctx context.Context, override *model.AvailabilityOverride) error
}

// HoursRepository loads the weekly operating-hours record. A store with no
// configured hours yields (nil, nil).
type HoursRepository interface {
	GetOperatingHours(ctx context.Context, storeID int64) (*model.OperatingHours, error)
}

// LogSink appends status transition records. Append failures must not block
// or roll back a transition.
type LogSink interface {
	AppendStatusLog(ctx context.Context, entry model.StatusLogEntry) error
}

// Clock supplies the current instant; injected so tests can pin time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
