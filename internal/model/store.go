package model

import "time"

// Status is the operational status of a store.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// AcceptingOrders reports whether a store in this status takes orders.
func (s Status) AcceptingOrders() bool {
	return s == StatusOpen
}

// Store is a merchant storefront on the marketplace.
type Store struct {
	ID                int64     `json:"id"`
	PublicID          string    `json:"public_id"`
	Name              string    `json:"name"`
	Timezone          string    `json:"timezone"`
	OperationalStatus Status    `json:"operational_status"`
	IsAcceptingOrders bool      `json:"is_accepting_orders"`
	StatusVersion     int64     `json:"status_version"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
