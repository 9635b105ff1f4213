package domain

import (
	"time"

	"github.com/google/uuid"
)

// DispatchOffer is a time-bounded proposal of one order to one driver.
// At most one pending offer exists per order at any instant, which is what
// keeps two drivers from accepting the same order.
type DispatchOffer struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	DriverID   uuid.UUID
	State      OfferState
	OfferedAt  time.Time
	ExpiresAt  time.Time
	ResolvedAt *time.Time
}

// Open reports whether the offer is still awaiting a driver response at t.
func (o *DispatchOffer) Open(t time.Time) bool {
	return o.State == OfferPending && t.Before(o.ExpiresAt)
}
