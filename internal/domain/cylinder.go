package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cylinder represents one physical gas cylinder. Its current location is
// never stored on the record; it is derived from the movement ledger.
type Cylinder struct {
	ID              uuid.UUID
	SerialNumber    string
	SizeKg          decimal.Decimal
	Status          CylinderStatus
	FillCount       int
	LastInspectedAt *time.Time
	CreatedAt       time.Time
}

// Location identifies one place a cylinder can be: a depot, a pod, a
// driver's vehicle or a customer.
type Location struct {
	Type LocationType
	ID   uuid.UUID
}

// Equal reports whether two locations are the same place.
func (l Location) Equal(other Location) bool {
	return l.Type == other.Type && l.ID == other.ID
}

// CylinderMovement is one immutable custody-change entry in the cylinder
// ledger. The cylinder's current location is the To of its latest movement.
type CylinderMovement struct {
	ID         uuid.UUID
	CylinderID uuid.UUID
	From       Location
	To         Location
	ActorID    uuid.UUID
	RecordedAt time.Time
}

// CurrentLocation folds movements in recorded order and returns the last To.
// The second return is false when the cylinder has no movements yet.
func CurrentLocation(movements []CylinderMovement) (Location, bool) {
	if len(movements) == 0 {
		return Location{}, false
	}
	return movements[len(movements)-1].To, true
}
