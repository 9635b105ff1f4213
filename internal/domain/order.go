package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a single product line on an order.
type OrderItem struct {
	ProductID uuid.UUID
	Name      string
	SizeKg    decimal.Decimal
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineTotal returns quantity * unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Address is a delivery destination. Nil on an order means walk-in/pod pickup.
type Address struct {
	Text     string
	Location Point
}

// DeliveryProof is the evidence captured at handover. Attached to an order
// only at the delivered transition and immutable afterwards.
type DeliveryProof struct {
	Type       ProofType
	Payload    string
	CapturedAt time.Time
}

// Order represents a cylinder order through its full lifecycle.
// It is never deleted; cancellation is a terminal status.
type Order struct {
	ID              uuid.UUID
	Reference       string
	CustomerID      uuid.UUID
	Channel         OrderChannel
	Status          OrderStatus
	Items           []OrderItem
	DeliveryAddress *Address
	DeliveryFee     decimal.Decimal
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	DriverID        *uuid.UUID
	PodID           *uuid.UUID
	DeliveryOTP     string
	Proof           *DeliveryProof
	CashCollected   *decimal.Decimal
	CancelReason    string
	Rating          *int

	CreatedAt   time.Time
	ConfirmedAt *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// TotalAmount is the sum of line totals plus the delivery fee. It is always
// derived, never stored, so it cannot drift from the items.
func (o *Order) TotalAmount() decimal.Decimal {
	total := o.DeliveryFee
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Active reports whether the order still occupies a driver capacity slot.
func (o *Order) Active() bool {
	switch o.Status {
	case OrderAssigned, OrderInTransit:
		return true
	}
	return false
}
