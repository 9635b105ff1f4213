package domain

import (
	"strings"
	"time"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
)

// ApplyTransition moves an order to the target status, enforcing the
// transition table and the structural preconditions of each target:
// assigned requires a driver, delivered requires an attached proof,
// cancelled requires a reason. Proof content validation happens before the
// proof is attached; this only guarantees the record is shaped legally.
// On failure the order is left untouched.
func ApplyTransition(o *Order, to OrderStatus, now time.Time) error {
	if o == nil {
		return apperr.ErrInvalid
	}
	if !CanTransition(o.Status, to) {
		return apperr.InvalidTransitionError{From: string(o.Status), To: string(to)}
	}

	switch to {
	case OrderConfirmed:
		t := now
		o.ConfirmedAt = &t
	case OrderAssigned:
		if o.DriverID == nil {
			return apperr.ErrInvalid
		}
		t := now
		o.AssignedAt = &t
	case OrderInTransit:
		t := now
		o.PickedUpAt = &t
	case OrderDelivered:
		if o.Proof == nil {
			return apperr.ErrProofMissing
		}
		t := now
		o.DeliveredAt = &t
	case OrderCompleted:
		t := now
		o.CompletedAt = &t
	case OrderCancelled:
		if strings.TrimSpace(o.CancelReason) == "" {
			return apperr.ErrInvalid
		}
		t := now
		o.CancelledAt = &t
	}

	o.Status = to
	return nil
}
