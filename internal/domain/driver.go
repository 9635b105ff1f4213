package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Driver represents a delivery driver.
type Driver struct {
	ID              uuid.UUID
	Name            string
	Phone           string
	Status          DriverStatus
	Location        *Point
	ActiveOrders    int
	RatingAvg       float64
	RatingCount     int
	TotalDeliveries int
	HiredAt         time.Time
	LastSeenAt      *time.Time
}

// HasCapacity reports whether the driver may take one more active order.
func (d *Driver) HasCapacity(maxActive int) bool {
	return d.ActiveOrders < maxActive
}

// Dispatchable reports whether the driver may be offered work at all.
// A driver at cap or without a known location is skipped by ranking.
func (d *Driver) Dispatchable(maxActive int) bool {
	if d.Status != DriverOnline && d.Status != DriverOnDelivery {
		return false
	}
	return d.Location != nil && d.HasCapacity(maxActive)
}

// rePhone is a regex to validate phone numbers
var rePhone = regexp.MustCompile(`^\+[0-9]{9,14}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
