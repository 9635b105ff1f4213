package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is a single order lifecycle event on the bus.
type Event struct {
	OrderID   uuid.UUID `json:"order_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
