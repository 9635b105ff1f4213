package kafka

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/service/events"
)

// EventDTO is the wire shape of an order lifecycle event.
type EventDTO struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDomain converts an EventDTO to an events.Event.
func ToDomain(dto EventDTO) (events.Event, error) {
	id, err := uuid.Parse(strings.TrimSpace(dto.OrderID))
	if err != nil {
		return events.Event{}, err
	}
	return events.Event{
		OrderID:   id,
		Status:    strings.TrimSpace(dto.Status),
		CreatedAt: dto.CreatedAt,
	}, nil
}

// FromDomain converts an events.Event to its wire shape.
func FromDomain(e events.Event) EventDTO {
	return EventDTO{
		OrderID:   e.OrderID.String(),
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
	}
}
