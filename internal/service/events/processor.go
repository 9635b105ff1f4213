package events

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
)

// DispatchPort abstracts the subset of dispatch operations the Processor
// needs when handling order events.
type DispatchPort interface {
	Dispatch(ctx context.Context, orderID uuid.UUID) error
	ForfeitOrderOffers(ctx context.Context, orderID uuid.UUID) error
}

// Processor reacts to order events consumed from the bus.
type Processor struct {
	dispatch DispatchPort
	factory  *actionFactory
}

// NewProcessor creates a new events Processor.
func NewProcessor(dispatch DispatchPort) *Processor {
	p := &Processor{dispatch: dispatch}
	p.factory = newActionFactory(p.onConfirmed, p.onCancelled)
	return p
}

// Handle processes a single order event. Unknown statuses are skipped.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	fn, ok := p.factory.get(e.Status)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onConfirmed(ctx context.Context, e Event) error {
	err := p.dispatch.Dispatch(ctx, e.OrderID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrNoDriverAvailable),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrInvalid),
		errors.Is(err, apperr.ErrNotFound):
		// normal outcomes: the order waits for the sweep or was already
		// handled by the time the event arrived
		return nil
	default:
		return err
	}
}

func (p *Processor) onCancelled(ctx context.Context, e Event) error {
	// cancellation withdraws its own offer transactionally; this is a
	// belt-and-braces cleanup for events replayed after a crash
	err := p.dispatch.ForfeitOrderOffers(ctx, e.OrderID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}
