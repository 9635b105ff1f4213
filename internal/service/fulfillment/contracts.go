package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
	"github.com/Heinvv10/gaztime-sub000/internal/service/events"
)

// repository defines storage operations required by the fulfillment service.
type repository interface {
	WithTx(ctx context.Context, fn func(tx fulfillmenttx.Repository) error) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, f fulfillmenttx.OrderFilter) ([]domain.Order, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*domain.Driver, error)
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
	InsertDriver(ctx context.Context, d *domain.Driver) error
	GetCylinder(ctx context.Context, id uuid.UUID) (*domain.Cylinder, error)
}

// dispatcher is the subset of dispatch operations fulfillment drives.
type dispatcher interface {
	Dispatch(ctx context.Context, orderID uuid.UUID) error
	ForfeitDriverOffers(ctx context.Context, driverID uuid.UUID) error
}

// publisher emits order lifecycle events to the bus. Publishing is
// best-effort: the sweep re-dispatches confirmed orders a lost event
// would otherwise strand.
type publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// otpSender delivers the confirmation code to the customer.
type otpSender interface {
	SendOTP(ctx context.Context, customerID uuid.UUID, orderRef, code string) error
}

// counter is a minimal metrics counter.
type counter interface {
	Inc()
}
