package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// repository defines storage operations required by the assigner.
type repository interface {
	WithTx(ctx context.Context, fn func(tx fulfillmenttx.Repository) error) error
	GetOffer(ctx context.Context, id uuid.UUID) (*domain.DispatchOffer, error)
	PendingOffersByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.DispatchOffer, error)
	ListExpiredPendingOffers(ctx context.Context, now time.Time) ([]domain.DispatchOffer, error)
	ListDispatchableOrders(ctx context.Context) ([]uuid.UUID, error)
}

// notifier pushes offers to the driver app. Delivery failures are logged
// and swallowed; the driver can still poll for open offers.
type notifier interface {
	OfferCreated(ctx context.Context, offer domain.DispatchOffer) error
}

// counter is a minimal metrics counter.
type counter interface {
	Inc()
}
