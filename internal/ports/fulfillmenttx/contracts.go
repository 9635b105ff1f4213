package fulfillmenttx

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

// Repository is the set of storage operations available inside one
// fulfillment transaction. A status change and its side effects (cylinder
// movements, wallet entries, capacity adjustments) commit together or not
// at all by running against the same Repository instance.
type Repository interface {
	// Orders
	InsertOrder(ctx context.Context, o *domain.Order) error
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateOrder(ctx context.Context, o *domain.Order) error

	// Drivers
	GetDriverForUpdate(ctx context.Context, id uuid.UUID) (*domain.Driver, error)
	UpdateDriver(ctx context.Context, d *domain.Driver) error
	ListDispatchCandidates(ctx context.Context) ([]domain.Driver, error)

	// Dispatch offers
	InsertOffer(ctx context.Context, o *domain.DispatchOffer) error
	GetOfferForUpdate(ctx context.Context, id uuid.UUID) (*domain.DispatchOffer, error)
	UpdateOffer(ctx context.Context, o *domain.DispatchOffer) error
	PendingOfferForOrder(ctx context.Context, orderID uuid.UUID) (*domain.DispatchOffer, error)
	PendingOffersForDriver(ctx context.Context, driverID uuid.UUID) ([]domain.DispatchOffer, error)
	OfferedDriverIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)

	// Cylinder ledger
	InsertCylinder(ctx context.Context, c *domain.Cylinder) error
	GetCylinderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Cylinder, error)
	GetCylinderBySerialForUpdate(ctx context.Context, serial string) (*domain.Cylinder, error)
	UpdateCylinder(ctx context.Context, c *domain.Cylinder) error
	LastMovement(ctx context.Context, cylinderID uuid.UUID) (*domain.CylinderMovement, error)
	InsertMovement(ctx context.Context, m *domain.CylinderMovement) error

	// Wallet ledger
	LockWallet(ctx context.Context, customerID uuid.UUID) error
	WalletBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	InsertWalletTransaction(ctx context.Context, tx *domain.WalletTransaction) error
}

// Runner is a transaction runner.
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}

// OrderFilter narrows ListOrders reads. Nil fields are ignored.
type OrderFilter struct {
	Status     *domain.OrderStatus
	CustomerID *uuid.UUID
	DriverID   *uuid.UUID
	From       *time.Time
	To         *time.Time
}
