package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
	"github.com/Heinvv10/gaztime-sub000/internal/service/dispatch"
	"github.com/Heinvv10/gaztime-sub000/internal/service/fulfillment"
	"github.com/Heinvv10/gaztime-sub000/internal/service/ledger"
)

type orderUsecase interface {
	CreateOrder(ctx context.Context, p fulfillment.CreateOrderParams) (*domain.Order, error)
	ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	AssignDriver(ctx context.Context, orderID uuid.UUID, driverID *uuid.UUID) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, cancelReason string) (*domain.Order, error)
	CompleteDelivery(ctx context.Context, orderID uuid.UUID, p fulfillment.CompleteDeliveryParams) (*domain.Order, error)
	RateOrder(ctx context.Context, orderID uuid.UUID, rating int) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, f fulfillmenttx.OrderFilter) ([]domain.Order, error)
}

type driverUsecase interface {
	CreateDriver(ctx context.Context, p fulfillment.CreateDriverParams) (*domain.Driver, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*domain.Driver, error)
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
	UpdateDriverStatus(ctx context.Context, driverID uuid.UUID, status domain.DriverStatus) (*domain.Driver, error)
	UpdateDriverLocation(ctx context.Context, driverID uuid.UUID, loc domain.Point) error
}

type cylinderUsecase interface {
	RegisterCylinder(ctx context.Context, p fulfillment.RegisterCylinderParams) (*domain.Cylinder, error)
	GetCylinder(ctx context.Context, id uuid.UUID) (*domain.Cylinder, error)
}

type offerUsecase interface {
	AcceptOffer(ctx context.Context, offerID, driverID uuid.UUID) (*domain.Order, error)
	RejectOffer(ctx context.Context, offerID, driverID uuid.UUID) error
}

type walletUsecase interface {
	Credit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, txType domain.TransactionType, reference, description string) (decimal.Decimal, error)
	Debit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, description string) (decimal.Decimal, error)
	Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	Statement(ctx context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error)
}

type movementUsecase interface {
	RecordMovement(ctx context.Context, cylinderID uuid.UUID, from, to domain.Location, actorID uuid.UUID) (*domain.CylinderMovement, error)
	History(ctx context.Context, cylinderID uuid.UUID) ([]domain.CylinderMovement, error)
	CurrentLocation(ctx context.Context, cylinderID uuid.UUID) (domain.Location, error)
}

// NewOrderUsecase wires a fulfillment Service into an orderUsecase.
func NewOrderUsecase(s *fulfillment.Service) orderUsecase { return s }

// NewDriverUsecase wires a fulfillment Service into a driverUsecase.
func NewDriverUsecase(s *fulfillment.Service) driverUsecase { return s }

// NewCylinderUsecase wires a fulfillment Service into a cylinderUsecase.
func NewCylinderUsecase(s *fulfillment.Service) cylinderUsecase { return s }

// NewOfferUsecase wires a dispatch Service into an offerUsecase.
func NewOfferUsecase(s *dispatch.Service) offerUsecase { return s }

// NewWalletUsecase wires a WalletService into a walletUsecase.
func NewWalletUsecase(s *ledger.WalletService) walletUsecase { return s }

// NewMovementUsecase wires a CylinderService into a movementUsecase.
func NewMovementUsecase(s *ledger.CylinderService) movementUsecase { return s }
