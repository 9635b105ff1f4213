package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// cylinderReads defines the read side used by the cylinder ledger service.
type cylinderReads interface {
	GetCylinder(ctx context.Context, id uuid.UUID) (*domain.Cylinder, error)
	ListMovements(ctx context.Context, cylinderID uuid.UUID) ([]domain.CylinderMovement, error)
}

// walletReads defines the read side used by the wallet ledger service.
type walletReads interface {
	WalletBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	ListWalletTransactions(ctx context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error)
}

// txRunner is re-exported locally to keep constructors narrow.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx fulfillmenttx.Repository) error) error
}
