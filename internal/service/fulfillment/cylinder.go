package fulfillment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// RegisterCylinderParams carries everything needed to put a cylinder on the
// books.
type RegisterCylinderParams struct {
	SerialNumber string
	SizeKg       decimal.Decimal
	Location     domain.Location
	ActorID      uuid.UUID
}

// RegisterCylinder adds a cylinder to the fleet and writes its genesis
// movement, anchoring the ledger at the claimed starting location. Both
// commit together.
func (s *Service) RegisterCylinder(ctx context.Context, p RegisterCylinderParams) (*domain.Cylinder, error) {
	if strings.TrimSpace(p.SerialNumber) == "" || !p.SizeKg.IsPositive() || !p.Location.Type.Valid() {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	c := &domain.Cylinder{
		ID:           uuid.New(),
		SerialNumber: strings.TrimSpace(p.SerialNumber),
		SizeKg:       p.SizeKg,
		Status:       domain.CylinderNew,
		CreatedAt:    now,
	}
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		// a reused serial surfaces as apperr.ErrConflict from the store
		if err := tx.InsertCylinder(ctx, c); err != nil {
			return err
		}
		m := &domain.CylinderMovement{
			ID:         uuid.New(),
			CylinderID: c.ID,
			From:       p.Location,
			To:         p.Location,
			ActorID:    p.ActorID,
			RecordedAt: now,
		}
		return tx.InsertMovement(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cylinder registered",
		logx.String("event", "cylinder_registered"),
		logx.String("cylinder_id", c.ID.String()),
		logx.String("serial", c.SerialNumber),
	)
	return c, nil
}

// GetCylinder reads one cylinder.
func (s *Service) GetCylinder(ctx context.Context, id uuid.UUID) (*domain.Cylinder, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.repo.GetCylinder(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}
