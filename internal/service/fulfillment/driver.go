package fulfillment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// CreateDriverParams carries everything needed to register a driver.
type CreateDriverParams struct {
	Name  string
	Phone string
}

// CreateDriver registers a new driver. New drivers start offline and come
// online through a status update once they are on shift.
func (s *Service) CreateDriver(ctx context.Context, p CreateDriverParams) (*domain.Driver, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, apperr.ErrInvalid
	}
	if !domain.ValidatePhone(p.Phone) {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	d := &domain.Driver{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(p.Name),
		Phone:      p.Phone,
		Status:     domain.DriverOffline,
		HiredAt:    now,
		LastSeenAt: &now,
	}
	if err := s.repo.InsertDriver(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("driver registered",
		logx.String("event", "driver_registered"),
		logx.String("driver_id", d.ID.String()),
	)
	return d, nil
}

// GetDriver reads one driver.
func (s *Service) GetDriver(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.repo.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// ListDrivers reads the whole fleet.
func (s *Service) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListDrivers(ctx)
}

// UpdateDriverStatus changes a driver's availability. A driver with active
// deliveries cannot go offline; a driver going offline forfeits any open
// offers so the affected orders move on to other candidates.
func (s *Service) UpdateDriverStatus(ctx context.Context, driverID uuid.UUID, status domain.DriverStatus) (*domain.Driver, error) {
	if !status.Valid() || status == domain.DriverOnDelivery {
		// on_delivery is derived from assignments, never set directly
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result *domain.Driver
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		d, err := tx.GetDriverForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.ActiveOrders > 0 && status != domain.DriverOnline {
			return apperr.ErrConflict
		}
		if d.ActiveOrders > 0 && status == domain.DriverOnline {
			// still mid-delivery; status stays derived
			result = d
			return nil
		}
		d.Status = status
		seen := s.now()
		d.LastSeenAt = &seen
		if err := tx.UpdateDriver(ctx, d); err != nil {
			return err
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == domain.DriverOffline || status == domain.DriverOnBreak {
		if err := s.dispatch.ForfeitDriverOffers(ctx, driverID); err != nil {
			s.logger.Warn("offer forfeit failed",
				logx.String("driver_id", driverID.String()),
				logx.Err(err),
			)
		}
	}
	s.logger.Info("driver status updated",
		logx.String("event", "driver_status_updated"),
		logx.String("driver_id", driverID.String()),
		logx.String("status", string(result.Status)),
	)
	return result, nil
}

// UpdateDriverLocation records a position ping from the driver app.
func (s *Service) UpdateDriverLocation(ctx context.Context, driverID uuid.UUID, loc domain.Point) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		d, err := tx.GetDriverForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		d.Location = &loc
		seen := s.now()
		d.LastSeenAt = &seen
		return tx.UpdateDriver(ctx, d)
	})
}
