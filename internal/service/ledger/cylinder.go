package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// CylinderService maintains the append-only cylinder movement ledger.
// A cylinder's current location is always the To of its latest movement.
type CylinderService struct {
	repo             txRunner
	reads            cylinderReads
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewCylinderService creates a new CylinderService.
func NewCylinderService(repo txRunner, reads cylinderReads, timeout time.Duration, logger logx.Logger) *CylinderService {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &CylinderService{
		repo:             repo,
		reads:            reads,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *CylinderService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// RecordMovement appends one custody change. The claimed from location must
// equal the cylinder's current derived location or the move is rejected
// with ErrLocationMismatch, so a caller acting on a stale view cannot
// corrupt the ledger.
func (s *CylinderService) RecordMovement(ctx context.Context, cylinderID uuid.UUID, from, to domain.Location, actorID uuid.UUID) (*domain.CylinderMovement, error) {
	if !from.Type.Valid() || !to.Type.Valid() {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var moved *domain.CylinderMovement
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		c, err := tx.GetCylinderForUpdate(ctx, cylinderID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound
		}
		moved, err = MoveTx(ctx, tx, c, from, to, actorID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cylinder moved",
		logx.String("event", "cylinder_moved"),
		logx.String("cylinder_id", cylinderID.String()),
		logx.String("to_type", string(to.Type)),
		logx.String("to_id", to.ID.String()),
	)
	return moved, nil
}

// MoveTx appends a movement for an already-locked cylinder inside an open
// transaction. Fulfillment uses this to commit delivery-time movements
// atomically with the order's status change.
func MoveTx(ctx context.Context, tx fulfillmenttx.Repository, c *domain.Cylinder, from, to domain.Location, actorID uuid.UUID, now time.Time) (*domain.CylinderMovement, error) {
	if c.Status == domain.CylinderCondemned {
		return nil, apperr.ErrConflict
	}

	last, err := tx.LastMovement(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	// A cylinder with no history accepts its first claimed location as
	// genesis; after that the ledger is authoritative.
	if last != nil && !last.To.Equal(from) {
		return nil, apperr.ErrLocationMismatch
	}

	m := &domain.CylinderMovement{
		ID:         uuid.New(),
		CylinderID: c.ID,
		From:       from,
		To:         to,
		ActorID:    actorID,
		RecordedAt: now,
	}
	if err := tx.InsertMovement(ctx, m); err != nil {
		return nil, err
	}

	if st, ok := statusForLocation(to.Type); ok && c.Status != st {
		c.Status = st
		if err := tx.UpdateCylinder(ctx, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// statusForLocation maps a destination to the cylinder status it implies.
// Depot and pod destinations keep the current status; whether the unit is
// filled, empty or condemned there is decided by depot workflows.
func statusForLocation(t domain.LocationType) (domain.CylinderStatus, bool) {
	switch t {
	case domain.LocationVehicle:
		return domain.CylinderInTransit, true
	case domain.LocationCustomer:
		return domain.CylinderWithCustomer, true
	}
	return "", false
}

// CurrentLocation folds the movement history and returns the latest To.
func (s *CylinderService) CurrentLocation(ctx context.Context, cylinderID uuid.UUID) (domain.Location, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	movements, err := s.reads.ListMovements(ctx, cylinderID)
	if err != nil {
		return domain.Location{}, err
	}
	loc, ok := domain.CurrentLocation(movements)
	if !ok {
		return domain.Location{}, apperr.ErrNotFound
	}
	return loc, nil
}

// History returns the full movement ledger of a cylinder, oldest first.
func (s *CylinderService) History(ctx context.Context, cylinderID uuid.UUID) ([]domain.CylinderMovement, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.reads.GetCylinder(ctx, cylinderID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return s.reads.ListMovements(ctx, cylinderID)
}
