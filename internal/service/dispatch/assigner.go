package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/config"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
	"github.com/Heinvv10/gaztime-sub000/internal/service/orderlock"
)

// Metrics are the counters the assigner reports into.
type Metrics struct {
	Assigned counter
	Expired  counter
}

// Service matches confirmed orders to drivers through sequential,
// time-bounded offers. At most one driver holds an open offer for a given
// order, which is what prevents two drivers from accepting the same one.
type Service struct {
	repo    repository
	locks   *orderlock.Set
	notify  notifier
	clock   Clock
	cfg     config.Dispatch
	logger  logx.Logger
	metrics Metrics
}

// NewService creates and configures a dispatch Service.
func NewService(repo repository, locks *orderlock.Set, notify notifier, cfg config.Dispatch, clock Clock, logger logx.Logger, metrics Metrics) *Service {
	if clock == nil {
		clock = RealClock{}
	}
	return &Service{
		repo:    repo,
		locks:   locks,
		notify:  notify,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Dispatch offers a confirmed order to the best-ranked eligible driver.
// Returns ErrNoDriverAvailable when every candidate is excluded, at cap or
// out of range; the order stays confirmed and is retried by the sweep.
// A no-op when an open offer is already outstanding.
func (s *Service) Dispatch(ctx context.Context, orderID uuid.UUID) error {
	release := s.locks.Lock(orderID)
	defer release()

	var offer *domain.DispatchOffer
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if o.Status != domain.OrderConfirmed {
			return apperr.ErrConflict
		}
		if o.DeliveryAddress == nil {
			// pod/walk-in orders are fulfilled over the counter
			return apperr.ErrInvalid
		}

		now := s.clock.Now()
		if pending, err := tx.PendingOfferForOrder(ctx, orderID); err != nil {
			return err
		} else if pending != nil {
			if pending.Open(now) {
				return nil
			}
			if err := resolveOffer(ctx, tx, pending, domain.OfferExpired, now); err != nil {
				return err
			}
		}

		excluded, err := tx.OfferedDriverIDs(ctx, orderID)
		if err != nil {
			return err
		}
		candidates, err := tx.ListDispatchCandidates(ctx)
		if err != nil {
			return err
		}

		best, ok := rank(candidates, excluded, o.DeliveryAddress.Location, s.cfg.MaxActiveDeliveries, s.cfg.SearchRadiusKm)
		if !ok {
			return apperr.ErrNoDriverAvailable
		}

		offer = &domain.DispatchOffer{
			ID:        uuid.New(),
			OrderID:   orderID,
			DriverID:  best.ID,
			State:     domain.OfferPending,
			OfferedAt: now,
			ExpiresAt: now.Add(s.cfg.OfferTimeout),
		}
		return tx.InsertOffer(ctx, offer)
	})
	if err != nil {
		return err
	}
	if offer == nil {
		// open offer already outstanding
		return nil
	}

	s.logger.Info("order offered",
		logx.String("event", "order_offered"),
		logx.String("order_id", offer.OrderID.String()),
		logx.String("driver_id", offer.DriverID.String()),
		logx.Time("expires_at", offer.ExpiresAt),
	)
	if s.notify != nil {
		if err := s.notify.OfferCreated(ctx, *offer); err != nil {
			s.logger.Warn("offer notification failed",
				logx.String("offer_id", offer.ID.String()),
				logx.Err(err),
			)
		}
	}
	return nil
}

// AcceptOffer records a driver's acceptance: the offer resolves, the order
// moves to assigned and the driver's capacity slot is taken, all in one
// transaction. Accepting an already-accepted offer again is a no-op success.
func (s *Service) AcceptOffer(ctx context.Context, offerID, driverID uuid.UUID) (*domain.Order, error) {
	head, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if head == nil {
		return nil, apperr.ErrNotFound
	}

	release := s.locks.Lock(head.OrderID)
	defer release()

	var result *domain.Order
	var lapsed bool
	err = s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		offer, err := tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer == nil {
			return apperr.ErrNotFound
		}
		if offer.DriverID != driverID {
			return apperr.ErrInvalid
		}

		now := s.clock.Now()
		switch offer.State {
		case domain.OfferAccepted:
			// retried acceptance: return the already-assigned order
			result, err = tx.GetOrderForUpdate(ctx, offer.OrderID)
			return err
		case domain.OfferPending:
		default:
			return apperr.ErrConflict
		}
		if !now.Before(offer.ExpiresAt) {
			// commit the expiry, then report the conflict
			lapsed = true
			return resolveOffer(ctx, tx, offer, domain.OfferExpired, now)
		}

		o, err := tx.GetOrderForUpdate(ctx, offer.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if o.Status != domain.OrderConfirmed {
			return apperr.ErrConflict
		}

		d, err := tx.GetDriverForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Status != domain.DriverOnline && d.Status != domain.DriverOnDelivery {
			return apperr.ErrConflict
		}
		if !d.HasCapacity(s.cfg.MaxActiveDeliveries) {
			return apperr.ErrCapacityExceeded
		}

		if err := resolveOffer(ctx, tx, offer, domain.OfferAccepted, now); err != nil {
			return err
		}

		o.DriverID = &driverID
		if err := domain.ApplyTransition(o, domain.OrderAssigned, now); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}

		d.ActiveOrders++
		d.Status = domain.DriverOnDelivery
		if err := tx.UpdateDriver(ctx, d); err != nil {
			return err
		}

		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if lapsed {
		return nil, apperr.ErrConflict
	}

	if s.metrics.Assigned != nil {
		s.metrics.Assigned.Inc()
	}
	s.logger.Info("driver assigned",
		logx.String("event", "driver_assigned"),
		logx.String("order_id", result.ID.String()),
		logx.String("driver_id", driverID.String()),
	)
	return result, nil
}

// RejectOffer records a driver's rejection and immediately advances to the
// next-ranked candidate. The rejecting driver is never re-offered this order.
func (s *Service) RejectOffer(ctx context.Context, offerID, driverID uuid.UUID) error {
	head, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if head == nil {
		return apperr.ErrNotFound
	}

	release := s.locks.Lock(head.OrderID)
	err = s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		offer, err := tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer == nil {
			return apperr.ErrNotFound
		}
		if offer.DriverID != driverID {
			return apperr.ErrInvalid
		}
		if offer.State != domain.OfferPending {
			return apperr.ErrConflict
		}
		return resolveOffer(ctx, tx, offer, domain.OfferRejected, s.clock.Now())
	})
	release()
	if err != nil {
		return err
	}

	s.logger.Info("offer rejected",
		logx.String("event", "offer_rejected"),
		logx.String("order_id", head.OrderID.String()),
		logx.String("driver_id", driverID.String()),
	)
	return s.advance(ctx, head.OrderID)
}

// ForfeitDriverOffers withdraws every open offer held by a driver, used
// when the driver goes offline with an offer outstanding. Each affected
// order advances to its next candidate.
func (s *Service) ForfeitDriverOffers(ctx context.Context, driverID uuid.UUID) error {
	offers, err := s.repo.PendingOffersByDriver(ctx, driverID)
	if err != nil {
		return err
	}
	for _, head := range offers {
		release := s.locks.Lock(head.OrderID)
		err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
			offer, err := tx.GetOfferForUpdate(ctx, head.ID)
			if err != nil {
				return err
			}
			if offer == nil || offer.State != domain.OfferPending {
				return nil
			}
			return resolveOffer(ctx, tx, offer, domain.OfferWithdrawn, s.clock.Now())
		})
		release()
		if err != nil {
			return err
		}
		if err := s.advance(ctx, head.OrderID); err != nil {
			return err
		}
	}
	return nil
}

// ForfeitOrderOffers withdraws the open offer for an order, if any. Used
// when a cancellation event is replayed and the offer may have survived.
func (s *Service) ForfeitOrderOffers(ctx context.Context, orderID uuid.UUID) error {
	release := s.locks.Lock(orderID)
	defer release()

	return s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		return WithdrawOfferTx(ctx, tx, orderID, s.clock.Now())
	})
}

// advance re-runs dispatch for an order, treating exhaustion and state
// races as normal outcomes rather than failures.
func (s *Service) advance(ctx context.Context, orderID uuid.UUID) error {
	err := s.Dispatch(ctx, orderID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrNoDriverAvailable),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrInvalid),
		errors.Is(err, apperr.ErrNotFound):
		return nil
	default:
		return err
	}
}

// resolveOffer finalizes an offer in place and persists it.
func resolveOffer(ctx context.Context, tx fulfillmenttx.Repository, o *domain.DispatchOffer, state domain.OfferState, now time.Time) error {
	o.State = state
	o.ResolvedAt = &now
	return tx.UpdateOffer(ctx, o)
}

// WithdrawOfferTx withdraws the open offer for an order inside an already
// open transaction. Cancellation uses this so the withdrawal commits
// atomically with the order's terminal transition.
func WithdrawOfferTx(ctx context.Context, tx fulfillmenttx.Repository, orderID uuid.UUID, now time.Time) error {
	pending, err := tx.PendingOfferForOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if pending == nil {
		return nil
	}
	return resolveOffer(ctx, tx, pending, domain.OfferWithdrawn, now)
}
