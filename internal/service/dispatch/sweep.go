package dispatch

import (
	"context"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// ExpireOffers resolves every open offer whose window elapsed and advances
// the affected orders to their next candidates. Each offer is re-checked
// under its order's lock, so a driver response racing the sweep cannot
// double-advance an order. Returns the number of offers expired.
func (s *Service) ExpireOffers(ctx context.Context) (int, error) {
	stale, err := s.repo.ListExpiredPendingOffers(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, head := range stale {
		release := s.locks.Lock(head.OrderID)
		var resolved bool
		err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
			offer, err := tx.GetOfferForUpdate(ctx, head.ID)
			if err != nil {
				return err
			}
			if offer == nil || offer.State != domain.OfferPending {
				return nil
			}
			now := s.clock.Now()
			if now.Before(offer.ExpiresAt) {
				return nil
			}
			resolved = true
			return resolveOffer(ctx, tx, offer, domain.OfferExpired, now)
		})
		release()
		if err != nil {
			return expired, err
		}
		if !resolved {
			continue
		}

		expired++
		if s.metrics.Expired != nil {
			s.metrics.Expired.Inc()
		}
		s.logger.Info("offer expired",
			logx.String("event", "offer_expired"),
			logx.String("order_id", head.OrderID.String()),
			logx.String("driver_id", head.DriverID.String()),
		)
		if err := s.advance(ctx, head.OrderID); err != nil {
			return expired, err
		}
	}
	return expired, nil
}

// DispatchPending re-offers confirmed orders that have no open offer,
// picking up orders that previously exhausted all candidates.
func (s *Service) DispatchPending(ctx context.Context) error {
	ids, err := s.repo.ListDispatchableOrders(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.advance(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Sweep runs one expiry-and-retry pass. The worker calls this on a timer.
func (s *Service) Sweep(ctx context.Context) error {
	if _, err := s.ExpireOffers(ctx); err != nil {
		return err
	}
	return s.DispatchPending(ctx)
}
