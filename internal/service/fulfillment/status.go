package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
	"github.com/Heinvv10/gaztime-sub000/internal/service/dispatch"
	"github.com/Heinvv10/gaztime-sub000/internal/service/ledger"
	"github.com/Heinvv10/gaztime-sub000/internal/service/proof"
)

// AssignDriver assigns a driver to a confirmed order. With a nil driverID
// the order goes through the offer flow; a concrete driverID is a direct
// ops assignment that bypasses offers, withdrawing any open one.
func (s *Service) AssignDriver(ctx context.Context, orderID uuid.UUID, driverID *uuid.UUID) (*domain.Order, error) {
	if driverID == nil {
		if err := s.dispatch.Dispatch(ctx, orderID); err != nil {
			return nil, err
		}
		return s.GetOrder(ctx, orderID)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	release := s.locks.Lock(orderID)
	defer release()

	var result *domain.Order
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}

		now := s.now()
		if err := dispatch.WithdrawOfferTx(ctx, tx, orderID, now); err != nil {
			return err
		}

		d, err := tx.GetDriverForUpdate(ctx, *driverID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Status == domain.DriverOffline {
			return apperr.ErrConflict
		}
		if !d.HasCapacity(s.maxActive) {
			return apperr.ErrCapacityExceeded
		}

		o.DriverID = driverID
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

	s.logger.Info("driver assigned",
		logx.String("event", "driver_assigned"),
		logx.String("order_id", result.ID.String()),
		logx.String("driver_id", driverID.String()),
	)
	return result, nil
}

// UpdateOrderStatus applies a caller-requested transition. Assignment and
// delivery have dedicated entry points; this handles in_transit, completed
// and cancelled.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, cancelReason string) (*domain.Order, error) {
	switch to {
	case domain.OrderInTransit, domain.OrderCompleted, domain.OrderCancelled:
	default:
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	release := s.locks.Lock(orderID)
	defer release()

	var result *domain.Order
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}

		now := s.now()
		if to == domain.OrderCancelled {
			if err := s.cancelTx(ctx, tx, o, cancelReason, now); err != nil {
				return err
			}
		} else {
			if err := domain.ApplyTransition(o, to, now); err != nil {
				return err
			}
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if to == domain.OrderCancelled && s.metrics.Cancelled != nil {
		s.metrics.Cancelled.Inc()
	}
	s.logger.Info("order status updated",
		logx.String("event", "order_status_updated"),
		logx.String("order_id", result.ID.String()),
		logx.String("status", string(result.Status)),
	)
	s.publishEvent(ctx, result.ID, result.Status)
	return result, nil
}

// cancelTx performs the cancellation side effects: the open offer is
// withdrawn, an assigned driver gets the capacity slot back, and a wallet
// payment already taken is refunded, all in the caller's transaction.
func (s *Service) cancelTx(ctx context.Context, tx fulfillmenttx.Repository, o *domain.Order, reason string, now time.Time) error {
	wasActive := o.Active()
	o.CancelReason = reason
	if err := domain.ApplyTransition(o, domain.OrderCancelled, now); err != nil {
		return err
	}

	if err := dispatch.WithdrawOfferTx(ctx, tx, o.ID, now); err != nil {
		return err
	}
	if wasActive && o.DriverID != nil {
		if err := releaseDriverTx(ctx, tx, *o.DriverID, false); err != nil {
			return err
		}
	}
	if o.PaymentStatus == domain.PaymentPaid && o.PaymentMethod == domain.PayWallet {
		if _, err := ledger.CreditTx(ctx, tx, o.CustomerID, o.TotalAmount(), domain.TxRefund, o.Reference, "order cancelled", now); err != nil {
			return err
		}
		o.PaymentStatus = domain.PaymentRefunded
	}
	return nil
}

// CompleteDeliveryParams carries the proof and the physical outcome of a
// delivery stop.
type CompleteDeliveryParams struct {
	Proof           domain.DeliveryProof
	DeliveredSerial string
	ReturnedSerial  string
	CashCollected   *decimal.Decimal
}

// CompleteDelivery validates the proof and commits the delivered transition
// together with payment capture, cylinder custody changes and the driver's
// capacity release. Completing an already-delivered order again is a no-op
// success. A failed wallet debit aborts everything; the order stays
// in_transit for a retry after top-up or a switch to cash.
func (s *Service) CompleteDelivery(ctx context.Context, orderID uuid.UUID, p CompleteDeliveryParams) (*domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	release := s.locks.Lock(orderID)
	defer release()

	var result *domain.Order
	var replayed bool
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}

		switch o.Status {
		case domain.OrderDelivered, domain.OrderCompleted:
			result, replayed = o, true
			return nil
		case domain.OrderInTransit:
		default:
			return apperr.InvalidTransitionError{From: string(o.Status), To: string(domain.OrderDelivered)}
		}
		if o.DriverID == nil {
			return apperr.ErrInvalid
		}
		if err := proof.Validate(o.DeliveryOTP, &p.Proof); err != nil {
			return err
		}

		now := s.now()
		if err := s.captureTx(ctx, tx, o, p.CashCollected, now); err != nil {
			return err
		}
		if err := moveCylindersTx(ctx, tx, o, p.DeliveredSerial, p.ReturnedSerial, now); err != nil {
			return err
		}

		pr := p.Proof
		if pr.CapturedAt.IsZero() {
			pr.CapturedAt = now
		}
		o.Proof = &pr
		if err := domain.ApplyTransition(o, domain.OrderDelivered, now); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}

		if err := releaseDriverTx(ctx, tx, *o.DriverID, true); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInsufficientFunds) && s.metrics.DebitsRejected != nil {
			s.metrics.DebitsRejected.Inc()
		}
		return nil, err
	}
	if replayed {
		return result, nil
	}

	if s.metrics.Delivered != nil {
		s.metrics.Delivered.Inc()
	}
	s.logger.Info("order delivered",
		logx.String("event", "order_delivered"),
		logx.String("order_id", result.ID.String()),
		logx.String("driver_id", result.DriverID.String()),
		logx.String("proof_type", string(result.Proof.Type)),
	)
	s.publishEvent(ctx, result.ID, domain.OrderDelivered)
	return result, nil
}

// captureTx settles payment at the doorstep. Wallet orders are debited for
// the full amount; cash orders record what the driver collected.
func (s *Service) captureTx(ctx context.Context, tx fulfillmenttx.Repository, o *domain.Order, cash *decimal.Decimal, now time.Time) error {
	if o.PaymentStatus != domain.PaymentPending {
		return nil
	}
	switch o.PaymentMethod {
	case domain.PayWallet:
		if _, err := ledger.DebitTx(ctx, tx, o.CustomerID, o.TotalAmount(), o.Reference, "order payment", now); err != nil {
			return err
		}
	case domain.PayCash:
		if cash == nil || cash.IsNegative() {
			return apperr.ErrInvalid
		}
		o.CashCollected = cash
	case domain.PayCard:
		// card settles upstream; the order arrives already paid
		return nil
	}
	o.PaymentStatus = domain.PaymentPaid
	return nil
}

// moveCylindersTx records the custody changes of the stop: the full unit
// goes from the driver's vehicle to the customer, and an exchanged empty
// comes back the other way.
func moveCylindersTx(ctx context.Context, tx fulfillmenttx.Repository, o *domain.Order, deliveredSerial, returnedSerial string, now time.Time) error {
	vehicle := domain.Location{Type: domain.LocationVehicle, ID: *o.DriverID}
	customer := domain.Location{Type: domain.LocationCustomer, ID: o.CustomerID}

	if deliveredSerial != "" {
		c, err := tx.GetCylinderBySerialForUpdate(ctx, deliveredSerial)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound
		}
		if _, err := ledger.MoveTx(ctx, tx, c, vehicle, customer, *o.DriverID, now); err != nil {
			return err
		}
	}
	if returnedSerial != "" {
		c, err := tx.GetCylinderBySerialForUpdate(ctx, returnedSerial)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound
		}
		if _, err := ledger.MoveTx(ctx, tx, c, customer, vehicle, *o.DriverID, now); err != nil {
			return err
		}
	}
	return nil
}

// releaseDriverTx gives a driver the capacity slot back and, when this was
// the last active delivery, flips them back to online.
func releaseDriverTx(ctx context.Context, tx fulfillmenttx.Repository, driverID uuid.UUID, delivered bool) error {
	d, err := tx.GetDriverForUpdate(ctx, driverID)
	if err != nil {
		return err
	}
	if d == nil {
		return apperr.ErrNotFound
	}
	if d.ActiveOrders > 0 {
		d.ActiveOrders--
	}
	if delivered {
		d.TotalDeliveries++
	}
	if d.ActiveOrders == 0 && d.Status == domain.DriverOnDelivery {
		d.Status = domain.DriverOnline
	}
	return tx.UpdateDriver(ctx, d)
}

// RateOrder records the customer's 1-5 rating for a fulfilled order and
// folds it into the driver's running average. An order can be rated once.
func (s *Service) RateOrder(ctx context.Context, orderID uuid.UUID, rating int) (*domain.Order, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	release := s.locks.Lock(orderID)
	defer release()

	var result *domain.Order
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if o.Status != domain.OrderDelivered && o.Status != domain.OrderCompleted {
			return apperr.ErrConflict
		}
		if o.Rating != nil {
			return apperr.ErrConflict
		}

		o.Rating = &rating
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}

		if o.DriverID != nil {
			d, err := tx.GetDriverForUpdate(ctx, *o.DriverID)
			if err != nil {
				return err
			}
			if d != nil {
				total := d.RatingAvg*float64(d.RatingCount) + float64(rating)
				d.RatingCount++
				d.RatingAvg = total / float64(d.RatingCount)
				if err := tx.UpdateDriver(ctx, d); err != nil {
					return err
				}
			}
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order rated",
		logx.String("event", "order_rated"),
		logx.String("order_id", result.ID.String()),
		logx.Int("rating", rating),
	)
	return result, nil
}
