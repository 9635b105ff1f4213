package fulfillment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
	"github.com/Heinvv10/gaztime-sub000/internal/service/events"
	"github.com/Heinvv10/gaztime-sub000/internal/service/orderlock"
	"github.com/Heinvv10/gaztime-sub000/internal/service/proof"
)

// Metrics are the counters the fulfillment service reports into.
type Metrics struct {
	Delivered      counter
	Cancelled      counter
	DebitsRejected counter
}

// Service is the fulfillment core: it owns the order lifecycle and commits
// every status change together with its side effects in one transaction.
// Writes to the same order are serialized through the shared lock set.
type Service struct {
	repo             repository
	locks            *orderlock.Set
	dispatch         dispatcher
	publish          publisher
	notify           otpSender
	maxActive        int
	operationTimeout time.Duration
	logger           logx.Logger
	metrics          Metrics
	now              func() time.Time
}

// NewService creates and configures a fulfillment Service.
func NewService(repo repository, locks *orderlock.Set, dispatch dispatcher, publish publisher, notify otpSender, maxActive int, timeout time.Duration, logger logx.Logger, metrics Metrics) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             repo,
		locks:            locks,
		dispatch:         dispatch,
		publish:          publish,
		notify:           notify,
		maxActive:        maxActive,
		operationTimeout: timeout,
		logger:           logger,
		metrics:          metrics,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// CreateOrderParams carries everything needed to place an order.
type CreateOrderParams struct {
	CustomerID      uuid.UUID
	Channel         domain.OrderChannel
	Items           []domain.OrderItem
	DeliveryAddress *domain.Address
	DeliveryFee     decimal.Decimal
	PaymentMethod   domain.PaymentMethod
	PodID           *uuid.UUID
}

func (p CreateOrderParams) validate() error {
	if p.CustomerID == uuid.Nil {
		return apperr.ErrInvalid
	}
	if !p.Channel.Valid() || !p.PaymentMethod.Valid() {
		return apperr.ErrInvalid
	}
	if len(p.Items) == 0 {
		return apperr.ErrInvalid
	}
	for _, it := range p.Items {
		if strings.TrimSpace(it.Name) == "" || it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			return apperr.ErrInvalid
		}
	}
	if p.DeliveryFee.IsNegative() {
		return apperr.ErrInvalid
	}
	// pod pickups carry no address; everything else is delivered
	if p.DeliveryAddress == nil && p.PodID == nil {
		return apperr.ErrInvalid
	}
	return nil
}

// CreateOrder places a new order in status created.
func (s *Service) CreateOrder(ctx context.Context, p CreateOrderParams) (*domain.Order, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := uuid.New()
	o := &domain.Order{
		ID:              id,
		Reference:       newReference(id),
		CustomerID:      p.CustomerID,
		Channel:         p.Channel,
		Status:          domain.OrderCreated,
		Items:           p.Items,
		DeliveryAddress: p.DeliveryAddress,
		DeliveryFee:     p.DeliveryFee,
		PaymentMethod:   p.PaymentMethod,
		PaymentStatus:   domain.PaymentPending,
		PodID:           p.PodID,
		CreatedAt:       s.now(),
	}
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		return tx.InsertOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.String("order_id", o.ID.String()),
		logx.String("reference", o.Reference),
		logx.String("channel", string(o.Channel)),
		logx.String("total", o.TotalAmount().String()),
	)
	return o, nil
}

// ConfirmOrder moves a created order to confirmed, issues the delivery OTP
// and announces the order to dispatch.
func (s *Service) ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
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

		code, err := generateOTP()
		if err != nil {
			return err
		}
		o.DeliveryOTP = code
		if err := domain.ApplyTransition(o, domain.OrderConfirmed, s.now()); err != nil {
			return err
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

	s.logger.Info("order confirmed",
		logx.String("event", "order_confirmed"),
		logx.String("order_id", result.ID.String()),
	)
	s.publishEvent(ctx, result.ID, domain.OrderConfirmed)
	if s.notify != nil {
		if err := s.notify.SendOTP(ctx, result.CustomerID, result.Reference, result.DeliveryOTP); err != nil {
			s.logger.Warn("otp delivery failed",
				logx.String("order_id", result.ID.String()),
				logx.Err(err),
			)
		}
	}
	return result, nil
}

// GetOrder reads one order.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

// ListOrders reads orders matching the filter, newest first.
func (s *Service) ListOrders(ctx context.Context, f fulfillmenttx.OrderFilter) ([]domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListOrders(ctx, f)
}

// publishEvent emits a lifecycle event, logging and swallowing failures.
func (s *Service) publishEvent(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) {
	if s.publish == nil {
		return
	}
	e := events.Event{OrderID: orderID, Status: string(status), CreatedAt: s.now()}
	if err := s.publish.Publish(ctx, e); err != nil {
		s.logger.Warn("event publish failed",
			logx.String("order_id", orderID.String()),
			logx.String("status", string(status)),
			logx.Err(err),
		)
	}
}

// newReference derives a short human-readable order reference from the id.
func newReference(id uuid.UUID) string {
	return fmt.Sprintf("GT-%s", strings.ToUpper(hex.EncodeToString(id[:5])))
}

// generateOTP returns a random numeric code of the proof validator's length.
func generateOTP() (string, error) {
	buf := make([]byte, proof.OTPLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	for i := range buf {
		buf[i] = '0' + buf[i]%10
	}
	return string(buf), nil
}
