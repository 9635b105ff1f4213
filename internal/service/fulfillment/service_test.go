package fulfillment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/config"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
	"github.com/Heinvv10/gaztime-sub000/internal/service/dispatch"
	"github.com/Heinvv10/gaztime-sub000/internal/service/events"
	"github.com/Heinvv10/gaztime-sub000/internal/service/orderlock"
	"github.com/Heinvv10/gaztime-sub000/internal/testutil"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type stubPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *stubPublisher) statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Status
	}
	return out
}

type stubOTPSender struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (s *stubOTPSender) SendOTP(_ context.Context, _ uuid.UUID, _, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.codes = append(s.codes, code)
	return nil
}

type fakeCounter struct {
	mu sync.Mutex
	n  int
}

func (c *fakeCounter) Inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *fakeCounter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return testNow }

type fixture struct {
	store     *testutil.MemStore
	publisher *stubPublisher
	otp       *stubOTPSender
	delivered *fakeCounter
	cancelled *fakeCounter
	rejected  *fakeCounter
	dispatch  *dispatch.Service
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		store:     testutil.NewMemStore(),
		publisher: &stubPublisher{},
		otp:       &stubOTPSender{},
		delivered: &fakeCounter{},
		cancelled: &fakeCounter{},
		rejected:  &fakeCounter{},
	}
	locks := orderlock.NewSet()
	cfg := config.Dispatch{
		MaxActiveDeliveries: 3,
		OfferTimeout:        3 * time.Minute,
		SweepInterval:       30 * time.Second,
		SearchRadiusKm:      10,
	}
	f.dispatch = dispatch.NewService(f.store, locks, nil, cfg, fixedClock{}, logx.Nop(), dispatch.Metrics{})
	f.svc = NewService(f.store, locks, f.dispatch, f.publisher, f.otp, cfg.MaxActiveDeliveries, time.Second, logx.Nop(), Metrics{
		Delivered:      f.delivered,
		Cancelled:      f.cancelled,
		DebitsRejected: f.rejected,
	})
	f.svc.now = func() time.Time { return testNow }
	return f
}

func validCreateParams() CreateOrderParams {
	return CreateOrderParams{
		CustomerID: uuid.New(),
		Channel:    domain.ChannelApp,
		Items: []domain.OrderItem{
			{Name: "9kg refill", SizeKg: decimal.NewFromInt(9), Quantity: 2, UnitPrice: decimal.NewFromInt(150)},
		},
		DeliveryAddress: &domain.Address{
			Text:     "12 Main Rd",
			Location: domain.Point{Lat: -26.2041, Lng: 28.0473},
		},
		DeliveryFee:   decimal.NewFromInt(15),
		PaymentMethod: domain.PayWallet,
	}
}

func (f *fixture) topUp(customerID uuid.UUID, amount decimal.Decimal) {
	f.store.WalletTxs[customerID] = append(f.store.WalletTxs[customerID], domain.WalletTransaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		Type:       domain.TxTopUp,
		Amount:     amount,
		CreatedAt:  testNow,
	})
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o, err := f.svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	require.Equal(t, domain.OrderCreated, o.Status)
	require.Equal(t, domain.PaymentPending, o.PaymentStatus)
	require.Regexp(t, `^GT-[0-9A-F]{10}$`, o.Reference)
	require.True(t, o.TotalAmount().Equal(decimal.NewFromInt(315)))

	stored := f.store.Orders[o.ID]
	require.Equal(t, domain.OrderCreated, stored.Status)
}

func TestCreateOrder_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture()

	cases := []struct {
		name   string
		mutate func(*CreateOrderParams)
	}{
		{"no customer", func(p *CreateOrderParams) { p.CustomerID = uuid.Nil }},
		{"bad channel", func(p *CreateOrderParams) { p.Channel = "fax" }},
		{"bad payment method", func(p *CreateOrderParams) { p.PaymentMethod = "cheque" }},
		{"no items", func(p *CreateOrderParams) { p.Items = nil }},
		{"zero quantity", func(p *CreateOrderParams) { p.Items[0].Quantity = 0 }},
		{"blank item name", func(p *CreateOrderParams) { p.Items[0].Name = "  " }},
		{"negative price", func(p *CreateOrderParams) { p.Items[0].UnitPrice = decimal.NewFromInt(-1) }},
		{"negative fee", func(p *CreateOrderParams) { p.DeliveryFee = decimal.NewFromInt(-1) }},
		{"no address and no pod", func(p *CreateOrderParams) { p.DeliveryAddress = nil }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := validCreateParams()
			tc.mutate(&p)
			_, err := f.svc.CreateOrder(context.Background(), p)
			require.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func TestCreateOrder_PodPickupWithoutAddress(t *testing.T) {
	t.Parallel()

	f := newFixture()
	p := validCreateParams()
	p.DeliveryAddress = nil
	podID := uuid.New()
	p.PodID = &podID

	o, err := f.svc.CreateOrder(context.Background(), p)
	require.NoError(t, err)
	require.Nil(t, o.DeliveryAddress)
	require.NotNil(t, o.PodID)
}

func TestConfirmOrder_IssuesOTPAndPublishes(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o, err := f.svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	got, err := f.svc.ConfirmOrder(context.Background(), o.ID)
	require.NoError(t, err)

	require.Equal(t, domain.OrderConfirmed, got.Status)
	require.NotNil(t, got.ConfirmedAt)
	require.Regexp(t, `^[0-9]{6}$`, got.DeliveryOTP)

	require.Equal(t, []string{"confirmed"}, f.publisher.statuses())
	require.Equal(t, []string{got.DeliveryOTP}, f.otp.codes)
}

func TestConfirmOrder_Twice(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o, err := f.svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	_, err = f.svc.ConfirmOrder(context.Background(), o.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmOrder(context.Background(), o.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestConfirmOrder_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.ConfirmOrder(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConfirmOrder_PublishFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.publisher.err = context.DeadlineExceeded
	o, err := f.svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)

	got, err := f.svc.ConfirmOrder(context.Background(), o.ID)
	require.NoError(t, err, "a lost event must not fail the confirmation")
	require.Equal(t, domain.OrderConfirmed, got.Status)
}

func TestGetOrder_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.GetOrder(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListOrders_FilterByStatus(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o1, err := f.svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(context.Background(), validCreateParams())
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(context.Background(), o1.ID)
	require.NoError(t, err)

	status := domain.OrderConfirmed
	got, err := f.svc.ListOrders(context.Background(), fulfillmenttx.OrderFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, o1.ID, got[0].ID)
}
