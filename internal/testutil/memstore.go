// Package testutil holds test doubles shared by the service test suites.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// MemStore is an in-memory stand-in for the Postgres store. WithTx runs
// the closure against the live maps under a snapshot: an error rolls the
// whole store back, mirroring a database rollback, which is what the
// all-or-nothing commit tests depend on.
type MemStore struct {
	mu sync.Mutex

	Orders    map[uuid.UUID]domain.Order
	Drivers   map[uuid.UUID]domain.Driver
	Cylinders map[uuid.UUID]domain.Cylinder
	Offers    map[uuid.UUID]domain.DispatchOffer
	Movements map[uuid.UUID][]domain.CylinderMovement
	WalletTxs map[uuid.UUID][]domain.WalletTransaction
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		Orders:    make(map[uuid.UUID]domain.Order),
		Drivers:   make(map[uuid.UUID]domain.Driver),
		Cylinders: make(map[uuid.UUID]domain.Cylinder),
		Offers:    make(map[uuid.UUID]domain.DispatchOffer),
		Movements: make(map[uuid.UUID][]domain.CylinderMovement),
		WalletTxs: make(map[uuid.UUID][]domain.WalletTransaction),
	}
}

// WithTx runs fn against the store, rolling back every change on error.
func (s *MemStore) WithTx(_ context.Context, fn func(tx fulfillmenttx.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	orders    map[uuid.UUID]domain.Order
	drivers   map[uuid.UUID]domain.Driver
	cylinders map[uuid.UUID]domain.Cylinder
	offers    map[uuid.UUID]domain.DispatchOffer
	movements map[uuid.UUID][]domain.CylinderMovement
	walletTxs map[uuid.UUID][]domain.WalletTransaction
}

func (s *MemStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		orders:    make(map[uuid.UUID]domain.Order, len(s.Orders)),
		drivers:   make(map[uuid.UUID]domain.Driver, len(s.Drivers)),
		cylinders: make(map[uuid.UUID]domain.Cylinder, len(s.Cylinders)),
		offers:    make(map[uuid.UUID]domain.DispatchOffer, len(s.Offers)),
		movements: make(map[uuid.UUID][]domain.CylinderMovement, len(s.Movements)),
		walletTxs: make(map[uuid.UUID][]domain.WalletTransaction, len(s.WalletTxs)),
	}
	for k, v := range s.Orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.Drivers {
		snap.drivers[k] = cloneDriver(v)
	}
	for k, v := range s.Cylinders {
		snap.cylinders[k] = cloneCylinder(v)
	}
	for k, v := range s.Offers {
		snap.offers[k] = cloneOffer(v)
	}
	for k, v := range s.Movements {
		snap.movements[k] = append([]domain.CylinderMovement(nil), v...)
	}
	for k, v := range s.WalletTxs {
		snap.walletTxs[k] = append([]domain.WalletTransaction(nil), v...)
	}
	return snap
}

func (s *MemStore) restore(snap storeSnapshot) {
	s.Orders = snap.orders
	s.Drivers = snap.drivers
	s.Cylinders = snap.cylinders
	s.Offers = snap.offers
	s.Movements = snap.movements
	s.WalletTxs = snap.walletTxs
}

// --- read side, used by the services outside transactions ---

// GetOrder returns a copy of the order or nil.
func (s *MemStore) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return nil, nil
	}
	c := cloneOrder(o)
	return &c, nil
}

// ListOrders returns orders matching the filter, newest first.
func (s *MemStore) ListOrders(_ context.Context, f fulfillmenttx.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Order
	for _, o := range s.Orders {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
			continue
		}
		if f.DriverID != nil && (o.DriverID == nil || *o.DriverID != *f.DriverID) {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetDriver returns a copy of the driver or nil.
func (s *MemStore) GetDriver(_ context.Context, id uuid.UUID) (*domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.Drivers[id]
	if !ok {
		return nil, nil
	}
	c := cloneDriver(d)
	return &c, nil
}

// ListDrivers returns all drivers ordered by name.
func (s *MemStore) ListDrivers(_ context.Context) ([]domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Driver, 0, len(s.Drivers))
	for _, d := range s.Drivers {
		out = append(out, cloneDriver(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// InsertDriver stores a new driver.
func (s *MemStore) InsertDriver(_ context.Context, d *domain.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// drivers carry a unique phone, same as the table
	for _, existing := range s.Drivers {
		if existing.Phone == d.Phone {
			return apperr.ErrConflict
		}
	}
	s.Drivers[d.ID] = cloneDriver(*d)
	return nil
}

// GetCylinder returns a copy of the cylinder or nil.
func (s *MemStore) GetCylinder(_ context.Context, id uuid.UUID) (*domain.Cylinder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Cylinders[id]
	if !ok {
		return nil, nil
	}
	cp := cloneCylinder(c)
	return &cp, nil
}

// ListMovements returns a cylinder's movement history, oldest first.
func (s *MemStore) ListMovements(_ context.Context, cylinderID uuid.UUID) ([]domain.CylinderMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CylinderMovement(nil), s.Movements[cylinderID]...), nil
}

// WalletBalance sums a customer's ledger.
func (s *MemStore) WalletBalance(_ context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.BalanceOf(s.WalletTxs[customerID]), nil
}

// ListWalletTransactions returns a customer's ledger, oldest first.
func (s *MemStore) ListWalletTransactions(_ context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WalletTransaction(nil), s.WalletTxs[customerID]...), nil
}

// GetOffer returns a copy of the offer or nil.
func (s *MemStore) GetOffer(_ context.Context, id uuid.UUID) (*domain.DispatchOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Offers[id]
	if !ok {
		return nil, nil
	}
	c := cloneOffer(o)
	return &c, nil
}

// PendingOffersByDriver returns a driver's open offers.
func (s *MemStore) PendingOffersByDriver(_ context.Context, driverID uuid.UUID) ([]domain.DispatchOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.DispatchOffer
	for _, o := range s.Offers {
		if o.DriverID == driverID && o.State == domain.OfferPending {
			out = append(out, cloneOffer(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OfferedAt.Before(out[j].OfferedAt) })
	return out, nil
}

// ListExpiredPendingOffers returns pending offers whose window elapsed.
func (s *MemStore) ListExpiredPendingOffers(_ context.Context, now time.Time) ([]domain.DispatchOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.DispatchOffer
	for _, o := range s.Offers {
		if o.State == domain.OfferPending && !now.Before(o.ExpiresAt) {
			out = append(out, cloneOffer(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OfferedAt.Before(out[j].OfferedAt) })
	return out, nil
}

// ListDispatchableOrders returns confirmed delivery orders with no open offer.
func (s *MemStore) ListDispatchableOrders(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uuid.UUID
	for id, o := range s.Orders {
		if o.Status != domain.OrderConfirmed || o.DeliveryAddress == nil {
			continue
		}
		open := false
		for _, off := range s.Offers {
			if off.OrderID == id && off.State == domain.OfferPending {
				open = true
				break
			}
		}
		if !open {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

// memTx is the transactional view. It mutates the store maps directly;
// WithTx already holds the store lock and owns the rollback snapshot.
type memTx struct {
	s *MemStore
}

func (t *memTx) InsertOrder(_ context.Context, o *domain.Order) error {
	t.s.Orders[o.ID] = cloneOrder(*o)
	return nil
}

func (t *memTx) GetOrderForUpdate(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := t.s.Orders[id]
	if !ok {
		return nil, nil
	}
	c := cloneOrder(o)
	return &c, nil
}

func (t *memTx) UpdateOrder(_ context.Context, o *domain.Order) error {
	t.s.Orders[o.ID] = cloneOrder(*o)
	return nil
}

func (t *memTx) GetDriverForUpdate(_ context.Context, id uuid.UUID) (*domain.Driver, error) {
	d, ok := t.s.Drivers[id]
	if !ok {
		return nil, nil
	}
	c := cloneDriver(d)
	return &c, nil
}

func (t *memTx) UpdateDriver(_ context.Context, d *domain.Driver) error {
	t.s.Drivers[d.ID] = cloneDriver(*d)
	return nil
}

func (t *memTx) ListDispatchCandidates(_ context.Context) ([]domain.Driver, error) {
	var out []domain.Driver
	for _, d := range t.s.Drivers {
		if d.Status == domain.DriverOnline || d.Status == domain.DriverOnDelivery {
			out = append(out, cloneDriver(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (t *memTx) InsertOffer(_ context.Context, o *domain.DispatchOffer) error {
	t.s.Offers[o.ID] = cloneOffer(*o)
	return nil
}

func (t *memTx) GetOfferForUpdate(_ context.Context, id uuid.UUID) (*domain.DispatchOffer, error) {
	o, ok := t.s.Offers[id]
	if !ok {
		return nil, nil
	}
	c := cloneOffer(o)
	return &c, nil
}

func (t *memTx) UpdateOffer(_ context.Context, o *domain.DispatchOffer) error {
	t.s.Offers[o.ID] = cloneOffer(*o)
	return nil
}

func (t *memTx) PendingOfferForOrder(_ context.Context, orderID uuid.UUID) (*domain.DispatchOffer, error) {
	for _, o := range t.s.Offers {
		if o.OrderID == orderID && o.State == domain.OfferPending {
			c := cloneOffer(o)
			return &c, nil
		}
	}
	return nil, nil
}

func (t *memTx) PendingOffersForDriver(_ context.Context, driverID uuid.UUID) ([]domain.DispatchOffer, error) {
	var out []domain.DispatchOffer
	for _, o := range t.s.Offers {
		if o.DriverID == driverID && o.State == domain.OfferPending {
			out = append(out, cloneOffer(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OfferedAt.Before(out[j].OfferedAt) })
	return out, nil
}

func (t *memTx) OfferedDriverIDs(_ context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, o := range t.s.Offers {
		if o.OrderID == orderID {
			out = append(out, o.DriverID)
		}
	}
	return out, nil
}

func (t *memTx) InsertCylinder(_ context.Context, c *domain.Cylinder) error {
	// serial numbers are unique, same as the table
	for _, existing := range t.s.Cylinders {
		if existing.SerialNumber == c.SerialNumber {
			return apperr.ErrConflict
		}
	}
	t.s.Cylinders[c.ID] = cloneCylinder(*c)
	return nil
}

func (t *memTx) GetCylinderForUpdate(_ context.Context, id uuid.UUID) (*domain.Cylinder, error) {
	c, ok := t.s.Cylinders[id]
	if !ok {
		return nil, nil
	}
	cp := cloneCylinder(c)
	return &cp, nil
}

func (t *memTx) GetCylinderBySerialForUpdate(_ context.Context, serial string) (*domain.Cylinder, error) {
	for _, c := range t.s.Cylinders {
		if c.SerialNumber == serial {
			cp := cloneCylinder(c)
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) UpdateCylinder(_ context.Context, c *domain.Cylinder) error {
	t.s.Cylinders[c.ID] = cloneCylinder(*c)
	return nil
}

func (t *memTx) LastMovement(_ context.Context, cylinderID uuid.UUID) (*domain.CylinderMovement, error) {
	ms := t.s.Movements[cylinderID]
	if len(ms) == 0 {
		return nil, nil
	}
	m := ms[len(ms)-1]
	return &m, nil
}

func (t *memTx) InsertMovement(_ context.Context, m *domain.CylinderMovement) error {
	t.s.Movements[m.CylinderID] = append(t.s.Movements[m.CylinderID], *m)
	return nil
}

func (t *memTx) LockWallet(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (t *memTx) WalletBalance(_ context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	return domain.BalanceOf(t.s.WalletTxs[customerID]), nil
}

func (t *memTx) InsertWalletTransaction(_ context.Context, tx *domain.WalletTransaction) error {
	t.s.WalletTxs[tx.CustomerID] = append(t.s.WalletTxs[tx.CustomerID], *tx)
	return nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	if o.DeliveryAddress != nil {
		a := *o.DeliveryAddress
		o.DeliveryAddress = &a
	}
	if o.Proof != nil {
		p := *o.Proof
		o.Proof = &p
	}
	o.DriverID = cloneUUIDPtr(o.DriverID)
	o.PodID = cloneUUIDPtr(o.PodID)
	if o.CashCollected != nil {
		c := *o.CashCollected
		o.CashCollected = &c
	}
	if o.Rating != nil {
		r := *o.Rating
		o.Rating = &r
	}
	o.ConfirmedAt = cloneTimePtr(o.ConfirmedAt)
	o.AssignedAt = cloneTimePtr(o.AssignedAt)
	o.PickedUpAt = cloneTimePtr(o.PickedUpAt)
	o.DeliveredAt = cloneTimePtr(o.DeliveredAt)
	o.CompletedAt = cloneTimePtr(o.CompletedAt)
	o.CancelledAt = cloneTimePtr(o.CancelledAt)
	return o
}

func cloneDriver(d domain.Driver) domain.Driver {
	if d.Location != nil {
		l := *d.Location
		d.Location = &l
	}
	d.LastSeenAt = cloneTimePtr(d.LastSeenAt)
	return d
}

func cloneCylinder(c domain.Cylinder) domain.Cylinder {
	c.LastInspectedAt = cloneTimePtr(c.LastInspectedAt)
	return c
}

func cloneOffer(o domain.DispatchOffer) domain.DispatchOffer {
	o.ResolvedAt = cloneTimePtr(o.ResolvedAt)
	return o
}

func cloneUUIDPtr(p *uuid.UUID) *uuid.UUID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
