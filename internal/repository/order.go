package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// JSONB shapes for the orders table. Money fields keep decimal precision
// through shopspring's string encoding.
type orderItemJSON struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SizeKg    decimal.Decimal `json:"size_kg"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type addressJSON struct {
	Text string  `json:"text"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type proofJSON struct {
	Type       string    `json:"type"`
	Payload    string    `json:"payload"`
	CapturedAt time.Time `json:"captured_at"`
}

func encodeItems(items []domain.OrderItem) ([]byte, error) {
	rows := make([]orderItemJSON, 0, len(items))
	for _, it := range items {
		rows = append(rows, orderItemJSON{
			ProductID: it.ProductID,
			Name:      it.Name,
			SizeKg:    it.SizeKg,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return json.Marshal(rows)
}

func decodeItems(raw []byte) ([]domain.OrderItem, error) {
	var rows []orderItemJSON
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	items := make([]domain.OrderItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, domain.OrderItem{
			ProductID: r.ProductID,
			Name:      r.Name,
			SizeKg:    r.SizeKg,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
		})
	}
	return items, nil
}

func encodeAddress(a *domain.Address) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(addressJSON{Text: a.Text, Lat: a.Location.Lat, Lng: a.Location.Lng})
}

func decodeAddress(raw []byte) (*domain.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var a addressJSON
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	return &domain.Address{Text: a.Text, Location: domain.Point{Lat: a.Lat, Lng: a.Lng}}, nil
}

func encodeProof(p *domain.DeliveryProof) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(proofJSON{Type: string(p.Type), Payload: p.Payload, CapturedAt: p.CapturedAt})
}

func decodeProof(raw []byte) (*domain.DeliveryProof, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var p proofJSON
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode proof: %w", err)
	}
	return &domain.DeliveryProof{Type: domain.ProofType(p.Type), Payload: p.Payload, CapturedAt: p.CapturedAt}, nil
}

const orderColumns = `
        id, reference, customer_id, channel, status, items, delivery_address,
        delivery_fee, payment_method, payment_status, driver_id, pod_id,
        delivery_otp, proof, cash_collected, cancel_reason, rating,
        created_at, confirmed_at, assigned_at, picked_up_at, delivered_at,
        completed_at, cancelled_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o          domain.Order
		itemsRaw   []byte
		addressRaw []byte
		proofRaw   []byte
		status     string
		channel    string
		payMethod  string
		payStatus  string
	)
	err := row.Scan(
		&o.ID, &o.Reference, &o.CustomerID, &channel, &status, &itemsRaw, &addressRaw,
		&o.DeliveryFee, &payMethod, &payStatus, &o.DriverID, &o.PodID,
		&o.DeliveryOTP, &proofRaw, &o.CashCollected, &o.CancelReason, &o.Rating,
		&o.CreatedAt, &o.ConfirmedAt, &o.AssignedAt, &o.PickedUpAt, &o.DeliveredAt,
		&o.CompletedAt, &o.CancelledAt,
	)
	if err != nil {
		return nil, err
	}

	o.Channel = domain.OrderChannel(channel)
	o.Status = domain.OrderStatus(status)
	o.PaymentMethod = domain.PaymentMethod(payMethod)
	o.PaymentStatus = domain.PaymentStatus(payStatus)

	if o.Items, err = decodeItems(itemsRaw); err != nil {
		return nil, err
	}
	if o.DeliveryAddress, err = decodeAddress(addressRaw); err != nil {
		return nil, err
	}
	if o.Proof, err = decodeProof(proofRaw); err != nil {
		return nil, err
	}
	return &o, nil
}

// InsertOrder - insert a new order.
func (r *TxRepo) InsertOrder(ctx context.Context, o *domain.Order) error {
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	address, err := encodeAddress(o.DeliveryAddress)
	if err != nil {
		return err
	}
	_, err = r.tx.Exec(ctx, `
        INSERT INTO orders (
            id, reference, customer_id, channel, status, items, delivery_address,
            delivery_fee, payment_method, payment_status, pod_id, delivery_otp,
            cancel_reason, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `, o.ID, o.Reference, o.CustomerID, string(o.Channel), string(o.Status), items, address,
		o.DeliveryFee, string(o.PaymentMethod), string(o.PaymentStatus), o.PodID, o.DeliveryOTP,
		o.CancelReason, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	return nil
}

// GetOrderForUpdate - load an order and lock its row for the transaction.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.tx.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}

// UpdateOrder - write the mutable fields of an order.
func (r *TxRepo) UpdateOrder(ctx context.Context, o *domain.Order) error {
	proof, err := encodeProof(o.Proof)
	if err != nil {
		return err
	}
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders SET
            status = $2, payment_status = $3, driver_id = $4, delivery_otp = $5,
            proof = $6, cash_collected = $7, cancel_reason = $8, rating = $9,
            confirmed_at = $10, assigned_at = $11, picked_up_at = $12,
            delivered_at = $13, completed_at = $14, cancelled_at = $15
        WHERE id = $1
    `, o.ID, string(o.Status), string(o.PaymentStatus), o.DriverID, o.DeliveryOTP,
		proof, o.CashCollected, o.CancelReason, o.Rating,
		o.ConfirmedAt, o.AssignedAt, o.PickedUpAt,
		o.DeliveredAt, o.CompletedAt, o.CancelledAt)
	if err != nil {
		return fmt.Errorf("update order %s: %w", o.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", o.ID)
	}
	return nil
}

// GetOrder - read one order without locking.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := s.db.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}

// ListOrders - read orders matching the filter, newest first.
func (s *Store) ListOrders(ctx context.Context, f fulfillmenttx.OrderFilter) ([]domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE 1=1`
	args := make([]any, 0, 5)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != nil {
		query += ` AND status = ` + arg(string(*f.Status))
	}
	if f.CustomerID != nil {
		query += ` AND customer_id = ` + arg(*f.CustomerID)
	}
	if f.DriverID != nil {
		query += ` AND driver_id = ` + arg(*f.DriverID)
	}
	if f.From != nil {
		query += ` AND created_at >= ` + arg(*f.From)
	}
	if f.To != nil {
		query += ` AND created_at < ` + arg(*f.To)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ListDispatchableOrders - confirmed orders with no open offer, oldest first.
func (s *Store) ListDispatchableOrders(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `
        SELECT o.id
        FROM orders o
        WHERE o.status = $1
          AND NOT EXISTS (
              SELECT 1 FROM dispatch_offers f
              WHERE f.order_id = o.id AND f.state = $2
          )
        ORDER BY o.created_at ASC
    `, string(domain.OrderConfirmed), string(domain.OfferPending))
	if err != nil {
		return nil, fmt.Errorf("list dispatchable orders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list dispatchable orders: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
