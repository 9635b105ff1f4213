package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

const offerColumns = `
        id, order_id, driver_id, state, offered_at, expires_at, resolved_at`

func scanOffer(row pgx.Row) (*domain.DispatchOffer, error) {
	var (
		o     domain.DispatchOffer
		state string
	)
	err := row.Scan(&o.ID, &o.OrderID, &o.DriverID, &state, &o.OfferedAt, &o.ExpiresAt, &o.ResolvedAt)
	if err != nil {
		return nil, err
	}
	o.State = domain.OfferState(state)
	return &o, nil
}

// InsertOffer - record a new pending offer. The partial unique index on
// (order_id) WHERE state = 'pending' rejects a second open offer.
func (r *TxRepo) InsertOffer(ctx context.Context, o *domain.DispatchOffer) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO dispatch_offers (id, order_id, driver_id, state, offered_at, expires_at, resolved_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, o.ID, o.OrderID, o.DriverID, string(o.State), o.OfferedAt, o.ExpiresAt, o.ResolvedAt)
	if err != nil {
		return fmt.Errorf("insert offer for order %s: %w", o.OrderID, conflictOnDuplicate(err))
	}
	return nil
}

// GetOfferForUpdate - load an offer and lock its row.
func (r *TxRepo) GetOfferForUpdate(ctx context.Context, id uuid.UUID) (*domain.DispatchOffer, error) {
	row := r.tx.QueryRow(ctx, `SELECT`+offerColumns+` FROM dispatch_offers WHERE id = $1 FOR UPDATE`, id)
	o, err := scanOffer(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer %s: %w", id, err)
	}
	return o, nil
}

// UpdateOffer - write the state and resolution time of an offer.
func (r *TxRepo) UpdateOffer(ctx context.Context, o *domain.DispatchOffer) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE dispatch_offers SET state = $2, resolved_at = $3 WHERE id = $1
    `, o.ID, string(o.State), o.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update offer %s: %w", o.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("offer %s not found", o.ID)
	}
	return nil
}

// PendingOfferForOrder - the open offer for an order, nil when none.
func (r *TxRepo) PendingOfferForOrder(ctx context.Context, orderID uuid.UUID) (*domain.DispatchOffer, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT`+offerColumns+`
        FROM dispatch_offers
        WHERE order_id = $1 AND state = $2
        FOR UPDATE
    `, orderID, string(domain.OfferPending))
	o, err := scanOffer(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("pending offer for order %s: %w", orderID, err)
	}
	return o, nil
}

// PendingOffersForDriver - open offers held by a driver, locked.
func (r *TxRepo) PendingOffersForDriver(ctx context.Context, driverID uuid.UUID) ([]domain.DispatchOffer, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT`+offerColumns+`
        FROM dispatch_offers
        WHERE driver_id = $1 AND state = $2
        FOR UPDATE
    `, driverID, string(domain.OfferPending))
	if err != nil {
		return nil, fmt.Errorf("pending offers for driver %s: %w", driverID, err)
	}
	defer rows.Close()

	var out []domain.DispatchOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("pending offers for driver %s: %w", driverID, err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// OfferedDriverIDs - drivers already offered this order in any state, so
// the assigner never re-offers a driver that rejected or timed out.
func (r *TxRepo) OfferedDriverIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT DISTINCT driver_id FROM dispatch_offers WHERE order_id = $1
    `, orderID)
	if err != nil {
		return nil, fmt.Errorf("offered drivers for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("offered drivers for order %s: %w", orderID, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetOffer - read one offer without locking.
func (s *Store) GetOffer(ctx context.Context, id uuid.UUID) (*domain.DispatchOffer, error) {
	row := s.db.QueryRow(ctx, `SELECT`+offerColumns+` FROM dispatch_offers WHERE id = $1`, id)
	o, err := scanOffer(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer %s: %w", id, err)
	}
	return o, nil
}

// PendingOffersByDriver - open offers held by a driver, read without locks.
func (s *Store) PendingOffersByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.DispatchOffer, error) {
	rows, err := s.db.Query(ctx, `
        SELECT`+offerColumns+`
        FROM dispatch_offers
        WHERE driver_id = $1 AND state = $2
    `, driverID, string(domain.OfferPending))
	if err != nil {
		return nil, fmt.Errorf("pending offers by driver %s: %w", driverID, err)
	}
	defer rows.Close()

	var out []domain.DispatchOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("pending offers by driver %s: %w", driverID, err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ListExpiredPendingOffers - open offers whose window elapsed before now.
// Read without locks; the sweep re-checks state under the per-order lock.
func (s *Store) ListExpiredPendingOffers(ctx context.Context, now time.Time) ([]domain.DispatchOffer, error) {
	rows, err := s.db.Query(ctx, `
        SELECT`+offerColumns+`
        FROM dispatch_offers
        WHERE state = $1 AND expires_at < $2
    `, string(domain.OfferPending), now)
	if err != nil {
		return nil, fmt.Errorf("list expired offers: %w", err)
	}
	defer rows.Close()

	var out []domain.DispatchOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("list expired offers: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
