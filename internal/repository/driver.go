package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

const driverColumns = `
        id, name, phone, status, lat, lng, active_orders, rating_avg,
        rating_count, total_deliveries, hired_at, last_seen_at`

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	var (
		d      domain.Driver
		status string
		lat    *float64
		lng    *float64
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &status, &lat, &lng, &d.ActiveOrders, &d.RatingAvg,
		&d.RatingCount, &d.TotalDeliveries, &d.HiredAt, &d.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DriverStatus(status)
	if lat != nil && lng != nil {
		d.Location = &domain.Point{Lat: *lat, Lng: *lng}
	}
	return &d, nil
}

func driverCoords(d *domain.Driver) (lat, lng *float64) {
	if d.Location != nil {
		lat, lng = &d.Location.Lat, &d.Location.Lng
	}
	return lat, lng
}

// InsertDriver - register a new driver.
func (s *Store) InsertDriver(ctx context.Context, d *domain.Driver) error {
	lat, lng := driverCoords(d)
	_, err := s.db.Exec(ctx, `
        INSERT INTO drivers (
            id, name, phone, status, lat, lng, active_orders, rating_avg,
            rating_count, total_deliveries, hired_at, last_seen_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, d.ID, d.Name, d.Phone, string(d.Status), lat, lng, d.ActiveOrders, d.RatingAvg,
		d.RatingCount, d.TotalDeliveries, d.HiredAt, d.LastSeenAt)
	if err != nil {
		return fmt.Errorf("insert driver %s: %w", d.ID, conflictOnDuplicate(err))
	}
	return nil
}

// GetDriver - read one driver without locking.
func (s *Store) GetDriver(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT`+driverColumns+` FROM drivers WHERE id = $1`, id)
	d, err := scanDriver(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver %s: %w", id, err)
	}
	return d, nil
}

// ListDrivers - read all drivers ordered by hire date.
func (s *Store) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	rows, err := s.db.Query(ctx, `SELECT`+driverColumns+` FROM drivers ORDER BY hired_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("list drivers: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// GetDriverForUpdate - load a driver and lock its row for the transaction.
// Capacity adjustments must happen under this lock.
func (r *TxRepo) GetDriverForUpdate(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	row := r.tx.QueryRow(ctx, `SELECT`+driverColumns+` FROM drivers WHERE id = $1 FOR UPDATE`, id)
	d, err := scanDriver(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver %s: %w", id, err)
	}
	return d, nil
}

// UpdateDriver - write the mutable fields of a driver.
func (r *TxRepo) UpdateDriver(ctx context.Context, d *domain.Driver) error {
	lat, lng := driverCoords(d)
	ct, err := r.tx.Exec(ctx, `
        UPDATE drivers SET
            status = $2, lat = $3, lng = $4, active_orders = $5, rating_avg = $6,
            rating_count = $7, total_deliveries = $8, last_seen_at = $9
        WHERE id = $1
    `, d.ID, string(d.Status), lat, lng, d.ActiveOrders, d.RatingAvg,
		d.RatingCount, d.TotalDeliveries, d.LastSeenAt)
	if err != nil {
		return fmt.Errorf("update driver %s: %w", d.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("driver %s not found", d.ID)
	}
	return nil
}

// ListDispatchCandidates - drivers that are working and have a known
// location. Capacity, radius and ranking are applied by the assigner.
func (r *TxRepo) ListDispatchCandidates(ctx context.Context) ([]domain.Driver, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT`+driverColumns+`
        FROM drivers
        WHERE status IN ($1, $2) AND lat IS NOT NULL AND lng IS NOT NULL
    `, string(domain.DriverOnline), string(domain.DriverOnDelivery))
	if err != nil {
		return nil, fmt.Errorf("list dispatch candidates: %w", err)
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("list dispatch candidates: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
