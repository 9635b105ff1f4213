package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

const cylinderColumns = `
        id, serial_number, size_kg, status, fill_count, last_inspected_at, created_at`

func scanCylinder(row pgx.Row) (*domain.Cylinder, error) {
	var (
		c      domain.Cylinder
		status string
	)
	err := row.Scan(&c.ID, &c.SerialNumber, &c.SizeKg, &status, &c.FillCount, &c.LastInspectedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = domain.CylinderStatus(status)
	return &c, nil
}

const movementColumns = `
        id, cylinder_id, from_type, from_id, to_type, to_id, actor_id, recorded_at`

func scanMovement(row pgx.Row) (*domain.CylinderMovement, error) {
	var (
		m        domain.CylinderMovement
		fromType string
		toType   string
	)
	err := row.Scan(&m.ID, &m.CylinderID, &fromType, &m.From.ID, &toType, &m.To.ID, &m.ActorID, &m.RecordedAt)
	if err != nil {
		return nil, err
	}
	m.From.Type = domain.LocationType(fromType)
	m.To.Type = domain.LocationType(toType)
	return &m, nil
}

// InsertCylinder - register a new cylinder.
func (s *Store) InsertCylinder(ctx context.Context, c *domain.Cylinder) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO cylinders (id, serial_number, size_kg, status, fill_count, last_inspected_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, c.ID, c.SerialNumber, c.SizeKg, string(c.Status), c.FillCount, c.LastInspectedAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert cylinder %s: %w", c.SerialNumber, conflictOnDuplicate(err))
	}
	return nil
}

// GetCylinder - read one cylinder by id.
func (s *Store) GetCylinder(ctx context.Context, id uuid.UUID) (*domain.Cylinder, error) {
	row := s.db.QueryRow(ctx, `SELECT`+cylinderColumns+` FROM cylinders WHERE id = $1`, id)
	c, err := scanCylinder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cylinder %s: %w", id, err)
	}
	return c, nil
}

// ListMovements - full movement history of a cylinder, oldest first.
func (s *Store) ListMovements(ctx context.Context, cylinderID uuid.UUID) ([]domain.CylinderMovement, error) {
	rows, err := s.db.Query(ctx, `
        SELECT`+movementColumns+`
        FROM cylinder_movements
        WHERE cylinder_id = $1
        ORDER BY recorded_at ASC, id ASC
    `, cylinderID)
	if err != nil {
		return nil, fmt.Errorf("list movements for %s: %w", cylinderID, err)
	}
	defer rows.Close()

	var out []domain.CylinderMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("list movements for %s: %w", cylinderID, err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// InsertCylinder - register a new cylinder inside a transaction, so the
// genesis movement commits together with the row.
func (r *TxRepo) InsertCylinder(ctx context.Context, c *domain.Cylinder) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO cylinders (id, serial_number, size_kg, status, fill_count, last_inspected_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, c.ID, c.SerialNumber, c.SizeKg, string(c.Status), c.FillCount, c.LastInspectedAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert cylinder %s: %w", c.SerialNumber, conflictOnDuplicate(err))
	}
	return nil
}

// GetCylinderForUpdate - load a cylinder by id and lock its row.
func (r *TxRepo) GetCylinderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Cylinder, error) {
	row := r.tx.QueryRow(ctx, `SELECT`+cylinderColumns+` FROM cylinders WHERE id = $1 FOR UPDATE`, id)
	c, err := scanCylinder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cylinder %s: %w", id, err)
	}
	return c, nil
}

// GetCylinderBySerialForUpdate - load a cylinder by serial and lock its row.
// Movements for one cylinder serialize on this lock.
func (r *TxRepo) GetCylinderBySerialForUpdate(ctx context.Context, serial string) (*domain.Cylinder, error) {
	row := r.tx.QueryRow(ctx, `SELECT`+cylinderColumns+` FROM cylinders WHERE serial_number = $1 FOR UPDATE`, serial)
	c, err := scanCylinder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cylinder by serial %q: %w", serial, err)
	}
	return c, nil
}

// UpdateCylinder - write the mutable fields of a cylinder.
func (r *TxRepo) UpdateCylinder(ctx context.Context, c *domain.Cylinder) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE cylinders SET status = $2, fill_count = $3, last_inspected_at = $4
        WHERE id = $1
    `, c.ID, string(c.Status), c.FillCount, c.LastInspectedAt)
	if err != nil {
		return fmt.Errorf("update cylinder %s: %w", c.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("cylinder %s not found", c.ID)
	}
	return nil
}

// LastMovement - the latest ledger entry for a cylinder, nil when none.
func (r *TxRepo) LastMovement(ctx context.Context, cylinderID uuid.UUID) (*domain.CylinderMovement, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT`+movementColumns+`
        FROM cylinder_movements
        WHERE cylinder_id = $1
        ORDER BY recorded_at DESC, id DESC
        LIMIT 1
    `, cylinderID)
	m, err := scanMovement(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("last movement for %s: %w", cylinderID, err)
	}
	return m, nil
}

// InsertMovement - append one immutable ledger entry.
func (r *TxRepo) InsertMovement(ctx context.Context, m *domain.CylinderMovement) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO cylinder_movements (id, cylinder_id, from_type, from_id, to_type, to_id, actor_id, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, m.ID, m.CylinderID, string(m.From.Type), m.From.ID, string(m.To.Type), m.To.ID, m.ActorID, m.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert movement for %s: %w", m.CylinderID, err)
	}
	return nil
}
