package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
)

// IsDuplicate - signals that the error is a duplicate key violation.
func IsDuplicate(err error) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == "23505"
}

// IsNotFound - signals that the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// conflictOnDuplicate - translates a unique key violation into
// apperr.ErrConflict so callers above the ports layer never inspect pg
// error codes. The driver error stays in the chain for diagnostics.
func conflictOnDuplicate(err error) error {
	if IsDuplicate(err) {
		return fmt.Errorf("%w: %w", apperr.ErrConflict, err)
	}
	return err
}
