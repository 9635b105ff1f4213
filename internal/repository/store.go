package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// Store is the Postgres-backed fulfillment store. Read methods run against
// the pool; all writes go through WithTx.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a new Store.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (s *Store) WithTx(ctx context.Context, fn func(tx fulfillmenttx.Repository) error) (err error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRepo implements fulfillmenttx.Repository on top of one open transaction.
type TxRepo struct {
	tx pgx.Tx
}

var _ fulfillmenttx.Repository = (*TxRepo)(nil)
