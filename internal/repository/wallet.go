package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

// LockWallet serializes ledger writes for one customer. The wallets table
// holds nothing but the lock anchor row; the balance lives in the ledger.
func (r *TxRepo) LockWallet(ctx context.Context, customerID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO wallets (customer_id) VALUES ($1)
        ON CONFLICT (customer_id) DO NOTHING
    `, customerID)
	if err != nil {
		return fmt.Errorf("ensure wallet %s: %w", customerID, err)
	}
	_, err = r.tx.Exec(ctx, `SELECT customer_id FROM wallets WHERE customer_id = $1 FOR UPDATE`, customerID)
	if err != nil {
		return fmt.Errorf("lock wallet %s: %w", customerID, err)
	}
	return nil
}

// WalletBalance derives the balance as the sum of ledger amounts.
func (r *TxRepo) WalletBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	return walletBalance(ctx, r.tx, customerID)
}

// WalletBalance - derived read outside a transaction.
func (s *Store) WalletBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	return walletBalance(ctx, s.db, customerID)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func walletBalance(ctx context.Context, q rowQuerier, customerID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount), 0)
        FROM wallet_transactions
        WHERE customer_id = $1
    `, customerID).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet balance %s: %w", customerID, err)
	}
	return balance, nil
}

// InsertWalletTransaction - append one immutable ledger entry.
func (r *TxRepo) InsertWalletTransaction(ctx context.Context, tx *domain.WalletTransaction) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO wallet_transactions (id, customer_id, type, amount, reference, description, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, tx.ID, tx.CustomerID, string(tx.Type), tx.Amount, tx.Reference, tx.Description, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet transaction for %s: %w", tx.CustomerID, err)
	}
	return nil
}

// ListWalletTransactions - full statement for a customer, oldest first.
func (s *Store) ListWalletTransactions(ctx context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, customer_id, type, amount, reference, description, created_at
        FROM wallet_transactions
        WHERE customer_id = $1
        ORDER BY created_at ASC, id ASC
    `, customerID)
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions %s: %w", customerID, err)
	}
	defer rows.Close()

	var out []domain.WalletTransaction
	for rows.Next() {
		var (
			tx     domain.WalletTransaction
			txType string
		)
		if err := rows.Scan(&tx.ID, &tx.CustomerID, &txType, &tx.Amount, &tx.Reference, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("list wallet transactions %s: %w", customerID, err)
		}
		tx.Type = domain.TransactionType(txType)
		out = append(out, tx)
	}
	return out, rows.Err()
}
