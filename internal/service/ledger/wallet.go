package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/ports/fulfillmenttx"
)

// WalletService maintains the append-only wallet transaction ledger.
// The balance is always the running sum of entries; debits that would
// drive it negative are rejected without appending anything.
type WalletService struct {
	repo             txRunner
	reads            walletReads
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewWalletService creates a new WalletService.
func NewWalletService(repo txRunner, reads walletReads, timeout time.Duration, logger logx.Logger) *WalletService {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &WalletService{
		repo:             repo,
		reads:            reads,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *WalletService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Credit appends a positive entry and returns the new balance. Referral and
// promo credits are ordinary credits distinguished only by type.
func (s *WalletService) Credit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, txType domain.TransactionType, reference, description string) (decimal.Decimal, error) {
	if !amount.IsPositive() || !txType.Credit() {
		return decimal.Zero, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var balance decimal.Decimal
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		var err error
		balance, err = CreditTx(ctx, tx, customerID, amount, txType, reference, description, s.now())
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("wallet credited",
		logx.String("event", "wallet_credited"),
		logx.String("customer_id", customerID.String()),
		logx.String("type", string(txType)),
		logx.String("amount", amount.String()),
	)
	return balance, nil
}

// Debit appends a negative entry and returns the new balance, or fails
// with ErrInsufficientFunds leaving the ledger untouched.
func (s *WalletService) Debit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	if !amount.IsPositive() || strings.TrimSpace(description) == "" {
		return decimal.Zero, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var balance decimal.Decimal
	err := s.repo.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		var err error
		balance, err = DebitTx(ctx, tx, customerID, amount, "", description, s.now())
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("wallet debited",
		logx.String("event", "wallet_debited"),
		logx.String("customer_id", customerID.String()),
		logx.String("amount", amount.String()),
	)
	return balance, nil
}

// CreditTx appends a credit inside an open transaction.
func CreditTx(ctx context.Context, tx fulfillmenttx.Repository, customerID uuid.UUID, amount decimal.Decimal, txType domain.TransactionType, reference, description string, now time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() || !txType.Credit() {
		return decimal.Zero, apperr.ErrInvalid
	}
	if err := tx.LockWallet(ctx, customerID); err != nil {
		return decimal.Zero, err
	}
	entry := &domain.WalletTransaction{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Type:        txType,
		Amount:      amount,
		Reference:   reference,
		Description: description,
		CreatedAt:   now,
	}
	if err := tx.InsertWalletTransaction(ctx, entry); err != nil {
		return decimal.Zero, err
	}
	return tx.WalletBalance(ctx, customerID)
}

// DebitTx appends a debit inside an open transaction. The wallet row lock
// makes the balance check and the append atomic, so two racing debits
// cannot both pass against the same funds.
func DebitTx(ctx context.Context, tx fulfillmenttx.Repository, customerID uuid.UUID, amount decimal.Decimal, reference, description string, now time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperr.ErrInvalid
	}
	if err := tx.LockWallet(ctx, customerID); err != nil {
		return decimal.Zero, err
	}
	balance, err := tx.WalletBalance(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.GreaterThan(balance) {
		return decimal.Zero, apperr.ErrInsufficientFunds
	}
	entry := &domain.WalletTransaction{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Type:        domain.TxDebit,
		Amount:      amount.Neg(),
		Reference:   reference,
		Description: description,
		CreatedAt:   now,
	}
	if err := tx.InsertWalletTransaction(ctx, entry); err != nil {
		return decimal.Zero, err
	}
	return balance.Sub(amount), nil
}

// Balance is the derived running sum for a customer.
func (s *WalletService) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.reads.WalletBalance(ctx, customerID)
}

// Statement returns the full ledger for a customer, oldest first.
func (s *WalletService) Statement(ctx context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.reads.ListWalletTransactions(ctx, customerID)
}
