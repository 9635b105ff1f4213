package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletTransaction is one immutable entry in a customer's wallet ledger.
// Amount is signed: credits positive, debits negative. The wallet balance
// is the running sum of amounts and is never stored as a counter.
type WalletTransaction struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	Type        TransactionType
	Amount      decimal.Decimal
	Reference   string
	Description string
	CreatedAt   time.Time
}

// Credit reports whether the transaction type adds funds.
func (t TransactionType) Credit() bool {
	switch t {
	case TxTopUp, TxRefund, TxReferralCredit, TxPromoCredit:
		return true
	}
	return false
}

// BalanceOf sums transaction amounts in order. Exposed for callers holding
// a statement; the repository computes the same sum in SQL.
func BalanceOf(txs []WalletTransaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range txs {
		balance = balance.Add(tx.Amount)
	}
	return balance
}
