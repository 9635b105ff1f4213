package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBalanceOf(t *testing.T) {
	t.Parallel()

	require.True(t, BalanceOf(nil).IsZero())

	txs := []WalletTransaction{
		{Type: TxTopUp, Amount: decimal.NewFromInt(500)},
		{Type: TxDebit, Amount: decimal.NewFromInt(-315)},
		{Type: TxRefund, Amount: decimal.NewFromInt(315)},
		{Type: TxPromoCredit, Amount: decimal.NewFromInt(50)},
	}
	require.True(t, BalanceOf(txs).Equal(decimal.NewFromInt(550)),
		"got %s", BalanceOf(txs))
}

func TestTransactionType_Credit(t *testing.T) {
	t.Parallel()

	credits := map[TransactionType]bool{
		TxTopUp:          true,
		TxRefund:         true,
		TxReferralCredit: true,
		TxPromoCredit:    true,
		TxDebit:          false,
	}
	for txType, want := range credits {
		require.Equal(t, want, txType.Credit(), "type %s", txType)
	}
}
