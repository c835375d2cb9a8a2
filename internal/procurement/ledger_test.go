package procurement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLedgerApplyPurchase(t *testing.T) {
	ledger := Ledger{}
	ledger = ledger.ApplyPurchase(dec("1500.50"))
	require.True(t, ledger.TotalBilled.Equal(dec("1500.50")))
	require.True(t, ledger.TotalPaid.Equal(decimal.Zero))
	require.True(t, ledger.Balance.Equal(dec("1500.50")))
	require.True(t, ledger.Consistent())

	ledger = ledger.ApplyPurchase(dec("1500.50").Neg())
	require.True(t, ledger.Balance.Equal(decimal.Zero))
	require.True(t, ledger.Consistent())
}

func TestLedgerApplyPayment(t *testing.T) {
	ledger := Ledger{}.ApplyPurchase(dec("1000"))
	ledger = ledger.ApplyPayment(dec("399.99"))
	require.True(t, ledger.TotalBilled.Equal(dec("1000")))
	require.True(t, ledger.TotalPaid.Equal(dec("399.99")))
	require.True(t, ledger.Balance.Equal(dec("600.01")))
	require.True(t, ledger.Consistent())
}

func TestLedgerConsistent(t *testing.T) {
	require.True(t, Ledger{}.Consistent())
	broken := Ledger{TotalBilled: dec("100"), TotalPaid: dec("40"), Balance: dec("50")}
	require.False(t, broken.Consistent())
}

func TestDerivePaymentStatus(t *testing.T) {
	total := dec("1000")
	cases := []struct {
		name    string
		current POStatus
		paid    string
		want    POStatus
	}{
		{"draft partial", POStatusDraft, "100", POStatusPartialReceived},
		{"sent partial", POStatusSent, "999.99", POStatusPartialReceived},
		{"partial stays partial", POStatusPartialReceived, "500", POStatusPartialReceived},
		{"exact completes", POStatusSent, "1000", POStatusCompleted},
		{"overpay completes", POStatusPartialReceived, "1200", POStatusCompleted},
		{"completed absorbs", POStatusCompleted, "1", POStatusCompleted},
		{"cancelled absorbs", POStatusCancelled, "500", POStatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DerivePaymentStatus(tc.current, dec(tc.paid), total))
		})
	}
}

func TestItemAmount(t *testing.T) {
	require.True(t, ItemAmount(dec("100"), dec("3.555")).Equal(dec("355.50")))
	require.True(t, ItemAmount(dec("3"), dec("0.335")).Equal(dec("1.01")))
	require.True(t, ItemAmount(dec("0"), dec("10")).Equal(decimal.Zero))
}
