package procurement

import "github.com/shopspring/decimal"

// Ledger is a supplier's running account: what has been billed against it,
// what has been paid, and the open balance. All ledger mutations go through
// the pure Apply functions below so the invariant
//
//	balance == total_billed - total_paid
//
// holds by construction. The procurement service is the only writer.
type Ledger struct {
	TotalBilled decimal.Decimal
	TotalPaid   decimal.Decimal
	Balance     decimal.Decimal
}

// ApplyPurchase returns the ledger after a purchase order of the given
// amount is raised against the supplier.
func (l Ledger) ApplyPurchase(amount decimal.Decimal) Ledger {
	return Ledger{
		TotalBilled: l.TotalBilled.Add(amount),
		TotalPaid:   l.TotalPaid,
		Balance:     l.Balance.Add(amount),
	}
}

// ApplyPayment returns the ledger after a payment of the given amount is
// recorded against the supplier.
func (l Ledger) ApplyPayment(amount decimal.Decimal) Ledger {
	return Ledger{
		TotalBilled: l.TotalBilled,
		TotalPaid:   l.TotalPaid.Add(amount),
		Balance:     l.Balance.Sub(amount),
	}
}

// Consistent reports whether the triple satisfies
// balance == total_billed - total_paid.
func (l Ledger) Consistent() bool {
	return l.Balance.Equal(l.TotalBilled.Sub(l.TotalPaid))
}

// DerivePaymentStatus returns the status a purchase order lands in after a
// payment, given the cumulative paid total. Only non-terminal statuses may
// transition: paid >= total completes the order, anything less marks it
// partially received. Callers must reject payments against terminal orders
// before deriving.
func DerivePaymentStatus(current POStatus, paid, total decimal.Decimal) POStatus {
	if current.Terminal() {
		return current
	}
	if paid.GreaterThanOrEqual(total) {
		return POStatusCompleted
	}
	return POStatusPartialReceived
}
