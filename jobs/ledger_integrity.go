package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/prime-apparel/backend/internal/observability"
)

// LedgerRow is one supplier's stored ledger triple alongside the totals
// recomputed from purchase orders and payments.
type LedgerRow struct {
	SupplierID     int64
	Name           string
	StoredBilled   decimal.Decimal
	StoredPaid     decimal.Decimal
	StoredBalance  decimal.Decimal
	DerivedBilled  decimal.Decimal
	DerivedPaid    decimal.Decimal
	DerivedBalance decimal.Decimal
}

// Drifted reports whether the stored triple disagrees with the derived one.
func (r LedgerRow) Drifted() bool {
	return !r.StoredBilled.Equal(r.DerivedBilled) ||
		!r.StoredPaid.Equal(r.DerivedPaid) ||
		!r.StoredBalance.Equal(r.DerivedBalance)
}

// NewLedgerIntegrityHandler returns the periodic sweep that recomputes
// every supplier's ledger triple from non-cancelled purchase orders and
// their payments, and logs any drift from the stored values. The sweep
// only reports, through the log and the drift gauge; reconciliation stays
// a human decision.
func NewLedgerIntegrityHandler(pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		rows, err := pool.Query(ctx, `SELECT s.id, s.name, s.total_billed, s.total_paid, s.balance,
			COALESCE((SELECT SUM(total_amount) FROM purchase_orders WHERE supplier_id = s.id AND status <> 'CANCELLED'), 0),
			COALESCE((SELECT SUM(pp.amount) FROM po_payments pp JOIN purchase_orders po ON po.id = pp.po_id WHERE po.supplier_id = s.id), 0)
		FROM suppliers s ORDER BY s.id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		checked, drifted := 0, 0
		for rows.Next() {
			var row LedgerRow
			if err := rows.Scan(&row.SupplierID, &row.Name, &row.StoredBilled, &row.StoredPaid, &row.StoredBalance,
				&row.DerivedBilled, &row.DerivedPaid); err != nil {
				return err
			}
			row.DerivedBalance = row.DerivedBilled.Sub(row.DerivedPaid)
			checked++
			if row.Drifted() {
				drifted++
				logger.Warn("supplier ledger drift",
					slog.Int64("supplier_id", row.SupplierID),
					slog.String("name", row.Name),
					slog.String("stored_balance", row.StoredBalance.String()),
					slog.String("derived_balance", row.DerivedBalance.String()))
			}
		}
		if err := rows.Err(); err != nil {
			return err
		}
		metrics.RecordLedgerSweep(drifted)
		logger.Info("ledger integrity sweep", slog.Int("checked", checked), slog.Int("drifted", drifted))
		return nil
	}
}
