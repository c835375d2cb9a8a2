package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/prime-apparel/backend/internal/shared"
)

// ListFilters narrows purchase order listings.
type ListFilters struct {
	shared.ListFilters
	SupplierID int64
	Type       string
}

// Repository provides PostgreSQL backed persistence for purchase orders,
// items, payments and the supplier ledger triple.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside a reconciliation
// transaction. Lock methods take row locks that serialize concurrent
// writers on the same supplier or purchase order.
type TxRepository interface {
	LockSupplierLedger(ctx context.Context, supplierID int64) (Ledger, error)
	UpdateSupplierLedger(ctx context.Context, supplierID int64, ledger Ledger) error
	LockPO(ctx context.Context, id int64) (PurchaseOrder, error)
	CreatePO(ctx context.Context, po PurchaseOrder) (int64, error)
	InsertPOItem(ctx context.Context, item POItem) error
	UpdatePOStatus(ctx context.Context, id int64, status POStatus) error
	InsertPayment(ctx context.Context, payment POPayment) (int64, error)
	SumPayments(ctx context.Context, poID int64) (decimal.Decimal, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx runs fn inside a read-committed transaction. The FOR UPDATE locks
// taken by the callback serialize concurrent writers on the same supplier
// or purchase order; read committed lets a writer that waited on the lock
// proceed against the winner's committed rows, where a snapshot isolation
// level would abort it with a serialization failure. A commit failure is
// surfaced as shared.ErrLedgerInconsistency: every write in the callback
// was rolled back together, so the ledger is untouched.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", shared.ErrLedgerInconsistency, err)
	}
	return nil
}

// GetPO returns the purchase order and its items.
func (r *Repository) GetPO(ctx context.Context, id int64) (PurchaseOrder, []POItem, error) {
	var po PurchaseOrder
	var deliveryDate *time.Time
	err := r.pool.QueryRow(ctx, `SELECT id, po_number, supplier_id, COALESCE(order_id, 0), po_type, status, total_amount,
		delivery_date, note, created_by, created_at, updated_at
		FROM purchase_orders WHERE id = $1`, id).Scan(
		&po.ID, &po.Number, &po.SupplierID, &po.OrderID, &po.Type, &po.Status, &po.TotalAmount,
		&deliveryDate, &po.Note, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, nil, shared.ErrNotFound
		}
		return PurchaseOrder{}, nil, err
	}
	if deliveryDate != nil {
		po.DeliveryDate = *deliveryDate
	}

	rows, err := r.pool.Query(ctx, `SELECT id, po_id, description, quantity, unit, rate, amount
		FROM po_items WHERE po_id = $1 ORDER BY id`, id)
	if err != nil {
		return PurchaseOrder{}, nil, err
	}
	defer rows.Close()

	var items []POItem
	for rows.Next() {
		var item POItem
		if err := rows.Scan(&item.ID, &item.POID, &item.Description, &item.Quantity, &item.Unit, &item.Rate, &item.Amount); err != nil {
			return PurchaseOrder{}, nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return PurchaseOrder{}, nil, err
	}
	return po, items, nil
}

// ListPayments returns payments for a purchase order, oldest first.
func (r *Repository) ListPayments(ctx context.Context, poID int64) ([]POPayment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, po_id, amount, payment_date, method, reference, COALESCE(proof_url, ''), created_by, created_at
		FROM po_payments WHERE po_id = $1 ORDER BY id`, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []POPayment
	for rows.Next() {
		var p POPayment
		if err := rows.Scan(&p.ID, &p.POID, &p.Amount, &p.PaymentDate, &p.Method, &p.Reference, &p.ProofURL, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ListPOs returns purchase orders joined with supplier name and paid total.
func (r *Repository) ListPOs(ctx context.Context, filters ListFilters) ([]POListItem, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += ` AND p.status = $` + itoa(len(args))
	}
	if filters.SupplierID > 0 {
		args = append(args, filters.SupplierID)
		where += ` AND p.supplier_id = $` + itoa(len(args))
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		where += ` AND p.po_type = $` + itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND p.po_number ILIKE $` + itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT p.id, p.po_number, p.supplier_id, COALESCE(s.name, '') AS supplier_name,
		p.po_type, p.status, p.total_amount,
		COALESCE((SELECT SUM(amount) FROM po_payments WHERE po_id = p.id), 0) AS total_paid,
		p.delivery_date, p.created_at
	FROM purchase_orders p
	LEFT JOIN suppliers s ON s.id = p.supplier_id` + where +
		` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir) +
		` LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, filters.PerPage, filters.Offset())

	rows, err := r.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []POListItem
	for rows.Next() {
		var item POListItem
		var deliveryDate *time.Time
		if err := rows.Scan(&item.ID, &item.Number, &item.SupplierID, &item.SupplierName,
			&item.Type, &item.Status, &item.TotalAmount, &item.TotalPaid, &deliveryDate, &item.CreatedAt); err != nil {
			return nil, 0, err
		}
		if deliveryDate != nil {
			item.DeliveryDate = *deliveryDate
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (tx *txRepo) LockSupplierLedger(ctx context.Context, supplierID int64) (Ledger, error) {
	var ledger Ledger
	err := tx.tx.QueryRow(ctx, `SELECT total_billed, total_paid, balance FROM suppliers WHERE id = $1 FOR UPDATE`, supplierID).
		Scan(&ledger.TotalBilled, &ledger.TotalPaid, &ledger.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ledger{}, shared.ErrNotFound
		}
		return Ledger{}, err
	}
	return ledger, nil
}

func (tx *txRepo) UpdateSupplierLedger(ctx context.Context, supplierID int64, ledger Ledger) error {
	_, err := tx.tx.Exec(ctx, `UPDATE suppliers SET total_billed = $1, total_paid = $2, balance = $3, updated_at = NOW() WHERE id = $4`,
		ledger.TotalBilled, ledger.TotalPaid, ledger.Balance, supplierID)
	return err
}

func (tx *txRepo) LockPO(ctx context.Context, id int64) (PurchaseOrder, error) {
	var po PurchaseOrder
	err := tx.tx.QueryRow(ctx, `SELECT id, po_number, supplier_id, COALESCE(order_id, 0), po_type, status, total_amount, note, created_by
		FROM purchase_orders WHERE id = $1 FOR UPDATE`, id).Scan(
		&po.ID, &po.Number, &po.SupplierID, &po.OrderID, &po.Type, &po.Status, &po.TotalAmount, &po.Note, &po.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, shared.ErrNotFound
		}
		return PurchaseOrder{}, err
	}
	return po, nil
}

func (tx *txRepo) CreatePO(ctx context.Context, po PurchaseOrder) (int64, error) {
	var orderID any
	if po.OrderID != 0 {
		orderID = po.OrderID
	}
	var deliveryDate any
	if !po.DeliveryDate.IsZero() {
		deliveryDate = po.DeliveryDate
	}
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO purchase_orders (po_number, supplier_id, order_id, po_type, status, total_amount, delivery_date, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		po.Number, po.SupplierID, orderID, po.Type, po.Status, po.TotalAmount, deliveryDate, po.Note, po.CreatedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, shared.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (tx *txRepo) InsertPOItem(ctx context.Context, item POItem) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO po_items (po_id, description, quantity, unit, rate, amount) VALUES ($1, $2, $3, $4, $5, $6)`,
		item.POID, item.Description, item.Quantity, item.Unit, item.Rate, item.Amount)
	return err
}

func (tx *txRepo) UpdatePOStatus(ctx context.Context, id int64, status POStatus) error {
	_, err := tx.tx.Exec(ctx, `UPDATE purchase_orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

func (tx *txRepo) InsertPayment(ctx context.Context, payment POPayment) (int64, error) {
	var proof any
	if payment.ProofURL != "" {
		proof = payment.ProofURL
	}
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO po_payments (po_id, amount, payment_date, method, reference, proof_url, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		payment.POID, payment.Amount, payment.PaymentDate, payment.Method, payment.Reference, proof, payment.CreatedBy).Scan(&id)
	return id, err
}

func (tx *txRepo) SumPayments(ctx context.Context, poID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM po_payments WHERE po_id = $1`, poID).Scan(&sum)
	return sum, err
}

func itoa(i int) string {
	return fmt.Sprintf("%d", i)
}

// sortOrder returns a safe ORDER BY clause for PO queries.
func sortOrder(sortBy, sortDir string) string {
	dir := "DESC"
	if sortDir == "asc" {
		dir = "ASC"
	}
	switch sortBy {
	case "number":
		return "p.po_number " + dir
	case "supplier":
		return "supplier_name " + dir
	case "total":
		return "p.total_amount " + dir
	case "status":
		return "p.status " + dir
	case "delivery_date":
		return "p.delivery_date " + dir
	default:
		return "p.created_at DESC"
	}
}
