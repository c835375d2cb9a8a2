package suppliers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prime-apparel/backend/internal/shared"
)

// Repository describes supplier persistence.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	Update(ctx context.Context, id int64, supplier Supplier) error
	Delete(ctx context.Context, id int64) error
	LedgerSummary(ctx context.Context, id int64) (LedgerSummary, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a postgres-backed supplier repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const supplierColumns = `id, name, contact_person, email, phone, address, category,
	account_name, account_number, bank_name, ifsc_code,
	total_billed, total_paid, balance, created_at, updated_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address, &s.Category,
		&s.AccountName, &s.AccountNumber, &s.BankName, &s.IFSCCode,
		&s.TotalBilled, &s.TotalPaid, &s.Balance, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, shared.ErrNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM suppliers WHERE 1=1`
	args := []any{}
	countArgs := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR contact_person ILIKE $` + strconv.Itoa(argCount) + `)`
		countQuery += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR contact_person ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}
	if filters.Status != "" {
		// Status filter doubles as the category filter on this listing.
		argCount++
		query += ` AND category = $` + strconv.Itoa(argCount)
		countQuery += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
		countArgs = append(countArgs, filters.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	query += ` LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filters.PerPage, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address, &s.Category,
			&s.AccountName, &s.AccountNumber, &s.BankName, &s.IFSCCode,
			&s.TotalBilled, &s.TotalPaid, &s.Balance, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	return scanSupplier(r.db.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO suppliers (name, contact_person, email, phone, address, category,
			account_name, account_number, bank_name, ifsc_code,
			total_billed, total_paid, balance, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0, 0, $11, $11) RETURNING id`,
		supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address, string(supplier.Category),
		supplier.AccountName, supplier.AccountNumber, supplier.BankName, supplier.IFSCCode, now,
	).Scan(&supplier.ID)
	if err != nil {
		return Supplier{}, err
	}
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	return supplier, nil
}

// Update persists the master-data fields only. Ledger fields are owned by
// procurement and excluded deliberately.
func (r *repository) Update(ctx context.Context, id int64, supplier Supplier) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE suppliers SET name = $1, contact_person = $2, email = $3, phone = $4, address = $5,
			category = $6, account_name = $7, account_number = $8, bank_name = $9, ifsc_code = $10,
			updated_at = $11
		 WHERE id = $12`,
		supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address,
		string(supplier.Category), supplier.AccountName, supplier.AccountNumber, supplier.BankName, supplier.IFSCCode,
		time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) LedgerSummary(ctx context.Context, id int64) (LedgerSummary, error) {
	var summary LedgerSummary
	err := r.db.QueryRow(ctx,
		`SELECT s.id, s.name, s.total_billed, s.total_paid, s.balance,
			(SELECT COUNT(*) FROM purchase_orders p WHERE p.supplier_id = s.id AND p.status NOT IN ('COMPLETED', 'CANCELLED')),
			(SELECT COUNT(*) FROM purchase_orders p WHERE p.supplier_id = s.id)
		 FROM suppliers s WHERE s.id = $1`, id,
	).Scan(&summary.SupplierID, &summary.Name, &summary.TotalBilled, &summary.TotalPaid, &summary.Balance,
		&summary.OpenPOCount, &summary.TotalPOCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LedgerSummary{}, shared.ErrNotFound
		}
		return LedgerSummary{}, err
	}
	return summary, nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "name":
		return "name " + dir
	case "category":
		return "category " + dir
	case "balance":
		return "balance " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
