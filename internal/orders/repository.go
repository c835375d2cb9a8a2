package orders

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prime-apparel/backend/internal/platform/db"
	"github.com/prime-apparel/backend/internal/shared"
)

// Repository describes order persistence.
type Repository interface {
	Create(ctx context.Context, order Order, products []OrderProduct) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	Products(ctx context.Context, orderID int64) ([]OrderProduct, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status Status, stamp string, at time.Time) error
	UpdateDocuments(ctx context.Context, id int64, urls []string) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const orderColumns = `id, pi_number, COALESCE(lead_id, 0), buyer_name, buyer_email, buyer_company, buyer_address,
	commercial_term, payment_terms, currency, total_amount, status, document_urls,
	advance_received_at, production_started_at, shipment_date, delivered_at,
	created_by, created_at, updated_at`

// timeline column whitelist for UpdateStatus stamps.
var timelineColumns = map[string]bool{
	"advance_received_at":   true,
	"production_started_at": true,
	"shipment_date":         true,
	"delivered_at":          true,
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var docs []byte
	var advance, production, shipment, delivered *time.Time
	err := row.Scan(&o.ID, &o.PINumber, &o.LeadID, &o.BuyerName, &o.BuyerEmail, &o.BuyerCompany, &o.BuyerAddress,
		&o.Term, &o.PaymentTerms, &o.Currency, &o.TotalAmount, &o.Status, &docs,
		&advance, &production, &shipment, &delivered,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, shared.ErrNotFound
		}
		return Order{}, err
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &o.DocumentURLs); err != nil {
			return Order{}, err
		}
	}
	if advance != nil {
		o.AdvanceReceivedAt = *advance
	}
	if production != nil {
		o.ProductionStartedAt = *production
	}
	if shipment != nil {
		o.ShipmentDate = *shipment
	}
	if delivered != nil {
		o.DeliveredAt = *delivered
	}
	return o, nil
}

func (r *pgRepository) Create(ctx context.Context, order Order, products []OrderProduct) (Order, error) {
	docs, err := json.Marshal(order.DocumentURLs)
	if err != nil {
		return Order{}, err
	}
	var leadID any
	if order.LeadID != 0 {
		leadID = order.LeadID
	}

	var created Order
	err = db.WithTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `INSERT INTO orders (pi_number, lead_id, buyer_name, buyer_email, buyer_company, buyer_address,
			commercial_term, payment_terms, currency, total_amount, status, document_urls, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING `+orderColumns,
			order.PINumber, leadID, order.BuyerName, order.BuyerEmail, order.BuyerCompany, order.BuyerAddress,
			order.Term, order.PaymentTerms, order.Currency, order.TotalAmount, order.Status, docs, order.CreatedBy)
		created, err = scanOrder(row)
		if err != nil {
			return err
		}
		for _, p := range products {
			var productID any
			if p.ProductID != 0 {
				productID = p.ProductID
			}
			if _, err := tx.Exec(ctx, `INSERT INTO order_products (order_id, product_id, name, quantity, unit_price, total_price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				created.ID, productID, p.Name, p.Quantity, p.UnitPrice, p.TotalPrice); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Order{}, shared.ErrDuplicate
		}
		return Order{}, err
	}
	return created, nil
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Order, error) {
	return scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *pgRepository) Products(ctx context.Context, orderID int64) ([]OrderProduct, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, COALESCE(product_id, 0), name, quantity, unit_price, total_price
		FROM order_products WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []OrderProduct
	for rows.Next() {
		var p OrderProduct
		if err := rows.Scan(&p.ID, &p.OrderID, &p.ProductID, &p.Name, &p.Quantity, &p.UnitPrice, &p.TotalPrice); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *pgRepository) List(ctx context.Context, filters shared.ListFilters) ([]Order, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (pi_number ILIKE $` + n + ` OR buyer_name ILIKE $` + n + ` OR buyer_company ILIKE $` + n + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, filters.PerPage, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *pgRepository) UpdateStatus(ctx context.Context, id int64, status Status, stamp string, at time.Time) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW()`
	args := []any{status}
	if stamp != "" {
		if !timelineColumns[stamp] {
			return shared.ErrValidation
		}
		args = append(args, at)
		query += `, ` + stamp + ` = $` + strconv.Itoa(len(args))
	}
	args = append(args, id)
	query += ` WHERE id = $` + strconv.Itoa(len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) UpdateDocuments(ctx context.Context, id int64, urls []string) error {
	docs, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET document_urls = $1, updated_at = NOW() WHERE id = $2`, docs, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
