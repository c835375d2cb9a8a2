package leads

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prime-apparel/backend/internal/shared"
)

// Repository describes lead persistence.
type Repository interface {
	Create(ctx context.Context, lead Lead) (Lead, error)
	Get(ctx context.Context, id int64) (Lead, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Lead, int, error)
	Update(ctx context.Context, lead Lead) error
	AppendHistory(ctx context.Context, entry HistoryEntry) error
	History(ctx context.Context, leadID int64) ([]HistoryEntry, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const leadColumns = `id, name, email, phone, country, product_type, quantity, budget, message, reference_urls, status, COALESCE(assigned_user_id, 0), created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	var refs []byte
	err := row.Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Country,
		&lead.ProductType, &lead.Quantity, &lead.Budget, &lead.Message, &refs,
		&lead.Status, &lead.AssignedUserID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, shared.ErrNotFound
		}
		return Lead{}, err
	}
	if len(refs) > 0 {
		if err := json.Unmarshal(refs, &lead.ReferenceURLs); err != nil {
			return Lead{}, err
		}
	}
	return lead, nil
}

func (r *pgRepository) Create(ctx context.Context, lead Lead) (Lead, error) {
	refs, err := json.Marshal(lead.ReferenceURLs)
	if err != nil {
		return Lead{}, err
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO leads (name, email, phone, country, product_type, quantity, budget, message, reference_urls, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING `+leadColumns,
		lead.Name, lead.Email, lead.Phone, lead.Country, lead.ProductType, lead.Quantity, lead.Budget, lead.Message, refs, lead.Status)
	return scanLead(row)
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
}

func (r *pgRepository) List(ctx context.Context, filters shared.ListFilters) ([]Lead, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += ` AND status = $` + itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR email ILIKE $` + n + ` OR country ILIKE $` + n + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + leadColumns + ` FROM leads` + where +
		` ORDER BY created_at DESC LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, filters.PerPage, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *pgRepository) Update(ctx context.Context, lead Lead) error {
	refs, err := json.Marshal(lead.ReferenceURLs)
	if err != nil {
		return err
	}
	var assigned any
	if lead.AssignedUserID != 0 {
		assigned = lead.AssignedUserID
	}
	tag, err := r.pool.Exec(ctx, `UPDATE leads SET name = $1, email = $2, phone = $3, country = $4, product_type = $5,
		quantity = $6, budget = $7, message = $8, reference_urls = $9, status = $10, assigned_user_id = $11, updated_at = NOW()
		WHERE id = $12`,
		lead.Name, lead.Email, lead.Phone, lead.Country, lead.ProductType,
		lead.Quantity, lead.Budget, lead.Message, refs, lead.Status, assigned, lead.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	var actor any
	if entry.ActorID != 0 {
		actor = entry.ActorID
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO lead_history (lead_id, action, actor_id) VALUES ($1, $2, $3)`,
		entry.LeadID, entry.Action, actor)
	return err
}

func (r *pgRepository) History(ctx context.Context, leadID int64) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, lead_id, action, COALESCE(actor_id, 0), created_at
		FROM lead_history WHERE lead_id = $1 ORDER BY id`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Action, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
