package costings

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prime-apparel/backend/internal/shared"
)

// Repository describes costing sheet persistence.
type Repository interface {
	Create(ctx context.Context, sheet Sheet) (Sheet, error)
	Get(ctx context.Context, id int64) (Sheet, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Sheet, int, error)
	Update(ctx context.Context, sheet Sheet) error
	Delete(ctx context.Context, id int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const sheetColumns = `id, COALESCE(lead_id, 0), style_name, fabric_cost, consumption, trim_cost, cm_cost, packing_cost, overhead, margin_pct, base_cost, exw_price, created_by, created_at, updated_at`

func scanSheet(row pgx.Row) (Sheet, error) {
	var s Sheet
	err := row.Scan(&s.ID, &s.LeadID, &s.StyleName, &s.FabricCost, &s.Consumption,
		&s.TrimCost, &s.CMCost, &s.PackingCost, &s.Overhead, &s.MarginPct,
		&s.BaseCost, &s.EXWPrice, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sheet{}, shared.ErrNotFound
		}
		return Sheet{}, err
	}
	return s, nil
}

func (r *pgRepository) Create(ctx context.Context, sheet Sheet) (Sheet, error) {
	var leadID any
	if sheet.LeadID != 0 {
		leadID = sheet.LeadID
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO costings (lead_id, style_name, fabric_cost, consumption, trim_cost, cm_cost, packing_cost, overhead, margin_pct, base_cost, exw_price, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING `+sheetColumns,
		leadID, sheet.StyleName, sheet.FabricCost, sheet.Consumption, sheet.TrimCost, sheet.CMCost,
		sheet.PackingCost, sheet.Overhead, sheet.MarginPct, sheet.BaseCost, sheet.EXWPrice, sheet.CreatedBy)
	return scanSheet(row)
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Sheet, error) {
	return scanSheet(r.pool.QueryRow(ctx, `SELECT `+sheetColumns+` FROM costings WHERE id = $1`, id))
}

func (r *pgRepository) List(ctx context.Context, filters shared.ListFilters) ([]Sheet, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND style_name ILIKE $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM costings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + sheetColumns + ` FROM costings` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, filters.PerPage, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Sheet
	for rows.Next() {
		sheet, err := scanSheet(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, sheet)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *pgRepository) Update(ctx context.Context, sheet Sheet) error {
	var leadID any
	if sheet.LeadID != 0 {
		leadID = sheet.LeadID
	}
	tag, err := r.pool.Exec(ctx, `UPDATE costings SET lead_id = $1, style_name = $2, fabric_cost = $3, consumption = $4,
		trim_cost = $5, cm_cost = $6, packing_cost = $7, overhead = $8, margin_pct = $9, base_cost = $10, exw_price = $11, updated_at = NOW()
		WHERE id = $12`,
		leadID, sheet.StyleName, sheet.FabricCost, sheet.Consumption, sheet.TrimCost, sheet.CMCost,
		sheet.PackingCost, sheet.Overhead, sheet.MarginPct, sheet.BaseCost, sheet.EXWPrice, sheet.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM costings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
