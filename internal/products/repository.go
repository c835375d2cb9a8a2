package products

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prime-apparel/backend/internal/shared"
)

// ListFilters narrows catalog listings.
type ListFilters struct {
	shared.ListFilters
	Category   string
	ActiveOnly bool
}

// Repository describes catalog persistence.
type Repository interface {
	Create(ctx context.Context, product Product) (Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, id int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const productColumns = `id, name, description, category, sub_category, image_urls, price_tiers, colors, sizes,
	moq, lead_time_days, material, certifications, customization, specifications, is_active, created_at, updated_at`

type productJSON struct {
	images, tiers, colors, sizes, certs, specs []byte
}

func marshalProduct(p Product) (productJSON, error) {
	var out productJSON
	var err error
	if out.images, err = json.Marshal(p.ImageURLs); err != nil {
		return out, err
	}
	if out.tiers, err = json.Marshal(p.PriceTiers); err != nil {
		return out, err
	}
	if out.colors, err = json.Marshal(p.Colors); err != nil {
		return out, err
	}
	if out.sizes, err = json.Marshal(p.Sizes); err != nil {
		return out, err
	}
	if out.certs, err = json.Marshal(p.Certifications); err != nil {
		return out, err
	}
	out.specs, err = json.Marshal(p.Specifications)
	return out, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var images, tiers, colors, sizes, certs, specs []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.SubCategory, &images, &tiers, &colors, &sizes,
		&p.MOQ, &p.LeadTimeDays, &p.Material, &certs, &p.Customization, &specs, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	for _, pair := range []struct {
		raw    []byte
		target any
	}{
		{images, &p.ImageURLs},
		{tiers, &p.PriceTiers},
		{colors, &p.Colors},
		{sizes, &p.Sizes},
		{certs, &p.Certifications},
		{specs, &p.Specifications},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.target); err != nil {
			return Product{}, err
		}
	}
	return p, nil
}

func (r *pgRepository) Create(ctx context.Context, product Product) (Product, error) {
	j, err := marshalProduct(product)
	if err != nil {
		return Product{}, err
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO products (name, description, category, sub_category, image_urls, price_tiers, colors, sizes,
		moq, lead_time_days, material, certifications, customization, specifications, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING `+productColumns,
		product.Name, product.Description, product.Category, product.SubCategory, j.images, j.tiers, j.colors, j.sizes,
		product.MOQ, product.LeadTimeDays, product.Material, j.certs, product.Customization, j.specs, product.IsActive)
	return scanProduct(row)
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *pgRepository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.ActiveOnly {
		where += ` AND is_active`
	}
	if filters.Category != "" {
		args = append(args, filters.Category)
		where += ` AND category = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR material ILIKE $` + n + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, filters.PerPage, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *pgRepository) Update(ctx context.Context, product Product) error {
	j, err := marshalProduct(product)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name = $1, description = $2, category = $3, sub_category = $4,
		image_urls = $5, price_tiers = $6, colors = $7, sizes = $8, moq = $9, lead_time_days = $10, material = $11,
		certifications = $12, customization = $13, specifications = $14, is_active = $15, updated_at = NOW()
		WHERE id = $16`,
		product.Name, product.Description, product.Category, product.SubCategory, j.images, j.tiers, j.colors, j.sizes,
		product.MOQ, product.LeadTimeDays, product.Material, j.certs, product.Customization, j.specs, product.IsActive, product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
