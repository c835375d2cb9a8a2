package products

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/prime-apparel/backend/internal/shared"
)

type memoryProductRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: make(map[int64]Product)}
}

func (r *memoryProductRepo) Create(ctx context.Context, product Product) (Product, error) {
	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryProductRepo) Get(ctx context.Context, id int64) (Product, error) {
	product, ok := r.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return product, nil
}

func (r *memoryProductRepo) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	var list []Product
	for _, p := range r.products {
		if filters.ActiveOnly && !p.IsActive {
			continue
		}
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		list = append(list, p)
	}
	return list, len(list), nil
}

func (r *memoryProductRepo) Update(ctx context.Context, product Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return shared.ErrNotFound
	}
	r.products[product.ID] = product
	return nil
}

func (r *memoryProductRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func TestNormalizeCategory(t *testing.T) {
	require.Equal(t, "Knitwear", NormalizeCategory("knitWEAR"))
	require.Equal(t, "Woven Shirts", NormalizeCategory("woven shirts"))
	require.Equal(t, "", NormalizeCategory(""))
}

func TestCreateNormalizesCategory(t *testing.T) {
	svc := NewService(newMemoryProductRepo())

	product, err := svc.Create(context.Background(), Product{Name: "Crewneck Tee", Category: " knitwear "})
	require.NoError(t, err)
	require.Equal(t, "Knitwear", product.Category)
}

func TestListMatchesNormalizedCategory(t *testing.T) {
	repo := newMemoryProductRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Name: "Tee", Category: "KNITWEAR", IsActive: true})
	require.NoError(t, err)

	list, total, err := svc.List(ctx, ListFilters{Category: "knitwear"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, list, 1)
}

func TestValidation(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Name: " "})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Product{Name: "Tee", MOQ: -1})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Product{Name: "Tee", PriceTiers: []PriceTier{{MinQuantity: 100, Price: decimal.RequireFromString("-1")}}})
	require.ErrorIs(t, err, shared.ErrValidation)
}
