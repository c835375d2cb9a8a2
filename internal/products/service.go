package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/prime-apparel/backend/internal/shared"
)

// Service owns the catalog.
type Service struct {
	repo Repository
}

// NewService constructs a product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a catalog entry with a normalized category.
func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := validate(product); err != nil {
		return Product{}, err
	}
	normalize(&product)
	return s.repo.Create(ctx, product)
}

// Update replaces a catalog entry.
func (s *Service) Update(ctx context.Context, id int64, product Product) (Product, error) {
	if err := validate(product); err != nil {
		return Product{}, err
	}
	product.ID = id
	normalize(&product)
	if err := s.repo.Update(ctx, product); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// Get returns one catalog entry.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns catalog entries matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	filters.Category = NormalizeCategory(filters.Category)
	return s.repo.List(ctx, filters)
}

// Delete removes a catalog entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func normalize(product *Product) {
	product.Category = NormalizeCategory(strings.TrimSpace(product.Category))
	product.SubCategory = NormalizeCategory(strings.TrimSpace(product.SubCategory))
}

func validate(product Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if product.MOQ < 0 || product.LeadTimeDays < 0 {
		return fmt.Errorf("%w: MOQ and lead time must not be negative", shared.ErrValidation)
	}
	for _, tier := range product.PriceTiers {
		if tier.MinQuantity < 0 || tier.Price.IsNegative() {
			return fmt.Errorf("%w: price tiers must not be negative", shared.ErrValidation)
		}
	}
	return nil
}
