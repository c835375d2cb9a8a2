package suppliers

import (
	"context"

	"github.com/prime-apparel/backend/internal/shared"
)

// Service wraps supplier master-data rules.
type Service struct {
	repo Repository
}

// NewService constructs the supplier service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.ErrValidation
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	if err := s.validate(supplier); err != nil {
		return Supplier{}, err
	}
	return s.repo.Create(ctx, supplier)
}

func (s *Service) Update(ctx context.Context, id int64, supplier Supplier) error {
	if id <= 0 {
		return shared.ErrValidation
	}
	if err := s.validate(supplier); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, supplier)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrValidation
	}
	return s.repo.Delete(ctx, id)
}

// Ledger returns the account overview for a supplier.
func (s *Service) Ledger(ctx context.Context, id int64) (LedgerSummary, error) {
	if id <= 0 {
		return LedgerSummary{}, shared.ErrValidation
	}
	return s.repo.LedgerSummary(ctx, id)
}
