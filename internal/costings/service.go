package costings

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/prime-apparel/backend/internal/shared"
)

// Service owns costing sheets. Derived pricing always comes from Compute;
// the stored base_cost and exw_price columns are never written directly.
type Service struct {
	repo Repository
}

// NewService constructs a costing service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create computes derived pricing and stores the sheet.
func (s *Service) Create(ctx context.Context, sheet Sheet) (Sheet, error) {
	if err := validate(sheet); err != nil {
		return Sheet{}, err
	}
	applyQuote(&sheet)
	return s.repo.Create(ctx, sheet)
}

// Update recomputes derived pricing and stores the sheet.
func (s *Service) Update(ctx context.Context, id int64, sheet Sheet) (Sheet, error) {
	if err := validate(sheet); err != nil {
		return Sheet{}, err
	}
	sheet.ID = id
	applyQuote(&sheet)
	if err := s.repo.Update(ctx, sheet); err != nil {
		return Sheet{}, err
	}
	return s.repo.Get(ctx, id)
}

// Get returns one costing sheet.
func (s *Service) Get(ctx context.Context, id int64) (Sheet, error) {
	return s.repo.Get(ctx, id)
}

// List returns costing sheets matching the filters.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Sheet, int, error) {
	return s.repo.List(ctx, filters)
}

// Delete removes a costing sheet.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// QuoteOnly computes pricing without persisting anything.
func (s *Service) QuoteOnly(in Inputs) (Quote, error) {
	if err := validateInputs(in); err != nil {
		return Quote{}, err
	}
	return Compute(in), nil
}

func applyQuote(sheet *Sheet) {
	quote := Compute(Inputs{
		FabricCost:  sheet.FabricCost,
		Consumption: sheet.Consumption,
		TrimCost:    sheet.TrimCost,
		CMCost:      sheet.CMCost,
		PackingCost: sheet.PackingCost,
		Overhead:    sheet.Overhead,
		MarginPct:   sheet.MarginPct,
	})
	sheet.BaseCost = quote.BaseCost
	sheet.EXWPrice = quote.EXWPrice
}

func validate(sheet Sheet) error {
	if strings.TrimSpace(sheet.StyleName) == "" {
		return fmt.Errorf("%w: style name is required", shared.ErrValidation)
	}
	return validateInputs(Inputs{
		FabricCost:  sheet.FabricCost,
		Consumption: sheet.Consumption,
		TrimCost:    sheet.TrimCost,
		CMCost:      sheet.CMCost,
		PackingCost: sheet.PackingCost,
		Overhead:    sheet.Overhead,
		MarginPct:   sheet.MarginPct,
	})
}

func validateInputs(in Inputs) error {
	for name, v := range map[string]decimal.Decimal{
		"fabric_cost":  in.FabricCost,
		"consumption":  in.Consumption,
		"trim_cost":    in.TrimCost,
		"cm_cost":      in.CMCost,
		"packing_cost": in.PackingCost,
		"overhead":     in.Overhead,
		"margin_pct":   in.MarginPct,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", shared.ErrValidation, name)
		}
	}
	return nil
}
