package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prime-apparel/backend/internal/shared"
)

// Service owns the order / proforma invoice lifecycle.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs an order service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput describes an order creation payload.
type CreateInput struct {
	PINumber     string
	LeadID       int64
	BuyerName    string
	BuyerEmail   string
	BuyerCompany string
	BuyerAddress string
	Term         CommercialTerm
	PaymentTerms string
	Currency     string
	DocumentURLs []string
	CreatedBy    int64
	Products     []ProductInput
}

// ProductInput describes one proforma invoice line.
type ProductInput struct {
	ProductID int64
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Create generates the proforma invoice: line totals and the order total
// are computed from the inputs, the PI number is generated when blank, and
// the order starts in PI_GENERATED.
func (s *Service) Create(ctx context.Context, input CreateInput) (Order, []OrderProduct, error) {
	if strings.TrimSpace(input.BuyerName) == "" {
		return Order{}, nil, fmt.Errorf("%w: buyer name is required", shared.ErrValidation)
	}
	if !input.Term.Valid() {
		return Order{}, nil, fmt.Errorf("%w: unknown commercial term %q", shared.ErrValidation, input.Term)
	}
	if len(input.Products) == 0 {
		return Order{}, nil, fmt.Errorf("%w: minimal 1 product", shared.ErrValidation)
	}
	if input.PINumber == "" {
		input.PINumber = fmt.Sprintf("PI-%d", s.now().UnixNano())
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}

	total := decimal.Zero
	products := make([]OrderProduct, 0, len(input.Products))
	for _, p := range input.Products {
		if p.Quantity.LessThanOrEqual(decimal.Zero) || p.UnitPrice.IsNegative() {
			return Order{}, nil, fmt.Errorf("%w: product quantity must be positive and unit price non-negative", shared.ErrValidation)
		}
		lineTotal := LineTotal(p.Quantity, p.UnitPrice)
		products = append(products, OrderProduct{
			ProductID:  p.ProductID,
			Name:       p.Name,
			Quantity:   p.Quantity,
			UnitPrice:  p.UnitPrice,
			TotalPrice: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	order := Order{
		PINumber:     input.PINumber,
		LeadID:       input.LeadID,
		BuyerName:    input.BuyerName,
		BuyerEmail:   input.BuyerEmail,
		BuyerCompany: input.BuyerCompany,
		BuyerAddress: input.BuyerAddress,
		Term:         input.Term,
		PaymentTerms: input.PaymentTerms,
		Currency:     input.Currency,
		TotalAmount:  total,
		Status:       StatusPIGenerated,
		DocumentURLs: input.DocumentURLs,
		CreatedBy:    input.CreatedBy,
	}
	created, err := s.repo.Create(ctx, order, products)
	if err != nil {
		return Order{}, nil, err
	}
	saved, err := s.repo.Products(ctx, created.ID)
	if err != nil {
		return Order{}, nil, err
	}
	return created, saved, nil
}

// Get returns an order with its lines.
func (s *Service) Get(ctx context.Context, id int64) (Order, []OrderProduct, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	products, err := s.repo.Products(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	return order, products, nil
}

// List returns orders matching the filters.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Order, int, error) {
	return s.repo.List(ctx, filters)
}

// Transition moves an order to the next status, stamping the matching
// timeline field. Orders only move forward; DELIVERED and CANCELLED are
// terminal.
func (s *Service) Transition(ctx context.Context, id int64, next Status) (Order, error) {
	if !next.Valid() {
		return Order{}, fmt.Errorf("%w: unknown order status %q", shared.ErrValidation, next)
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !order.Status.CanTransition(next) {
		return Order{}, fmt.Errorf("%w: order %s cannot move from %s to %s", shared.ErrInvalidState, order.PINumber, order.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, id, next, timelineStamp(next), s.now()); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, id)
}

// AttachDocuments replaces the order's document URLs.
func (s *Service) AttachDocuments(ctx context.Context, id int64, urls []string) (Order, error) {
	if err := s.repo.UpdateDocuments(ctx, id, urls); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, id)
}

// timelineStamp maps a status to the timeline column it stamps, or "".
func timelineStamp(status Status) string {
	switch status {
	case StatusAdvanceReceived:
		return "advance_received_at"
	case StatusProduction:
		return "production_started_at"
	case StatusShipped:
		return "shipment_date"
	case StatusDelivered:
		return "delivered_at"
	}
	return ""
}
