package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/prime-apparel/backend/internal/shared"
)

type memoryOrderRepo struct {
	orders   map[int64]Order
	products map[int64][]OrderProduct
	numbers  map[string]bool
	nextID   int64
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[int64]Order), products: make(map[int64][]OrderProduct), numbers: make(map[string]bool)}
}

func (r *memoryOrderRepo) Create(ctx context.Context, order Order, products []OrderProduct) (Order, error) {
	if r.numbers[order.PINumber] {
		return Order{}, shared.ErrDuplicate
	}
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = order
	r.numbers[order.PINumber] = true
	for i := range products {
		r.nextID++
		products[i].ID = r.nextID
		products[i].OrderID = order.ID
	}
	r.products[order.ID] = products
	return order, nil
}

func (r *memoryOrderRepo) Get(ctx context.Context, id int64) (Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return Order{}, shared.ErrNotFound
	}
	return order, nil
}

func (r *memoryOrderRepo) Products(ctx context.Context, orderID int64) ([]OrderProduct, error) {
	return append([]OrderProduct(nil), r.products[orderID]...), nil
}

func (r *memoryOrderRepo) List(ctx context.Context, filters shared.ListFilters) ([]Order, int, error) {
	var list []Order
	for _, o := range r.orders {
		list = append(list, o)
	}
	return list, len(list), nil
}

func (r *memoryOrderRepo) UpdateStatus(ctx context.Context, id int64, status Status, stamp string, at time.Time) error {
	order, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	order.Status = status
	switch stamp {
	case "advance_received_at":
		order.AdvanceReceivedAt = at
	case "production_started_at":
		order.ProductionStartedAt = at
	case "shipment_date":
		order.ShipmentDate = at
	case "delivered_at":
		order.DeliveredAt = at
	}
	r.orders[id] = order
	return nil
}

func (r *memoryOrderRepo) UpdateDocuments(ctx context.Context, id int64, urls []string) error {
	order, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	order.DocumentURLs = urls
	r.orders[id] = order
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createTestOrder(t *testing.T, svc *Service) Order {
	t.Helper()
	order, _, err := svc.Create(context.Background(), CreateInput{
		BuyerName: "Nordic Outfitters",
		Term:      TermFOB,
		Products: []ProductInput{
			{Name: "Crewneck Tee", Quantity: dec("500"), UnitPrice: dec("4.85")},
			{Name: "Zip Hoodie", Quantity: dec("200"), UnitPrice: dec("12.40")},
		},
	})
	require.NoError(t, err)
	return order
}

func TestCreateGeneratesPI(t *testing.T) {
	svc := NewService(newMemoryOrderRepo())
	order := createTestOrder(t, svc)

	require.True(t, strings.HasPrefix(order.PINumber, "PI-"))
	require.Equal(t, StatusPIGenerated, order.Status)
	require.Equal(t, "USD", order.Currency)
	// 500 x 4.85 + 200 x 12.40
	require.True(t, order.TotalAmount.Equal(dec("4905")), "total = %s", order.TotalAmount)
}

func TestCreateComputesLineTotals(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	order := createTestOrder(t, svc)

	products, err := repo.Products(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.True(t, products[0].TotalPrice.Equal(dec("2425")))
	require.True(t, products[1].TotalPrice.Equal(dec("2480")))
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryOrderRepo())
	ctx := context.Background()

	_, _, err := svc.Create(ctx, CreateInput{BuyerName: "", Term: TermFOB, Products: []ProductInput{{Name: "x", Quantity: dec("1")}}})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, _, err = svc.Create(ctx, CreateInput{BuyerName: "A", Term: CommercialTerm("FCA"), Products: []ProductInput{{Name: "x", Quantity: dec("1")}}})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, _, err = svc.Create(ctx, CreateInput{BuyerName: "A", Term: TermEXW})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, _, err = svc.Create(ctx, CreateInput{BuyerName: "A", Term: TermEXW, Products: []ProductInput{{Name: "x", Quantity: dec("0")}}})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestTransitionStampsTimeline(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	order := createTestOrder(t, svc)
	ctx := context.Background()

	updated, err := svc.Transition(ctx, order.ID, StatusAdvanceReceived)
	require.NoError(t, err)
	require.Equal(t, StatusAdvanceReceived, updated.Status)
	require.Equal(t, svc.now(), updated.AdvanceReceivedAt)

	updated, err = svc.Transition(ctx, order.ID, StatusProduction)
	require.NoError(t, err)
	require.Equal(t, svc.now(), updated.ProductionStartedAt)

	updated, err = svc.Transition(ctx, order.ID, StatusShipped)
	require.NoError(t, err)
	require.Equal(t, svc.now(), updated.ShipmentDate)

	updated, err = svc.Transition(ctx, order.ID, StatusDelivered)
	require.NoError(t, err)
	require.Equal(t, svc.now(), updated.DeliveredAt)
}

func TestTransitionOnlyForward(t *testing.T) {
	svc := NewService(newMemoryOrderRepo())
	order := createTestOrder(t, svc)
	ctx := context.Background()

	_, err := svc.Transition(ctx, order.ID, StatusProduction)
	require.NoError(t, err)

	// No going back.
	_, err = svc.Transition(ctx, order.ID, StatusAdvanceReceived)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = svc.Transition(ctx, order.ID, StatusProduction)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	// Cancellation is allowed until delivery, then nothing moves.
	_, err = svc.Transition(ctx, order.ID, StatusCancelled)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, order.ID, StatusShipped)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemoryOrderRepo())
	order := createTestOrder(t, svc)

	_, err := svc.Transition(context.Background(), order.ID, Status("ON_HOLD"))
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestLineTotal(t *testing.T) {
	require.True(t, LineTotal(dec("3"), dec("4.555")).Equal(dec("13.67")))
	require.True(t, LineTotal(dec("0"), dec("9")).Equal(decimal.Zero))
}
