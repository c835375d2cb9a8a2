package procurement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/prime-apparel/backend/internal/shared"
)

type memoryRepo struct {
	mu       sync.Mutex
	ledgers  map[int64]Ledger
	pos      map[int64]PurchaseOrder
	poItems  map[int64][]POItem
	payments map[int64][]POPayment
	numbers  map[string]bool
	nextID   int64

	failCommit bool
}

type memoryTx struct {
	repo *memoryRepo

	ledgers  map[int64]Ledger
	pos      map[int64]PurchaseOrder
	poItems  map[int64][]POItem
	payments map[int64][]POPayment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		ledgers:  make(map[int64]Ledger),
		pos:      make(map[int64]PurchaseOrder),
		poItems:  make(map[int64][]POItem),
		payments: make(map[int64][]POPayment),
		numbers:  make(map[string]bool),
	}
}

// WithTx serializes callbacks with a mutex, the in-memory analogue of the
// row locks the real repository takes, and buffers writes so a failing
// callback leaves the repo untouched.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &memoryTx{
		repo:     r,
		ledgers:  make(map[int64]Ledger),
		pos:      make(map[int64]PurchaseOrder),
		poItems:  make(map[int64][]POItem),
		payments: make(map[int64][]POPayment),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if r.failCommit {
		return fmt.Errorf("%w: commit: connection reset", shared.ErrLedgerInconsistency)
	}
	for id, ledger := range tx.ledgers {
		r.ledgers[id] = ledger
	}
	for id, po := range tx.pos {
		r.pos[id] = po
		r.numbers[po.Number] = true
	}
	for id, items := range tx.poItems {
		r.poItems[id] = append(r.poItems[id], items...)
	}
	for id, pays := range tx.payments {
		r.payments[id] = append(r.payments[id], pays...)
	}
	return nil
}

func (r *memoryRepo) GetPO(ctx context.Context, id int64) (PurchaseOrder, []POItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.pos[id]
	if !ok {
		return PurchaseOrder{}, nil, shared.ErrNotFound
	}
	return po, append([]POItem(nil), r.poItems[id]...), nil
}

func (r *memoryRepo) ListPOs(ctx context.Context, filters ListFilters) ([]POListItem, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []POListItem
	for _, po := range r.pos {
		items = append(items, POListItem{ID: po.ID, Number: po.Number, SupplierID: po.SupplierID, Status: po.Status, TotalAmount: po.TotalAmount})
	}
	return items, len(items), nil
}

func (r *memoryRepo) ListPayments(ctx context.Context, poID int64) ([]POPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]POPayment(nil), r.payments[poID]...), nil
}

func (tx *memoryTx) nextID() int64 {
	tx.repo.nextID++
	return tx.repo.nextID
}

func (tx *memoryTx) LockSupplierLedger(ctx context.Context, supplierID int64) (Ledger, error) {
	if ledger, ok := tx.ledgers[supplierID]; ok {
		return ledger, nil
	}
	ledger, ok := tx.repo.ledgers[supplierID]
	if !ok {
		return Ledger{}, shared.ErrNotFound
	}
	return ledger, nil
}

func (tx *memoryTx) UpdateSupplierLedger(ctx context.Context, supplierID int64, ledger Ledger) error {
	tx.ledgers[supplierID] = ledger
	return nil
}

func (tx *memoryTx) LockPO(ctx context.Context, id int64) (PurchaseOrder, error) {
	if po, ok := tx.pos[id]; ok {
		return po, nil
	}
	po, ok := tx.repo.pos[id]
	if !ok {
		return PurchaseOrder{}, shared.ErrNotFound
	}
	return po, nil
}

func (tx *memoryTx) CreatePO(ctx context.Context, po PurchaseOrder) (int64, error) {
	if tx.repo.numbers[po.Number] {
		return 0, shared.ErrDuplicate
	}
	id := tx.nextID()
	po.ID = id
	tx.pos[id] = po
	return id, nil
}

func (tx *memoryTx) InsertPOItem(ctx context.Context, item POItem) error {
	item.ID = tx.nextID()
	tx.poItems[item.POID] = append(tx.poItems[item.POID], item)
	return nil
}

func (tx *memoryTx) UpdatePOStatus(ctx context.Context, id int64, status POStatus) error {
	po, ok := tx.pos[id]
	if !ok {
		po, ok = tx.repo.pos[id]
		if !ok {
			return shared.ErrNotFound
		}
	}
	po.Status = status
	tx.pos[id] = po
	return nil
}

func (tx *memoryTx) InsertPayment(ctx context.Context, payment POPayment) (int64, error) {
	id := tx.nextID()
	payment.ID = id
	tx.payments[payment.POID] = append(tx.payments[payment.POID], payment)
	return id, nil
}

func (tx *memoryTx) SumPayments(ctx context.Context, poID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range tx.repo.payments[poID] {
		sum = sum.Add(p.Amount)
	}
	for _, p := range tx.payments[poID] {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

func seedSupplier(r *memoryRepo, id int64) {
	r.ledgers[id] = Ledger{}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createTestPO(t *testing.T, svc *Service, supplierID int64, total string) PurchaseOrder {
	t.Helper()
	po, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{
		SupplierID: supplierID,
		Type:       POTypeFabric,
		Items:      []POItemInput{{Description: "cotton jersey 180gsm", Quantity: dec("1"), Unit: "lot", Rate: dec(total)}},
	})
	require.NoError(t, err)
	return po
}

func TestCreatePurchaseOrderBillsLedger(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)

	po, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{
		SupplierID: 1,
		Type:       POTypeFabric,
		Items: []POItemInput{
			{Description: "cotton jersey", Quantity: dec("100"), Unit: "m", Rate: dec("3.50")},
			{Description: "rib knit", Quantity: dec("20"), Unit: "m", Rate: dec("5.25")},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, po.ID)
	require.Equal(t, POStatusDraft, po.Status)
	require.True(t, po.TotalAmount.Equal(dec("455")), "total = %s", po.TotalAmount)

	ledger := repo.ledgers[1]
	require.True(t, ledger.TotalBilled.Equal(dec("455")))
	require.True(t, ledger.TotalPaid.Equal(decimal.Zero))
	require.True(t, ledger.Balance.Equal(dec("455")))
	require.True(t, ledger.Consistent())
}

func TestCreatePurchaseOrderValidation(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.CreatePurchaseOrder(ctx, CreatePOInput{SupplierID: 1, Type: POTypeFabric})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreatePurchaseOrder(ctx, CreatePOInput{
		SupplierID: 1,
		Type:       POType("SOFTWARE"),
		Items:      []POItemInput{{Description: "x", Quantity: dec("1"), Rate: dec("1")}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreatePurchaseOrder(ctx, CreatePOInput{
		SupplierID: 1,
		Type:       POTypeFabric,
		Items:      []POItemInput{{Description: "x", Quantity: dec("0"), Rate: dec("1")}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreatePurchaseOrder(ctx, CreatePOInput{
		SupplierID: 99,
		Type:       POTypeFabric,
		Items:      []POItemInput{{Description: "x", Quantity: dec("1"), Rate: dec("1")}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPONumbersUnique(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		po := createTestPO(t, svc, 1, "10")
		require.False(t, seen[po.Number], "duplicate number %s", po.Number)
		seen[po.Number] = true
	}
}

// Scenario: a partial payment marks the order PARTIAL_RECEIVED and moves
// exactly the payment amount from balance to paid.
func TestRecordPaymentPartial(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)
	po := createTestPO(t, svc, 1, "1000")

	payment, err := svc.RecordPayment(context.Background(), PaymentInput{POID: po.ID, Amount: dec("400"), Method: "BANK_TRANSFER"})
	require.NoError(t, err)
	require.NotZero(t, payment.ID)
	require.False(t, payment.PaymentDate.IsZero())

	got, _, _ := repo.GetPO(context.Background(), po.ID)
	require.Equal(t, POStatusPartialReceived, got.Status)

	ledger := repo.ledgers[1]
	require.True(t, ledger.TotalBilled.Equal(dec("1000")))
	require.True(t, ledger.TotalPaid.Equal(dec("400")))
	require.True(t, ledger.Balance.Equal(dec("600")))
}

// Scenario: cumulative payments reaching the total complete the order.
func TestRecordPaymentCompletes(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)
	po := createTestPO(t, svc, 1, "1000")
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, PaymentInput{POID: po.ID, Amount: dec("400"), Method: "BANK_TRANSFER"})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, PaymentInput{POID: po.ID, Amount: dec("600"), Method: "BANK_TRANSFER"})
	require.NoError(t, err)

	got, _, _ := repo.GetPO(ctx, po.ID)
	require.Equal(t, POStatusCompleted, got.Status)

	ledger := repo.ledgers[1]
	require.True(t, ledger.Balance.Equal(decimal.Zero))
	require.True(t, ledger.Consistent())

	// Completed orders take no further payments.
	_, err = svc.RecordPayment(ctx, PaymentInput{POID: po.ID, Amount: dec("1"), Method: "CASH"})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

// Scenario: a failed recording leaves ledger and status untouched.
func TestRecordPaymentFailureRollsBack(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)
	po := createTestPO(t, svc, 1, "1000")
	ctx := context.Background()

	repo.failCommit = true
	_, err := svc.RecordPayment(ctx, PaymentInput{POID: po.ID, Amount: dec("400"), Method: "BANK_TRANSFER"})
	require.ErrorIs(t, err, shared.ErrLedgerInconsistency)
	repo.failCommit = false

	got, _, _ := repo.GetPO(ctx, po.ID)
	require.Equal(t, POStatusDraft, got.Status)
	require.Empty(t, repo.payments[po.ID])

	ledger := repo.ledgers[1]
	require.True(t, ledger.TotalPaid.Equal(decimal.Zero))
	require.True(t, ledger.Balance.Equal(dec("1000")))
}

// Scenario: payments against a cancelled order are rejected and do not
// resurrect it.
func TestRecordPaymentAgainstCancelled(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)
	po := createTestPO(t, svc, 1, "1000")
	ctx := context.Background()

	require.NoError(t, svc.CancelPurchaseOrder(ctx, po.ID))

	_, err := svc.RecordPayment(ctx, PaymentInput{POID: po.ID, Amount: dec("400"), Method: "BANK_TRANSFER"})
	require.ErrorIs(t, err, shared.ErrInvalidState)

	got, _, _ := repo.GetPO(ctx, po.ID)
	require.Equal(t, POStatusCancelled, got.Status)
	require.Empty(t, repo.payments[po.ID])
}

func TestRecordPaymentRejectsNonPositive(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)
	po := createTestPO(t, svc, 1, "1000")

	for _, amount := range []string{"0", "-5"} {
		_, err := svc.RecordPayment(context.Background(), PaymentInput{POID: po.ID, Amount: dec(amount), Method: "CASH"})
		require.ErrorIs(t, err, shared.ErrValidation)
	}
}

func TestCancelReversesBilling(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)
	ctx := context.Background()

	keep := createTestPO(t, svc, 1, "300")
	drop := createTestPO(t, svc, 1, "700")
	require.NoError(t, svc.CancelPurchaseOrder(ctx, drop.ID))

	ledger := repo.ledgers[1]
	require.True(t, ledger.TotalBilled.Equal(dec("300")))
	require.True(t, ledger.Balance.Equal(dec("300")))
	require.True(t, ledger.Consistent())

	// Partially paid orders cannot be cancelled.
	_, err := svc.RecordPayment(ctx, PaymentInput{POID: keep.ID, Amount: dec("100"), Method: "CASH"})
	require.NoError(t, err)
	require.ErrorIs(t, svc.CancelPurchaseOrder(ctx, keep.ID), shared.ErrInvalidState)
}

func TestMarkSentTransitions(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)
	po := createTestPO(t, svc, 1, "100")
	ctx := context.Background()

	require.NoError(t, svc.MarkSent(ctx, po.ID))
	got, _, _ := repo.GetPO(ctx, po.ID)
	require.Equal(t, POStatusSent, got.Status)

	require.ErrorIs(t, svc.MarkSent(ctx, po.ID), shared.ErrInvalidState)
}

// Concurrent recordings against the same supplier must serialize: the
// ledger ends at the exact sum, not at whichever write landed last.
func TestConcurrentPaymentsNoLostUpdate(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 1)
	svc := NewService(repo, nil)
	po := createTestPO(t, svc, 1, "10000")
	ctx := context.Background()

	const workers = 25
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := svc.RecordPayment(ctx, PaymentInput{POID: po.ID, Amount: dec("100"), Method: "BANK_TRANSFER"})
			if err != nil && !errors.Is(err, shared.ErrInvalidState) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ledger := repo.ledgers[1]
	require.True(t, ledger.TotalPaid.Equal(dec("2500")), "paid = %s", ledger.TotalPaid)
	require.True(t, ledger.Balance.Equal(dec("7500")), "balance = %s", ledger.Balance)
	require.True(t, ledger.Consistent())
	require.Len(t, repo.payments[po.ID], workers)

	got, _, _ := repo.GetPO(ctx, po.ID)
	require.Equal(t, POStatusPartialReceived, got.Status)
}

// The ledger invariant holds after any interleaving of operations.
func TestLedgerInvariantAcrossOperations(t *testing.T) {
	repo := newMemoryRepo()
	seedSupplier(repo, 7)
	svc := NewService(repo, nil)
	ctx := context.Background()

	a := createTestPO(t, svc, 7, "500")
	b := createTestPO(t, svc, 7, "250.75")
	_, err := svc.RecordPayment(ctx, PaymentInput{POID: a.ID, Amount: dec("123.45"), Method: "CASH"})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, PaymentInput{POID: b.ID, Amount: dec("250.75"), Method: "BANK_TRANSFER"})
	require.NoError(t, err)
	c := createTestPO(t, svc, 7, "99.99")
	require.NoError(t, svc.CancelPurchaseOrder(ctx, c.ID))

	ledger := repo.ledgers[7]
	require.True(t, ledger.Consistent())
	require.True(t, ledger.TotalBilled.Equal(dec("750.75")))
	require.True(t, ledger.TotalPaid.Equal(dec("374.20")))
	require.True(t, ledger.Balance.Equal(dec("376.55")))
}
