package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prime-apparel/backend/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPO(ctx context.Context, id int64) (PurchaseOrder, []POItem, error)
	ListPOs(ctx context.Context, filters ListFilters) ([]POListItem, int, error)
	ListPayments(ctx context.Context, poID int64) ([]POPayment, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the purchase order lifecycle and keeps the
// supplier ledger in step with it. Every mutation that touches money runs
// inside a single transaction with the supplier row locked, so the ledger
// triple, the payment rows and the derived status always move together.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs a procurement service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreatePOInput describes a purchase order creation payload.
type CreatePOInput struct {
	Number       string
	SupplierID   int64
	OrderID      int64
	Type         POType
	DeliveryDate time.Time
	Note         string
	CreatedBy    int64
	Items        []POItemInput
}

// POItemInput describes one purchase order line.
type POItemInput struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	Rate        decimal.Decimal
}

// PaymentInput describes a payment against a purchase order.
type PaymentInput struct {
	POID        int64
	Amount      decimal.Decimal
	Method      string
	Reference   string
	ProofURL    string
	RecordedBy  int64
	PaymentDate time.Time
}

// CreatePurchaseOrder inserts the PO with its items and bills the supplier
// ledger, all inside one transaction with the supplier row locked.
func (s *Service) CreatePurchaseOrder(ctx context.Context, input CreatePOInput) (PurchaseOrder, error) {
	if input.SupplierID <= 0 {
		return PurchaseOrder{}, fmt.Errorf("%w: supplier is required", shared.ErrValidation)
	}
	if !input.Type.Valid() {
		return PurchaseOrder{}, fmt.Errorf("%w: unknown purchase order type %q", shared.ErrValidation, input.Type)
	}
	if len(input.Items) == 0 {
		return PurchaseOrder{}, fmt.Errorf("%w: minimal 1 item", shared.ErrValidation)
	}
	if input.Number == "" {
		input.Number = generateNumber("PO")
	}

	total := decimal.Zero
	items := make([]POItem, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity.LessThanOrEqual(decimal.Zero) || line.Rate.IsNegative() {
			return PurchaseOrder{}, fmt.Errorf("%w: item quantity must be positive and rate non-negative", shared.ErrValidation)
		}
		amount := ItemAmount(line.Quantity, line.Rate)
		items = append(items, POItem{Description: line.Description, Quantity: line.Quantity, Unit: line.Unit, Rate: line.Rate, Amount: amount})
		total = total.Add(amount)
	}

	po := PurchaseOrder{
		Number:       input.Number,
		SupplierID:   input.SupplierID,
		OrderID:      input.OrderID,
		Type:         input.Type,
		Status:       POStatusDraft,
		TotalAmount:  total,
		DeliveryDate: input.DeliveryDate,
		Note:         input.Note,
		CreatedBy:    input.CreatedBy,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ledger, err := tx.LockSupplierLedger(ctx, po.SupplierID)
		if err != nil {
			return err
		}
		poID, err := tx.CreatePO(ctx, po)
		if err != nil {
			return err
		}
		po.ID = poID
		for _, item := range items {
			item.POID = poID
			if err := tx.InsertPOItem(ctx, item); err != nil {
				return err
			}
		}
		next := ledger.ApplyPurchase(po.TotalAmount)
		if !next.Consistent() {
			return fmt.Errorf("%w: supplier %d after billing %s", shared.ErrLedgerInconsistency, po.SupplierID, po.TotalAmount)
		}
		return tx.UpdateSupplierLedger(ctx, po.SupplierID, next)
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PO_CREATE", po.ID, map[string]any{"number": po.Number, "total": po.TotalAmount.String()})
	return po, nil
}

// RecordPayment appends a payment, credits the supplier ledger and derives
// the new purchase order status, atomically. The PO and supplier rows are
// locked for the duration, so concurrent recordings serialize instead of
// losing updates. Payments against COMPLETED or CANCELLED orders are
// rejected.
func (s *Service) RecordPayment(ctx context.Context, input PaymentInput) (POPayment, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return POPayment{}, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}
	payment := POPayment{
		POID:        input.POID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Method:      input.Method,
		Reference:   input.Reference,
		ProofURL:    input.ProofURL,
		CreatedBy:   input.RecordedBy,
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}

	var status POStatus
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		po, err := tx.LockPO(ctx, input.POID)
		if err != nil {
			return err
		}
		if po.Status.Terminal() {
			return fmt.Errorf("%w: purchase order %s is %s", shared.ErrInvalidState, po.Number, po.Status)
		}
		ledger, err := tx.LockSupplierLedger(ctx, po.SupplierID)
		if err != nil {
			return err
		}
		id, err := tx.InsertPayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id
		paid, err := tx.SumPayments(ctx, input.POID)
		if err != nil {
			return err
		}
		status = DerivePaymentStatus(po.Status, paid, po.TotalAmount)
		if err := tx.UpdatePOStatus(ctx, po.ID, status); err != nil {
			return err
		}
		next := ledger.ApplyPayment(payment.Amount)
		if !next.Consistent() {
			return fmt.Errorf("%w: supplier %d after paying %s", shared.ErrLedgerInconsistency, po.SupplierID, payment.Amount)
		}
		return tx.UpdateSupplierLedger(ctx, po.SupplierID, next)
	})
	if err != nil {
		return POPayment{}, err
	}
	s.recordAudit(ctx, "PO_PAYMENT", input.POID, map[string]any{"amount": payment.Amount.String(), "status": string(status)})
	return payment, nil
}

// MarkSent transitions a DRAFT purchase order to SENT.
func (s *Service) MarkSent(ctx context.Context, poID int64) error {
	return s.transition(ctx, poID, "PO_SENT", func(po PurchaseOrder) (POStatus, error) {
		if po.Status != POStatusDraft {
			return "", fmt.Errorf("%w: cannot send purchase order in status %s", shared.ErrInvalidState, po.Status)
		}
		return POStatusSent, nil
	})
}

// CancelPurchaseOrder cancels a purchase order and reverses its billing on
// the supplier ledger. Only DRAFT and SENT orders can be cancelled; once a
// payment has moved it along, cancellation is an accounting question, not a
// status flip.
func (s *Service) CancelPurchaseOrder(ctx context.Context, poID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		po, err := tx.LockPO(ctx, poID)
		if err != nil {
			return err
		}
		if po.Status != POStatusDraft && po.Status != POStatusSent {
			return fmt.Errorf("%w: cannot cancel purchase order in status %s", shared.ErrInvalidState, po.Status)
		}
		ledger, err := tx.LockSupplierLedger(ctx, po.SupplierID)
		if err != nil {
			return err
		}
		if err := tx.UpdatePOStatus(ctx, po.ID, POStatusCancelled); err != nil {
			return err
		}
		next := ledger.ApplyPurchase(po.TotalAmount.Neg())
		if !next.Consistent() {
			return fmt.Errorf("%w: supplier %d after reversing %s", shared.ErrLedgerInconsistency, po.SupplierID, po.TotalAmount)
		}
		return tx.UpdateSupplierLedger(ctx, po.SupplierID, next)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "PO_CANCEL", poID, nil)
	return nil
}

// Get returns a purchase order with its items and payments.
func (s *Service) Get(ctx context.Context, poID int64) (PurchaseOrder, []POItem, []POPayment, error) {
	po, items, err := s.repo.GetPO(ctx, poID)
	if err != nil {
		return PurchaseOrder{}, nil, nil, err
	}
	payments, err := s.repo.ListPayments(ctx, poID)
	if err != nil {
		return PurchaseOrder{}, nil, nil, err
	}
	return po, items, payments, nil
}

// List returns purchase orders matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]POListItem, int, error) {
	return s.repo.ListPOs(ctx, filters)
}

func (s *Service) transition(ctx context.Context, poID int64, action string, next func(PurchaseOrder) (POStatus, error)) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		po, err := tx.LockPO(ctx, poID)
		if err != nil {
			return err
		}
		status, err := next(po)
		if err != nil {
			return err
		}
		return tx.UpdatePOStatus(ctx, po.ID, status)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, action, poID, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "purchase_order", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
