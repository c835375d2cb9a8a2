package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// POType classifies what the purchase order procures.
type POType string

const (
	POTypeFabric        POType = "FABRIC"
	POTypeTrim          POType = "TRIM"
	POTypeManufacturing POType = "MANUFACTURING"
)

// Valid reports whether the type is a known value.
func (t POType) Valid() bool {
	switch t {
	case POTypeFabric, POTypeTrim, POTypeManufacturing:
		return true
	}
	return false
}

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusDraft           POStatus = "DRAFT"
	POStatusSent            POStatus = "SENT"
	POStatusPartialReceived POStatus = "PARTIAL_RECEIVED"
	POStatusCompleted       POStatus = "COMPLETED"
	POStatusCancelled       POStatus = "CANCELLED"
)

// Terminal reports whether the status accepts no further payments.
// COMPLETED and CANCELLED are absorbing.
func (s POStatus) Terminal() bool {
	return s == POStatusCompleted || s == POStatusCancelled
}

// PurchaseOrder domain model. TotalAmount is fixed at creation and never
// mutated afterwards; the payment flow only reads it.
type PurchaseOrder struct {
	ID           int64           `json:"id"`
	Number       string          `json:"po_number"`
	SupplierID   int64           `json:"supplier_id"`
	OrderID      int64           `json:"order_id,omitempty"`
	Type         POType          `json:"po_type"`
	Status       POStatus        `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	DeliveryDate time.Time       `json:"delivery_date,omitzero"`
	Note         string          `json:"note"`
	CreatedBy    int64           `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// POItem is a purchase order line. Amount is always quantity x rate,
// computed by the service before insert.
type POItem struct {
	ID          int64           `json:"id"`
	POID        int64           `json:"po_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// POPayment is an append-only payment record against a purchase order.
type POPayment struct {
	ID          int64           `json:"id"`
	POID        int64           `json:"po_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference"`
	ProofURL    string          `json:"proof_url,omitempty"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// POListItem is a purchase order row in listings, joined with supplier name
// and the running paid total.
type POListItem struct {
	ID           int64           `json:"id"`
	Number       string          `json:"po_number"`
	SupplierID   int64           `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Type         POType          `json:"po_type"`
	Status       POStatus        `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	DeliveryDate time.Time       `json:"delivery_date,omitzero"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ItemAmount computes a line amount from quantity and rate, rounded to
// 2 decimal places.
func ItemAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate).Round(2)
}
