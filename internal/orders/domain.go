package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommercialTerm enumerates the incoterms offered on a proforma invoice.
type CommercialTerm string

const (
	TermEXW    CommercialTerm = "EXW"
	TermFOB    CommercialTerm = "FOB"
	TermCIF    CommercialTerm = "CIF"
	TermCIP    CommercialTerm = "CIP"
	TermDDPAir CommercialTerm = "DDP_AIR"
	TermDDPSea CommercialTerm = "DDP_SEA"
)

// Valid reports whether the term is a known value.
func (t CommercialTerm) Valid() bool {
	switch t {
	case TermEXW, TermFOB, TermCIF, TermCIP, TermDDPAir, TermDDPSea:
		return true
	}
	return false
}

// Order lifecycle statuses, in fulfilment order.
type Status string

const (
	StatusPIGenerated     Status = "PI_GENERATED"
	StatusAdvanceReceived Status = "ADVANCE_RECEIVED"
	StatusProduction      Status = "PRODUCTION"
	StatusQCPassed        Status = "QC_PASSED"
	StatusShipped         Status = "SHIPPED"
	StatusDelivered       Status = "DELIVERED"
	StatusCancelled       Status = "CANCELLED"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusPIGenerated, StatusAdvanceReceived, StatusProduction, StatusQCPassed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// rank orders statuses along the fulfilment timeline. CANCELLED sits
// outside the line.
func (s Status) rank() int {
	switch s {
	case StatusPIGenerated:
		return 0
	case StatusAdvanceReceived:
		return 1
	case StatusProduction:
		return 2
	case StatusQCPassed:
		return 3
	case StatusShipped:
		return 4
	case StatusDelivered:
		return 5
	}
	return -1
}

// CanTransition reports whether an order may move from s to next. Orders
// only move forward along the timeline; anything not yet delivered can be
// cancelled; terminal states stay put.
func (s Status) CanTransition(next Status) bool {
	if s == StatusCancelled || s == StatusDelivered {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return next.rank() > s.rank()
}

// Order is a confirmed buyer order carrying its proforma invoice.
type Order struct {
	ID           int64           `json:"id"`
	PINumber     string          `json:"pi_number"`
	LeadID       int64           `json:"lead_id,omitempty"`
	BuyerName    string          `json:"buyer_name"`
	BuyerEmail   string          `json:"buyer_email"`
	BuyerCompany string          `json:"buyer_company"`
	BuyerAddress string          `json:"buyer_address"`
	Term         CommercialTerm  `json:"commercial_term"`
	PaymentTerms string          `json:"payment_terms"`
	Currency     string          `json:"currency"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       Status          `json:"status"`
	DocumentURLs []string        `json:"document_urls"`

	AdvanceReceivedAt   time.Time `json:"advance_received_at,omitzero"`
	ProductionStartedAt time.Time `json:"production_started_at,omitzero"`
	ShipmentDate        time.Time `json:"shipment_date,omitzero"`
	DeliveredAt         time.Time `json:"delivered_at,omitzero"`

	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderProduct is one line on the proforma invoice. TotalPrice is always
// quantity x unit price, computed by the service.
type OrderProduct struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	ProductID  int64           `json:"product_id,omitempty"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// LineTotal computes an order line total, rounded to 2 decimal places.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}
