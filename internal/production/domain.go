package production

import (
	"time"

	"github.com/shopspring/decimal"
)

// QCType enumerates inspection stages.
type QCType string

const (
	QCInline QCType = "INLINE"
	QCTop    QCType = "TOP"
	QCFinal  QCType = "FINAL"
)

// Valid reports whether the QC type is a known value.
func (t QCType) Valid() bool {
	return t == QCInline || t == QCTop || t == QCFinal
}

// QCStatus enumerates inspection outcomes.
type QCStatus string

const (
	QCPass    QCStatus = "PASS"
	QCFail    QCStatus = "FAIL"
	QCPending QCStatus = "PENDING"
)

// Valid reports whether the QC status is a known value.
func (s QCStatus) Valid() bool {
	return s == QCPass || s == QCFail || s == QCPending
}

// ShipmentStatus enumerates shipment progress.
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "PENDING"
	ShipmentShipped   ShipmentStatus = "SHIPPED"
	ShipmentDelivered ShipmentStatus = "DELIVERED"
)

// Valid reports whether the shipment status is a known value.
func (s ShipmentStatus) Valid() bool {
	return s == ShipmentPending || s == ShipmentShipped || s == ShipmentDelivered
}

// Record tracks production progress for one order. Approvals and Stages
// are free-form maps (sample approvals, cutting/sewing/finishing
// percentages) stored as JSONB.
type Record struct {
	ID        int64          `json:"id"`
	OrderID   int64          `json:"order_id"`
	Approvals map[string]any `json:"approvals"`
	Stages    map[string]any `json:"stages"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// QCReport is one inspection result against an order.
type QCReport struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	Type      QCType          `json:"qc_type"`
	Status    QCStatus        `json:"status"`
	AQL       decimal.Decimal `json:"aql"`
	Defects   map[string]any  `json:"defects"`
	ImageURLs []string        `json:"image_urls"`
	Notes     string          `json:"notes"`
	CreatedBy int64           `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// Shipment is an outbound consignment for an order.
type Shipment struct {
	ID           int64          `json:"id"`
	OrderID      int64          `json:"order_id"`
	Courier      string         `json:"courier"`
	TrackingNo   string         `json:"tracking_no"`
	ETD          time.Time      `json:"etd,omitzero"`
	ETA          time.Time      `json:"eta,omitzero"`
	Status       ShipmentStatus `json:"status"`
	DocumentURLs []string       `json:"document_urls"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
