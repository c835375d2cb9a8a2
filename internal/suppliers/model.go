package suppliers

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category enumerates what a supplier provides.
type Category string

const (
	CategoryFabric        Category = "FABRIC"
	CategoryTrims         Category = "TRIMS"
	CategoryManufacturing Category = "MANUFACTURING"
	CategoryPacking       Category = "PACKING"
	CategoryLogistics     Category = "LOGISTICS"
)

// Valid reports whether the category is a known value.
func (c Category) Valid() bool {
	switch c {
	case CategoryFabric, CategoryTrims, CategoryManufacturing, CategoryPacking, CategoryLogistics:
		return true
	}
	return false
}

// Supplier represents a supplier master record. The ledger triple
// (TotalBilled, TotalPaid, Balance) is owned by the procurement module and
// is never writable through the supplier update endpoint.
type Supplier struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	ContactPerson string          `json:"contact_person"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	Category      Category        `json:"category"`
	AccountName   string          `json:"account_name"`
	AccountNumber string          `json:"account_number"`
	BankName      string          `json:"bank_name"`
	IFSCCode      string          `json:"ifsc_code"`
	TotalBilled   decimal.Decimal `json:"total_billed"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LedgerSummary is the supplier account overview.
type LedgerSummary struct {
	SupplierID   int64           `json:"supplier_id"`
	Name         string          `json:"name"`
	TotalBilled  decimal.Decimal `json:"total_billed"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Balance      decimal.Decimal `json:"balance"`
	OpenPOCount  int             `json:"open_po_count"`
	TotalPOCount int             `json:"total_po_count"`
}
