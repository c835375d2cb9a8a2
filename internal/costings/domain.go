package costings

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sheet is a costing sheet for one style.
type Sheet struct {
	ID          int64           `json:"id"`
	LeadID      int64           `json:"lead_id,omitempty"`
	StyleName   string          `json:"style_name"`
	FabricCost  decimal.Decimal `json:"fabric_cost"`
	Consumption decimal.Decimal `json:"consumption"`
	TrimCost    decimal.Decimal `json:"trim_cost"`
	CMCost      decimal.Decimal `json:"cm_cost"`
	PackingCost decimal.Decimal `json:"packing_cost"`
	Overhead    decimal.Decimal `json:"overhead"`
	MarginPct   decimal.Decimal `json:"margin_pct"`
	BaseCost    decimal.Decimal `json:"base_cost"`
	EXWPrice    decimal.Decimal `json:"exw_price"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Inputs are the cost drivers a quote is computed from.
type Inputs struct {
	FabricCost  decimal.Decimal
	Consumption decimal.Decimal
	TrimCost    decimal.Decimal
	CMCost      decimal.Decimal
	PackingCost decimal.Decimal
	Overhead    decimal.Decimal
	MarginPct   decimal.Decimal
}

// Quote is the derived pricing for a set of inputs.
type Quote struct {
	BaseCost decimal.Decimal `json:"base_cost"`
	EXWPrice decimal.Decimal `json:"exw_price"`
}

var hundred = decimal.NewFromInt(100)

// Compute derives base cost and EXW price from the inputs:
//
//	base = fabric x consumption + trim + CM + packing + overhead
//	exw  = base x (1 + margin/100)
//
// Both results are rounded to 2 decimal places.
func Compute(in Inputs) Quote {
	base := in.FabricCost.Mul(in.Consumption).
		Add(in.TrimCost).
		Add(in.CMCost).
		Add(in.PackingCost).
		Add(in.Overhead)
	exw := base.Mul(decimal.NewFromInt(1).Add(in.MarginPct.Div(hundred)))
	return Quote{BaseCost: base.Round(2), EXWPrice: exw.Round(2)}
}
