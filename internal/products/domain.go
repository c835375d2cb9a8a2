package products

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PriceTier is one quantity break on the catalog price.
type PriceTier struct {
	MinQuantity int             `json:"min_quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Product is a catalog entry shown to buyers.
type Product struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	SubCategory    string         `json:"sub_category"`
	ImageURLs      []string       `json:"image_urls"`
	PriceTiers     []PriceTier    `json:"price_tiers"`
	Colors         []string       `json:"colors"`
	Sizes          []string       `json:"sizes"`
	MOQ            int            `json:"moq"`
	LeadTimeDays   int            `json:"lead_time_days"`
	Material       string         `json:"material"`
	Certifications []string       `json:"certifications"`
	Customization  string         `json:"customization"`
	Specifications map[string]any `json:"specifications"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

var titleCaser = cases.Title(language.English)

// NormalizeCategory canonicalizes free-form category input ("knitWEAR" and
// "Knitwear" are the same catalog bucket).
func NormalizeCategory(category string) string {
	return titleCaser.String(category)
}
