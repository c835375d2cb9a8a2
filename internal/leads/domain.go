package leads

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lead lifecycle statuses, in funnel order.
type Status string

const (
	StatusNew            Status = "NEW"
	StatusQualified      Status = "QUALIFIED"
	StatusScopeLocked    Status = "SCOPE_LOCKED"
	StatusPISent         Status = "PI_SENT"
	StatusOrderConfirmed Status = "ORDER_CONFIRMED"
	StatusLost           Status = "LOST"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusQualified, StatusScopeLocked, StatusPISent, StatusOrderConfirmed, StatusLost:
		return true
	}
	return false
}

// Lead is an inbound buyer enquiry.
type Lead struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Country        string          `json:"country"`
	ProductType    string          `json:"product_type"`
	Quantity       int             `json:"quantity"`
	Budget         decimal.Decimal `json:"budget"`
	Message        string          `json:"message"`
	ReferenceURLs  []string        `json:"reference_urls"`
	Status         Status          `json:"status"`
	AssignedUserID int64           `json:"assigned_user_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// HistoryEntry records one action taken on a lead.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"lead_id"`
	Action    string    `json:"action"`
	ActorID   int64     `json:"actor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
