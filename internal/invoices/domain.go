package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates invoice lifecycle states.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSent          Status = "SENT"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusOverdue       Status = "OVERDUE"
	StatusCancelled     Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Invoice is a client bill. Balance is the outstanding amount and is adjusted
// by payment reconciliation.
type Invoice struct {
	ID              int64           `json:"id"`
	ClientID        int64           `json:"client_id"`
	Number          string          `json:"number"`
	PONo            *string         `json:"po_no,omitempty"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	PODate          *time.Time      `json:"po_date,omitempty"`
	DueDate         time.Time       `json:"due_date"`
	PaymentTerms    *string         `json:"payment_terms,omitempty"`
	ShippingCharges decimal.Decimal `json:"shipping_charges"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Amount          decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal `json:"balance"`
	DrCr            *string         `json:"dr_cr,omitempty"`
	TermsConditions *string         `json:"terms_conditions,omitempty"`
	Status          Status          `json:"status"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Lines           []Line          `json:"items,omitempty"`
}

// Line is one billed item.
type Line struct {
	ID              int64           `json:"id"`
	InvoiceID       int64           `json:"invoice_id"`
	ItemID          *int64          `json:"item_id,omitempty"`
	Unit            *string         `json:"unit,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Total           decimal.Decimal `json:"total"`
	Description     *string         `json:"description,omitempty"`
}

// BalanceUpdate is the write produced by payment reconciliation.
type BalanceUpdate struct {
	Balance     decimal.Decimal
	Status      Status
	PaymentDate *time.Time
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	ClientID *int64
	Status   *Status
	Limit    int
	Offset   int
}
