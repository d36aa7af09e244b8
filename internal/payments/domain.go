package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records money received. InvoiceID is a weak link: the invoice does
// not own the payment, but every payment mutation reconciles it.
type Payment struct {
	ID              int64           `json:"id"`
	Number          string          `json:"number"`
	Date            time.Time       `json:"date"`
	Type            string          `json:"type"`
	AccountName     string          `json:"account_name"`
	DocumentMethod  *string         `json:"document_method,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
	InvoiceID       *int64          `json:"invoice_id,omitempty"`
	ClientID        *int64          `json:"client_id,omitempty"`
	Reference       *string         `json:"reference,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Totals aggregates all payments.
type Totals struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalCount  int64           `json:"total_count"`
}

// ListFilter narrows payment listings. Zero values are ignored.
type ListFilter struct {
	From      *time.Time
	To        *time.Time
	InvoiceID *int64
	ClientID  *int64
}

// CreateRequest records a payment. Number is generated when empty.
type CreateRequest struct {
	Date            time.Time        `json:"date" validate:"required"`
	Number          string           `json:"number,omitempty" validate:"omitempty,max=64"`
	Type            string           `json:"type" validate:"required,max=64"`
	AccountName     string           `json:"account_name" validate:"required,max=191"`
	DocumentMethod  *string          `json:"document_method,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	AvailableCredit *decimal.Decimal `json:"available_credit,omitempty"`
	InvoiceID       *int64           `json:"invoice_id,omitempty" validate:"omitempty,gt=0"`
	ClientID        *int64           `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	Reference       *string          `json:"reference,omitempty"`
	NotifyEmail     string           `json:"notify_email,omitempty" validate:"omitempty,email"`
}

// UpdateRequest changes a payment. Omitted fields keep their value.
type UpdateRequest struct {
	Date            *time.Time       `json:"date,omitempty"`
	Number          *string          `json:"number,omitempty" validate:"omitempty,min=1,max=64"`
	Type            *string          `json:"type,omitempty" validate:"omitempty,max=64"`
	AccountName     *string          `json:"account_name,omitempty" validate:"omitempty,max=191"`
	DocumentMethod  *string          `json:"document_method,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	AvailableCredit *decimal.Decimal `json:"available_credit,omitempty"`
	InvoiceID       *int64           `json:"invoice_id,omitempty" validate:"omitempty,gt=0"`
	Reference       *string          `json:"reference,omitempty"`
}
