package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest is an invoice line in create requests.
type LineRequest struct {
	ItemID          *int64          `json:"item_id,omitempty" validate:"omitempty,gt=0"`
	Unit            *string         `json:"unit,omitempty" validate:"omitempty,max=20"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Total           decimal.Decimal `json:"total"`
	Description     *string         `json:"description,omitempty"`
}

// CreateRequest creates an invoice. Number is optional; when empty it is
// assigned from the company profile. Balance defaults to Amount.
type CreateRequest struct {
	ClientID        int64            `json:"client_id" validate:"required,gt=0"`
	Number          string           `json:"number,omitempty" validate:"omitempty,max=64"`
	PONo            *string          `json:"po_no,omitempty"`
	InvoiceDate     time.Time        `json:"invoice_date" validate:"required"`
	PODate          *time.Time       `json:"po_date,omitempty"`
	DueDate         time.Time        `json:"due_date" validate:"required"`
	PaymentTerms    *string          `json:"payment_terms,omitempty"`
	ShippingCharges decimal.Decimal  `json:"shipping_charges"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Tax             decimal.Decimal  `json:"tax"`
	Amount          decimal.Decimal  `json:"amount"`
	Balance         *decimal.Decimal `json:"balance,omitempty"`
	DrCr            *string          `json:"dr_cr,omitempty"`
	TermsConditions *string          `json:"terms_conditions,omitempty"`
	Status          Status           `json:"status,omitempty"`
	Items           []LineRequest    `json:"items" validate:"required,min=1,dive"`
}

// UpdateRequest replaces invoice header fields. Lines are not edited here.
type UpdateRequest struct {
	Number          *string          `json:"number,omitempty" validate:"omitempty,min=1,max=64"`
	PONo            *string          `json:"po_no,omitempty"`
	InvoiceDate     *time.Time       `json:"invoice_date,omitempty"`
	PODate          *time.Time       `json:"po_date,omitempty"`
	DueDate         *time.Time       `json:"due_date,omitempty"`
	PaymentTerms    *string          `json:"payment_terms,omitempty"`
	ShippingCharges *decimal.Decimal `json:"shipping_charges,omitempty"`
	Subtotal        *decimal.Decimal `json:"subtotal,omitempty"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Balance         *decimal.Decimal `json:"balance,omitempty"`
	DrCr            *string          `json:"dr_cr,omitempty"`
	TermsConditions *string          `json:"terms_conditions,omitempty"`
	Status          *Status          `json:"status,omitempty"`
	PaymentDate     *time.Time       `json:"payment_date,omitempty"`
}
