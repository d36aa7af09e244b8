package documents

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is a numbered billing document other than an invoice or payment.
type Document struct {
	ID           int64           `json:"id"`
	Number       string          `json:"number"`
	ClientID     *int64          `json:"client_id,omitempty"`
	VendorID     *int64          `json:"vendor_id,omitempty"`
	InvoiceID    *int64          `json:"invoice_id,omitempty"`
	DocumentDate time.Time       `json:"document_date"`
	ValidUntil   *time.Time      `json:"valid_until,omitempty"`
	PONumber     *string         `json:"po_number,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Amount       decimal.Decimal `json:"amount"`
	Description  *string         `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Lines        []Line          `json:"items,omitempty"`
}

// Line is one item on a document.
type Line struct {
	ID              int64           `json:"id"`
	DocumentID      int64           `json:"document_id"`
	ItemID          *int64          `json:"item_id,omitempty"`
	Unit            *string         `json:"unit,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Total           decimal.Decimal `json:"total"`
	Description     *string         `json:"description,omitempty"`
}

// Totals aggregates documents matching a filter.
type Totals struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalCount  int64           `json:"total_count"`
}

// ListFilter narrows listings. PartyID matches the kind's party column.
type ListFilter struct {
	PartyID   *int64
	InvoiceID *int64
	Limit     int
	Offset    int
}

// LineRequest is one submitted line item.
type LineRequest struct {
	ItemID          *int64          `json:"item_id,omitempty"`
	Unit            *string         `json:"unit,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Total           decimal.Decimal `json:"total"`
	Description     *string         `json:"description,omitempty"`
}

// CreateRequest creates a document. Number is generated when empty.
type CreateRequest struct {
	Number       string          `json:"number,omitempty"`
	ClientID     *int64          `json:"client_id,omitempty"`
	VendorID     *int64          `json:"vendor_id,omitempty"`
	InvoiceID    *int64          `json:"invoice_id,omitempty"`
	DocumentDate time.Time       `json:"document_date" validate:"required"`
	ValidUntil   *time.Time      `json:"valid_until,omitempty"`
	PONumber     *string         `json:"po_number,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Amount       decimal.Decimal `json:"amount"`
	Description  *string         `json:"description,omitempty"`
	Items        []LineRequest   `json:"items,omitempty" validate:"dive"`
}

// UpdateRequest changes header fields. Items, when present, replace all lines.
type UpdateRequest struct {
	Number       *string          `json:"number,omitempty"`
	ClientID     *int64           `json:"client_id,omitempty"`
	VendorID     *int64           `json:"vendor_id,omitempty"`
	InvoiceID    *int64           `json:"invoice_id,omitempty"`
	DocumentDate *time.Time       `json:"document_date,omitempty"`
	ValidUntil   *time.Time       `json:"valid_until,omitempty"`
	PONumber     *string          `json:"po_number,omitempty"`
	Subtotal     *decimal.Decimal `json:"subtotal,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Items        *[]LineRequest   `json:"items,omitempty"`
}

func (l LineRequest) toLine(documentID int64) Line {
	return Line{
		DocumentID:      documentID,
		ItemID:          l.ItemID,
		Unit:            l.Unit,
		Quantity:        l.Quantity,
		Price:           l.Price,
		DiscountPercent: l.DiscountPercent,
		Total:           l.Total,
		Description:     l.Description,
	}
}

// partyID returns the party reference the kind is keyed on.
func (d Document) partyID(k Kind) *int64 {
	if k.Party == PartyVendor {
		return d.VendorID
	}
	return d.ClientID
}
