package clients

import (
	"time"

	"github.com/shopspring/decimal"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/vendors"
)

// Client is a customer invoices are issued to.
type Client struct {
	ID             int64           `json:"id"`
	CompanyName    string          `json:"company_name"`
	ContactName    *string         `json:"contact_name,omitempty"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	GSTTreatment   *string         `json:"gst_treatment,omitempty"`
	GSTIN          *string         `json:"gstin,omitempty"`
	PAN            *string         `json:"pan,omitempty"`
	TIN            *string         `json:"tin,omitempty"`
	VAT            *string         `json:"vat,omitempty"`
	Website        *string         `json:"website,omitempty"`
	BillingAddress *string         `json:"billing_address,omitempty"`
	City           *string         `json:"city,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	IsVendor       bool            `json:"is_vendor"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Request creates or replaces a client.
type Request struct {
	CompanyName    string           `json:"company_name" validate:"required"`
	ContactName    *string          `json:"contact_name,omitempty"`
	Phone          string           `json:"phone" validate:"required"`
	Email          string           `json:"email" validate:"required"`
	GSTTreatment   *string          `json:"gst_treatment,omitempty"`
	GSTIN          *string          `json:"gstin,omitempty"`
	PAN            *string          `json:"pan,omitempty"`
	TIN            *string          `json:"tin,omitempty"`
	VAT            *string          `json:"vat,omitempty"`
	Website        *string          `json:"website,omitempty"`
	BillingAddress *string          `json:"billing_address,omitempty"`
	City           *string          `json:"city,omitempty"`
	OpeningBalance *decimal.Decimal `json:"opening_balance,omitempty"`
	IsVendor       bool             `json:"is_vendor"`
}

func (r Request) toClient() Client {
	c := Client{
		CompanyName:    r.CompanyName,
		ContactName:    r.ContactName,
		Phone:          r.Phone,
		Email:          r.Email,
		GSTTreatment:   r.GSTTreatment,
		GSTIN:          mdshared.NormalizeTaxID(r.GSTIN),
		PAN:            mdshared.NormalizeTaxID(r.PAN),
		TIN:            r.TIN,
		VAT:            r.VAT,
		Website:        r.Website,
		BillingAddress: r.BillingAddress,
		City:           r.City,
		IsVendor:       r.IsVendor,
	}
	if r.OpeningBalance != nil {
		c.OpeningBalance = *r.OpeningBalance
	}
	return c
}

// asVendor mirrors the client into the vendor record flagged as a client.
func (c Client) asVendor() vendors.Vendor {
	v := vendors.Vendor{
		CompanyName:     c.CompanyName,
		ContactName:     c.CompanyName,
		Phone:           c.Phone,
		Email:           c.Email,
		GSTTreatment:    c.GSTTreatment,
		GSTIN:           c.GSTIN,
		PAN:             c.PAN,
		TIN:             c.TIN,
		VAT:             c.VAT,
		Website:         c.Website,
		BillingAddress:  c.BillingAddress,
		ShippingAddress: c.BillingAddress,
		City:            c.City,
		IsClient:        true,
	}
	if c.ContactName != nil && *c.ContactName != "" {
		v.ContactName = *c.ContactName
	}
	return v
}
