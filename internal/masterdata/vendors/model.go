package vendors

import (
	"time"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
)

// Vendor is a supplier the business buys from.
type Vendor struct {
	ID              int64     `json:"id"`
	CompanyName     string    `json:"company_name"`
	ContactName     string    `json:"contact_name"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	GSTTreatment    *string   `json:"gst_treatment,omitempty"`
	GSTIN           *string   `json:"gstin,omitempty"`
	PAN             *string   `json:"pan,omitempty"`
	TIN             *string   `json:"tin,omitempty"`
	VAT             *string   `json:"vat,omitempty"`
	Website         *string   `json:"website,omitempty"`
	BillingAddress  *string   `json:"billing_address,omitempty"`
	ShippingAddress *string   `json:"shipping_address,omitempty"`
	City            *string   `json:"city,omitempty"`
	IsClient        bool      `json:"is_client"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Request creates or replaces a vendor.
type Request struct {
	CompanyName     string  `json:"company_name" validate:"required"`
	ContactName     string  `json:"contact_name,omitempty"`
	Phone           string  `json:"phone" validate:"required"`
	Email           string  `json:"email" validate:"required"`
	GSTTreatment    *string `json:"gst_treatment,omitempty"`
	GSTIN           *string `json:"gstin,omitempty"`
	PAN             *string `json:"pan,omitempty"`
	TIN             *string `json:"tin,omitempty"`
	VAT             *string `json:"vat,omitempty"`
	Website         *string `json:"website,omitempty"`
	BillingAddress  *string `json:"billing_address,omitempty"`
	ShippingAddress *string `json:"shipping_address,omitempty"`
	City            *string `json:"city,omitempty"`
	IsClient        bool    `json:"is_client"`
}

func (r Request) toVendor() Vendor {
	v := Vendor{
		CompanyName:     r.CompanyName,
		ContactName:     r.ContactName,
		Phone:           r.Phone,
		Email:           r.Email,
		GSTTreatment:    r.GSTTreatment,
		GSTIN:           mdshared.NormalizeTaxID(r.GSTIN),
		PAN:             mdshared.NormalizeTaxID(r.PAN),
		TIN:             r.TIN,
		VAT:             r.VAT,
		Website:         r.Website,
		BillingAddress:  r.BillingAddress,
		ShippingAddress: r.ShippingAddress,
		City:            r.City,
		IsClient:        r.IsClient,
	}
	if v.ContactName == "" {
		v.ContactName = v.CompanyName
	}
	if v.ShippingAddress == nil {
		v.ShippingAddress = v.BillingAddress
	}
	return v
}
