package profile

import "time"

// Profile is the company running the back office. The first profile is the
// current one and supplies the company code for document numbers.
type Profile struct {
	ID              int64        `json:"id"`
	Logo            *string      `json:"logo,omitempty"`
	CompanyName     string       `json:"company_name"`
	Country         string       `json:"country"`
	City            string       `json:"city"`
	PinCode         *string      `json:"pin_code,omitempty"`
	DefaultCurrency string       `json:"default_currency"`
	State           *string      `json:"state,omitempty"`
	Address         string       `json:"address"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	ServiceTaxNo    *string      `json:"service_tax_no,omitempty"`
	Website         *string      `json:"website,omitempty"`
	TaxationType    *string      `json:"taxation_type,omitempty"`
	ContactName     *string      `json:"contact_name,omitempty"`
	CompanyCode     *string      `json:"company_code,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	BankDetails     []BankDetail `json:"bank_details"`
}

// BankDetail is a bank account printed on documents.
type BankDetail struct {
	ID                int64     `json:"id"`
	ProfileID         int64     `json:"profile_id"`
	BankName          string    `json:"bank_name"`
	BranchName        *string   `json:"branch_name,omitempty"`
	ADCode            *string   `json:"ad_code,omitempty"`
	UPIID             *string   `json:"upi_id,omitempty"`
	AccountNumber     string    `json:"account_number"`
	IFSCCode          string    `json:"ifsc_code"`
	SwiftCode         *string   `json:"swift_code,omitempty"`
	AccountHolderName string    `json:"account_holder_name"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Request creates or replaces a profile. BankDetails is only read on create.
type Request struct {
	Logo            *string             `json:"logo,omitempty"`
	CompanyName     string              `json:"company_name" validate:"required"`
	Country         string              `json:"country" validate:"required"`
	City            string              `json:"city" validate:"required"`
	PinCode         *string             `json:"pin_code,omitempty"`
	DefaultCurrency string              `json:"default_currency,omitempty"`
	State           *string             `json:"state,omitempty"`
	Address         string              `json:"address" validate:"required"`
	Email           string              `json:"email" validate:"required,email"`
	Phone           string              `json:"phone" validate:"required"`
	ServiceTaxNo    *string             `json:"service_tax_no,omitempty"`
	Website         *string             `json:"website,omitempty"`
	TaxationType    *string             `json:"taxation_type,omitempty"`
	ContactName     *string             `json:"contact_name,omitempty"`
	CompanyCode     *string             `json:"company_code,omitempty" validate:"omitempty,alphanum,max=10"`
	BankDetails     []BankDetailRequest `json:"bank_details,omitempty" validate:"omitempty,dive"`
}

// BankDetailRequest creates or replaces a bank detail.
type BankDetailRequest struct {
	BankName          string  `json:"bank_name" validate:"required"`
	BranchName        *string `json:"branch_name,omitempty"`
	ADCode            *string `json:"ad_code,omitempty"`
	UPIID             *string `json:"upi_id,omitempty"`
	AccountNumber     string  `json:"account_number" validate:"required"`
	IFSCCode          string  `json:"ifsc_code" validate:"required"`
	SwiftCode         *string `json:"swift_code,omitempty"`
	AccountHolderName string  `json:"account_holder_name" validate:"required"`
}
