package profile

import "strings"

const (
	maxFieldLen     = 191
	defaultCurrency = "INR"
)

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxFieldLen {
		return s
	}
	return string(r[:maxFieldLen])
}

func truncatePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := truncate(strings.TrimSpace(*s))
	return &v
}

// sanitizeLogo drops inline data-URL logos that cannot fit the column and
// truncates anything else.
func sanitizeLogo(logo *string) *string {
	if logo == nil {
		return nil
	}
	if strings.HasPrefix(*logo, "data:") && len(*logo) > maxFieldLen {
		return nil
	}
	return truncatePtr(logo)
}

func (req Request) toProfile() Profile {
	p := Profile{
		Logo:            sanitizeLogo(req.Logo),
		CompanyName:     truncate(strings.TrimSpace(req.CompanyName)),
		Country:         truncate(strings.TrimSpace(req.Country)),
		City:            truncate(strings.TrimSpace(req.City)),
		PinCode:         truncatePtr(req.PinCode),
		DefaultCurrency: truncate(strings.ToUpper(strings.TrimSpace(req.DefaultCurrency))),
		State:           truncatePtr(req.State),
		Address:         truncate(strings.TrimSpace(req.Address)),
		Email:           truncate(strings.ToLower(strings.TrimSpace(req.Email))),
		Phone:           truncate(strings.TrimSpace(req.Phone)),
		ServiceTaxNo:    truncatePtr(req.ServiceTaxNo),
		Website:         truncatePtr(req.Website),
		TaxationType:    truncatePtr(req.TaxationType),
		ContactName:     truncatePtr(req.ContactName),
		CompanyCode:     truncatePtr(req.CompanyCode),
	}
	if p.DefaultCurrency == "" {
		p.DefaultCurrency = defaultCurrency
	}
	return p
}

func (req BankDetailRequest) toBankDetail(profileID int64) BankDetail {
	return BankDetail{
		ProfileID:         profileID,
		BankName:          truncate(strings.TrimSpace(req.BankName)),
		BranchName:        truncatePtr(req.BranchName),
		ADCode:            truncatePtr(req.ADCode),
		UPIID:             truncatePtr(req.UPIID),
		AccountNumber:     truncate(strings.TrimSpace(req.AccountNumber)),
		IFSCCode:          truncate(strings.ToUpper(strings.TrimSpace(req.IFSCCode))),
		SwiftCode:         truncatePtr(req.SwiftCode),
		AccountHolderName: truncate(strings.TrimSpace(req.AccountHolderName)),
	}
}
