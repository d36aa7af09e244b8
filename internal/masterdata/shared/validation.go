package shared

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[\d\s\-()]+$`)
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

const minPhoneLen = 10

// ContactDetails are the fields every party record validates the same way.
type ContactDetails struct {
	CompanyName string
	Email       string
	Phone       string
	GSTIN       *string
	PAN         *string
}

// ValidateContact checks the required name, email and phone and the optional
// GSTIN and PAN formats.
func ValidateContact(c ContactDetails) error {
	if strings.TrimSpace(c.CompanyName) == "" {
		return RequiredField("company name")
	}
	if err := validateReach(c.Email, c.Phone); err != nil {
		return err
	}
	if c.GSTIN != nil && *c.GSTIN != "" && !gstinPattern.MatchString(*c.GSTIN) {
		return ErrInvalidGSTIN
	}
	if c.PAN != nil && *c.PAN != "" && !panPattern.MatchString(*c.PAN) {
		return ErrInvalidPAN
	}
	return nil
}

// ValidatePerson checks a contact person attached to a client or vendor.
func ValidatePerson(name, email, phone string) error {
	if strings.TrimSpace(name) == "" {
		return RequiredField("name")
	}
	return validateReach(email, phone)
}

func validateReach(email, phone string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(phone) < minPhoneLen || !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// NormalizeTaxID upper-cases and trims a GSTIN or PAN. Empty becomes nil.
func NormalizeTaxID(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.ToUpper(strings.TrimSpace(*v))
	if s == "" {
		return nil
	}
	return &s
}
