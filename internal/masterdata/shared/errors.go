package shared

import (
	"fmt"

	"github.com/invoicedesk/invoicedesk/internal/shared"
)

var (
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", shared.ErrValidation)
	ErrInvalidPhone = fmt.Errorf("%w: invalid phone number", shared.ErrValidation)
	ErrInvalidGSTIN = fmt.Errorf("%w: invalid GSTIN format", shared.ErrValidation)
	ErrInvalidPAN   = fmt.Errorf("%w: invalid PAN format", shared.ErrValidation)
	ErrInUse        = fmt.Errorf("%w: record is referenced by documents", shared.ErrConflict)
)

// RequiredField reports a missing mandatory field.
func RequiredField(name string) error {
	return fmt.Errorf("%w: %s is required", shared.ErrValidation, name)
}
