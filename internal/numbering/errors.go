package numbering

import (
	"errors"
	"fmt"

	"github.com/invoicedesk/invoicedesk/internal/shared"
)

var (
	// ErrStrategyUnsupported is returned when the sequence strategy is selected
	// but the store cannot keep a counter.
	ErrStrategyUnsupported = errors.New("numbering: store does not support sequence counters")
	// ErrCompanyCodeNotSet matches every ConfigurationError.
	ErrCompanyCodeNotSet = errors.New("company code not set")
	// ErrDuplicateNumber matches every DuplicateNumberError.
	ErrDuplicateNumber = errors.New("duplicate document number")
)

// ConfigurationError reports that no company code is available. It matches
// ErrCompanyCodeNotSet and shared.ErrConfiguration.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("company code not set: %s; please set up the company profile first", e.Reason)
}

func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrCompanyCodeNotSet, shared.ErrConfiguration}
}

// DuplicateNumberError reports that a candidate number already exists in its
// table. It matches ErrDuplicateNumber and shared.ErrDuplicate; the caller may
// retry the whole operation.
type DuplicateNumberError struct {
	Table  Table
	Number string
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("document number %s already exists in %s", e.Number, e.Table)
}

func (e *DuplicateNumberError) Unwrap() []error {
	return []error{ErrDuplicateNumber, shared.ErrDuplicate}
}
