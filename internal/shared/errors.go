package shared

import "errors"

// Sentinel errors shared by every domain package. Domain errors wrap one of
// these so the HTTP layer can pick a status without knowing the domain.
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness conflict. Callers may retry the whole operation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrConflict indicates a write that lost to a concurrent transaction or
	// would orphan dependent records.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates a rejected request payload.
	ErrValidation = errors.New("validation failed")
	// ErrConfiguration indicates missing setup data, such as the company profile.
	ErrConfiguration = errors.New("configuration incomplete")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or expired session.
	ErrUnauthorized = errors.New("unauthorized")
)
