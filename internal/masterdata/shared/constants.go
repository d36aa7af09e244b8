package shared

const (
	// Default pagination
	DefaultLimit = 50
	MaxLimit     = 500

	// Sort directions
	SortAsc  = "asc"
	SortDesc = "desc"
)
