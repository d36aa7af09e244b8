package shared

import (
	"net/http"
	"strconv"
	"strings"
)

// ListFilters represents standard list page filters.
type ListFilters struct {
	Search string
	Limit  int
	Offset int
}

// Normalize clamps the limit and offset into range.
func (f ListFilters) Normalize() ListFilters {
	f.Search = strings.TrimSpace(f.Search)
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// FiltersFromRequest reads q, limit and offset query parameters.
func FiltersFromRequest(r *http.Request) ListFilters {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return ListFilters{Search: q.Get("q"), Limit: limit, Offset: offset}.Normalize()
}
