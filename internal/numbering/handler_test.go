package numbering

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type fixedConfig struct{ cfg *CompanyConfig }

func (f fixedConfig) CompanyConfig(context.Context) (*CompanyConfig, error) { return f.cfg, nil }

func newPreviewRouter(store Store, cfg *CompanyConfig) chi.Router {
	h := NewHandler(nil, NewResolver(StrategyCount, nil), store, fixedConfig{cfg: cfg})
	h.now = func() time.Time { return time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestPreviewEndpoint(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, store.insert(TableInvoices, "AB-2526-IV-001"))
	r := newPreviewRouter(store, acme)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/numbering/preview?type=iv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"type":"IV","date":"2025-05-01","number":"AB-2526-IV-002"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/numbering/preview?type=PMT&date=2025-03-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"number":"AB-2425-PMT-001"`)
}

func TestPreviewEndpointRejectsBadInput(t *testing.T) {
	r := newPreviewRouter(newMemoryStore(), acme)

	for _, target := range []string{
		"/numbering/preview?type=XX",
		"/numbering/preview?type=IV&date=01-05-2025",
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec := httptest.NewRecorder()
	newPreviewRouter(newMemoryStore(), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/numbering/preview?type=IV", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "company profile")
}
