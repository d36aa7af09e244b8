package numbering

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/invoicedesk/invoicedesk/internal/platform/httpx"
)

// Handler exposes the number preview endpoint.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
	store    Store
	company  ConfigSource
	now      func() time.Time
}

// NewHandler builds Handler instance. store is read outside any transaction.
func NewHandler(logger *slog.Logger, resolver *Resolver, store Store, company ConfigSource) *Handler {
	return &Handler{logger: logger, resolver: resolver, store: store, company: company, now: time.Now}
}

// MountRoutes registers numbering routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/numbering/preview", h.preview)
}

type previewResponse struct {
	Type   TypeCode `json:"type"`
	Date   string   `json:"date"`
	Number string   `json:"number"`
}

// preview reports the number the next document of a type would get. The
// answer is advisory: a concurrent create may take it first.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ, ok := ParseTypeCode(q.Get("type"))
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "type must be one of IV, QO, PIV, PMT, CN, DN, PO, DC")
		return
	}
	date := h.now()
	if raw := q.Get("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	cfg, err := h.company.CompanyConfig(r.Context())
	if err != nil {
		httpx.Fail(h.logger, w, r, "load company config failed", err)
		return
	}
	number, err := h.resolver.Preview(r.Context(), h.store, cfg, typ, date)
	if err != nil {
		httpx.Fail(h.logger, w, r, "preview number failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, previewResponse{Type: typ, Date: date.Format(time.DateOnly), Number: number})
}
