package payments

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/invoicedesk/invoicedesk/internal/platform/httpx"
)

// Handler exposes payment endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/payments", h.list)
	r.Post("/payments", h.create)
	r.Get("/payments/totals", h.totals)
	r.Get("/payments/invoice/{invoiceID}", h.listByInvoice)
	r.Get("/payments/client/{clientID}", h.listByClient)
	r.Get("/payments/details", h.listDetails)
	r.Delete("/payments/details/{detailID}", h.deleteDetail)
	r.Get("/payments/{id}/details", h.listPaymentDetails)
	r.Post("/payments/{id}/details", h.addDetail)
	r.Get("/payments/{id}", h.show)
	r.Put("/payments/{id}", h.update)
	r.Delete("/payments/{id}", h.delete)
}

const dateLayout = "2006-01-02"

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be YYYY-MM-DD")
			return
		}
		filter.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be YYYY-MM-DD")
			return
		}
		// Inclusive of the whole end day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}
	out, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.Fail(h.logger, w, r, "list payments failed", err)
		return
	}
	respondList(w, out)
}

func (h *Handler) listByInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := httpx.IDParam(r, "invoiceID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListByInvoice(r.Context(), invoiceID)
	if err != nil {
		httpx.Fail(h.logger, w, r, "list invoice payments failed", err)
		return
	}
	respondList(w, out)
}

func (h *Handler) listByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := httpx.IDParam(r, "clientID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListByClient(r.Context(), clientID)
	if err != nil {
		httpx.Fail(h.logger, w, r, "list client payments failed", err)
		return
	}
	respondList(w, out)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context())
	if err != nil {
		httpx.Fail(h.logger, w, r, "payment totals failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(h.logger, w, r, "get payment failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "create payment failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "update payment failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(h.logger, w, r, "delete payment failed", err)
		return
	}
	httpx.Message(w, http.StatusOK, "Payment deleted successfully")
}

// listDetails accepts optional client_id and payment_id filters.
func (h *Handler) listDetails(w http.ResponseWriter, r *http.Request) {
	var filter DetailFilter
	for param, target := range map[string]**int64{"client_id": &filter.ClientID, "payment_id": &filter.PaymentID} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", param+" must be a positive integer")
			return
		}
		*target = &id
	}
	h.respondDetails(w, r, filter)
}

func (h *Handler) listPaymentDetails(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondDetails(w, r, DetailFilter{PaymentID: &id})
}

func (h *Handler) respondDetails(w http.ResponseWriter, r *http.Request, filter DetailFilter) {
	out, err := h.service.Details(r.Context(), filter)
	if err != nil {
		httpx.Fail(h.logger, w, r, "list payment details failed", err)
		return
	}
	if out == nil {
		out = []Detail{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) addDetail(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req DetailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	d, err := h.service.AddDetail(r.Context(), id, req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "create payment detail failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *Handler) deleteDetail(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "detailID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteDetail(r.Context(), id); err != nil {
		httpx.Fail(h.logger, w, r, "delete payment detail failed", err)
		return
	}
	httpx.Message(w, http.StatusOK, "Payment detail deleted successfully")
}

func respondList(w http.ResponseWriter, out []Payment) {
	if out == nil {
		out = []Payment{}
	}
	httpx.JSON(w, http.StatusOK, out)
}
