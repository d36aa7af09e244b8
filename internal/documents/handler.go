package documents

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/invoicedesk/invoicedesk/internal/platform/httpx"
)

// Handler exposes the routes of every document Kind.
type Handler struct {
	logger  *slog.Logger
	service *Service
	kinds   []Kind
}

// NewHandler builds Handler instance. No kinds means all of Kinds.
func NewHandler(logger *slog.Logger, service *Service, kinds ...Kind) *Handler {
	if len(kinds) == 0 {
		kinds = Kinds
	}
	return &Handler{logger: logger, service: service, kinds: kinds}
}

// MountRoutes registers one route group per kind.
func (h *Handler) MountRoutes(r chi.Router) {
	for _, k := range h.kinds {
		kr := kindRoutes{Handler: h, kind: k}
		r.Route(k.Path, func(r chi.Router) {
			r.Get("/", kr.list)
			r.Post("/", kr.create)
			r.Get("/totals", kr.totals)
			r.Get("/"+string(k.Party)+"/{partyID}", kr.listByParty)
			r.Get("/invoice/{invoiceID}", kr.listByInvoice)
			r.Get("/{id}", kr.show)
			r.Put("/{id}", kr.update)
			r.Delete("/{id}", kr.delete)
		})
	}
}

type kindRoutes struct {
	*Handler
	kind Kind
}

func (h kindRoutes) list(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}
	out, err := h.service.List(r.Context(), h.kind, filter)
	if err != nil {
		httpx.Fail(h.logger, w, r, "list "+h.kind.Name+" failed", err)
		return
	}
	respondList(w, out)
}

func (h kindRoutes) listByParty(w http.ResponseWriter, r *http.Request) {
	partyID, err := httpx.IDParam(r, "partyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListByParty(r.Context(), h.kind, partyID)
	if err != nil {
		httpx.Fail(h.logger, w, r, "list "+h.kind.Name+" by party failed", err)
		return
	}
	respondList(w, out)
}

func (h kindRoutes) listByInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := httpx.IDParam(r, "invoiceID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListByInvoice(r.Context(), h.kind, invoiceID)
	if err != nil {
		httpx.Fail(h.logger, w, r, "list "+h.kind.Name+" by invoice failed", err)
		return
	}
	respondList(w, out)
}

func (h kindRoutes) totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context(), h.kind, ListFilter{})
	if err != nil {
		httpx.Fail(h.logger, w, r, h.kind.Name+" totals failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h kindRoutes) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Get(r.Context(), h.kind, id)
	if err != nil {
		httpx.Fail(h.logger, w, r, "get "+h.kind.Name+" failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h kindRoutes) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Create(r.Context(), h.kind, req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "create "+h.kind.Name+" failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h kindRoutes) update(w http.ResponseWriter, r *http.Request) {
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
	doc, err := h.service.Update(r.Context(), h.kind, id, req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "update "+h.kind.Name+" failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h kindRoutes) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), h.kind, id); err != nil {
		httpx.Fail(h.logger, w, r, "delete "+h.kind.Name+" failed", err)
		return
	}
	httpx.Message(w, http.StatusOK, "Document deleted successfully")
}

func respondList(w http.ResponseWriter, out []Document) {
	if out == nil {
		out = []Document{}
	}
	httpx.JSON(w, http.StatusOK, out)
}
