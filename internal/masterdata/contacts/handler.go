package contacts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
	"github.com/invoicedesk/invoicedesk/internal/platform/httpx"
)

// Handler exposes the contact endpoints of one Owner under its path.
type Handler struct {
	logger  *slog.Logger
	service *Service
	owner   Owner
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, owner: service.owner}
}

// MountRoutes registers contact routes next to the owner's own routes.
func (h *Handler) MountRoutes(r chi.Router) {
	base := h.owner.Path
	r.Get(base+"/contacts", h.list)
	r.Put(base+"/contacts/{contactID}", h.update)
	r.Delete(base+"/contacts/{contactID}", h.delete)
	r.Get(base+"/{id}/contacts", h.listForParty)
	r.Post(base+"/{id}/contacts", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context(), mdshared.FiltersFromRequest(r))
	if err != nil {
		httpx.Fail(h.logger, w, r, "list contacts failed", err)
		return
	}
	respondList(w, out)
}

func (h *Handler) listForParty(w http.ResponseWriter, r *http.Request) {
	partyID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListFor(r.Context(), partyID, mdshared.FiltersFromRequest(r))
	if err != nil {
		httpx.Fail(h.logger, w, r, "list contacts failed", err)
		return
	}
	respondList(w, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	partyID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Create(r.Context(), partyID, req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "create contact failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "contactID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "update contact failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "contactID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(h.logger, w, r, "delete contact failed", err)
		return
	}
	httpx.Message(w, http.StatusOK, "Contact deleted successfully")
}

func respondList(w http.ResponseWriter, out []Contact) {
	if out == nil {
		out = []Contact{}
	}
	httpx.JSON(w, http.StatusOK, out)
}
