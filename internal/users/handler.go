package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/invoicedesk/invoicedesk/internal/platform/httpx"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// Handler manages user endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountPublic registers the routes reachable without a token.
func (h *Handler) MountPublic(r chi.Router) {
	r.Post("/users/register", h.register)
	r.Post("/users/login", h.login)
}

// MountRoutes registers routes that need a session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users/me", h.me)
	r.Post("/users/logout", h.logout)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	u, err := h.service.Register(r.Context(), req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "register user failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "login failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Me(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		httpx.Fail(h.logger, w, r, "load current user failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	if err := h.service.Logout(r.Context(), sess.Token); err != nil {
		httpx.Fail(h.logger, w, r, "logout failed", err)
		return
	}
	httpx.Message(w, http.StatusOK, "Logged out")
}
