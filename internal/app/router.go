package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/invoicedesk/invoicedesk/internal/documents"
	"github.com/invoicedesk/invoicedesk/internal/invoices"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/clients"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/contacts"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/items"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/vendors"
	"github.com/invoicedesk/invoicedesk/internal/numbering"
	"github.com/invoicedesk/invoicedesk/internal/observability"
	"github.com/invoicedesk/invoicedesk/internal/payments"
	"github.com/invoicedesk/invoicedesk/internal/platform/httpx"
	"github.com/invoicedesk/invoicedesk/internal/profile"
	"github.com/invoicedesk/invoicedesk/internal/shared"
	"github.com/invoicedesk/invoicedesk/internal/users"
	"github.com/invoicedesk/invoicedesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Metrics        *observability.Metrics
	SessionManager *shared.SessionManager

	UsersHandler          *users.Handler
	ProfileHandler        *profile.Handler
	ClientsHandler        *clients.Handler
	ClientContactsHandler *contacts.Handler
	VendorsHandler        *vendors.Handler
	VendorContactsHandler *contacts.Handler
	ItemsHandler          *items.Handler
	InvoicesHandler       *invoices.Handler
	PaymentsHandler       *payments.Handler
	DocumentsHandler      *documents.Handler
	NumberingHandler      *numbering.Handler
	JobHandler            *jobs.Handler
}

type mounter interface {
	MountRoutes(r chi.Router)
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		params.JobHandler.MountRoutes(r)
	}

	r.Route("/api", func(r chi.Router) {
		if params.UsersHandler != nil {
			params.UsersHandler.MountPublic(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(users.RequireSession(params.SessionManager))
			for _, m := range params.protected() {
				m.MountRoutes(r)
			}
		})
	})

	return r
}

// protected lists the configured handlers that sit behind a session.
func (p RouterParams) protected() []mounter {
	var out []mounter
	add := func(m mounter, ok bool) {
		if ok {
			out = append(out, m)
		}
	}
	add(p.UsersHandler, p.UsersHandler != nil)
	add(p.ProfileHandler, p.ProfileHandler != nil)
	add(p.ClientsHandler, p.ClientsHandler != nil)
	add(p.ClientContactsHandler, p.ClientContactsHandler != nil)
	add(p.VendorsHandler, p.VendorsHandler != nil)
	add(p.VendorContactsHandler, p.VendorContactsHandler != nil)
	add(p.ItemsHandler, p.ItemsHandler != nil)
	add(p.InvoicesHandler, p.InvoicesHandler != nil)
	add(p.PaymentsHandler, p.PaymentsHandler != nil)
	add(p.DocumentsHandler, p.DocumentsHandler != nil)
	add(p.NumberingHandler, p.NumberingHandler != nil)
	return out
}
