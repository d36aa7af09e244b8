package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/invoicedesk/invoicedesk/internal/platform/httpx"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// RequireSession rejects requests without a valid bearer token and stores
// the session in the request context.
func RequireSession(sessions *shared.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r.Context(), bearerToken(r))
			if err != nil {
				if !errors.Is(err, shared.ErrUnauthorized) {
					httpx.Problem(w, http.StatusServiceUnavailable, "Session Store Unavailable", "")
					return
				}
				w.Header().Set("WWW-Authenticate", "Bearer")
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
