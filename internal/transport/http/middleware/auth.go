package middleware

import (
	"net/http"

	"github.com/eventease/portal/internal/domain"
)

// RequireAuth rejects callers whose tab has no signed-in principal.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := TabFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "sign in required")
			return
		}
		if _, ok := t.Session.Current(); !ok {
			writeJSONError(w, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole renders the access-denied view unless the principal holds
// one of allowedRoles. Anonymous callers get 401.
func RequireRole(allowedRoles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, ok := TabFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "sign in required")
				return
			}
			u, ok := t.Session.Current()
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "sign in required")
				return
			}
			if !u.Role.In(allowedRoles...) {
				WriteAccessDenied(w, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
