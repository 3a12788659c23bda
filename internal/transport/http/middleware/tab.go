package middleware

import (
	"context"
	"net/http"

	"github.com/eventease/portal/internal/application/tab"
)

type contextKey string

const tabKey contextKey = "tab"

// CookieConfig describes the tab cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Tabs attaches the caller's tab to the request context. Callers without a
// live tab cookie get the registry's shared anonymous tab; a stale cookie
// is expired. Tabs are only created on sign-in.
func Tabs(registry *tab.Registry, cc CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var t *tab.Tab
			if c, err := r.Cookie(cc.Name); err == nil {
				var ok bool
				if t, ok = registry.Get(c.Value); !ok {
					ClearTabCookie(w, cc)
				}
			}
			if t == nil {
				t = registry.Anonymous()
			}
			ctx := context.WithValue(r.Context(), tabKey, t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetTabCookie points the browser at tab id.
func SetTabCookie(w http.ResponseWriter, cc CookieConfig, id string) {
	http.SetCookie(w, cc.cookie(id, 0))
}

// ClearTabCookie expires the tab cookie.
func ClearTabCookie(w http.ResponseWriter, cc CookieConfig) {
	http.SetCookie(w, cc.cookie("", -1))
}

// TabFromContext returns the tab attached by Tabs.
func TabFromContext(ctx context.Context) (*tab.Tab, bool) {
	t, ok := ctx.Value(tabKey).(*tab.Tab)
	return t, ok
}

// WithTab attaches t to ctx.
func WithTab(ctx context.Context, t *tab.Tab) context.Context {
	return context.WithValue(ctx, tabKey, t)
}
