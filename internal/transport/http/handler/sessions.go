package handler

import (
	"log/slog"
	"net/http"

	"github.com/eventease/portal/internal/application/tab"
	"github.com/eventease/portal/internal/domain"
	"github.com/eventease/portal/internal/transport/http/middleware"
)

// SessionHandler handles session endpoints.
type SessionHandler struct {
	registry *tab.Registry
	cookie   middleware.CookieConfig
	logger   *slog.Logger
}

func NewSessionHandler(registry *tab.Registry, cookie middleware.CookieConfig, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{registry: registry, cookie: cookie, logger: logger}
}

// Login signs the caller in. Anonymous callers get a tab of their own,
// kept only when the credentials are accepted.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	var creds domain.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	fresh := t.Shared()
	if fresh {
		t = h.registry.Create()
	}
	u, err := t.Session.Authenticate(r.Context(), creds)
	if err != nil {
		if fresh {
			h.registry.Destroy(t.ID)
		}
		httpError(w, err, "Login failed")
		return
	}
	if fresh {
		middleware.SetTabCookie(w, h.cookie, t.ID)
	}
	// The header badge needs the unread count right after login.
	if err := t.Notifications.Refresh(r.Context()); err != nil {
		h.logger.Warn("initial notification fetch failed", slog.String("tab_id", t.ID), slog.Any("error", err))
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Authenticated: true, User: u})
}

func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	u, authed := t.Session.Current()
	writeJSON(w, http.StatusOK, SessionEnvelope{Authenticated: authed, User: u})
}

// Logout ends the session and discards the tab. It always succeeds.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if t, ok := middleware.TabFromContext(r.Context()); ok && !t.Shared() {
		h.registry.Destroy(t.ID)
	}
	middleware.ClearTabCookie(w, h.cookie)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}
