package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/eventease/portal/internal/config"
	"github.com/eventease/portal/internal/domain"
	"github.com/eventease/portal/internal/transport/http/handler"
	appmiddleware "github.com/eventease/portal/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the gateway router. ctx bounds the
// background cleanup of the per-IP limiters.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		logger.Warn("ignoring trusted proxies", slog.Any("error", err))
		proxies = nil
	}
	clientKey := func(r *http.Request) (string, error) {
		return appmiddleware.ClientIP(r, proxies), nil
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !cfg.IsProduction(),
	})

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(secureMiddleware.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.Limit(300, time.Minute, httprate.WithKeyFuncs(clientKey)))

	cookie := appmiddleware.CookieConfig{Name: cfg.SessionCookieName, Secure: cfg.IsProduction()}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, proxies)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(deps.Registry, cookie, logger)
	accountH := handler.NewAccountHandler()
	eventH := handler.NewEventHandler(logger)
	ticketH := handler.NewTicketHandler(logger)
	notifH := handler.NewNotificationHandler(logger)
	dashH := handler.NewDashboardHandler()

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Tabs(deps.Registry, cookie))

			// ── Public routes ────────────────────────────────────────────────
			r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
			r.Post("/sessions/logout", sessionH.Logout)
			r.Get("/sessions", sessionH.GetCurrent)
			r.With(sensitiveRL.Limit).Post("/accounts", accountH.Register)
			r.Get("/events", eventH.List)
			r.Get("/events/{id}", eventH.Get)

			// ── Signed-in routes ─────────────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireAuth)

				r.Post("/events/{id}/register", eventH.Register)
				r.Get("/tickets", ticketH.Mine)
				r.Get("/notifications", notifH.List)
				r.Get("/notifications/unread-count", notifH.UnreadCount)
				r.Put("/notifications/{id}/read", notifH.MarkRead)
				r.Put("/notifications/{id}/unread", notifH.MarkUnread)
			})

			// Organizer routes
			r.Route("/organizer", func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin))

				r.Get("/dashboard", dashH.Organizer)
				r.Get("/events", eventH.Mine)
				r.Post("/events", eventH.Create)
				r.Put("/events/{id}", eventH.Update)
				r.Delete("/events/{id}", eventH.Delete)
				r.Get("/events/{id}/attendees", eventH.Attendees)
				r.Get("/events/{id}/attendees.csv", eventH.AttendeesCSV)
				r.Patch("/registrations/{id}/attendance", eventH.MarkAttendance)
			})

			// Admin-only routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/dashboard", dashH.Admin)
				r.Get("/events", eventH.AdminList)
				r.Delete("/events/{id}", eventH.AdminDelete)
				r.Patch("/events/{id}/status", eventH.AdminSetStatus)
			})
		})
	})

	return r
}
