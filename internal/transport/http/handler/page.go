package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/eventease/portal/internal/domain"
	"github.com/eventease/portal/internal/view"
)

// renderPage loads one page and writes its snapshot. A failed load still
// answers 200 with the fallback; authorization failures render their view.
func renderPage[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string, fallback T, fetch func(context.Context) (T, error)) {
	page := view.NewPage(name, fallback, logger)
	defer page.Close()

	var authErr error
	snap := page.Load(r.Context(), func(ctx context.Context) (T, error) {
		v, err := fetch(ctx)
		if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrUnauthorized) {
			authErr = err
		}
		return v, err
	})
	if authErr != nil {
		httpError(w, authErr, "")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
