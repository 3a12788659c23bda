package http

import (
	"log/slog"

	"github.com/eventease/portal/internal/application/tab"
)

// Deps holds the collaborators the router needs.
type Deps struct {
	Registry *tab.Registry
	Logger   *slog.Logger
}
