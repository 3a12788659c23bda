package handler

import (
	"log/slog"
	"net/http"

	"github.com/eventease/portal/internal/domain"
)

// TicketHandler serves the principal's tickets.
type TicketHandler struct {
	logger *slog.Logger
}

func NewTicketHandler(logger *slog.Logger) *TicketHandler {
	return &TicketHandler{logger: logger}
}

func (h *TicketHandler) Mine(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	renderPage(w, r, h.logger, "tickets", []domain.Ticket{}, t.Tickets.Mine)
}
