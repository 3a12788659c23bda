package handler

import (
	"net/http"

	"github.com/eventease/portal/internal/domain"
)

// AccountHandler handles sign-up.
type AccountHandler struct{}

func NewAccountHandler() *AccountHandler { return &AccountHandler{} }

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	var req domain.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := t.Accounts.Register(r.Context(), req); err != nil {
		httpError(w, err, "Registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "account created"})
}
