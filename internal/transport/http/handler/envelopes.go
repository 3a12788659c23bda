package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/eventease/portal/internal/application/tab"
	"github.com/eventease/portal/internal/domain"
	"github.com/eventease/portal/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SessionEnvelope wraps login and current-session responses.
type SessionEnvelope struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// UnreadEnvelope carries the unread notification count.
type UnreadEnvelope struct {
	Unread int `json:"unread"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps err onto a status code. The message is the server's
// detail when there is one, otherwise fallback.
func httpError(w http.ResponseWriter, err error, fallback string) {
	msg := domain.UserMessage(err, fallback)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		middleware.WriteAccessDenied(w, msg)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msg)
	case errors.Is(err, domain.ErrBadRequest):
		if !fromServer(err) {
			msg = err.Error()
		}
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, msg)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, msg)
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrUnknownRole):
		writeError(w, http.StatusBadGateway, msg)
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	default:
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// fromServer reports whether err came back from the remote API, as
// opposed to local validation.
func fromServer(err error) bool {
	var d interface{ ServerDetail() string }
	return errors.As(err, &d)
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func currentTab(w http.ResponseWriter, r *http.Request) (*tab.Tab, bool) {
	t, ok := middleware.TabFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "sign in required")
		return nil, false
	}
	return t, true
}
