package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/eventease/portal/internal/domain"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	logger *slog.Logger
}

func NewNotificationHandler(logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{logger: logger}
}

type notificationsView struct {
	Items  []domain.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// List refreshes the cache from the API and renders it.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	svc := t.Notifications
	renderPage(w, r, h.logger, "notifications", notificationsView{Items: []domain.Notification{}},
		func(ctx context.Context) (notificationsView, error) {
			if err := svc.Refresh(ctx); err != nil {
				return notificationsView{}, err
			}
			return notificationsView{Items: svc.Store().List(), Unread: svc.Store().UnreadCount()}, nil
		})
}

// UnreadCount answers from the cache without calling the API.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, UnreadEnvelope{Unread: t.Notifications.Store().UnreadCount()})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.setRead(w, r, true)
}

func (h *NotificationHandler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	h.setRead(w, r, false)
}

func (h *NotificationHandler) setRead(w http.ResponseWriter, r *http.Request, read bool) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var err error
	if read {
		err = t.Notifications.MarkRead(r.Context(), id)
	} else {
		err = t.Notifications.MarkUnread(r.Context(), id)
	}
	if err != nil {
		httpError(w, err, domain.GenericFailure)
		return
	}
	writeJSON(w, http.StatusOK, UnreadEnvelope{Unread: t.Notifications.Store().UnreadCount()})
}
