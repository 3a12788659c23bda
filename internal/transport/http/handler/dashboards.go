package handler

import (
	"net/http"
)

// DashboardHandler serves the admin and organizer dashboards. Each source
// reports its own status, so the response is 200 even when one fails.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	view, err := t.Dashboards.Admin(r.Context())
	if err != nil {
		httpError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) Organizer(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	view, err := t.Dashboards.Organizer(r.Context())
	if err != nil {
		httpError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
