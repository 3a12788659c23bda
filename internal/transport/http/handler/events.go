package handler

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/eventease/portal/internal/application/event"
	"github.com/eventease/portal/internal/domain"
)

// EventHandler serves the public, organizer and admin event pages.
type EventHandler struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger, now: time.Now}
}

type eventDetail struct {
	Event        *domain.Event `json:"event"`
	IsRegistered bool          `json:"is_registered"`
}

type eventsWithSummary struct {
	Events  []domain.Event `json:"events"`
	Summary event.Summary  `json:"summary"`
}

type attendeesView struct {
	Event         *domain.Event         `json:"event"`
	Registrations []domain.Registration `json:"registrations"`
	Summary       event.AttendeeSummary `json:"summary"`
}

func criteria(r *http.Request) event.Criteria {
	q := r.URL.Query()
	return event.Criteria{Search: q.Get("q"), Status: q.Get("status")}
}

// List is the public event listing, filtered by ?q= and ?status=.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	c := criteria(r)
	renderPage(w, r, h.logger, "events", []domain.Event{}, func(ctx context.Context) ([]domain.Event, error) {
		events, err := t.Events.List(ctx)
		if err != nil {
			return nil, err
		}
		return event.Filter(events, c), nil
	})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	renderPage(w, r, h.logger, "event", eventDetail{}, func(ctx context.Context) (eventDetail, error) {
		ev, err := t.Events.Get(ctx, id)
		if err != nil {
			return eventDetail{}, err
		}
		return detail(t.Session.Current, ev), nil
	})
}

func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ev, err := t.Events.Register(r.Context(), id)
	if err != nil {
		httpError(w, err, "Registration failed")
		return
	}
	writeJSON(w, http.StatusOK, eventDetail{Event: ev, IsRegistered: true})
}

func detail(current func() (*domain.User, bool), ev *domain.Event) eventDetail {
	d := eventDetail{Event: ev}
	if u, ok := current(); ok {
		d.IsRegistered = event.IsRegistered(*ev, u.ID)
	}
	return d
}

// --- organizer ---

func (h *EventHandler) Mine(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	c := criteria(r)
	renderPage(w, r, h.logger, "organizer events", eventsWithSummary{Events: []domain.Event{}},
		func(ctx context.Context) (eventsWithSummary, error) {
			events, err := t.Events.Mine(ctx)
			if err != nil {
				return eventsWithSummary{}, err
			}
			return eventsWithSummary{Events: event.Filter(events, c), Summary: event.Summarize(events, h.now())}, nil
		})
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	var in domain.EventInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ev, err := t.Events.Create(r.Context(), in)
	if err != nil {
		httpError(w, err, "Failed to create event")
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in domain.EventInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ev, err := t.Events.Update(r.Context(), id, in)
	if err != nil {
		httpError(w, err, "Failed to update event")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := t.Events.Delete(r.Context(), id); err != nil {
		httpError(w, err, "Failed to delete event")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "event deleted"})
}

// Attendees renders the filtered registrations; the summary covers all of them.
func (h *EventHandler) Attendees(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c := criteria(r)
	renderPage(w, r, h.logger, "attendees", attendeesView{Registrations: []domain.Registration{}},
		func(ctx context.Context) (attendeesView, error) {
			ev, regs, err := t.Events.Attendees(ctx, id)
			if err != nil {
				return attendeesView{}, err
			}
			return attendeesView{
				Event:         ev,
				Registrations: event.FilterAttendees(regs, c),
				Summary:       event.SummarizeAttendees(regs),
			}, nil
		})
}

// AttendeesCSV exports the filtered registrations.
func (h *EventHandler) AttendeesCSV(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ev, regs, err := t.Events.Attendees(r.Context(), id)
	if err != nil {
		httpError(w, err, "Export failed")
		return
	}
	var buf bytes.Buffer
	if err := event.WriteAttendeesCSV(&buf, event.FilterAttendees(regs, criteria(r))); err != nil {
		h.logger.Error("write attendees csv failed", slog.Int64("event_id", id), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Export failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": event.CSVFilename(ev)}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *EventHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Attended *bool `json:"attended"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Attended == nil {
		writeError(w, http.StatusBadRequest, "attended required")
		return
	}
	if err := t.Events.MarkAttendance(r.Context(), id, *req.Attended); err != nil {
		httpError(w, err, "Failed to update attendance")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "attendance updated"})
}

// --- admin ---

func (h *EventHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	c := criteria(r)
	renderPage(w, r, h.logger, "admin events", eventsWithSummary{Events: []domain.Event{}},
		func(ctx context.Context) (eventsWithSummary, error) {
			events, err := t.Events.List(ctx)
			if err != nil {
				return eventsWithSummary{}, err
			}
			return eventsWithSummary{Events: event.Filter(events, c), Summary: event.Summarize(events, h.now())}, nil
		})
}

func (h *EventHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := t.Events.Remove(r.Context(), id); err != nil {
		httpError(w, err, "Failed to delete event")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "event deleted"})
}

// AdminSetStatus sets the given status, or toggles active/cancelled when
// the body names none.
func (h *EventHandler) AdminSetStatus(w http.ResponseWriter, r *http.Request) {
	t, ok := currentTab(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	next := req.Status
	var err error
	if next == "" {
		var ev *domain.Event
		if ev, err = t.Events.Get(r.Context(), id); err == nil {
			next, err = t.Events.ToggleStatus(r.Context(), *ev)
		}
	} else {
		err = t.Events.SetStatus(r.Context(), id, next)
	}
	if err != nil {
		httpError(w, err, "Failed to update event status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": next})
}
