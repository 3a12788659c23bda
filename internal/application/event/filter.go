// Package event wraps the event endpoints with role checks and provides
// the list filters and summaries the event pages render.
package event

import (
	"strings"
	"time"

	"github.com/eventease/portal/internal/domain"
)

const (
	StatusAll        = "all"
	StatusAttended   = "attended"
	StatusRegistered = "registered"
)

// Criteria narrows a list. Empty Search matches everything; Status ""
// or "all" matches any status.
type Criteria struct {
	Search string `json:"q"`
	Status string `json:"status"`
}

func (c Criteria) anyStatus() bool {
	return c.Status == "" || c.Status == StatusAll
}

// Filter keeps events whose title or description contains the search term,
// ignoring case, and whose status matches.
func Filter(events []domain.Event, c Criteria) []domain.Event {
	term := strings.ToLower(c.Search)
	out := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if !matchesEvent(ev, term) {
			continue
		}
		if !c.anyStatus() && ev.StatusOrDefault() != c.Status {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func matchesEvent(ev domain.Event, term string) bool {
	if term == "" || strings.Contains(strings.ToLower(ev.Title), term) {
		return true
	}
	return ev.Description != nil && strings.Contains(strings.ToLower(*ev.Description), term)
}

type Summary struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Upcoming  int `json:"upcoming"`
}

// Summarize counts events by status. Completed and upcoming are decided
// by date alone.
func Summarize(events []domain.Event, now time.Time) Summary {
	s := Summary{Total: len(events)}
	for _, ev := range events {
		switch ev.StatusOrDefault() {
		case domain.EventStatusActive:
			s.Active++
		case domain.EventStatusCancelled:
			s.Cancelled++
		}
		if ev.Date.IsZero() {
			continue
		}
		if ev.Date.Before(now) {
			s.Completed++
		} else if ev.Date.After(now) {
			s.Upcoming++
		}
	}
	return s
}

// IsRegistered reports whether userID appears among the event's
// attendees or registrations.
func IsRegistered(ev domain.Event, userID int64) bool {
	for _, a := range ev.Attendees {
		if a.ID == userID {
			return true
		}
	}
	for _, r := range ev.Registrations {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// FilterAttendees matches the search term against the attendee's name, or
// the email when no name is set. Status is "all", "attended", "registered"
// (not yet attended) or an exact registration status.
func FilterAttendees(regs []domain.Registration, c Criteria) []domain.Registration {
	term := strings.ToLower(c.Search)
	out := make([]domain.Registration, 0, len(regs))
	for _, r := range regs {
		label := r.User.Name
		if label == "" {
			label = r.User.Email
		}
		if !strings.Contains(strings.ToLower(label), term) {
			continue
		}
		if !matchesAttendeeStatus(r, c) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesAttendeeStatus(r domain.Registration, c Criteria) bool {
	switch {
	case c.anyStatus():
		return true
	case c.Status == StatusAttended && r.Attended:
		return true
	case c.Status == StatusRegistered && !r.Attended:
		return true
	}
	return c.Status == r.Status
}

type AttendeeSummary struct {
	Total     int `json:"total"`
	Attended  int `json:"attended"`
	Confirmed int `json:"confirmed"`
	Pending   int `json:"pending"`
}

func SummarizeAttendees(regs []domain.Registration) AttendeeSummary {
	s := AttendeeSummary{Total: len(regs)}
	for _, r := range regs {
		if r.Attended {
			s.Attended++
		}
		switch r.Status {
		case domain.RegistrationStatusConfirmed:
			s.Confirmed++
		case domain.RegistrationStatusPending:
			s.Pending++
		}
	}
	return s
}

// TotalAttendees sums the attendee lists of events.
func TotalAttendees(events []domain.Event) int {
	n := 0
	for _, ev := range events {
		n += len(ev.Attendees)
	}
	return n
}
