// Package dashboard assembles the admin and organizer dashboards. Every
// data source is fetched concurrently and reported on its own, so one
// failing source never blanks the others.
package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/eventease/portal/internal/application/event"
	"github.com/eventease/portal/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one data source. On failure Value holds the
// default and Err the cause.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool { return r.Err == nil }

func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := struct {
		Value T      `json:"value"`
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}{Value: r.Value, OK: r.OK()}
	if r.Err != nil {
		out.Error = domain.UserMessage(r.Err, "")
	}
	return json.Marshal(out)
}

type Admin struct {
	TotalUsers         Result[int]    `json:"total_users"`
	TotalEvents        Result[int]    `json:"total_events"`
	TotalRegistrations int            `json:"total_registrations"`
	RecentUsers        []domain.User  `json:"recent_users"`
	RecentEvents       []domain.Event `json:"recent_events"`
	UserGrowth         float64        `json:"user_growth"`
	EventGrowth        float64        `json:"event_growth"`
}

type Organizer struct {
	Events         Result[[]domain.Event] `json:"events"`
	TotalEvents    int                    `json:"total_events"`
	TotalAttendees int                    `json:"total_attendees"`
	Upcoming       int                    `json:"upcoming"`
}

type Service interface {
	Admin(ctx context.Context) (*Admin, error)
	Organizer(ctx context.Context) (*Organizer, error)
}

type dashboardAPI interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	MyEvents(ctx context.Context) ([]domain.Event, error)
	AdminUsers(ctx context.Context) ([]domain.User, error)
}

type principalSource interface {
	HasRole(roles ...domain.Role) bool
	Current() (*domain.User, bool)
}

type service struct {
	api     dashboardAPI
	session principalSource
	now     func() time.Time
	logger  *slog.Logger
}

func NewService(api dashboardAPI, session principalSource, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{api: api, session: session, now: time.Now, logger: logger}
}

// Admin fetches the event and user lists side by side.
func (s *service) Admin(ctx context.Context) (*Admin, error) {
	if err := s.require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	var (
		g      errgroup.Group
		events Result[[]domain.Event]
		users  Result[[]domain.User]
	)
	g.Go(func() error {
		events = fetch(ctx, s.logger, "events", s.api.ListEvents)
		return nil
	})
	g.Go(func() error {
		users = fetch(ctx, s.logger, "admin users", s.api.AdminUsers)
		return nil
	})
	_ = g.Wait()

	return &Admin{
		TotalUsers:   Result[int]{Value: len(users.Value), Err: users.Err},
		TotalEvents:  Result[int]{Value: len(events.Value), Err: events.Err},
		RecentUsers:  []domain.User{},
		RecentEvents: []domain.Event{},
	}, nil
}

// Organizer summarizes the principal's own events.
func (s *service) Organizer(ctx context.Context) (*Organizer, error) {
	if err := s.require(domain.RoleOrganizer, domain.RoleAdmin); err != nil {
		return nil, err
	}
	events := fetch(ctx, s.logger, "own events", s.api.MyEvents)
	sum := event.Summarize(events.Value, s.now())
	return &Organizer{
		Events:         events,
		TotalEvents:    sum.Total,
		TotalAttendees: event.TotalAttendees(events.Value),
		Upcoming:       sum.Upcoming,
	}, nil
}

func (s *service) require(roles ...domain.Role) error {
	if _, ok := s.session.Current(); !ok {
		return domain.ErrUnauthorized
	}
	if !s.session.HasRole(roles...) {
		return domain.ErrForbidden
	}
	return nil
}

// fetch runs one source and converts a failure into an empty Result.
func fetch[T any](ctx context.Context, logger *slog.Logger, source string, get func(context.Context) ([]T, error)) Result[[]T] {
	v, err := get(ctx)
	if err != nil {
		logger.Error("dashboard source failed", slog.String("source", source), slog.Any("error", err))
		return Result[[]T]{Value: []T{}, Err: err}
	}
	if v == nil {
		v = []T{}
	}
	return Result[[]T]{Value: v}
}
