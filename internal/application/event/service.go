package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eventease/portal/internal/domain"
	"github.com/eventease/portal/internal/pkg/validate"
)

type Service interface {
	List(ctx context.Context) ([]domain.Event, error)
	Mine(ctx context.Context) ([]domain.Event, error)
	Get(ctx context.Context, id int64) (*domain.Event, error)
	Create(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	Update(ctx context.Context, id int64, in domain.EventInput) (*domain.Event, error)
	Delete(ctx context.Context, id int64) error
	Register(ctx context.Context, id int64) (*domain.Event, error)
	Attendees(ctx context.Context, eventID int64) (*domain.Event, []domain.Registration, error)
	MarkAttendance(ctx context.Context, registrationID int64, attended bool) error
	Remove(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status string) error
	ToggleStatus(ctx context.Context, ev domain.Event) (string, error)
}

type eventAPI interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	MyEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, id int64, in domain.EventInput) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	RegisterForEvent(ctx context.Context, id int64) error
	Attendees(ctx context.Context, eventID int64) ([]domain.Registration, error)
	MarkAttendance(ctx context.Context, registrationID int64, attended bool) error
	AdminDeleteEvent(ctx context.Context, id int64) error
	AdminSetEventStatus(ctx context.Context, id int64, status string) error
}

type principalSource interface {
	Current() (*domain.User, bool)
}

type service struct {
	api     eventAPI
	session principalSource
	logger  *slog.Logger
}

func NewService(api eventAPI, session principalSource, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{api: api, session: session, logger: logger}
}

func (s *service) List(ctx context.Context) ([]domain.Event, error) {
	events, err := s.api.ListEvents(ctx)
	if err != nil {
		s.logger.Error("fetch events failed", slog.Any("error", err))
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *service) Mine(ctx context.Context) ([]domain.Event, error) {
	if _, err := s.require(domain.RoleOrganizer, domain.RoleAdmin); err != nil {
		return nil, err
	}
	events, err := s.api.MyEvents(ctx)
	if err != nil {
		s.logger.Error("fetch own events failed", slog.Any("error", err))
		return nil, fmt.Errorf("list own events: %w", err)
	}
	return events, nil
}

func (s *service) Get(ctx context.Context, id int64) (*domain.Event, error) {
	ev, err := s.api.GetEvent(ctx, id)
	if err != nil {
		s.logger.Error("fetch event failed", slog.Int64("event_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return ev, nil
}

func (s *service) Create(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	if _, err := s.require(domain.RoleOrganizer, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	ev, err := s.api.CreateEvent(ctx, in)
	if err != nil {
		s.logger.Error("create event failed", slog.Any("error", err))
		return nil, fmt.Errorf("create event: %w", err)
	}
	return ev, nil
}

func (s *service) Update(ctx context.Context, id int64, in domain.EventInput) (*domain.Event, error) {
	if _, err := s.require(domain.RoleOrganizer, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	ev, err := s.api.UpdateEvent(ctx, id, in)
	if err != nil {
		s.logger.Error("update event failed", slog.Int64("event_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}
	return ev, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.require(domain.RoleOrganizer, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.api.DeleteEvent(ctx, id); err != nil {
		s.logger.Error("delete event failed", slog.Int64("event_id", id), slog.Any("error", err))
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	return nil
}

// Register signs the principal up and returns the refreshed event. Once the
// server accepts the registration the call succeeds; if the refresh fails
// the event is nil.
func (s *service) Register(ctx context.Context, id int64) (*domain.Event, error) {
	if _, err := s.require(); err != nil {
		return nil, err
	}
	if err := s.api.RegisterForEvent(ctx, id); err != nil {
		s.logger.Error("register for event failed", slog.Int64("event_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("register for event %d: %w", id, err)
	}
	ev, err := s.Get(ctx, id)
	if err != nil {
		s.logger.Warn("refresh after registration failed", slog.Int64("event_id", id), slog.Any("error", err))
		return nil, nil
	}
	return ev, nil
}

// Attendees returns the event and its registrations. Only the event's
// organizer may see them.
func (s *service) Attendees(ctx context.Context, eventID int64) (*domain.Event, []domain.Registration, error) {
	u, err := s.require(domain.RoleOrganizer, domain.RoleAdmin)
	if err != nil {
		return nil, nil, err
	}
	ev, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if ev.OrganizerID != u.ID {
		return nil, nil, fmt.Errorf("event %d is not organized by user %d: %w", eventID, u.ID, domain.ErrForbidden)
	}
	regs, err := s.api.Attendees(ctx, eventID)
	if err != nil {
		s.logger.Error("fetch attendees failed", slog.Int64("event_id", eventID), slog.Any("error", err))
		return nil, nil, fmt.Errorf("list attendees of event %d: %w", eventID, err)
	}
	return ev, regs, nil
}

func (s *service) MarkAttendance(ctx context.Context, registrationID int64, attended bool) error {
	if _, err := s.require(domain.RoleOrganizer, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.api.MarkAttendance(ctx, registrationID, attended); err != nil {
		s.logger.Error("mark attendance failed", slog.Int64("registration_id", registrationID), slog.Any("error", err))
		return fmt.Errorf("mark attendance %d: %w", registrationID, err)
	}
	return nil
}

// Remove deletes any event through the admin endpoint.
func (s *service) Remove(ctx context.Context, id int64) error {
	if _, err := s.require(domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.api.AdminDeleteEvent(ctx, id); err != nil {
		s.logger.Error("admin delete event failed", slog.Int64("event_id", id), slog.Any("error", err))
		return fmt.Errorf("admin delete event %d: %w", id, err)
	}
	return nil
}

func (s *service) SetStatus(ctx context.Context, id int64, status string) error {
	if _, err := s.require(domain.RoleAdmin); err != nil {
		return err
	}
	if status != domain.EventStatusActive && status != domain.EventStatusCancelled {
		return fmt.Errorf("status %q: %w", status, domain.ErrBadRequest)
	}
	if err := s.api.AdminSetEventStatus(ctx, id, status); err != nil {
		s.logger.Error("set event status failed", slog.Int64("event_id", id), slog.Any("error", err))
		return fmt.Errorf("set status of event %d: %w", id, err)
	}
	return nil
}

// ToggleStatus flips an event between active and cancelled and returns
// the new status.
func (s *service) ToggleStatus(ctx context.Context, ev domain.Event) (string, error) {
	next := domain.EventStatusCancelled
	if ev.StatusOrDefault() == domain.EventStatusCancelled {
		next = domain.EventStatusActive
	}
	if err := s.SetStatus(ctx, ev.ID, next); err != nil {
		return "", err
	}
	return next, nil
}

// require returns the principal when it holds one of roles. No roles
// means any signed-in principal.
func (s *service) require(roles ...domain.Role) (*domain.User, error) {
	u, ok := s.session.Current()
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if len(roles) > 0 && !u.Role.In(roles...) {
		return nil, fmt.Errorf("role %s: %w", u.Role, domain.ErrForbidden)
	}
	return u, nil
}

func validateInput(in domain.EventInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: field 'date' failed 'required'", domain.ErrBadRequest)
	}
	return nil
}
