package eventapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eventease/portal/internal/domain"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthToken, error) {
	var out domain.AuthToken
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the principal behind the bound credentials.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Principal resolves the user behind token regardless of bound credentials.
func (c *Client) Principal(ctx context.Context, token string) (*domain.User, error) {
	return c.As(StaticToken(token)).Me(ctx)
}

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", req, nil)
}

func (c *Client) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	return out, c.do(ctx, http.MethodGet, "/events", nil, &out)
}

func (c *Client) MyEvents(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	return out, c.do(ctx, http.MethodGet, "/events/my", nil, &out)
}

func (c *Client) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	var out domain.Event
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	var out domain.Event
	if err := c.do(ctx, http.MethodPost, "/events", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id int64, in domain.EventInput) (*domain.Event, error) {
	var out domain.Event
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/events/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, nil)
}

func (c *Client) RegisterForEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/events/%d/register", id), nil, nil)
}

func (c *Client) Attendees(ctx context.Context, eventID int64) ([]domain.Registration, error) {
	var out []domain.Registration
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d/attendees", eventID), nil, &out)
}

func (c *Client) MarkAttendance(ctx context.Context, registrationID int64, attended bool) error {
	body := map[string]bool{"attended": attended}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/registrations/%d/attendance", registrationID), body, nil)
}

func (c *Client) MyTickets(ctx context.Context) ([]domain.Ticket, error) {
	var out []domain.Ticket
	return out, c.do(ctx, http.MethodGet, "/auth/me/tickets", nil, &out)
}

func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	var out []domain.Notification
	return out, c.do(ctx, http.MethodGet, "/interactions/notifications", nil, &out)
}

// SetNotificationRead persists a read flag; used only when sync is enabled.
func (c *Client) SetNotificationRead(ctx context.Context, id int64, read bool) error {
	body := map[string]bool{"is_read": read}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/interactions/notifications/%d", id), body, nil)
}

func (c *Client) AdminUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	return out, c.do(ctx, http.MethodGet, "/admin/users", nil, &out)
}

func (c *Client) AdminDeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/events/%d", id), nil, nil)
}

func (c *Client) AdminSetEventStatus(ctx context.Context, id int64, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/admin/events/%d/status", id), body, nil)
}
