package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/eventease/portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct{ mock.Mock }

func (m *mockAPI) ListEvents(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	evs, _ := args.Get(0).([]domain.Event)
	return evs, args.Error(1)
}
func (m *mockAPI) MyEvents(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	evs, _ := args.Get(0).([]domain.Event)
	return evs, args.Error(1)
}
func (m *mockAPI) AdminUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

type fixedPrincipal struct{ u *domain.User }

func (f fixedPrincipal) Current() (*domain.User, bool) { return f.u, f.u != nil }
func (f fixedPrincipal) HasRole(roles ...domain.Role) bool {
	return f.u != nil && f.u.Role.In(roles...)
}

func TestAdmin_EventsSucceedUsersFail(t *testing.T) {
	api := new(mockAPI)
	api.On("ListEvents", mock.Anything).Return([]domain.Event{{ID: 1}, {ID: 2}, {ID: 3}}, nil)
	api.On("AdminUsers", mock.Anything).Return(nil, errors.New("500 internal"))
	svc := NewService(api, fixedPrincipal{&domain.User{ID: 1, Role: domain.RoleAdmin}}, nil)

	view, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.True(t, view.TotalEvents.OK())
	assert.Equal(t, 3, view.TotalEvents.Value)
	assert.False(t, view.TotalUsers.OK())
	assert.Equal(t, 0, view.TotalUsers.Value)
	assert.Zero(t, view.TotalRegistrations)
	assert.Empty(t, view.RecentUsers)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"total_users": {"value": 0, "ok": false, "error": "operation failed"},
		"total_events": {"value": 3, "ok": true},
		"total_registrations": 0,
		"recent_users": [],
		"recent_events": [],
		"user_growth": 0,
		"event_growth": 0
	}`, string(raw))
}

func TestAdmin_RequiresAdmin(t *testing.T) {
	api := new(mockAPI)
	_, err := NewService(api, fixedPrincipal{&domain.User{Role: domain.RoleOrganizer}}, nil).Admin(context.Background())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = NewService(api, fixedPrincipal{}, nil).Admin(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	api.AssertNotCalled(t, "ListEvents", mock.Anything)
}

func TestOrganizer_Summary(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	api := new(mockAPI)
	api.On("MyEvents", mock.Anything).Return([]domain.Event{
		{ID: 1, Date: domain.NewTimestamp(now.Add(48 * time.Hour)), Attendees: []domain.User{{ID: 1}, {ID: 2}}},
		{ID: 2, Date: domain.NewTimestamp(now.Add(-48 * time.Hour)), Attendees: []domain.User{{ID: 3}}},
	}, nil)
	svc := NewService(api, fixedPrincipal{&domain.User{ID: 5, Role: domain.RoleOrganizer}}, nil).(*service)
	svc.now = func() time.Time { return now }

	view, err := svc.Organizer(context.Background())
	require.NoError(t, err)
	assert.True(t, view.Events.OK())
	assert.Equal(t, 2, view.TotalEvents)
	assert.Equal(t, 3, view.TotalAttendees)
	assert.Equal(t, 1, view.Upcoming)
}

func TestOrganizer_SourceFailureGivesDefaults(t *testing.T) {
	api := new(mockAPI)
	api.On("MyEvents", mock.Anything).Return(nil, errors.New("timeout"))
	svc := NewService(api, fixedPrincipal{&domain.User{ID: 5, Role: domain.RoleOrganizer}}, nil)

	view, err := svc.Organizer(context.Background())
	require.NoError(t, err)
	assert.False(t, view.Events.OK())
	assert.Empty(t, view.Events.Value)
	assert.Zero(t, view.TotalEvents)
}
