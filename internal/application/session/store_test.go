package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventease/portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthToken, error) {
	args := m.Called(ctx, creds)
	if t, _ := args.Get(0).(*domain.AuthToken); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuth) Principal(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type detailErr struct{ detail string }

func (e detailErr) Error() string        { return "api: " + e.detail }
func (e detailErr) ServerDetail() string { return e.detail }

type fixedExpiry map[string]time.Time

func (f fixedExpiry) Expiry(token string) (time.Time, bool) {
	exp, ok := f[token]
	return exp, ok
}

var (
	validCreds = domain.Credentials{Email: "ana@example.com", Password: "secret"}
	ana        = &domain.User{ID: 7, Name: "Ana", Email: "ana@example.com", Role: domain.RoleOrganizer}
)

// --- tests ---

func TestAuthenticate_Success(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{AccessToken: "tok", User: ana}, nil)
	s := NewStore(auth)

	_, ok := s.Current()
	require.False(t, ok)

	u, err := s.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOrganizer, u.Role)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, int64(7), cur.ID)
	assert.Equal(t, domain.RoleOrganizer, cur.Role)
	assert.Equal(t, "tok", s.BearerToken())
	assert.True(t, s.HasRole(domain.RoleOrganizer, domain.RoleAdmin))
	assert.False(t, s.HasRole(domain.RoleAdmin))
	auth.AssertExpectations(t)
}

func TestAuthenticate_ResolvesPrincipalWhenMissing(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{AccessToken: "tok"}, nil)
	auth.On("Principal", mock.Anything, "tok").Return(&domain.User{ID: 9, Email: "ana@example.com", Role: domain.RoleAdmin}, nil)
	s := NewStore(auth)

	u, err := s.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	auth.AssertExpectations(t)
}

func TestAuthenticate_InvalidCredentialsLeavesStateUnchanged(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{AccessToken: "tok", User: ana}, nil).Once()
	bad := domain.Credentials{Email: "ana@example.com", Password: "wrong"}
	auth.On("Login", mock.Anything, bad).Return(nil, detailErr{"Incorrect email or password"})
	s := NewStore(auth)

	_, err := s.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)

	_, err = s.Authenticate(context.Background(), bad)
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", domain.UserMessage(err, "Login failed"))

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, ana.ID, cur.ID)
	assert.Equal(t, "tok", s.Token())
}

func TestAuthenticate_AnonymousStaysAnonymousOnFailure(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(nil, errors.New("connection refused"))
	s := NewStore(auth)

	_, err := s.Authenticate(context.Background(), validCreds)
	require.Error(t, err)
	assert.Equal(t, domain.GenericFailure, domain.UserMessage(err, ""))
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.Token())
}

func TestAuthenticate_ValidatesCredentialsFirst(t *testing.T) {
	auth := new(mockAuth)
	s := NewStore(auth)

	_, err := s.Authenticate(context.Background(), domain.Credentials{Email: "not-an-email"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAuthenticate_RejectsUnknownRole(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{
		AccessToken: "tok",
		User:        &domain.User{ID: 1, Role: "superuser"},
	}, nil)
	s := NewStore(auth)

	_, err := s.Authenticate(context.Background(), validCreds)
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestAuthenticate_RejectsEmptyToken(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{User: ana}, nil)
	s := NewStore(auth)

	_, err := s.Authenticate(context.Background(), validCreds)
	require.Error(t, err)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestLogout_AlwaysAnonymous(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{AccessToken: "tok", User: ana}, nil)
	s := NewStore(auth)

	s.Logout()
	_, ok := s.Current()
	assert.False(t, ok)

	_, err := s.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)
	s.Logout()
	s.Logout()
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.BearerToken())
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	auth := new(mockAuth)
	created := domain.NewTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{
		AccessToken: "tok",
		User:        &domain.User{ID: 7, Name: "Ana", Role: domain.RoleAttendee, CreatedAt: &created},
	}, nil)
	s := NewStore(auth)
	_, err := s.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)

	u, _ := s.Current()
	u.Name = "Mallory"
	u.Role = domain.RoleAdmin
	u.CreatedAt.Time = time.Time{}

	again, _ := s.Current()
	assert.Equal(t, "Ana", again.Name)
	assert.Equal(t, domain.RoleAttendee, again.Role)
	assert.Equal(t, 2024, again.CreatedAt.Year())
}

func TestExpiry_ProactiveWithSkew(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{AccessToken: "tok", User: ana}, nil)
	s := NewStore(auth,
		WithTokenInspector(fixedExpiry{"tok": now.Add(time.Minute)}),
		WithExpirySkew(30*time.Second),
		WithClock(clock),
	)

	_, err := s.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)
	_, ok := s.Current()
	require.True(t, ok)

	now = now.Add(29 * time.Second)
	_, ok = s.Current()
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.BearerToken())
}

func TestAuthenticate_RejectsAlreadyExpiredToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{AccessToken: "old", User: ana}, nil)
	s := NewStore(auth,
		WithTokenInspector(fixedExpiry{"old": now.Add(-time.Minute)}),
		WithClock(func() time.Time { return now }),
	)

	_, err := s.Authenticate(context.Background(), validCreds)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestUnauthorized_OnlyClearsMatchingToken(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{AccessToken: "tok", User: ana}, nil)
	s := NewStore(auth)
	_, err := s.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)

	s.Unauthorized("previous")
	_, ok := s.Current()
	assert.True(t, ok)

	s.Unauthorized("tok")
	_, ok = s.Current()
	assert.False(t, ok)
}

func TestSubscribe_ObservesTransitions(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, validCreds).Return(&domain.AuthToken{AccessToken: "tok", User: ana}, nil)
	s := NewStore(auth)

	var seen []bool
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st.Authenticated) })

	_, err := s.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)
	s.Logout()
	s.Logout()
	unsubscribe()
	_, err = s.Authenticate(context.Background(), validCreds)
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false}, seen)
}
