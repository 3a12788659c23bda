// Package session holds the authenticated principal for one tab.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eventease/portal/internal/domain"
	"github.com/eventease/portal/internal/pkg/validate"
)

// Authenticator is the slice of the remote API the store needs.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthToken, error)
	Principal(ctx context.Context, token string) (*domain.User, error)
}

// TokenInspector reports a token's expiry. ok is false when the token
// carries none, in which case only a 401 ends the session.
type TokenInspector interface {
	Expiry(token string) (exp time.Time, ok bool)
}

// State is what subscribers observe after every transition.
type State struct {
	Principal     *domain.User
	Authenticated bool
}

var errEmptyToken = errors.New("login response carried no access token")

// ErrTokenExpired is returned when the server hands out a token that is
// already past its expiry.
var ErrTokenExpired = errors.New("token expired")

// Store is the session container: {anonymous, authenticated}.
type Store struct {
	auth      Authenticator
	inspector TokenInspector
	skew      time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu        sync.RWMutex
	principal *domain.User
	token     string
	expiresAt time.Time // zero when the token has no exp claim

	lmu       sync.Mutex
	listeners map[int]func(State)
	nextID    int
}

type Option func(*Store)

func WithTokenInspector(i TokenInspector) Option {
	return func(s *Store) { s.inspector = i }
}

// WithExpirySkew ends sessions this long before the token's exp claim.
func WithExpirySkew(d time.Duration) Option {
	return func(s *Store) { s.skew = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(auth Authenticator, opts ...Option) *Store {
	s := &Store{
		auth:      auth,
		now:       time.Now,
		logger:    slog.Default(),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate logs in with creds. On failure the state is left as it was.
func (s *Store) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if err := validate.Struct(creds); err != nil {
		return nil, err
	}
	tok, err := s.auth.Login(ctx, creds)
	if err != nil {
		s.logger.Warn("login failed", slog.String("email", creds.Email), slog.Any("error", err))
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("authenticate: %w", errEmptyToken)
	}

	user := tok.User
	if user == nil {
		user, err = s.auth.Principal(ctx, tok.AccessToken)
		if err != nil {
			s.logger.Warn("resolve principal failed", slog.Any("error", err))
			return nil, fmt.Errorf("resolve principal: %w", err)
		}
	}
	if _, err := domain.ParseRole(string(user.Role)); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	var exp time.Time
	if s.inspector != nil {
		if e, ok := s.inspector.Expiry(tok.AccessToken); ok {
			exp = e
			if s.expired(exp) {
				return nil, fmt.Errorf("authenticate: %w", ErrTokenExpired)
			}
		}
	}

	s.mu.Lock()
	s.principal = clone(user)
	s.token = tok.AccessToken
	s.expiresAt = exp
	st := s.stateLocked()
	s.mu.Unlock()

	s.logger.Info("session authenticated", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	s.notify(st)
	return clone(user), nil
}

// Logout clears the principal and token. It always succeeds.
func (s *Store) Logout() {
	if s.clear("") {
		s.logger.Info("session logged out")
	}
}

// Current returns a copy of the principal, or false when anonymous.
func (s *Store) Current() (*domain.User, bool) {
	s.expireIfDue()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil, false
	}
	return clone(s.principal), true
}

// HasRole reports whether the principal holds one of roles.
func (s *Store) HasRole(roles ...domain.Role) bool {
	u, ok := s.Current()
	return ok && u.Role.In(roles...)
}

// Token returns the bearer token, empty when anonymous.
func (s *Store) Token() string {
	s.expireIfDue()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// BearerToken lets the API client authenticate requests for this session.
func (s *Store) BearerToken() string { return s.Token() }

// Unauthorized ends the session when the API rejects the current token.
// A rejection of a token that was already replaced is ignored.
func (s *Store) Unauthorized(token string) {
	if s.clear(token) {
		s.logger.Info("session ended by api rejection")
	}
}

// Subscribe registers fn for state changes and returns its cancel func.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()
	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) expireIfDue() {
	s.mu.RLock()
	exp, token := s.expiresAt, s.token
	s.mu.RUnlock()
	if token == "" || exp.IsZero() || !s.expired(exp) {
		return
	}
	if s.clear(token) {
		s.logger.Info("session token expired")
	}
}

func (s *Store) expired(exp time.Time) bool {
	return !s.now().Before(exp.Add(-s.skew))
}

// clear resets the store. When token is non-empty only that token is
// cleared. It reports whether a session was actually ended.
func (s *Store) clear(token string) bool {
	s.mu.Lock()
	if s.principal == nil && s.token == "" {
		s.mu.Unlock()
		return false
	}
	if token != "" && token != s.token {
		s.mu.Unlock()
		return false
	}
	s.principal = nil
	s.token = ""
	s.expiresAt = time.Time{}
	st := s.stateLocked()
	s.mu.Unlock()

	s.notify(st)
	return true
}

func (s *Store) stateLocked() State {
	return State{Principal: clone(s.principal), Authenticated: s.principal != nil}
}

func (s *Store) notify(st State) {
	s.lmu.Lock()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

func clone(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.CreatedAt != nil {
		ts := *u.CreatedAt
		cp.CreatedAt = &ts
	}
	return &cp
}
