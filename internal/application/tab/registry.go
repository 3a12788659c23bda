package tab

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eventease/portal/internal/application/session"
	"github.com/eventease/portal/internal/application/ticket"
	"github.com/eventease/portal/internal/infrastructure/eventapi"
	"github.com/google/uuid"
)

const (
	defaultIdleTTL = 30 * time.Minute
	anonymousID    = "anonymous"
)

type options struct {
	idleTTL          time.Duration
	skew             time.Duration
	inspector        session.TokenInspector
	resolver         ticket.CodeResolver
	notificationSync bool
	now              func() time.Time
	logger           *slog.Logger
}

type Option func(*options)

// WithIdleTTL sets how long an untouched tab survives.
func WithIdleTTL(d time.Duration) Option {
	return func(o *options) { o.idleTTL = d }
}

func WithTokenInspector(i session.TokenInspector) Option {
	return func(o *options) { o.inspector = i }
}

func WithExpirySkew(d time.Duration) Option {
	return func(o *options) { o.skew = d }
}

func WithCodeResolver(r ticket.CodeResolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithNotificationSync sends read-flag changes to the server.
func WithNotificationSync(enabled bool) Option {
	return func(o *options) { o.notificationSync = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Registry owns all live tabs.
type Registry struct {
	base *eventapi.Client
	opts options

	anonymous *Tab

	mu   sync.RWMutex
	tabs map[string]*Tab
}

func NewRegistry(base *eventapi.Client, opts ...Option) *Registry {
	o := options{idleTTL: defaultIdleTTL, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	r := &Registry{base: base, opts: o, tabs: make(map[string]*Tab)}
	r.anonymous = newTab(anonymousID, base, &r.opts, o.now())
	r.anonymous.shared = true
	return r
}

// Anonymous returns the shared tab serving callers without a tab cookie.
// It is never registered, swept or destroyed, and must not be signed in.
func (r *Registry) Anonymous() *Tab { return r.anonymous }

// Create starts a new tab with a fresh ID.
func (r *Registry) Create() *Tab {
	id := uuid.NewString()
	t := newTab(id, r.base, &r.opts, r.opts.now())
	r.mu.Lock()
	r.tabs[id] = t
	r.mu.Unlock()
	r.opts.logger.Debug("tab created", slog.String("tab_id", id))
	return t
}

// Get returns the tab for id and marks it as seen.
func (r *Registry) Get(id string) (*Tab, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	r.mu.RLock()
	t, ok := r.tabs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	t.touch(r.opts.now())
	return t, true
}

// Destroy closes and forgets the tab. Unknown ids are ignored.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	t, ok := r.tabs[id]
	delete(r.tabs, id)
	r.mu.Unlock()
	if ok {
		t.close()
		r.opts.logger.Debug("tab destroyed", slog.String("tab_id", id))
	}
}

// Sweep destroys tabs idle longer than the TTL and reports how many.
func (r *Registry) Sweep() int {
	cutoff := r.opts.now().Add(-r.opts.idleTTL)
	var stale []*Tab
	r.mu.Lock()
	for id, t := range r.tabs {
		if t.idleSince().Before(cutoff) {
			stale = append(stale, t)
			delete(r.tabs, id)
		}
	}
	r.mu.Unlock()
	for _, t := range stale {
		t.close()
	}
	if len(stale) > 0 {
		r.opts.logger.Info("swept idle tabs", slog.Int("count", len(stale)))
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tabs)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
