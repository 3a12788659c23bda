// Package tab gives every browser tab its own session and notification
// stores and an API client bound to that session.
package tab

import (
	"log/slog"
	"sync"
	"time"

	"github.com/eventease/portal/internal/application/account"
	"github.com/eventease/portal/internal/application/dashboard"
	"github.com/eventease/portal/internal/application/event"
	"github.com/eventease/portal/internal/application/notification"
	"github.com/eventease/portal/internal/application/session"
	"github.com/eventease/portal/internal/application/ticket"
	"github.com/eventease/portal/internal/infrastructure/eventapi"
)

// Tab is the per-browser-tab state bundle. It lives from sign-in until
// logout or idle expiry.
type Tab struct {
	ID string

	Session       *session.Store
	Notifications *notification.Service
	Events        event.Service
	Dashboards    dashboard.Service
	Tickets       ticket.Service
	Accounts      account.Service

	unsubscribe func()
	shared      bool

	mu       sync.Mutex
	lastSeen time.Time
}

func newTab(id string, base *eventapi.Client, o *options, now time.Time) *Tab {
	logger := o.logger.With(slog.String("tab_id", id))

	sess := session.NewStore(base,
		session.WithTokenInspector(o.inspector),
		session.WithExpirySkew(o.skew),
		session.WithClock(o.now),
		session.WithLogger(logger),
	)
	api := base.As(sess)

	notifOpts := []notification.Option{notification.WithLogger(logger)}
	if o.notificationSync {
		notifOpts = append(notifOpts, notification.WithSync(api))
	}
	notifs := notification.NewService(notification.NewStore(), api, notifOpts...)

	t := &Tab{
		ID:            id,
		Session:       sess,
		Notifications: notifs,
		Events:        event.NewService(api, sess, logger),
		Dashboards:    dashboard.NewService(api, sess, logger),
		Tickets:       ticket.NewService(api, o.resolver, logger),
		Accounts:      account.NewService(base, logger),
		lastSeen:      now,
	}
	// Notifications belong to the principal; drop them when the session ends.
	t.unsubscribe = sess.Subscribe(func(st session.State) {
		if !st.Authenticated {
			notifs.Store().Clear()
		}
	})
	return t
}

// Shared reports whether t is the registry's anonymous tab.
func (t *Tab) Shared() bool { return t.shared }

func (t *Tab) touch(now time.Time) {
	t.mu.Lock()
	t.lastSeen = now
	t.mu.Unlock()
}

func (t *Tab) idleSince() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSeen
}

// close tears the tab down: session out, notifications cleared.
func (t *Tab) close() {
	t.Session.Logout()
	t.Notifications.Store().Clear()
	t.unsubscribe()
}
