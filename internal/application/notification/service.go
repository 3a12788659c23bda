package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eventease/portal/internal/domain"
)

// Fetcher loads the principal's notifications from the remote API.
type Fetcher interface {
	Notifications(ctx context.Context) ([]domain.Notification, error)
}

// Syncer persists a read flag on the server.
type Syncer interface {
	SetNotificationRead(ctx context.Context, id int64, read bool) error
}

// Service keeps a Store in step with the remote API. Read flags are
// flipped locally first; with a Syncer configured the flip is then sent
// to the server and rolled back if that fails.
type Service struct {
	store  *Store
	fetch  Fetcher
	sync   Syncer
	logger *slog.Logger
}

type Option func(*Service)

// WithSync enables server persistence of read flags.
func WithSync(s Syncer) Option {
	return func(svc *Service) { svc.sync = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

func NewService(store *Store, fetch Fetcher, opts ...Option) *Service {
	svc := &Service{store: store, fetch: fetch, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) Store() *Store { return s.store }

// Refresh replaces the cached list with the server's.
func (s *Service) Refresh(ctx context.Context) error {
	list, err := s.fetch.Notifications(ctx)
	if err != nil {
		s.logger.Error("fetch notifications failed", slog.Any("error", err))
		return fmt.Errorf("refresh notifications: %w", err)
	}
	s.store.Load(list)
	return nil
}

func (s *Service) MarkRead(ctx context.Context, id int64) error {
	return s.setRead(ctx, id, true)
}

func (s *Service) MarkUnread(ctx context.Context, id int64) error {
	return s.setRead(ctx, id, false)
}

func (s *Service) setRead(ctx context.Context, id int64, read bool) error {
	prev, gen, found := s.store.setRead(id, read)
	if !found {
		return fmt.Errorf("notification %d: %w", id, domain.ErrNotFound)
	}
	if s.sync == nil || prev == read {
		return nil
	}
	if err := s.sync.SetNotificationRead(ctx, id, read); err != nil {
		if !s.store.revert(id, prev, gen) {
			s.logger.Debug("notifications reloaded during sync; keeping server state", slog.Int64("notification_id", id))
		}
		s.logger.Warn("sync notification flag failed",
			slog.Int64("notification_id", id), slog.Bool("is_read", read), slog.Any("error", err))
		return fmt.Errorf("sync notification %d: %w", id, err)
	}
	return nil
}
