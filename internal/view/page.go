// Package view implements the fetch-then-render lifecycle shared by every
// page: loading, then ready with data or failed with the default value.
package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/eventease/portal/internal/domain"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Snapshot is the renderable state of a page.
type Snapshot[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`
}

// Page holds one page's state. A failed load leaves the fallback in
// place. Completions that arrive after Close or after the load's context
// is cancelled are dropped.
type Page[T any] struct {
	name   string
	logger *slog.Logger

	mu       sync.Mutex
	status   Status
	data     T
	message  string
	closed   bool
	fallback T
}

func NewPage[T any](name string, fallback T, logger *slog.Logger) *Page[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Page[T]{name: name, logger: logger, status: StatusLoading, data: fallback, fallback: fallback}
}

// Load runs fetch once and returns the resulting snapshot. There is no retry.
func (p *Page[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) Snapshot[T] {
	data, err := fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || ctx.Err() != nil {
		p.logger.Debug("discarding load for closed page", slog.String("page", p.name))
		return p.snapshotLocked()
	}
	if err != nil {
		p.logger.Error("page load failed", slog.String("page", p.name), slog.Any("error", err))
		p.status = StatusFailed
		p.data = p.fallback
		p.message = domain.UserMessage(err, "")
		return p.snapshotLocked()
	}
	p.status = StatusReady
	p.data = data
	p.message = ""
	return p.snapshotLocked()
}

// Snapshot returns the current state.
func (p *Page[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Close marks the page as gone. Later completions are discarded.
func (p *Page[T]) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *Page[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{Status: p.status, Data: p.data, Error: p.message}
}
