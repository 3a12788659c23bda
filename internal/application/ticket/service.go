package ticket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eventease/portal/internal/domain"
)

type Service interface {
	Mine(ctx context.Context) ([]domain.Ticket, error)
}

type ticketAPI interface {
	MyTickets(ctx context.Context) ([]domain.Ticket, error)
}

// CodeResolver turns a stored code image reference into a URL a browser
// can load.
type CodeResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

type passThrough struct{}

func (passThrough) Resolve(_ context.Context, ref string) (string, error) { return ref, nil }

type service struct {
	api      ticketAPI
	resolver CodeResolver
	logger   *slog.Logger
}

// NewService builds the ticket service. A nil resolver leaves references as served.
func NewService(api ticketAPI, resolver CodeResolver, logger *slog.Logger) Service {
	if resolver == nil {
		resolver = passThrough{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{api: api, resolver: resolver, logger: logger}
}

// Mine returns the principal's tickets with resolved code image URLs. A
// reference that fails to resolve is blanked so the page shows a placeholder.
func (s *service) Mine(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.api.MyTickets(ctx)
	if err != nil {
		s.logger.Error("fetch tickets failed", slog.Any("error", err))
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	for i := range tickets {
		ref := tickets[i].QRCodeURL
		if ref == "" {
			continue
		}
		url, err := s.resolver.Resolve(ctx, ref)
		if err != nil {
			s.logger.Warn("resolve ticket code failed", slog.Int64("ticket_id", tickets[i].ID), slog.Any("error", err))
			url = ""
		}
		tickets[i].QRCodeURL = url
	}
	return tickets, nil
}
