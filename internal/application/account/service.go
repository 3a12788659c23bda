package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eventease/portal/internal/domain"
	"github.com/eventease/portal/internal/pkg/validate"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
}

type registrar interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
}

type service struct {
	api    registrar
	logger *slog.Logger
}

func NewService(api registrar, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{api: api, logger: logger}
}

// Register creates an account. A missing role defaults to attendee.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) error {
	if req.Role == "" {
		req.Role = domain.RoleAttendee
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	if err := s.api.Register(ctx, req); err != nil {
		s.logger.Warn("register account failed", slog.String("email", req.Email), slog.Any("error", err))
		return fmt.Errorf("register account: %w", err)
	}
	s.logger.Info("account registered", slog.String("email", req.Email), slog.String("role", string(req.Role)))
	return nil
}
