package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventease/portal/internal/application/tab"
	"github.com/eventease/portal/internal/config"
	"github.com/eventease/portal/internal/infrastructure/eventapi"
	jwtinfra "github.com/eventease/portal/internal/infrastructure/jwt"
	s3infra "github.com/eventease/portal/internal/infrastructure/s3"
	transporthttp "github.com/eventease/portal/internal/transport/http"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

const sweepInterval = time.Minute

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)
	if envErr != nil {
		logger.Info("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := eventapi.NewClient(cfg.APIBaseURL,
		eventapi.WithTimeout(cfg.APITimeout),
		eventapi.WithRateLimit(rate.Limit(cfg.APIRateLimit), cfg.APIRateBurst),
		eventapi.WithLogger(logger),
	)

	opts := []tab.Option{
		tab.WithIdleTTL(cfg.SessionIdleTTL),
		tab.WithExpirySkew(cfg.TokenExpirySkew),
		tab.WithTokenInspector(jwtinfra.NewInspector()),
		tab.WithNotificationSync(cfg.NotificationSync),
		tab.WithLogger(logger),
	}

	// Ticket code presigning; references pass through without it.
	if cfg.TicketQRPresign {
		s3Client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			logger.Warn("ticket code presigning not available", slog.Any("error", err))
		} else {
			opts = append(opts, tab.WithCodeResolver(s3infra.NewCodePresigner(s3Client, cfg.TicketQRURLTTL)))
		}
	}

	registry := tab.NewRegistry(api, opts...)
	go registry.Run(ctx, sweepInterval)

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{Registry: registry, Logger: logger})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", srv.Addr), slog.String("env", cfg.AppEnv), slog.String("api", api.BaseURL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
