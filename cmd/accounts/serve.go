// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/httpapi"
	"github.com/holomush/accounts/internal/observability"
	"github.com/holomush/accounts/internal/store"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the accounts HTTP API",
		Long: `Start the public and internal account HTTP API together with the
metrics and health probe listener.`,
		RunE: runServe,
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err //nolint:wrapcheck // validation errors carry their own codes
	}
	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger)
}

// readiness reports ready once both the database and Redis answer.
func readiness(pool interface{ Ping(context.Context) error }, rdb *redis.Client) observability.ReadinessChecker {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return oops.With("dependency", "postgres").Wrap(err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return oops.With("dependency", "redis").Wrap(err)
		}
		return nil
	}
}

// serve runs the HTTP API until ctx is cancelled or a listener fails.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := store.Connect(ctx, cfg.Database.URL, store.ConnectOptions{
		MaxConns:     cfg.Database.MaxConns,
		PingAttempts: cfg.Database.PingAttempts,
		Logger:       logger,
	})
	if err != nil {
		return err //nolint:wrapcheck // store errors carry their own codes
	}
	defer pool.Close()

	rdb := newRedisClient(cfg.Redis)
	defer func() {
		if closeErr := rdb.Close(); closeErr != nil {
			logger.Warn("failed to close redis client", "error", closeErr)
		}
	}()

	svc, err := newServices(ctx, cfg, pool, rdb, logger)
	if err != nil {
		return err
	}

	obsServer := observability.NewServer(cfg.Metrics.Addr, readiness(pool, rdb), logger,
		auth.RegisterMetrics,
		account.RegisterMetrics,
	)

	api, err := httpapi.NewServer(httpapi.Deps{
		Auth:      svc.auth,
		Resets:    svc.resets,
		Profiles:  svc.profiles,
		Deletions: svc.deletions,
		Captcha:   svc.captcha,
		Cookie: httpapi.CookieConfig{
			Domain: cfg.Cookie.Domain,
			Secure: cfg.Cookie.Secure,
			TTL:    cfg.Cookie.TTL,
		},
		Logger:     logger,
		Middleware: []func(http.Handler) http.Handler{obsServer.Metrics().Middleware},
	})
	if err != nil {
		return oops.With("component", "http api").Wrap(err)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if cfg.Metrics.Addr != "" {
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	apiErrCh := make(chan error, 1)
	go func() {
		defer close(apiErrCh)
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			apiErrCh <- serveErr
		}
	}()
	go monitorServerErrors(ctx, cancel, apiErrCh, "http-api", logger)

	logger.Info("accounts service ready",
		"addr", cfg.Server.Addr,
		"metrics_addr", cfg.Metrics.Addr,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		shutdownErr = oops.With("operation", "shutdown_http_api").Wrap(err)
	}
	if err := obsServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}

	logger.Info("shutdown complete")
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return shutdownErr
}

// monitorServerErrors cancels ctx with the failure when a server reports one.
// It exits when the channel closes or ctx is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelCauseFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel(oops.Code("SERVER_FAILED").With("server", serverName).Wrap(err))
		}
	case <-ctx.Done():
	}
}
