// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectOptions tunes pool creation.
type ConnectOptions struct {
	MaxConns     int32
	PingAttempts uint64
	PingBackoff  time.Duration
	Logger       *slog.Logger
}

// Connect opens a connection pool and waits for the database to answer a
// ping, backing off exponentially between attempts.
func Connect(ctx context.Context, databaseURL string, opts ConnectOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrap(err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	if err := ping(ctx, pool, opts); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func ping(ctx context.Context, p pinger, opts ConnectOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := opts.PingAttempts
	if attempts == 0 {
		attempts = 1
	}
	base := opts.PingBackoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var attempt uint64
	backoff := retry.WithMaxRetries(attempts-1, retry.WithCappedDuration(10*time.Second, retry.NewExponential(base)))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := p.Ping(ctx); err != nil {
			logger.Warn("database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_PING_FAILED").With("attempts", attempt).Wrap(err)
	}
	return nil
}
