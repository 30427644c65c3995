// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package outbound holds shared plumbing for calls to third-party HTTP APIs.
package outbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker defaults. The breaker trips once at least MinRequests calls were
// made in an Interval and half or more of them failed.
const (
	DefaultTimeout     = 5 * time.Second
	MinRequests        = 5
	FailureRatio       = 0.5
	BreakerInterval    = 10 * time.Second
	BreakerOpenTimeout = 30 * time.Second
)

// NewBreaker returns a circuit breaker that logs state transitions.
func NewBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: MinRequests,
		Interval:    BreakerInterval,
		Timeout:     BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})
}

// Call runs fn through cb with a per-call deadline.
func Call[T any](ctx context.Context, cb *gobreaker.CircuitBreaker, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var zero T
	res, err := cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err //nolint:wrapcheck // callers wrap with their own codes
	}
	v, _ := res.(T)
	return v, nil
}
