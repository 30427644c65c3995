// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"log/slog"

	"github.com/samber/oops"
)

// Option configures the account services.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for audit and failure logs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		return nil, oops.Code("ACCOUNT_INVALID_CONFIG").Errorf("logger is required")
	}
	return o, nil
}
