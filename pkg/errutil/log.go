// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// LogError writes err at error level. A classified error contributes its
// error_code and user_feedback; the first oops error in the chain contributes
// its repository code and context. attrs are appended as given.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	if err == nil {
		return
	}
	fields := make([]any, 0, 8+len(attrs))
	fields = append(fields, "error", err.Error())

	var classified *Error
	if errors.As(err, &classified) {
		fields = append(fields,
			"error_code", string(classified.Code),
			"user_feedback", classified.Message,
		)
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil && code != "" {
			fields = append(fields, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			fields = append(fields, "context", ctx)
		}
	}
	logger.Error(msg, append(fields, attrs...)...)
}
