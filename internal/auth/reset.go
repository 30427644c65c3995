// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"time"
)

// PasswordResetToken is a pending password recovery request.
// It carries no expiry; a token stays valid until consumed.
type PasswordResetToken struct {
	ID           int64
	HashedSecret string
	Username     string
	CreatedAt    time.Time
}

// PasswordResetTokenRepository manages password reset persistence.
type PasswordResetTokenRepository interface {
	// Create stores a reset token for username.
	Create(ctx context.Context, username, hashedSecret string) (*PasswordResetToken, error)

	// FetchByHash retrieves a reset token by digest.
	FetchByHash(ctx context.Context, hashedSecret string) (*PasswordResetToken, error)

	// DeleteByHash removes a single reset token.
	DeleteByHash(ctx context.Context, hashedSecret string) error

	// DeleteAllByUsername removes every reset token issued to username and
	// returns the removed tokens.
	DeleteAllByUsername(ctx context.Context, username string) ([]PasswordResetToken, error)
}
