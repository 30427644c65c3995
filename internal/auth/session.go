// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"time"
)

// TokenKind distinguishes the purpose of a stored token.
type TokenKind string

// Token kinds persisted with each record.
const (
	TokenKindAccess        TokenKind = "Access Token"
	TokenKindPasswordReset TokenKind = "Password Reset Token"
)

// SessionToken is the stored form of an issued bearer secret.
// Privileges is the scope recorded with the token; first-party tokens store
// zero and inherit the account's privileges.
type SessionToken struct {
	HashedSecret string
	AccountID    int64
	Privileges   Privileges
	Kind         TokenKind
	Private      bool
	LastUpdated  time.Time
}

// TokenRepository manages session token persistence.
type TokenRepository interface {
	// Create stores a token record for the digest and returns it.
	Create(ctx context.Context, accountID int64, hashedSecret string, kind TokenKind) (*SessionToken, error)

	// FetchByHash retrieves a token by digest and kind.
	FetchByHash(ctx context.Context, hashedSecret string, kind TokenKind) (*SessionToken, error)

	// DeleteByHash removes a token. Deleting an absent token is not an error.
	DeleteByHash(ctx context.Context, hashedSecret string, kind TokenKind) error
}
