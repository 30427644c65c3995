// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/store"
)

// TokenRepository implements auth.TokenRepository using PostgreSQL.
type TokenRepository struct {
	db store.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db store.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores a private token record with inherited (zero) privileges.
func (r *TokenRepository) Create(ctx context.Context, accountID int64, hashedSecret string, kind auth.TokenKind) (*auth.SessionToken, error) {
	token := &auth.SessionToken{
		HashedSecret: hashedSecret,
		AccountID:    accountID,
		Kind:         kind,
		Private:      true,
	}
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO tokens (account_id, privileges, kind, token, private, last_updated)
		VALUES ($1, 0, $2, $3, TRUE, now())
		RETURNING last_updated
	`, accountID, string(kind), hashedSecret).Scan(&token.LastUpdated)
	if err != nil {
		return nil, oops.Code("TOKEN_CREATE_FAILED").
			With("account_id", accountID).
			With("kind", string(kind)).
			Wrap(err)
	}
	return token, nil
}

// FetchByHash retrieves a token by digest and kind.
func (r *TokenRepository) FetchByHash(ctx context.Context, hashedSecret string, kind auth.TokenKind) (*auth.SessionToken, error) {
	var (
		token      auth.SessionToken
		privileges int64
		storedKind string
	)
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT account_id, privileges, kind, token, private, last_updated
		FROM tokens
		WHERE token = $1 AND kind = $2
	`, hashedSecret, string(kind)).Scan(
		&token.AccountID, &privileges, &storedKind, &token.HashedSecret, &token.Private, &token.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").With("kind", string(kind)).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_FETCH_FAILED").With("kind", string(kind)).Wrap(err)
	}
	token.Privileges = auth.Privileges(privileges) //nolint:gosec // column holds a uint32 bitmask
	token.Kind = auth.TokenKind(storedKind)
	return &token, nil
}

// DeleteByHash removes a token. Absent tokens are ignored.
func (r *TokenRepository) DeleteByHash(ctx context.Context, hashedSecret string, kind auth.TokenKind) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		DELETE FROM tokens WHERE token = $1 AND kind = $2
	`, hashedSecret, string(kind))
	if err != nil {
		return oops.Code("TOKEN_DELETE_FAILED").With("kind", string(kind)).Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.TokenRepository = (*TokenRepository)(nil)
