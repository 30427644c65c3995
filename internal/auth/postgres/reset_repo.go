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

// PasswordResetTokenRepository implements auth.PasswordResetTokenRepository using PostgreSQL.
type PasswordResetTokenRepository struct {
	db store.DB
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository.
func NewPasswordResetTokenRepository(db store.DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

// Create stores a reset token for username.
func (r *PasswordResetTokenRepository) Create(ctx context.Context, username, hashedSecret string) (*auth.PasswordResetToken, error) {
	token := &auth.PasswordResetToken{HashedSecret: hashedSecret, Username: username}
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO password_recovery (token, username)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, hashedSecret, username).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return nil, oops.Code("RESET_CREATE_FAILED").Wrap(err)
	}
	return token, nil
}

// FetchByHash retrieves a reset token by digest.
func (r *PasswordResetTokenRepository) FetchByHash(ctx context.Context, hashedSecret string) (*auth.PasswordResetToken, error) {
	var token auth.PasswordResetToken
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, token, username, created_at
		FROM password_recovery
		WHERE token = $1
	`, hashedSecret).Scan(&token.ID, &token.HashedSecret, &token.Username, &token.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RESET_FETCH_FAILED").Wrap(err)
	}
	return &token, nil
}

// DeleteByHash removes a single reset token.
func (r *PasswordResetTokenRepository) DeleteByHash(ctx context.Context, hashedSecret string) error {
	if _, err := store.Conn(ctx, r.db).Exec(ctx, `
		DELETE FROM password_recovery WHERE token = $1
	`, hashedSecret); err != nil {
		return oops.Code("RESET_DELETE_FAILED").Wrap(err)
	}
	return nil
}

// DeleteAllByUsername removes every reset token issued to username and
// returns the removed tokens.
func (r *PasswordResetTokenRepository) DeleteAllByUsername(ctx context.Context, username string) ([]auth.PasswordResetToken, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		DELETE FROM password_recovery
		WHERE username = $1
		RETURNING id, token, username, created_at
	`, username)
	if err != nil {
		return nil, oops.Code("RESET_DELETE_FAILED").With("operation", "delete all by username").Wrap(err)
	}
	defer rows.Close()

	var removed []auth.PasswordResetToken
	for rows.Next() {
		var token auth.PasswordResetToken
		if err := rows.Scan(&token.ID, &token.HashedSecret, &token.Username, &token.CreatedAt); err != nil {
			return nil, oops.Code("RESET_DELETE_FAILED").With("operation", "scan deleted token").Wrap(err)
		}
		removed = append(removed, token)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("RESET_DELETE_FAILED").With("operation", "delete all by username").Wrap(err)
	}
	return removed, nil
}

// Compile-time interface check.
var _ auth.PasswordResetTokenRepository = (*PasswordResetTokenRepository)(nil)
