// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/store"
)

const accountColumns = `id, username, username_aka, email, password_hash, privileges,
		       clan_id, country, userpage_content, created_at, latest_activity`

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	db store.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db store.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FetchByUsername retrieves an account by normalized username.
func (r *AccountRepository) FetchByUsername(ctx context.Context, username string) (*auth.Account, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM users
		WHERE username_safe = $1
	`, auth.NormalizeUsername(username))

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_FETCH_FAILED").
			With("operation", "fetch account by username").
			Wrap(err)
	}
	return account, nil
}

// FetchByID retrieves an account by ID.
func (r *AccountRepository) FetchByID(ctx context.Context, id int64) (*auth.Account, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM users
		WHERE id = $1
	`, id)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("account_id", id).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_FETCH_FAILED").
			With("operation", "fetch account by id").
			With("account_id", id).
			Wrap(err)
	}
	return account, nil
}

// FetchManyByClanID lists the members of a clan ordered by ID.
func (r *AccountRepository) FetchManyByClanID(ctx context.Context, clanID int64) ([]*auth.Account, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT `+accountColumns+`
		FROM users
		WHERE clan_id = $1
		ORDER BY id
	`, clanID)
	if err != nil {
		return nil, oops.Code("ACCOUNT_FETCH_FAILED").
			With("operation", "fetch accounts by clan").
			With("clan_id", clanID).
			Wrap(err)
	}
	defer rows.Close()

	var accounts []*auth.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_FETCH_FAILED").
				With("operation", "scan clan member").
				With("clan_id", clanID).
				Wrap(err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_FETCH_FAILED").
			With("operation", "iterate clan members").
			With("clan_id", clanID).
			Wrap(err)
	}
	return accounts, nil
}

// UsernameTaken reports whether an account holds the normalized username.
func (r *AccountRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username_safe = $1)
	`, auth.NormalizeUsername(username)).Scan(&taken)
	if err != nil {
		return false, oops.Code("ACCOUNT_FETCH_FAILED").
			With("operation", "check username taken").
			Wrap(err)
	}
	return taken, nil
}

// UpdateUsername sets the display and normalized username.
func (r *AccountRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	tag, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE users SET username = $2, username_safe = $3 WHERE id = $1
	`, id, username, auth.NormalizeUsername(username))
	if store.IsUniqueViolation(err) {
		return oops.Code("ACCOUNT_USERNAME_TAKEN").With("account_id", id).Wrap(auth.ErrDuplicate)
	}
	return updateResult(tag.RowsAffected(), err, id, "update username")
}

// UpdatePassword replaces the password digest.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1
	`, id, passwordHash)
	return updateResult(tag.RowsAffected(), err, id, "update password")
}

// UpdateEmail replaces the email address.
func (r *AccountRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	tag, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE users SET email = $2 WHERE id = $1
	`, id, email)
	return updateResult(tag.RowsAffected(), err, id, "update email")
}

// Anonymize replaces identifying fields with deletion placeholders.
func (r *AccountRepository) Anonymize(ctx context.Context, id int64) error {
	username := auth.AnonymizedUsername(id)
	tag, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE users
		SET username = $2,
		    username_safe = $3,
		    username_aka = '',
		    email = $4,
		    userpage_content = $5,
		    country = $6,
		    privileges = 0,
		    clan_id = NULL
		WHERE id = $1
	`, id, username, auth.NormalizeUsername(username), auth.AnonymizedEmail(id),
		auth.DeletedUserpageContent, auth.UnknownCountry)
	return updateResult(tag.RowsAffected(), err, id, "anonymize account")
}

func updateResult(affected int64, err error, id int64, operation string) error {
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", operation).
			With("account_id", id).
			Wrap(err)
	}
	if affected == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").With("account_id", id).Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanAccount scans a row into an Account.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		a          auth.Account
		privileges int64
	)
	if err := row.Scan(
		&a.ID, &a.Username, &a.UsernameAka, &a.Email, &a.PasswordHash, &privileges,
		&a.ClanID, &a.Country, &a.UserpageContent, &a.CreatedAt, &a.LatestActivity,
	); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with operation context
	}
	a.Privileges = auth.Privileges(privileges) //nolint:gosec // column holds a uint32 bitmask
	return &a, nil
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
