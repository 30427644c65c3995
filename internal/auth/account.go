// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// UnknownCountry is the ISO-3166 placeholder for accounts without a country.
const UnknownCountry = "XX"

// DeletedUserpageContent replaces the profile page of a deleted account.
const DeletedUserpageContent = "This user has been deleted."

// Account is a registered community member.
type Account struct {
	ID              int64
	Username        string
	UsernameAka     string
	Email           string
	PasswordHash    string
	Privileges      Privileges
	ClanID          *int64 // nil when the account is not in a clan
	Country         string
	UserpageContent *string
	CreatedAt       time.Time
	LatestActivity  time.Time
}

// NormalizedUsername returns the uniqueness key of the account's username.
func (a *Account) NormalizedUsername() string {
	return NormalizeUsername(a.Username)
}

// NormalizeUsername folds a username to its uniqueness key: lower-cased with
// spaces replaced by underscores.
func NormalizeUsername(username string) string {
	return strings.ReplaceAll(strings.ToLower(username), " ", "_")
}

// AnonymizedUsername returns the placeholder username for a deleted account.
func AnonymizedUsername(accountID int64) string {
	return "deleted_user_" + strconv.FormatInt(accountID, 10)
}

// AnonymizedEmail returns the placeholder email address for a deleted account.
func AnonymizedEmail(accountID int64) string {
	return AnonymizedUsername(accountID) + "@example.com"
}

// AccountRepository manages account persistence.
// Implementations join a transaction carried by ctx when one is present.
type AccountRepository interface {
	// FetchByUsername retrieves an account by its normalized username.
	FetchByUsername(ctx context.Context, username string) (*Account, error)

	// FetchByID retrieves an account by ID.
	FetchByID(ctx context.Context, id int64) (*Account, error)

	// FetchManyByClanID lists the members of a clan.
	FetchManyByClanID(ctx context.Context, clanID int64) ([]*Account, error)

	// UsernameTaken reports whether the normalized form of username is in use.
	UsernameTaken(ctx context.Context, username string) (bool, error)

	// UpdateUsername sets the username and its normalized form.
	// Returns ErrDuplicate if another account holds the normalized form.
	UpdateUsername(ctx context.Context, id int64, username string) error

	// UpdatePassword replaces the stored password digest.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// UpdateEmail replaces the email address.
	UpdateEmail(ctx context.Context, id int64, email string) error

	// Anonymize overwrites identifying fields with deletion placeholders,
	// clears privileges and clan membership.
	Anonymize(ctx context.Context, id int64) error
}
