// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/auth/authtest"
	"github.com/holomush/accounts/pkg/errutil"
)

// inlineTransactor runs fn directly and counts the transactions it opened.
type inlineTransactor struct{ calls int }

func (tx *inlineTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

type profileFixture struct {
	accounts *authtest.MockAccountRepository
	resets   *authtest.MockPasswordResetTokenRepository
	hasher   *authtest.MockPasswordHasher
	tx       *inlineTransactor
	svc      *account.ProfileService
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	f := &profileFixture{
		accounts: authtest.NewMockAccountRepository(t),
		resets:   authtest.NewMockPasswordResetTokenRepository(t),
		hasher:   authtest.NewMockPasswordHasher(t),
		tx:       &inlineTransactor{},
	}
	svc, err := account.NewProfileService(account.ProfileDeps{
		Accounts:   f.accounts,
		Resets:     f.resets,
		Hasher:     f.hasher,
		Transactor: f.tx,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func donor() *auth.Account {
	return &auth.Account{
		ID:           7,
		Username:     "Alice",
		Email:        "alice@example.org",
		PasswordHash: "stored-digest",
		Privileges:   auth.PrivilegePublic | auth.PrivilegeNormal | auth.PrivilegeDonor,
	}
}

func TestNewProfileService_RequiresDependencies(t *testing.T) {
	full := func() account.ProfileDeps {
		return account.ProfileDeps{
			Accounts:   authtest.NewMockAccountRepository(t),
			Resets:     authtest.NewMockPasswordResetTokenRepository(t),
			Hasher:     authtest.NewMockPasswordHasher(t),
			Transactor: &inlineTransactor{},
		}
	}
	tests := []struct {
		name   string
		mutate func(*account.ProfileDeps)
	}{
		{"accounts", func(d *account.ProfileDeps) { d.Accounts = nil }},
		{"resets", func(d *account.ProfileDeps) { d.Resets = nil }},
		{"hasher", func(d *account.ProfileDeps) { d.Hasher = nil }},
		{"transactor", func(d *account.ProfileDeps) { d.Transactor = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := full()
			tt.mutate(&deps)
			_, err := account.NewProfileService(deps)
			errutil.AssertErrorCode(t, err, "ACCOUNT_INVALID_CONFIG")
		})
	}
}

func TestUpdateUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("renames a supporter", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.accounts.On("UsernameTaken", ctx, "Alice_B").Return(false, nil)
		f.resets.On("DeleteAllByUsername", ctx, "Alice").
			Return([]auth.PasswordResetToken{{HashedSecret: "pending", Username: "Alice"}}, nil)
		f.accounts.On("UpdateUsername", ctx, int64(7), "Alice_B").Return(nil)

		require.NoError(t, f.svc.UpdateUsername(ctx, 7, "Alice_B"))
		assert.Equal(t, 1, f.tx.calls)
	})

	t.Run("reset token purge failure aborts the rename", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.accounts.On("UsernameTaken", ctx, "Alice_B").Return(false, nil)
		f.resets.On("DeleteAllByUsername", ctx, "Alice").Return(nil, errors.New("timeout"))

		errutil.AssertCode(t, f.svc.UpdateUsername(ctx, 7, "Alice_B"), errutil.CodeInternal)
		f.accounts.AssertNotCalled(t, "UpdateUsername", ctx, int64(7), "Alice_B")
	})

	t.Run("case change of own name skips the availability check", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.resets.On("DeleteAllByUsername", ctx, "Alice").Return(nil, nil)
		f.accounts.On("UpdateUsername", ctx, int64(7), "ALICE").Return(nil)

		require.NoError(t, f.svc.UpdateUsername(ctx, 7, "ALICE"))
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(nil, auth.ErrNotFound)

		errutil.AssertCode(t, f.svc.UpdateUsername(ctx, 7, "Alice_B"), errutil.CodeNotFound)
	})

	t.Run("requires supporter status", func(t *testing.T) {
		f := newProfileFixture(t)
		a := donor()
		a.Privileges = a.Privileges.Without(auth.PrivilegeDonor)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(a, nil)

		errutil.AssertCode(t, f.svc.UpdateUsername(ctx, 7, "Alice_B"), errutil.CodeInsufficientPrivileges)
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)

		errutil.AssertCode(t, f.svc.UpdateUsername(ctx, 7, "a b_c"), errutil.CodeBadRequest)
	})

	t.Run("normalized collision is a conflict", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.accounts.On("UsernameTaken", ctx, "Bob Smith").Return(true, nil)

		errutil.AssertCode(t, f.svc.UpdateUsername(ctx, 7, "Bob Smith"), errutil.CodeConflict)
	})

	t.Run("storage unique violation is a conflict", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.accounts.On("UsernameTaken", ctx, "bob_smith").Return(false, nil)
		f.resets.On("DeleteAllByUsername", ctx, "Alice").Return(nil, nil)
		f.accounts.On("UpdateUsername", ctx, int64(7), "bob_smith").Return(auth.ErrDuplicate)

		err := f.svc.UpdateUsername(ctx, 7, "bob_smith")
		errutil.AssertCode(t, err, errutil.CodeConflict)
		assert.ErrorIs(t, err, auth.ErrDuplicate)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.accounts.On("UsernameTaken", ctx, "Alice_B").Return(false, errors.New("timeout"))

		errutil.AssertCode(t, f.svc.UpdateUsername(ctx, 7, "Alice_B"), errutil.CodeInternal)
	})
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the digest", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.hasher.On("Verify", "Old-passw0rd", "stored-digest").Return(true)
		f.hasher.On("Hash", "New-passw0rd").Return("new-digest", nil)
		f.accounts.On("UpdatePassword", ctx, int64(7), "new-digest").Return(nil)

		require.NoError(t, f.svc.UpdatePassword(ctx, 7, "Old-passw0rd", "New-passw0rd"))
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.hasher.On("Verify", "guess", "stored-digest").Return(false)

		errutil.AssertCode(t, f.svc.UpdatePassword(ctx, 7, "guess", "New-passw0rd"), errutil.CodeIncorrectCredentials)
	})

	t.Run("weak new password", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.hasher.On("Verify", "Old-passw0rd", "stored-digest").Return(true)

		errutil.AssertCode(t, f.svc.UpdatePassword(ctx, 7, "Old-passw0rd", "short"), errutil.CodeBadRequest)
	})

	t.Run("hash failure is internal", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.hasher.On("Verify", "Old-passw0rd", "stored-digest").Return(true)
		f.hasher.On("Hash", "New-passw0rd").Return("", errors.New("rng"))

		errutil.AssertCode(t, f.svc.UpdatePassword(ctx, 7, "Old-passw0rd", "New-passw0rd"), errutil.CodeInternal)
	})
}

func TestUpdateEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the address", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.hasher.On("Verify", "Passw0rd!", "stored-digest").Return(true)
		f.accounts.On("UpdateEmail", ctx, int64(7), "new@example.org").Return(nil)

		require.NoError(t, f.svc.UpdateEmail(ctx, 7, "Passw0rd!", "new@example.org"))
	})

	t.Run("invalid address", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.hasher.On("Verify", "Passw0rd!", "stored-digest").Return(true)

		errutil.AssertCode(t, f.svc.UpdateEmail(ctx, 7, "Passw0rd!", "not-an-address"), errutil.CodeBadRequest)
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newProfileFixture(t)
		f.accounts.On("FetchByID", ctx, int64(7)).Return(donor(), nil)
		f.hasher.On("Verify", "nope", "stored-digest").Return(false)

		errutil.AssertCode(t, f.svc.UpdateEmail(ctx, 7, "nope", "new@example.org"), errutil.CodeIncorrectCredentials)
	})
}
