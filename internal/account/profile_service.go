// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/pkg/errutil"
)

const (
	msgUserNotFound      = "User not found."
	msgIncorrectPassword = "Incorrect password."
	msgUsernameTaken     = "Username already taken by another player."
	msgDonorRequired     = "Changing your username requires supporter status."
)

// ProfileDeps are the collaborators of a ProfileService. All are required.
type ProfileDeps struct {
	Accounts   auth.AccountRepository
	Resets     auth.PasswordResetTokenRepository
	Hasher     auth.PasswordHasher
	Transactor Transactor
}

func (d ProfileDeps) validate() error {
	missing := func(name string) error {
		return oops.Code("ACCOUNT_INVALID_CONFIG").Errorf("%s is required", name)
	}
	switch {
	case d.Accounts == nil:
		return missing("accounts repository")
	case d.Resets == nil:
		return missing("password reset repository")
	case d.Hasher == nil:
		return missing("password hasher")
	case d.Transactor == nil:
		return missing("transactor")
	}
	return nil
}

// ProfileService edits account identity fields on behalf of the account owner.
type ProfileService struct {
	accounts   auth.AccountRepository
	resets     auth.PasswordResetTokenRepository
	hasher     auth.PasswordHasher
	transactor Transactor
	logger     *slog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(deps ProfileDeps, opts ...Option) (*ProfileService, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &ProfileService{
		accounts:   deps.Accounts,
		resets:     deps.Resets,
		hasher:     deps.Hasher,
		transactor: deps.Transactor,
		logger:     o.logger,
	}, nil
}

// UpdateUsername renames an account. Only supporters may rename, and the
// normalized form of the new name must be free. Changing only the case or
// spacing of the current name is allowed. Pending password reset tokens
// issued under the old name are revoked with the rename.
func (s *ProfileService) UpdateUsername(ctx context.Context, accountID int64, username string) (err error) {
	defer func() { RecordProfileUpdate(FieldUsername, err) }()

	account, err := s.fetch(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.Privileges.Has(auth.PrivilegeDonor) {
		return errutil.New(errutil.CodeInsufficientPrivileges, msgDonorRequired)
	}
	if err := auth.ValidateUsername(username); err != nil {
		return err
	}

	if auth.NormalizeUsername(username) != account.NormalizedUsername() {
		taken, err := s.accounts.UsernameTaken(ctx, username)
		if err != nil {
			return s.internal("failed to check username availability", accountID,
				oops.With("operation", "check username taken").Wrap(err))
		}
		if taken {
			return errutil.New(errutil.CodeConflict, msgUsernameTaken)
		}
	}

	// Reset tokens are keyed by the username they were issued under; none may
	// outlive that name.
	err = s.transactor.InTransaction(ctx, func(ctx context.Context) error {
		purged, err := s.resets.DeleteAllByUsername(ctx, account.Username)
		if err != nil {
			return oops.With("operation", "delete password reset tokens").Wrap(err)
		}
		if err := s.accounts.UpdateUsername(ctx, accountID, username); err != nil {
			return err
		}
		if len(purged) > 0 {
			s.logger.DebugContext(ctx, "revoked password reset tokens on rename",
				"account_id", accountID,
				"password_reset_tokens", len(purged))
		}
		return nil
	})
	if errors.Is(err, auth.ErrDuplicate) {
		return errutil.Wrap(errutil.CodeConflict, msgUsernameTaken, err)
	}
	if err != nil {
		return s.internal("failed to update username", accountID,
			oops.With("operation", "update username").Wrap(err))
	}

	s.logger.InfoContext(ctx, "username changed", "account_id", accountID)
	return nil
}

// UpdatePassword replaces the password after verifying the current one.
func (s *ProfileService) UpdatePassword(ctx context.Context, accountID int64, current, password string) (err error) {
	defer func() { RecordProfileUpdate(FieldPassword, err) }()

	account, err := s.fetchVerified(ctx, accountID, current)
	if err != nil {
		return err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return s.internal("failed to hash new password", account.ID, err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, passwordHash); err != nil {
		return s.internal("failed to update password", account.ID,
			oops.With("operation", "update password").Wrap(err))
	}

	s.logger.InfoContext(ctx, "password changed", "account_id", account.ID)
	return nil
}

// UpdateEmail replaces the email address after verifying the current password.
func (s *ProfileService) UpdateEmail(ctx context.Context, accountID int64, current, email string) (err error) {
	defer func() { RecordProfileUpdate(FieldEmail, err) }()

	account, err := s.fetchVerified(ctx, accountID, current)
	if err != nil {
		return err
	}
	if err := auth.ValidateEmail(email); err != nil {
		return err
	}

	if err := s.accounts.UpdateEmail(ctx, account.ID, email); err != nil {
		return s.internal("failed to update email", account.ID,
			oops.With("operation", "update email").Wrap(err))
	}

	s.logger.InfoContext(ctx, "email changed", "account_id", account.ID)
	return nil
}

func (s *ProfileService) fetch(ctx context.Context, accountID int64) (*auth.Account, error) {
	account, err := s.accounts.FetchByID(ctx, accountID)
	if errors.Is(err, auth.ErrNotFound) {
		return nil, errutil.New(errutil.CodeNotFound, msgUserNotFound)
	}
	if err != nil {
		return nil, s.internal("failed to fetch account", accountID,
			oops.With("operation", "fetch account by id").Wrap(err))
	}
	return account, nil
}

func (s *ProfileService) fetchVerified(ctx context.Context, accountID int64, password string) (*auth.Account, error) {
	account, err := s.fetch(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, errutil.New(errutil.CodeIncorrectCredentials, msgIncorrectPassword)
	}
	return account, nil
}

func (s *ProfileService) internal(msg string, accountID int64, err error) error {
	err = errutil.Internal(err)
	errutil.LogError(s.logger.With("account_id", accountID), msg, err)
	return err
}
