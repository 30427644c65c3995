// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/samber/oops"

	"github.com/holomush/accounts/pkg/errutil"
)

// EmailDelivery sends transactional email.
type EmailDelivery interface {
	SendPasswordResetEmail(ctx context.Context, address, username, resetLink string) error
}

// ResetLinkBuilder renders the link emailed for a reset token.
type ResetLinkBuilder func(token string) string

// NewResetLinkBuilder returns a builder that appends the token as the
// "token" query parameter of baseURL.
func NewResetLinkBuilder(baseURL string) (ResetLinkBuilder, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, oops.Code("AUTH_INVALID_CONFIG").
			With("reset_url", baseURL).
			Errorf("password reset URL must be absolute")
	}
	return func(token string) string {
		u := *base
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		return u.String()
	}, nil
}

// PasswordResetService handles password reset operations.
type PasswordResetService struct {
	accounts AccountRepository
	resets   PasswordResetTokenRepository
	hasher   PasswordHasher
	mailer   EmailDelivery
	links    ResetLinkBuilder
	logger   *slog.Logger
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(
	accounts AccountRepository,
	resets PasswordResetTokenRepository,
	hasher PasswordHasher,
	mailer EmailDelivery,
	links ResetLinkBuilder,
	opts ...ServiceOption,
) (*PasswordResetService, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("accounts repository is required")
	}
	if resets == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password reset repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}
	if mailer == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("email delivery is required")
	}
	if links == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("reset link builder is required")
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &PasswordResetService{
		accounts: accounts,
		resets:   resets,
		hasher:   hasher,
		mailer:   mailer,
		links:    links,
		logger:   o.logger,
	}, nil
}

// Initiate starts password recovery for username and emails a reset link.
//
// The link carries the stored digest of the reset secret, and Verify looks
// tokens up by the value it is given. Possession of the digest is therefore
// sufficient to reset the password.
func (s *PasswordResetService) Initiate(ctx context.Context, username string, client ClientInfo) (err error) {
	defer func() { RecordPasswordReset(StageInitiate, err) }()

	account, err := s.accounts.FetchByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return errutil.Internal(oops.With("operation", "fetch account by username").Wrap(err))
	}
	if account == nil {
		return errutil.New(errutil.CodeIncorrectCredentials, msgIncorrectCredentials)
	}
	if err := checkSignInPrivileges(account.Privileges); err != nil {
		return err
	}
	if account.Email == "" {
		return errutil.New(errutil.CodeBadRequest, "This account has no email address on file.")
	}

	_, hash, err := IssueSecret()
	if err != nil {
		return s.internal("failed to issue password reset token", account.ID, err)
	}
	if _, err := s.resets.Create(ctx, account.Username, hash); err != nil {
		return s.internal("failed to persist password reset token", account.ID,
			oops.With("operation", "create password reset token").Wrap(err))
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, account.Email, account.Username, s.links(hash)); err != nil {
		return s.internal("failed to send password reset email", account.ID,
			oops.With("operation", "send password reset email").Wrap(err))
	}

	s.logger.InfoContext(ctx, "password reset initiated",
		"account_id", account.ID,
		"client_ip", client.IPAddress,
		"user_agent", client.UserAgent)
	return nil
}

// Verify completes password recovery. hashedToken is the value from the
// reset link. Tokens do not expire and are deleted once consumed.
func (s *PasswordResetService) Verify(ctx context.Context, hashedToken, newPassword string, client ClientInfo) (err error) {
	defer func() { RecordPasswordReset(StageVerify, err) }()

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	token, err := s.resets.FetchByHash(ctx, hashedToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return errutil.Internal(oops.With("operation", "fetch password reset token").Wrap(err))
	}
	if token == nil {
		return errutil.New(errutil.CodeIncorrectCredentials, msgInvalidToken)
	}

	account, err := s.accounts.FetchByUsername(ctx, token.Username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return errutil.Internal(oops.With("operation", "fetch account by username").Wrap(err))
	}
	if account == nil {
		return errutil.New(errutil.CodeNotFound, "User not found.")
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.internal("failed to hash new password", account.ID, err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, passwordHash); err != nil {
		return s.internal("failed to update password", account.ID,
			oops.With("operation", "update password").Wrap(err))
	}
	if err := s.resets.DeleteByHash(ctx, hashedToken); err != nil {
		return s.internal("failed to consume password reset token", account.ID,
			oops.With("operation", "delete password reset token").Wrap(err))
	}

	s.logger.InfoContext(ctx, "password reset completed",
		"account_id", account.ID,
		"client_ip", client.IPAddress,
		"user_agent", client.UserAgent)
	return nil
}

func (s *PasswordResetService) internal(msg string, accountID int64, err error) error {
	err = errutil.Internal(err)
	errutil.LogError(s.logger.With("account_id", accountID), msg, err)
	return err
}
