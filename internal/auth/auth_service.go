// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/accounts/pkg/errutil"
)

// User feedback shared by the authentication and password reset flows.
const (
	msgIncorrectCredentials   = "Incorrect username or password."
	msgPendingVerification    = "Your account is pending verification."
	msgInsufficientPrivileges = "Insufficient privileges."
	msgInvalidToken           = "Invalid or expired token."
)

// ClientInfo describes the caller of an operation for audit logging.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// SessionGrant is returned by a successful authentication.
// Secret is the only copy of the raw bearer secret.
type SessionGrant struct {
	Secret     string
	AccountID  int64
	Username   string
	Privileges Privileges
	ExpiresAt  *time.Time // nil: the session does not expire
}

// ServiceOption configures the auth services.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for audit and failure logs.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

func applyOptions(opts []ServiceOption) (*serviceOptions, error) {
	o := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("logger is required")
	}
	return o, nil
}

// Service provides authentication operations.
type Service struct {
	accounts AccountRepository
	tokens   TokenRepository
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewAuthService creates a new Service.
func NewAuthService(accounts AccountRepository, tokens TokenRepository, hasher PasswordHasher, opts ...ServiceOption) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("accounts repository is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("tokens repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
		logger:   o.logger,
	}, nil
}

// dummyPasswordHash is verified against when an account doesn't exist so the
// response time matches a real verification. It is a well-formed cost-12
// bcrypt digest that matches no input.
//
//nolint:gosec // G101: intentionally fake digest for timing equalisation, not a credential.
const dummyPasswordHash = "$2a$12$g5EvorJRLfFTuIrK.6B3AOXNUgjzpsXbdOYZjRSs.WmEvwC.cVffq"

// Authenticate verifies credentials and issues an access token.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string, client ClientInfo) (grant *SessionGrant, err error) {
	start := time.Now()
	defer func() { RecordAuthentication(err, time.Since(start)) }()

	account, err := checkCredentials(ctx, s.accounts, s.hasher, username, password)
	if err != nil {
		return nil, err
	}
	if err := checkSignInPrivileges(account.Privileges); err != nil {
		return nil, err
	}

	secret, hash, err := IssueSecret()
	if err != nil {
		return nil, s.internal("failed to issue access token", account.ID, err)
	}
	if _, err := s.tokens.Create(ctx, account.ID, hash, TokenKindAccess); err != nil {
		return nil, s.internal("failed to persist access token", account.ID,
			oops.With("operation", "create access token").Wrap(err))
	}

	s.logger.InfoContext(ctx, "account authenticated",
		"account_id", account.ID,
		"client_ip", client.IPAddress,
		"user_agent", client.UserAgent)

	return &SessionGrant{
		Secret:     secret,
		AccountID:  account.ID,
		Username:   account.Username,
		Privileges: account.Privileges,
	}, nil
}

// Authorize resolves a presented access token secret to its stored record.
// When expectedAccountID is set the token must belong to that account.
func (s *Service) Authorize(ctx context.Context, secret string, expectedAccountID *int64) (*SessionToken, error) {
	if secret == "" {
		return nil, errutil.New(errutil.CodeIncorrectCredentials, msgInvalidToken)
	}

	token, err := s.tokens.FetchByHash(ctx, HashSecret(secret), TokenKindAccess)
	if errors.Is(err, ErrNotFound) {
		return nil, errutil.New(errutil.CodeIncorrectCredentials, msgInvalidToken)
	}
	if err != nil {
		return nil, errutil.Internal(oops.With("operation", "fetch access token").Wrap(err))
	}
	if expectedAccountID != nil && token.AccountID != *expectedAccountID {
		return nil, errutil.New(errutil.CodeIncorrectCredentials, msgInvalidToken)
	}
	return token, nil
}

// Logout revokes an access token. Revoking an already revoked token succeeds.
func (s *Service) Logout(ctx context.Context, token *SessionToken, client ClientInfo) error {
	if err := s.tokens.DeleteByHash(ctx, token.HashedSecret, TokenKindAccess); err != nil {
		return s.internal("failed to revoke access token", token.AccountID,
			oops.With("operation", "delete access token").Wrap(err))
	}

	s.logger.InfoContext(ctx, "account logged out",
		"account_id", token.AccountID,
		"client_ip", client.IPAddress,
		"user_agent", client.UserAgent)
	return nil
}

func (s *Service) internal(msg string, accountID int64, err error) error {
	err = errutil.Internal(err)
	errutil.LogError(s.logger.With("account_id", accountID), msg, err)
	return err
}

// checkCredentials looks up username and verifies password, running a dummy
// verification when the account is absent.
func checkCredentials(ctx context.Context, accounts AccountRepository, hasher PasswordHasher, username, password string) (*Account, error) {
	account, err := accounts.FetchByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errutil.Internal(oops.With("operation", "fetch account by username").Wrap(err))
	}
	if account == nil {
		hasher.Verify(password, dummyPasswordHash)
		return nil, errutil.New(errutil.CodeIncorrectCredentials, msgIncorrectCredentials)
	}
	if !hasher.Verify(password, account.PasswordHash) {
		return nil, errutil.New(errutil.CodeIncorrectCredentials, msgIncorrectCredentials)
	}
	return account, nil
}

// checkSignInPrivileges rejects accounts that are unverified or lack the
// normal user bit. Pending verification is reported first.
func checkSignInPrivileges(p Privileges) error {
	if p.Has(PrivilegePendingVerification) {
		return errutil.New(errutil.CodePendingVerification, msgPendingVerification)
	}
	if !p.Has(PrivilegeNormal) {
		return errutil.New(errutil.CodeInsufficientPrivileges, msgInsufficientPrivileges)
	}
	return nil
}
