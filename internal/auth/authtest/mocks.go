// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package authtest provides testify mocks for the auth package interfaces.
package authtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/holomush/accounts/internal/auth"
)

// T is the subset of testing.TB the mock constructors need.
type T interface {
	mock.TestingT
	Cleanup(func())
}

// MockAccountRepository is a mock auth.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a mock that asserts its expectations on cleanup.
func NewMockAccountRepository(t T) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// FetchByUsername implements auth.AccountRepository.
func (m *MockAccountRepository) FetchByUsername(ctx context.Context, username string) (*auth.Account, error) {
	args := m.Called(ctx, username)
	return accountArg(args, 0), args.Error(1)
}

// FetchByID implements auth.AccountRepository.
func (m *MockAccountRepository) FetchByID(ctx context.Context, id int64) (*auth.Account, error) {
	args := m.Called(ctx, id)
	return accountArg(args, 0), args.Error(1)
}

// FetchManyByClanID implements auth.AccountRepository.
func (m *MockAccountRepository) FetchManyByClanID(ctx context.Context, clanID int64) ([]*auth.Account, error) {
	args := m.Called(ctx, clanID)
	members, _ := args.Get(0).([]*auth.Account)
	return members, args.Error(1)
}

// UsernameTaken implements auth.AccountRepository.
func (m *MockAccountRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// UpdateUsername implements auth.AccountRepository.
func (m *MockAccountRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	return m.Called(ctx, id, username).Error(0)
}

// UpdatePassword implements auth.AccountRepository.
func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

// UpdateEmail implements auth.AccountRepository.
func (m *MockAccountRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	return m.Called(ctx, id, email).Error(0)
}

// Anonymize implements auth.AccountRepository.
func (m *MockAccountRepository) Anonymize(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockTokenRepository is a mock auth.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// NewMockTokenRepository creates a mock that asserts its expectations on cleanup.
func NewMockTokenRepository(t T) *MockTokenRepository {
	m := &MockTokenRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create implements auth.TokenRepository.
func (m *MockTokenRepository) Create(ctx context.Context, accountID int64, hashedSecret string, kind auth.TokenKind) (*auth.SessionToken, error) {
	args := m.Called(ctx, accountID, hashedSecret, kind)
	token, _ := args.Get(0).(*auth.SessionToken)
	return token, args.Error(1)
}

// FetchByHash implements auth.TokenRepository.
func (m *MockTokenRepository) FetchByHash(ctx context.Context, hashedSecret string, kind auth.TokenKind) (*auth.SessionToken, error) {
	args := m.Called(ctx, hashedSecret, kind)
	token, _ := args.Get(0).(*auth.SessionToken)
	return token, args.Error(1)
}

// DeleteByHash implements auth.TokenRepository.
func (m *MockTokenRepository) DeleteByHash(ctx context.Context, hashedSecret string, kind auth.TokenKind) error {
	return m.Called(ctx, hashedSecret, kind).Error(0)
}

// MockPasswordResetTokenRepository is a mock auth.PasswordResetTokenRepository.
type MockPasswordResetTokenRepository struct {
	mock.Mock
}

// NewMockPasswordResetTokenRepository creates a mock that asserts its expectations on cleanup.
func NewMockPasswordResetTokenRepository(t T) *MockPasswordResetTokenRepository {
	m := &MockPasswordResetTokenRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create implements auth.PasswordResetTokenRepository.
func (m *MockPasswordResetTokenRepository) Create(ctx context.Context, username, hashedSecret string) (*auth.PasswordResetToken, error) {
	args := m.Called(ctx, username, hashedSecret)
	token, _ := args.Get(0).(*auth.PasswordResetToken)
	return token, args.Error(1)
}

// FetchByHash implements auth.PasswordResetTokenRepository.
func (m *MockPasswordResetTokenRepository) FetchByHash(ctx context.Context, hashedSecret string) (*auth.PasswordResetToken, error) {
	args := m.Called(ctx, hashedSecret)
	token, _ := args.Get(0).(*auth.PasswordResetToken)
	return token, args.Error(1)
}

// DeleteByHash implements auth.PasswordResetTokenRepository.
func (m *MockPasswordResetTokenRepository) DeleteByHash(ctx context.Context, hashedSecret string) error {
	return m.Called(ctx, hashedSecret).Error(0)
}

// DeleteAllByUsername implements auth.PasswordResetTokenRepository.
func (m *MockPasswordResetTokenRepository) DeleteAllByUsername(ctx context.Context, username string) ([]auth.PasswordResetToken, error) {
	args := m.Called(ctx, username)
	removed, _ := args.Get(0).([]auth.PasswordResetToken)
	return removed, args.Error(1)
}

// MockPasswordHasher is a mock auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock that asserts its expectations on cleanup.
func NewMockPasswordHasher(t T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// Verify implements auth.PasswordHasher.
func (m *MockPasswordHasher) Verify(password, digest string) bool {
	return m.Called(password, digest).Bool(0)
}

// MockEmailDelivery is a mock auth.EmailDelivery.
type MockEmailDelivery struct {
	mock.Mock
}

// NewMockEmailDelivery creates a mock that asserts its expectations on cleanup.
func NewMockEmailDelivery(t T) *MockEmailDelivery {
	m := &MockEmailDelivery{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// SendPasswordResetEmail implements auth.EmailDelivery.
func (m *MockEmailDelivery) SendPasswordResetEmail(ctx context.Context, address, username, resetLink string) error {
	return m.Called(ctx, address, username, resetLink).Error(0)
}

func accountArg(args mock.Arguments, i int) *auth.Account {
	account, _ := args.Get(i).(*auth.Account)
	return account
}

var (
	_ auth.AccountRepository            = (*MockAccountRepository)(nil)
	_ auth.TokenRepository              = (*MockTokenRepository)(nil)
	_ auth.PasswordResetTokenRepository = (*MockPasswordResetTokenRepository)(nil)
	_ auth.PasswordHasher               = (*MockPasswordHasher)(nil)
	_ auth.EmailDelivery                = (*MockEmailDelivery)(nil)
)
