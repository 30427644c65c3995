// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/holomush/accounts/internal/auth"
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Authenticate(ctx context.Context, username, password string, client auth.ClientInfo) (*auth.SessionGrant, error) {
	args := m.Called(ctx, username, password, client)
	grant, _ := args.Get(0).(*auth.SessionGrant)
	return grant, args.Error(1)
}

func (m *mockAuth) Authorize(ctx context.Context, secret string, expectedAccountID *int64) (*auth.SessionToken, error) {
	args := m.Called(ctx, secret, expectedAccountID)
	token, _ := args.Get(0).(*auth.SessionToken)
	return token, args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context, token *auth.SessionToken, client auth.ClientInfo) error {
	return m.Called(ctx, token, client).Error(0)
}

type mockResets struct{ mock.Mock }

func (m *mockResets) Initiate(ctx context.Context, username string, client auth.ClientInfo) error {
	return m.Called(ctx, username, client).Error(0)
}

func (m *mockResets) Verify(ctx context.Context, hashedToken, newPassword string, client auth.ClientInfo) error {
	return m.Called(ctx, hashedToken, newPassword, client).Error(0)
}

type mockProfiles struct{ mock.Mock }

func (m *mockProfiles) UpdateUsername(ctx context.Context, accountID int64, username string) error {
	return m.Called(ctx, accountID, username).Error(0)
}

func (m *mockProfiles) UpdatePassword(ctx context.Context, accountID int64, current, password string) error {
	return m.Called(ctx, accountID, current, password).Error(0)
}

func (m *mockProfiles) UpdateEmail(ctx context.Context, accountID int64, current, email string) error {
	return m.Called(ctx, accountID, current, email).Error(0)
}

type mockDeleter struct{ mock.Mock }

func (m *mockDeleter) Delete(ctx context.Context, accountID int64) error {
	return m.Called(ctx, accountID).Error(0)
}

type mockCaptcha struct{ mock.Mock }

func (m *mockCaptcha) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	args := m.Called(ctx, token, remoteIP)
	return args.Bool(0), args.Error(1)
}
