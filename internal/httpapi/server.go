// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package httpapi exposes the account services over HTTP.
//
// Routes under /public are reachable by end users. Routes under /api are
// internal and must only be exposed to trusted callers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
)

// SessionCookieName carries the access token secret.
const SessionCookieName = "X-Ripple-Token"

// DefaultSessionCookieTTL is how long browsers keep the session cookie.
const DefaultSessionCookieTTL = 30 * 24 * time.Hour

// AuthService authenticates callers and manages their sessions.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string, client auth.ClientInfo) (*auth.SessionGrant, error)
	Authorize(ctx context.Context, secret string, expectedAccountID *int64) (*auth.SessionToken, error)
	Logout(ctx context.Context, token *auth.SessionToken, client auth.ClientInfo) error
}

// PasswordResetService runs password recovery.
type PasswordResetService interface {
	Initiate(ctx context.Context, username string, client auth.ClientInfo) error
	Verify(ctx context.Context, hashedToken, newPassword string, client auth.ClientInfo) error
}

// ProfileService edits account identity fields.
type ProfileService interface {
	UpdateUsername(ctx context.Context, accountID int64, username string) error
	UpdatePassword(ctx context.Context, accountID int64, current, password string) error
	UpdateEmail(ctx context.Context, accountID int64, current, email string) error
}

// AccountDeleter anonymizes accounts.
type AccountDeleter interface {
	Delete(ctx context.Context, accountID int64) error
}

// CaptchaVerifier checks a human-verification token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Domain string
	Secure bool
	TTL    time.Duration
}

// Deps are the collaborators of a Server. Captcha is optional; when nil,
// password reset initiation is not gated on a captcha. Middleware runs
// inside the router, after routing context is available.
type Deps struct {
	Auth       AuthService
	Resets     PasswordResetService
	Profiles   ProfileService
	Deletions  AccountDeleter
	Captcha    CaptchaVerifier
	Cookie     CookieConfig
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

// Server routes HTTP requests to the account services.
type Server struct {
	auth      AuthService
	resets    PasswordResetService
	profiles  ProfileService
	deletions AccountDeleter
	captcha   CaptchaVerifier
	cookie    CookieConfig
	logger    *slog.Logger
	extra     []func(http.Handler) http.Handler
}

// NewServer creates a new Server.
func NewServer(deps Deps) (*Server, error) {
	switch {
	case deps.Auth == nil:
		return nil, oops.Code("HTTPAPI_INVALID_CONFIG").Errorf("auth service is required")
	case deps.Resets == nil:
		return nil, oops.Code("HTTPAPI_INVALID_CONFIG").Errorf("password reset service is required")
	case deps.Profiles == nil:
		return nil, oops.Code("HTTPAPI_INVALID_CONFIG").Errorf("profile service is required")
	case deps.Deletions == nil:
		return nil, oops.Code("HTTPAPI_INVALID_CONFIG").Errorf("account deleter is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Cookie.TTL <= 0 {
		deps.Cookie.TTL = DefaultSessionCookieTTL
	}
	return &Server{
		auth:      deps.Auth,
		resets:    deps.Resets,
		profiles:  deps.Profiles,
		deletions: deps.Deletions,
		captcha:   deps.Captcha,
		cookie:    deps.Cookie,
		logger:    deps.Logger,
		extra:     deps.Middleware,
	}, nil
}

// Router returns the HTTP handler serving every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.extra...)

	r.Route("/public/api/v1", func(r chi.Router) {
		r.Post("/authenticate", s.handleAuthenticate)
		r.Post("/logout", s.handleLogout)
		r.Post("/init-password-reset", s.handleInitPasswordReset)
		r.Post("/verify-password-reset", s.handleVerifyPasswordReset)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Put("/username", s.handleUpdateUsername)
			r.Put("/password", s.handleUpdatePassword)
			r.Put("/email", s.handleUpdateEmail)
		})
	})

	r.Delete("/api/v1/users/{userID}", s.handleDeleteUser)

	return r
}
