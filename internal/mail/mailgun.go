// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mail delivers transactional email through the Mailgun HTTP API.
package mail

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sony/gobreaker"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/outbound"
)

// PasswordResetSubject is the subject line of password reset emails.
const PasswordResetSubject = "Password reset request"

var passwordResetTemplate = template.Must(template.New("password-reset").Parse(
	`<p>Hi {{.Username}},</p>
<p>Someone requested a password reset for your account. If this was you, follow the link below to choose a new password.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request a reset you can ignore this email.</p>`))

// Config holds Mailgun connection settings. SenderName is shown in the
// From header and defaults to the domain.
type Config struct {
	BaseURL    string
	Domain     string
	APIKey     string
	SenderName string
	Timeout    time.Duration
}

// Option configures a Mailgun client.
type Option func(*Mailgun)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Mailgun) { m.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailgun) { m.logger = l }
}

// Mailgun sends email through the Mailgun messages API.
type Mailgun struct {
	endpoint string
	from     string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
	logger   *slog.Logger
	breaker  *gobreaker.CircuitBreaker
}

// New creates a Mailgun client.
func New(cfg Config, opts ...Option) (*Mailgun, error) {
	if cfg.Domain == "" || cfg.APIKey == "" {
		return nil, oops.Code("MAIL_INVALID_CONFIG").Errorf("mailgun domain and api key are required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, oops.Code("MAIL_INVALID_CONFIG").With("base_url", cfg.BaseURL).Errorf("mailgun base URL must be absolute")
	}

	sender := cfg.SenderName
	if sender == "" {
		sender = cfg.Domain
	}
	m := &Mailgun{
		endpoint: base.JoinPath("v3", cfg.Domain, "messages").String(),
		from:     sender + " <noreply@" + cfg.Domain + ">",
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		client:   &http.Client{},
		logger:   slog.Default(),
	}
	if m.timeout <= 0 {
		m.timeout = outbound.DefaultTimeout
	}
	for _, opt := range opts {
		opt(m)
	}
	m.breaker = outbound.NewBreaker("mailgun", m.logger)
	return m, nil
}

// SendPasswordResetEmail implements auth.EmailDelivery.
func (m *Mailgun) SendPasswordResetEmail(ctx context.Context, address, username, resetLink string) error {
	var body bytes.Buffer
	if err := passwordResetTemplate.Execute(&body, struct{ Username, Link string }{username, resetLink}); err != nil {
		return oops.Code("MAIL_RENDER_FAILED").Wrap(err)
	}
	return m.Send(ctx, address, PasswordResetSubject, body.String())
}

// Send posts an HTML message to a single recipient.
func (m *Mailgun) Send(ctx context.Context, to, subject, html string) error {
	form := url.Values{
		"from":    {m.from},
		"to":      {to},
		"subject": {subject},
		"html":    {html},
	}

	_, err := outbound.Call(ctx, m.breaker, m.timeout, func(ctx context.Context) (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return struct{}{}, err //nolint:wrapcheck // wrapped by caller
		}
		req.SetBasicAuth("api", m.apiKey)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := m.client.Do(req)
		if err != nil {
			return struct{}{}, err //nolint:wrapcheck // wrapped by caller
		}
		defer resp.Body.Close() //nolint:errcheck // read-only body
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return struct{}{}, oops.With("status", resp.StatusCode).Errorf("mailgun responded %s", resp.Status)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("subject", subject).Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.EmailDelivery = (*Mailgun)(nil)
