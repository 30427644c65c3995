// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package recaptcha verifies Google reCAPTCHA tokens.
package recaptcha

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sony/gobreaker"

	"github.com/holomush/accounts/internal/outbound"
)

// DefaultVerifyURL is Google's siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Option configures a Verifier.
type Option func(*Verifier)

// WithVerifyURL overrides the siteverify endpoint.
func WithVerifyURL(u string) Option {
	return func(v *Verifier) { v.verifyURL = u }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) { v.client = c }
}

// WithTimeout bounds each verification call.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) { v.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

// Verifier checks reCAPTCHA tokens against the siteverify API.
type Verifier struct {
	secret    string
	verifyURL string
	timeout   time.Duration
	client    *http.Client
	logger    *slog.Logger
	breaker   *gobreaker.CircuitBreaker
}

// New creates a Verifier for the given site secret.
func New(secret string, opts ...Option) (*Verifier, error) {
	if secret == "" {
		return nil, oops.Code("RECAPTCHA_INVALID_CONFIG").Errorf("recaptcha secret is required")
	}
	v := &Verifier{
		secret:    secret,
		verifyURL: DefaultVerifyURL,
		timeout:   outbound.DefaultTimeout,
		client:    &http.Client{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.breaker = outbound.NewBreaker("recaptcha", v.logger)
	return v, nil
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether token is a valid response for this site. A transport
// or decoding failure is returned as an error together with false.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}
	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
		"remoteip": {remoteIP},
	}

	result, err := outbound.Call(ctx, v.breaker, v.timeout, func(ctx context.Context) (siteVerifyResponse, error) {
		var out siteVerifyResponse
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
		if err != nil {
			return out, err //nolint:wrapcheck // wrapped by caller
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := v.client.Do(req)
		if err != nil {
			return out, err //nolint:wrapcheck // wrapped by caller
		}
		defer resp.Body.Close() //nolint:errcheck // read-only body

		if resp.StatusCode != http.StatusOK {
			return out, oops.With("status", resp.StatusCode).Errorf("siteverify responded %s", resp.Status)
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return out, oops.With("operation", "decode siteverify response").Wrap(err)
		}
		return out, nil
	})
	if err != nil {
		return false, oops.Code("RECAPTCHA_VERIFY_FAILED").Wrap(err)
	}
	if !result.Success {
		v.logger.DebugContext(ctx, "recaptcha rejected", "error_codes", result.ErrorCodes)
	}
	return result.Success, nil
}
