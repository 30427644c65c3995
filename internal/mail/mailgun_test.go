// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mail_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/mail"
	"github.com/holomush/accounts/pkg/errutil"
)

type capturedRequest struct {
	path     string
	user     string
	password string
	form     map[string]string
}

func newMailgunServer(t *testing.T, status int) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{form: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.user, captured.password, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		for k := range r.PostForm {
			captured.form[k] = r.PostForm.Get(k)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := mail.New(mail.Config{BaseURL: "https://api.mailgun.net"})
	errutil.AssertErrorCode(t, err, "MAIL_INVALID_CONFIG")

	_, err = mail.New(mail.Config{BaseURL: "not a url", Domain: "example.org", APIKey: "k"})
	errutil.AssertErrorCode(t, err, "MAIL_INVALID_CONFIG")
}

func TestSendPasswordResetEmail(t *testing.T) {
	srv, captured := newMailgunServer(t, http.StatusOK)
	m, err := mail.New(mail.Config{BaseURL: srv.URL, Domain: "mg.example.org", APIKey: "key-123", SenderName: "Accounts"},
		mail.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	link := "https://example.org/reset?token=abc&x=1"
	require.NoError(t, m.SendPasswordResetEmail(context.Background(), "alice@example.org", "Alice <3", link))

	assert.Equal(t, "/v3/mg.example.org/messages", captured.path)
	assert.Equal(t, "api", captured.user)
	assert.Equal(t, "key-123", captured.password)
	assert.Equal(t, "Accounts <noreply@mg.example.org>", captured.form["from"])
	assert.Equal(t, "alice@example.org", captured.form["to"])
	assert.Equal(t, mail.PasswordResetSubject, captured.form["subject"])
	assert.Contains(t, captured.form["html"], "Alice &lt;3")
	assert.Contains(t, captured.form["html"], `href="https://example.org/reset?token=abc&amp;x=1"`)
}

func TestSend_UpstreamRejection(t *testing.T) {
	srv, _ := newMailgunServer(t, http.StatusUnauthorized)
	m, err := mail.New(mail.Config{BaseURL: srv.URL, Domain: "mg.example.org", APIKey: "bad"},
		mail.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	err = m.Send(context.Background(), "alice@example.org", "hi", "<p>hi</p>")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MAIL_SEND_FAILED")
	assert.NotContains(t, err.Error(), "bad")
}
