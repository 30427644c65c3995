// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"net/http"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/pkg/errutil"
)

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type identityResponse struct {
	UserID     int64           `json:"user_id"`
	Username   string          `json:"username"`
	Privileges auth.Privileges `json:"privileges"`
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("Invalid request body."))
		return
	}

	grant, err := s.auth.Authenticate(r.Context(), req.Username, req.Password, clientInfo(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, s.sessionCookie(grant.Secret, int(s.cookie.TTL.Seconds())))
	writeJSON(w, http.StatusOK, identityResponse{
		UserID:     grant.AccountID,
		Username:   grant.Username,
		Privileges: grant.Privileges,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	client := clientInfo(r)
	token, err := s.auth.Authorize(r.Context(), sessionSecret(r), nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.auth.Logout(r.Context(), token, client); err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, s.sessionCookie("", -1))
	w.WriteHeader(http.StatusNoContent)
}

type initPasswordResetRequest struct {
	Username       string `json:"username"`
	RecaptchaToken string `json:"recaptcha_token"`
}

func (s *Server) handleInitPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req initPasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("Invalid request body."))
		return
	}
	client := clientInfo(r)

	if s.captcha != nil {
		ok, err := s.captcha.Verify(r.Context(), req.RecaptchaToken, client.IPAddress)
		if err != nil {
			err = errutil.Internal(err)
			errutil.LogError(s.logger, "captcha verification failed", err, "client_ip", client.IPAddress)
			s.writeError(w, r, err)
			return
		}
		if !ok {
			s.writeError(w, r, badRequest("Captcha verification failed."))
			return
		}
	}

	if err := s.resets.Initiate(r.Context(), req.Username, client); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type verifyPasswordResetRequest struct {
	HashedPasswordResetToken string `json:"hashed_password_reset_token"`
	NewPassword              string `json:"new_password"`
}

func (s *Server) handleVerifyPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req verifyPasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("Invalid request body."))
		return
	}

	if err := s.resets.Verify(r.Context(), req.HashedPasswordResetToken, req.NewPassword, clientInfo(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionCookie builds the session cookie. A negative maxAge deletes it.
func (s *Server) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   s.cookie.Domain,
		MaxAge:   maxAge,
		Secure:   s.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
}
