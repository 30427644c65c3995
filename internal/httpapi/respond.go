// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/pkg/errutil"
)

type errorResponse struct {
	ErrorCode    errutil.Code `json:"error_code"`
	UserFeedback string       `json:"user_feedback"`
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out) //nolint:wrapcheck // mapped to BAD_REQUEST by callers
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders a service error. Only the code and the safe message
// reach the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var classified *errutil.Error
	if !errors.As(err, &classified) {
		errutil.LogError(s.logger, "unclassified error reached transport", err, "path", r.URL.Path)
	}
	code := errutil.CodeOf(err)
	status := code.HTTPStatus()
	s.logger.DebugContext(r.Context(), "request failed",
		"path", r.URL.Path,
		"status", status,
		"error_code", string(code))
	writeJSON(w, status, errorResponse{ErrorCode: code, UserFeedback: errutil.MessageOf(err)})
}

func badRequest(msg string) error {
	return errutil.New(errutil.CodeBadRequest, msg)
}

// clientInfo reads the caller metadata set by the fronting proxy.
func clientInfo(r *http.Request) auth.ClientInfo {
	ip := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if ip == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
	}
	return auth.ClientInfo{IPAddress: ip, UserAgent: r.UserAgent()}
}

func accountIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("Invalid user id.")
	}
	return id, nil
}

func sessionSecret(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
