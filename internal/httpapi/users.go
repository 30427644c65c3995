// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import "net/http"

type updateUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type updateEmailRequest struct {
	CurrentPassword string `json:"current_password"`
	NewEmail        string `json:"new_email"`
}

// authorizeOwner resolves the path account and checks the session belongs to it.
func (s *Server) authorizeOwner(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := accountIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return 0, false
	}
	if _, err := s.auth.Authorize(r.Context(), sessionSecret(r), &id); err != nil {
		s.writeError(w, r, err)
		return 0, false
	}
	return id, true
}

func (s *Server) handleUpdateUsername(w http.ResponseWriter, r *http.Request) {
	id, ok := s.authorizeOwner(w, r)
	if !ok {
		return
	}
	var req updateUsernameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("Invalid request body."))
		return
	}
	if err := s.profiles.UpdateUsername(r.Context(), id, req.NewUsername); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := s.authorizeOwner(w, r)
	if !ok {
		return
	}
	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("Invalid request body."))
		return
	}
	if err := s.profiles.UpdatePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.authorizeOwner(w, r)
	if !ok {
		return
	}
	var req updateEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest("Invalid request body."))
		return
	}
	if err := s.profiles.UpdateEmail(r.Context(), id, req.CurrentPassword, req.NewEmail); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deletions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
