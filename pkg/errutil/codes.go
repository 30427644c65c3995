// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package errutil provides the account service error taxonomy together with
// helpers for logging and asserting on structured errors.
package errutil

import (
	"errors"
	"net/http"
)

// Code classifies a failure returned by an account service operation.
type Code string

// Error codes shared by every service operation.
const (
	CodeIncorrectCredentials   Code = "INCORRECT_CREDENTIALS"
	CodeInsufficientPrivileges Code = "INSUFFICIENT_PRIVILEGES"
	CodePendingVerification    Code = "PENDING_VERIFICATION"
	CodeBadRequest             Code = "BAD_REQUEST"
	CodeNotFound               Code = "NOT_FOUND"
	CodeConflict               Code = "CONFLICT"
	CodeInternal               Code = "INTERNAL_SERVER_ERROR"
)

// HTTPStatus returns the response status a transport should use for the code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeIncorrectCredentials, CodeInsufficientPrivileges, CodePendingVerification:
		return http.StatusUnauthorized
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to end users; the
// wrapped cause is for logs only.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code) + ": " + e.Message + ": " + e.cause.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// New returns a classified error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap classifies err. A nil err yields a classified error without a cause.
func Wrap(code Code, message string, err error) error {
	return &Error{Code: code, Message: message, cause: err}
}

// Internal wraps err as an INTERNAL_SERVER_ERROR with a generic message.
func Internal(err error) error {
	return Wrap(CodeInternal, "An internal server error occurred.", err)
}

// CodeOf returns the code of the outermost classified error in err's chain.
// Unclassified errors report CodeInternal; a nil error reports "".
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Code
	}
	return CodeInternal
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) && classified.Message != "" {
		return classified.Message
	}
	return "An internal server error occurred."
}

// Is reports whether err is classified with code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
