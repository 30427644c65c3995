// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/holomush/accounts/pkg/errutil"
)

// Username and password constraints.
const (
	MinUsernameLength = 2
	MaxUsernameLength = 15
	MinPasswordLength = 8
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9 _\[\]-]{2,15}$`)

// reservedUsernames holds normalized names no account may register or rename to.
var reservedUsernames = []string{
	"admin", "administrator", "anonymous", "bot", "deleted_user",
	"moderator", "nobody", "root", "staff", "support", "system",
}

// ValidateUsername checks a requested username.
// Usernames are MinUsernameLength to MaxUsernameLength characters of letters,
// digits, spaces, underscores, brackets and hyphens. Spaces and underscores
// may not be mixed since both normalize to underscore. Reserved names and
// the anonymization namespace are rejected.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errutil.New(errutil.CodeBadRequest,
			"Usernames must be 2 to 15 characters of letters, numbers, spaces, underscores, brackets or hyphens.")
	}
	if strings.Contains(username, " ") && strings.Contains(username, "_") {
		return errutil.New(errutil.CodeBadRequest, "Usernames may not contain both spaces and underscores.")
	}
	normalized := NormalizeUsername(username)
	if slices.Contains(reservedUsernames, normalized) || strings.HasPrefix(normalized, "deleted_user_") {
		return errutil.New(errutil.CodeBadRequest, "This username is not allowed.")
	}
	return nil
}

// ValidatePassword checks a new password: at least MinPasswordLength
// characters including a digit, an upper-case and a lower-case letter.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errutil.New(errutil.CodeBadRequest, "Passwords must be at least 8 characters long.")
	}
	var digit, upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	if !digit || !upper || !lower {
		return errutil.New(errutil.CodeBadRequest,
			"Passwords must contain a digit, an upper-case letter and a lower-case letter.")
	}
	return nil
}

// ValidateEmail checks that email is a bare RFC 5322 address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return errutil.New(errutil.CodeBadRequest, "Invalid email address.")
	}
	_, domain, _ := strings.Cut(addr.Address, "@")
	if !strings.Contains(domain, ".") {
		return errutil.New(errutil.CodeBadRequest, "Invalid email address.")
	}
	return nil
}
