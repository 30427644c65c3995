// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/samber/oops"
)

// SecretBytes is the entropy of an issued secret.
const SecretBytes = 32

// GenerateSecret returns a fresh URL-safe secret with SecretBytes of entropy.
func GenerateSecret() (string, error) {
	b := make([]byte, SecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SecretBytes).
			Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSecret returns the hex SHA-256 digest of a secret. It is deterministic
// and unsalted so it can serve as a lookup key.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// IssueSecret generates a secret and its digest.
// The secret goes to the client; only the digest is stored.
func IssueSecret() (secret, hash string, err error) {
	secret, err = GenerateSecret()
	if err != nil {
		return "", "", err
	}
	return secret, HashSecret(secret), nil
}
