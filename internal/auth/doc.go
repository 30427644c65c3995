// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth provides account authentication for the HoloMUSH community
// account service.
//
// # Domain Types
//
//   - Account - a registered user, never hard-deleted
//   - Privileges - the flat capability bitmask attached to an account
//   - SessionToken - the persisted, hashed form of an opaque bearer secret
//   - PasswordResetToken - a pending password recovery request
//
// Raw secrets never reach storage. Every lookup hashes the presented secret
// with HashSecret and queries by the digest.
//
// # Services
//
//   - Service - authenticate, authorize and logout
//   - PasswordResetService - initiate and verify password recovery
//
// Services are created with New*Service constructors that validate dependencies.
// Every error they return is classified with an errutil.Code.
package auth
