// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package account manages the account lifecycle beyond sign-in: profile
// edits and the regulatory deletion workflow.
//
// Deletion never removes the account row. DeletionOrchestrator hands off
// clan ownership, purges recovery tokens and client associations, replaces
// personal data with placeholders and removes the stored avatar, all inside
// one transaction. Downstream systems learn about the deletion from an event
// published after commit.
package account
