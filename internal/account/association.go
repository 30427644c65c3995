// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import "context"

// IPAssociation records an address an account has connected from.
type IPAssociation struct {
	ID          int64
	AccountID   int64
	IP          string
	Occurrences int
}

// HardwareAssociation records a client hardware fingerprint seen for an account.
type HardwareAssociation struct {
	ID          int64
	AccountID   int64
	MAC         string
	UniqueID    string
	DiskID      string
	Occurrences int
	Activated   bool
}

// IPAssociationRepository manages IP association persistence.
type IPAssociationRepository interface {
	// DeleteAllByAccountID removes and returns every association of the account.
	DeleteAllByAccountID(ctx context.Context, accountID int64) ([]IPAssociation, error)
}

// HardwareAssociationRepository manages hardware association persistence.
type HardwareAssociationRepository interface {
	// DeleteAllByAccountID removes and returns every association of the account.
	DeleteAllByAccountID(ctx context.Context, accountID int64) ([]HardwareAssociation, error)
}
