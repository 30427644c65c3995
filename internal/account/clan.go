// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"cmp"
	"context"
	"slices"

	"github.com/holomush/accounts/internal/auth"
)

// ClanStatus controls how new members may join a clan.
type ClanStatus int16

// Clan statuses.
const (
	ClanClosed ClanStatus = iota
	ClanOpenForAll
	ClanInviteOnly
	ClanRequestToJoin
)

// Clan is a player group with exactly one owner.
type Clan struct {
	ID      int64
	Name    string
	Tag     string
	OwnerID int64
	Status  ClanStatus
}

// ClanRepository manages clan persistence.
type ClanRepository interface {
	FetchByID(ctx context.Context, id int64) (*Clan, error)
	UpdateOwner(ctx context.Context, id, ownerID int64) error
	DeleteByID(ctx context.Context, id int64) error
}

// SelectSuccessor picks the member who inherits a clan from departingID:
// the lowest privileges, then the least recent activity, then the lowest ID.
// It returns nil when no other member remains.
func SelectSuccessor(members []*auth.Account, departingID int64) *auth.Account {
	candidates := slices.DeleteFunc(slices.Clone(members), func(a *auth.Account) bool {
		return a.ID == departingID
	})
	if len(candidates) == 0 {
		return nil
	}
	return slices.MinFunc(candidates, func(a, b *auth.Account) int {
		return cmp.Or(
			cmp.Compare(a.Privileges, b.Privileges),
			a.LatestActivity.Compare(b.LatestActivity),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
