// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/store"
)

// ClanRepository implements account.ClanRepository using PostgreSQL.
type ClanRepository struct {
	db store.DB
}

// NewClanRepository creates a new ClanRepository.
func NewClanRepository(db store.DB) *ClanRepository {
	return &ClanRepository{db: db}
}

// FetchByID retrieves a clan by ID.
func (r *ClanRepository) FetchByID(ctx context.Context, id int64) (*account.Clan, error) {
	var (
		clan   account.Clan
		status int16
	)
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, tag, owner_id, status
		FROM clans
		WHERE id = $1
	`, id).Scan(&clan.ID, &clan.Name, &clan.Tag, &clan.OwnerID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CLAN_NOT_FOUND").With("clan_id", id).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CLAN_FETCH_FAILED").With("clan_id", id).Wrap(err)
	}
	clan.Status = account.ClanStatus(status)
	return &clan, nil
}

// UpdateOwner hands the clan to ownerID.
func (r *ClanRepository) UpdateOwner(ctx context.Context, id, ownerID int64) error {
	tag, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE clans SET owner_id = $2 WHERE id = $1
	`, id, ownerID)
	if err != nil {
		return oops.Code("CLAN_UPDATE_FAILED").
			With("clan_id", id).
			With("owner_id", ownerID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("CLAN_NOT_FOUND").With("clan_id", id).Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByID removes a clan. Members are released by the clan_id foreign key.
func (r *ClanRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := store.Conn(ctx, r.db).Exec(ctx, `
		DELETE FROM clans WHERE id = $1
	`, id); err != nil {
		return oops.Code("CLAN_DELETE_FAILED").With("clan_id", id).Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ account.ClanRepository = (*ClanRepository)(nil)
