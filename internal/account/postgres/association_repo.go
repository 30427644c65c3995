// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/store"
)

// IPAssociationRepository implements account.IPAssociationRepository using PostgreSQL.
type IPAssociationRepository struct {
	db store.DB
}

// NewIPAssociationRepository creates a new IPAssociationRepository.
func NewIPAssociationRepository(db store.DB) *IPAssociationRepository {
	return &IPAssociationRepository{db: db}
}

// DeleteAllByAccountID removes and returns the IP associations of an account.
func (r *IPAssociationRepository) DeleteAllByAccountID(ctx context.Context, accountID int64) ([]account.IPAssociation, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		DELETE FROM ip_user
		WHERE account_id = $1
		RETURNING id, account_id, ip, occurrences
	`, accountID)
	if err != nil {
		return nil, oops.Code("ASSOCIATION_DELETE_FAILED").
			With("table", "ip_user").
			With("account_id", accountID).
			Wrap(err)
	}
	removed, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (account.IPAssociation, error) {
		var a account.IPAssociation
		err := row.Scan(&a.ID, &a.AccountID, &a.IP, &a.Occurrences)
		return a, err //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		return nil, oops.Code("ASSOCIATION_DELETE_FAILED").
			With("table", "ip_user").
			With("account_id", accountID).
			Wrap(err)
	}
	return removed, nil
}

// HardwareAssociationRepository implements account.HardwareAssociationRepository using PostgreSQL.
type HardwareAssociationRepository struct {
	db store.DB
}

// NewHardwareAssociationRepository creates a new HardwareAssociationRepository.
func NewHardwareAssociationRepository(db store.DB) *HardwareAssociationRepository {
	return &HardwareAssociationRepository{db: db}
}

// DeleteAllByAccountID removes and returns the hardware associations of an account.
func (r *HardwareAssociationRepository) DeleteAllByAccountID(ctx context.Context, accountID int64) ([]account.HardwareAssociation, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		DELETE FROM hw_user
		WHERE account_id = $1
		RETURNING id, account_id, mac, unique_id, disk_id, occurrences, activated
	`, accountID)
	if err != nil {
		return nil, oops.Code("ASSOCIATION_DELETE_FAILED").
			With("table", "hw_user").
			With("account_id", accountID).
			Wrap(err)
	}
	removed, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (account.HardwareAssociation, error) {
		var a account.HardwareAssociation
		err := row.Scan(&a.ID, &a.AccountID, &a.MAC, &a.UniqueID, &a.DiskID, &a.Occurrences, &a.Activated)
		return a, err //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		return nil, oops.Code("ASSOCIATION_DELETE_FAILED").
			With("table", "hw_user").
			With("account_id", accountID).
			Wrap(err)
	}
	return removed, nil
}

// Compile-time interface checks.
var (
	_ account.IPAssociationRepository       = (*IPAssociationRepository)(nil)
	_ account.HardwareAssociationRepository = (*HardwareAssociationRepository)(nil)
)
