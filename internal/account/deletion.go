// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/pkg/errutil"
)

// ObjectStorage holds user-uploaded files.
type ObjectStorage interface {
	// DeleteAvatar removes the avatar of an account. Deleting a missing
	// avatar succeeds.
	DeleteAvatar(ctx context.Context, accountID int64) error
}

// EventChannel notifies downstream systems of account lifecycle changes.
type EventChannel interface {
	PublishAccountDeleted(ctx context.Context, accountID int64) error
}

// Transactor runs fn inside a single storage transaction. Repository calls
// made with the context passed to fn join that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DeletionDeps are the collaborators of a DeletionOrchestrator. All are required.
type DeletionDeps struct {
	Accounts   auth.AccountRepository
	Clans      ClanRepository
	Resets     auth.PasswordResetTokenRepository
	IPs        IPAssociationRepository
	Hardware   HardwareAssociationRepository
	Avatars    ObjectStorage
	Events     EventChannel
	Transactor Transactor
}

func (d DeletionDeps) validate() error {
	missing := func(name string) error {
		return oops.Code("ACCOUNT_INVALID_CONFIG").Errorf("%s is required", name)
	}
	switch {
	case d.Accounts == nil:
		return missing("accounts repository")
	case d.Clans == nil:
		return missing("clans repository")
	case d.Resets == nil:
		return missing("password reset repository")
	case d.IPs == nil:
		return missing("ip association repository")
	case d.Hardware == nil:
		return missing("hardware association repository")
	case d.Avatars == nil:
		return missing("object storage")
	case d.Events == nil:
		return missing("event channel")
	case d.Transactor == nil:
		return missing("transactor")
	}
	return nil
}

// DeletionOrchestrator anonymizes accounts on request.
type DeletionOrchestrator struct {
	deps   DeletionDeps
	logger *slog.Logger
}

// NewDeletionOrchestrator creates a new DeletionOrchestrator.
func NewDeletionOrchestrator(deps DeletionDeps, opts ...Option) (*DeletionOrchestrator, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &DeletionOrchestrator{deps: deps, logger: o.logger}, nil
}

// Delete anonymizes an account and removes everything that identifies it.
//
// The clan hand-off, token and association purge, anonymization and avatar
// removal commit together or not at all, with one exception: the avatar is
// removed from object storage before the commit, so a failed commit leaves
// the account intact without its avatar. The deletion event is published
// after commit; a publish failure is logged and does not fail the call.
// Deleting an already deleted account succeeds.
func (o *DeletionOrchestrator) Delete(ctx context.Context, accountID int64) (err error) {
	defer func() { RecordDeletion(err) }()

	account, err := o.deps.Accounts.FetchByID(ctx, accountID)
	if errors.Is(err, auth.ErrNotFound) {
		return errutil.New(errutil.CodeNotFound, "User not found.")
	}
	if err != nil {
		return o.internal("failed to fetch account for deletion", accountID,
			oops.With("operation", "fetch account by id").Wrap(err))
	}

	if err := o.deps.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		return o.cascade(ctx, account)
	}); err != nil {
		return o.internal("account deletion failed", accountID, err)
	}

	o.logger.InfoContext(ctx, "account deleted", "account_id", accountID)

	if err := o.deps.Events.PublishAccountDeleted(ctx, accountID); err != nil {
		errutil.LogError(o.logger.With("account_id", accountID),
			"failed to publish account deletion event", err)
	}
	return nil
}

func (o *DeletionOrchestrator) cascade(ctx context.Context, account *auth.Account) error {
	if account.ClanID != nil {
		if err := o.handOffClan(ctx, account, *account.ClanID); err != nil {
			return err
		}
	}

	resets, err := o.deps.Resets.DeleteAllByUsername(ctx, account.Username)
	if err != nil {
		return oops.With("operation", "delete password reset tokens").Wrap(err)
	}

	ips, err := o.deps.IPs.DeleteAllByAccountID(ctx, account.ID)
	if err != nil {
		return oops.With("operation", "delete ip associations").Wrap(err)
	}
	hardware, err := o.deps.Hardware.DeleteAllByAccountID(ctx, account.ID)
	if err != nil {
		return oops.With("operation", "delete hardware associations").Wrap(err)
	}
	o.logger.DebugContext(ctx, "purged account records",
		"account_id", account.ID,
		"password_reset_tokens", len(resets),
		"ip_associations", len(ips),
		"hardware_associations", len(hardware))

	if err := o.deps.Accounts.Anonymize(ctx, account.ID); err != nil {
		return oops.With("operation", "anonymize account").Wrap(err)
	}

	if err := o.deps.Avatars.DeleteAvatar(ctx, account.ID); err != nil {
		return oops.With("operation", "delete avatar").Wrap(err)
	}
	return nil
}

// handOffClan transfers a clan owned by account to its successor, or
// deletes the clan when account is its only member.
func (o *DeletionOrchestrator) handOffClan(ctx context.Context, account *auth.Account, clanID int64) error {
	clan, err := o.deps.Clans.FetchByID(ctx, clanID)
	if errors.Is(err, auth.ErrNotFound) {
		return nil
	}
	if err != nil {
		return oops.With("operation", "fetch clan").With("clan_id", clanID).Wrap(err)
	}
	if clan.OwnerID != account.ID {
		return nil
	}

	members, err := o.deps.Accounts.FetchManyByClanID(ctx, clan.ID)
	if err != nil {
		return oops.With("operation", "fetch clan members").With("clan_id", clan.ID).Wrap(err)
	}

	successor := SelectSuccessor(members, account.ID)
	if successor == nil {
		if err := o.deps.Clans.DeleteByID(ctx, clan.ID); err != nil {
			return oops.With("operation", "delete clan").With("clan_id", clan.ID).Wrap(err)
		}
		o.logger.InfoContext(ctx, "deleted clan of departing owner",
			"account_id", account.ID, "clan_id", clan.ID)
		return nil
	}

	if err := o.deps.Clans.UpdateOwner(ctx, clan.ID, successor.ID); err != nil {
		return oops.With("operation", "transfer clan ownership").With("clan_id", clan.ID).Wrap(err)
	}
	o.logger.InfoContext(ctx, "transferred clan ownership",
		"account_id", account.ID, "clan_id", clan.ID, "new_owner_id", successor.ID)
	return nil
}

func (o *DeletionOrchestrator) internal(msg string, accountID int64, err error) error {
	err = errutil.Internal(err)
	errutil.LogError(o.logger.With("account_id", accountID), msg, err)
	return err
}
