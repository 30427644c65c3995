// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/store"
	"github.com/holomush/accounts/pkg/errutil"
)

// accountDeleter is the part of account.DeletionOrchestrator the command uses.
type accountDeleter interface {
	Delete(ctx context.Context, accountID int64) error
}

// NewDeleteAccountCmd creates the delete-account subcommand.
func NewDeleteAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-account <account-id>",
		Short: "Anonymize an account and purge its associated data",
		Long: `Run the account deletion cascade for one account: hand off or dissolve
an owned clan, purge reset tokens and IP/hardware associations, anonymize
the profile, remove the avatar and publish the account-deleted event.`,
		Args: cobra.ExactArgs(1),
		RunE: runDeleteAccount,
	}
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	return cmd
}

func runDeleteAccount(cmd *cobra.Command, args []string) error {
	accountID, err := parseAccountID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateDeletion(); err != nil {
		return err //nolint:wrapcheck // validation errors carry their own codes
	}
	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := store.Connect(ctx, cfg.Database.URL, store.ConnectOptions{
		MaxConns:     cfg.Database.MaxConns,
		PingAttempts: cfg.Database.PingAttempts,
		Logger:       logger,
	})
	if err != nil {
		return err //nolint:wrapcheck // store errors carry their own codes
	}
	defer pool.Close()

	rdb := newRedisClient(cfg.Redis)
	defer rdb.Close() //nolint:errcheck // process is exiting

	deletions, err := newDeletionOrchestrator(ctx, cfg, pool, rdb, logger)
	if err != nil {
		return err
	}
	return deleteAccount(cmd, deletions, accountID)
}

// deleteAccount runs the cascade and reports the outcome in the taxonomy's
// user-facing terms.
func deleteAccount(cmd *cobra.Command, deletions accountDeleter, accountID int64) error {
	if err := deletions.Delete(cmd.Context(), accountID); err != nil {
		return oops.Code(string(errutil.CodeOf(err))).
			With("account_id", accountID).
			Errorf("%s", errutil.MessageOf(err))
	}
	cmd.Printf("Account %d deleted\n", accountID)
	return nil
}

// parseAccountID parses a positive account ID argument.
func parseAccountID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, oops.Code("INVALID_ACCOUNT_ID").With("input", arg).Errorf("account id must be a positive integer")
	}
	return id, nil
}
