// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/store"
)

// schemaMigrator is the part of store.Migrator the migrate commands use.
type schemaMigrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Pending() ([]uint, error)
	Close() error
}

// newMigrator opens a migrator; tests replace it.
var newMigrator = func(databaseURL string) (schemaMigrator, error) {
	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return nil, err //nolint:wrapcheck // migrator errors carry their own codes
	}
	return m, nil
}

// NewMigrateCmd creates the migrate subcommand and its children.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the account database schema",
		Long:  `Apply, revert or inspect the embedded account schema migrations.`,
	}
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator, _ []string) error {
			cmd.Println("Running migrations...")
			if err := m.Up(); err != nil {
				return err //nolint:wrapcheck // migrator errors carry their own codes
			}
			cmd.Println("Migrations completed successfully")
			return nil
		}),
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Revert every migration, dropping all account data",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			confirmed, _ := cmd.Flags().GetBool("yes") //nolint:errcheck // flag is registered below
			if !confirmed {
				return oops.Code("CONFIRMATION_REQUIRED").Errorf("refusing to drop the schema without --yes")
			}
			return nil
		},
		RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator, _ []string) error {
			if err := m.Down(); err != nil {
				return err //nolint:wrapcheck // migrator errors carry their own codes
			}
			cmd.Println("All migrations reverted")
			return nil
		}),
	}
	down.Flags().Bool("yes", false, "confirm dropping all account data")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version and pending migrations",
		Args:  cobra.NoArgs,
		RunE:  withMigrator(runMigrateStatus),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Record a schema version without running it, clearing the dirty flag",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			if err := m.Force(version); err != nil {
				return err //nolint:wrapcheck // migrator errors carry their own codes
			}
			cmd.Printf("Schema version forced to %d\n", version)
			return nil
		}),
	})

	return cmd
}

// withMigrator resolves the database URL (--database-url wins over the
// config file and environment), opens a migrator for fn and closes it
// afterwards.
func withMigrator(fn func(cmd *cobra.Command, m schemaMigrator, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.ValidateDatabase(); err != nil {
			return err //nolint:wrapcheck // validation errors carry their own codes
		}

		m, err := newMigrator(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := m.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		return fn(cmd, m, args)
	}
}

func runMigrateStatus(cmd *cobra.Command, m schemaMigrator, _ []string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err //nolint:wrapcheck // migrator errors carry their own codes
	}
	pending, err := m.Pending()
	if err != nil {
		return err //nolint:wrapcheck // migrator errors carry their own codes
	}

	cmd.Printf("Current version: %d\n", version)
	if dirty {
		cmd.Println("Schema is dirty; fix the failed migration and run 'migrate force'")
	}
	if len(pending) == 0 {
		cmd.Println("No pending migrations")
		return nil
	}
	cmd.Printf("Pending migrations: %d\n", len(pending))
	for _, v := range pending {
		cmd.Printf("  %06d\n", v)
	}
	return nil
}

// parseForceVersion parses the version argument of migrate force.
func parseForceVersion(arg string) (int, error) {
	version, err := strconv.Atoi(arg)
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", arg).Errorf("version must be an integer")
	}
	return version, nil
}
