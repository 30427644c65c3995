// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/logging"
)

// serviceName identifies this process in logs.
const serviceName = "accounts"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the accounts CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account identity and lifecycle service",
		Long: `accounts authenticates players, issues session tokens, runs password
recovery and anonymizes deleted accounts.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewDeleteAccountCmd())

	return cmd
}

// loadConfig layers the config file, environment and the command's flags.
// Without --config, a config.yaml in the XDG config directory is used if present.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		path = config.DefaultFile()
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err //nolint:wrapcheck // config errors carry their own codes
	}
	return cfg, nil
}

// setupLogging installs the default logger described by cfg.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("key", "log.level").Wrap(err)
	}
	return logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   level,
	}), nil
}
