// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the LumenMUD CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lumenmud",
		Short: "LumenMUD - a text game server",
		Long: `LumenMUD is a telnet text game server with account registration,
e-mail validation, and ban enforcement.`,
	}

	cmd.PersistentFlags().String("config", "", "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}

// configPath returns the --config flag value, or empty for the default path.
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
