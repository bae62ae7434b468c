// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/lumenmud/lumenmud/internal/config"
	"github.com/lumenmud/lumenmud/internal/store"
)

// newMigrateCmd creates the migrate subcommand and its children.
func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *store.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					cmd.Println("Migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations (drops all tables and data)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *store.Migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					cmd.Println("Migrations rolled back")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *store.Migrator) error {
					return printMigrationStatus(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the migration version without running migrations",
			Long: `Set the migration version without running migrations. Use only to
recover from a dirty state after manually fixing the database.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil || version < 0 {
					return oops.Code("INVALID_VERSION").Errorf("version must be a non-negative integer, got %q", args[0])
				}
				return withMigrator(cmd, func(m *store.Migrator) error {
					if err := m.Force(version); err != nil {
						return err
					}
					cmd.Printf("Version forced to %d\n", version)
					return nil
				})
			},
		},
	)

	return cmd
}

// withMigrator loads config, opens a migrator, runs fn, and closes the
// migrator. Close errors are returned only if fn succeeded.
func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	cfg, err := config.Load(configPath(cmd), nil)
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	fnErr := fn(migrator)
	closeErr := migrator.Close()
	if fnErr != nil {
		return fnErr
	}
	return closeErr
}

func printMigrationStatus(cmd *cobra.Command, m *store.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}

	if version == 0 {
		cmd.Println("Current version: none")
	} else {
		name, err := store.MigrationName(version)
		if err != nil {
			return err
		}
		cmd.Printf("Current version: %d (%s)\n", version, name)
	}
	if dirty {
		cmd.Println("State: DIRTY (a migration failed partway; fix the database and use 'migrate force')")
	}

	applied, err := m.AppliedMigrations()
	if err != nil {
		return err
	}
	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}

	cmd.Printf("Applied: %d\n", len(applied))
	for _, v := range applied {
		name, err := store.MigrationName(v)
		if err != nil {
			return err
		}
		cmd.Printf("  %06d %s\n", v, name)
	}

	cmd.Printf("Pending: %d\n", len(pending))
	for _, v := range pending {
		name, err := store.MigrationName(v)
		if err != nil {
			return err
		}
		cmd.Printf("  %06d %s\n", v, name)
	}

	return nil
}
