package cmd

import (
	"errors"
	"fmt"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/MyelinBots/guildbot-go/internal/db"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, opts, func(m *db.Migrator) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, opts, func(m *db.Migrator) error { return m.Down() })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, opts, func(m *db.Migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
					return nil
				})
			},
		},
	)
	return migrateCmd
}

func newDBCommand(opts *rootOptions) *cobra.Command {
	var yes bool
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}
	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table of the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to drop the database without --yes")
			}
			return withMigrator(cmd, opts, func(m *db.Migrator) error {
				if err := m.Drop(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "database dropped")
				return nil
			})
		},
	}
	drop.Flags().BoolVar(&yes, "yes", false, "confirm dropping all tables")
	dbCmd.AddCommand(drop)
	return dbCmd
}

func withMigrator(cmd *cobra.Command, opts *rootOptions, fn func(m *db.Migrator) error) error {
	cfg, logger, err := load(cmd, opts)
	if err != nil {
		return err
	}
	m, err := db.NewMigrator(cfg.DBConfig, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("closing migrator")
		}
	}()
	return fn(m)
}

func migrateUp(cfg config.Config, logger zerolog.Logger) error {
	m, err := db.NewMigrator(cfg.DBConfig, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
