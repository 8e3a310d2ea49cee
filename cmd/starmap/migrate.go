package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/corpstory/starmap/internal/db"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the event store schema",
	}

	// withDB opens the store without migrating; the subcommands manage the
	// schema themselves.
	withDB := func(run func(cmd *cobra.Command, database *db.DB, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			database, err := db.OpenDB(root.dbPath)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()
			return run(cmd, database, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, database *db.DB, _ []string) error {
				if err := database.MigrateUp(db.MigrationsFS()); err != nil {
					return err
				}
				return printVersion(cmd.OutOrStdout(), database)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, database *db.DB, _ []string) error {
				if err := database.MigrateDown(db.MigrationsFS()); err != nil {
					return err
				}
				return printVersion(cmd.OutOrStdout(), database)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current and latest schema versions",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, database *db.DB, _ []string) error {
				if err := printVersion(cmd.OutOrStdout(), database); err != nil {
					return err
				}
				latest, err := db.LatestMigrationVersion(db.MigrationsFS())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Latest version: %d\n", latest)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations (recovery only)",
			Args:  cobra.ExactArgs(1),
			RunE: withDB(func(cmd *cobra.Command, database *db.DB, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version number %q", args[0])
				}
				if err := database.MigrateForce(db.MigrationsFS(), v); err != nil {
					return err
				}
				return printVersion(cmd.OutOrStdout(), database)
			}),
		},
	)
	return cmd
}

func printVersion(w io.Writer, database *db.DB) error {
	version, dirty, err := database.MigrateVersion(db.MigrationsFS())
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	fmt.Fprintf(w, "Current version: %d (dirty: %v)\n", version, dirty)
	if dirty {
		fmt.Fprintln(w, "WARNING: a migration failed mid-execution; inspect the database, then run: starmap migrate force <version>")
	}
	return nil
}
