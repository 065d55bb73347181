package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/upb/blog-platform/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
		Long:  `Database migration tool for managing schema versions. Use with 'up', 'down' or 'version'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Revert database migrations",
		RunE:  runMigrateDown,
	}
	down.Flags().UintP("num-steps", "n", 1, "Number of migrations to revert (0 = all)")
	down.Flags().BoolP("yes", "y", false, "Confirm reverting migrations")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(down)
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE:  runMigrateVersion,
	})
	return cmd
}

func openMigrator(cmd *cobra.Command) (*database.Migrator, error) {
	cfg, logger, err := loadRuntime(cmd.Context())
	if err != nil {
		return nil, err
	}
	return database.NewMigrator(cfg.Database, logger)
}

func runMigrateUp(cmd *cobra.Command, _ []string) (err error) {
	mg, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, mg.Close()) }()

	if err := mg.Up(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) (err error) {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	steps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return err
	}
	if !yes {
		return fmt.Errorf("refusing to revert migrations without --yes")
	}

	mg, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, mg.Close()) }()

	if err := mg.Down(int(steps)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations reverted")
	return nil
}

func runMigrateVersion(cmd *cobra.Command, _ []string) (err error) {
	mg, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, mg.Close()) }()

	version, dirty, ok, err := mg.Version()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	return nil
}
