package main

import (
	"github.com/spf13/cobra"

	"github.com/missionboard/missionboard/internal/store"
)

// NewMigrateCmd creates the migrate command with up/down/steps subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations (drops all data)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("migrations rolled back")
				return nil
			})
		},
	})

	var steps int
	stepsCmd := &cobra.Command{
		Use:   "steps",
		Short: "Apply n migrations (negative n rolls back)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Steps(steps); err != nil {
					return err
				}
				cmd.Printf("applied %d migration step(s)\n", steps)
				return nil
			})
		},
	}
	stepsCmd.Flags().IntVarP(&steps, "n", "n", 1, "number of migration steps")
	cmd.AddCommand(stepsCmd)

	var forceVersion int
	forceCmd := &cobra.Command{
		Use:   "force",
		Short: "Set the migration version without running migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Force(forceVersion); err != nil {
					return err
				}
				cmd.Printf("forced migration version to %d\n", forceVersion)
				return nil
			})
		},
	}
	forceCmd.Flags().IntVar(&forceVersion, "version", 0, "migration version to force")
	_ = forceCmd.MarkFlagRequired("version")
	cmd.AddCommand(forceCmd)

	return cmd
}

// withMigrator loads configuration, opens a migrator, and ensures it is
// closed after fn runs.
func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	m, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	return fn(m)
}
