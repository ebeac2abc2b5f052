package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/missionboard/missionboard/internal/store"
)

// NewStatusCmd creates the status command, which reports database
// connectivity and the current migration version.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report database connectivity and migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			pool, err := store.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				cmd.Println("database: unreachable")
				return err
			}
			defer pool.Close()
			cmd.Println("database: ok")

			m, err := store.NewMigrator(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if version == 0 {
				cmd.Println("migrations: none applied")
				return nil
			}
			if dirty {
				cmd.Printf("migrations: version %d (dirty)\n", version)
				return nil
			}
			cmd.Printf("migrations: version %d\n", version)
			return nil
		},
	}
}
