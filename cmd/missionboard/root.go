package main

import (
	"github.com/spf13/cobra"

	"github.com/missionboard/missionboard/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the MissionBoard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missionboard",
		Short: "MissionBoard - mission slotting for communal events",
		Long: `MissionBoard manages missions, slotlists, and sign-ups for
communal gaming events, with hierarchical permissions and communities.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("database.url", "", "PostgreSQL connection string")
	cmd.PersistentFlags().String("log.format", "", "log format (json or text)")
	cmd.PersistentFlags().String("observability.addr", "", "metrics and health probe listen address")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewGrantCmd())

	return cmd
}

// loadConfig resolves configuration from the --config file and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
