package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/missionboard/missionboard/internal/logging"
	"github.com/missionboard/missionboard/internal/observability"
)

// NewServeCmd creates the serve command, which runs the MissionBoard core
// until interrupted.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MissionBoard backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logging.SetDefault("missionboard", version, cfg.LogFormat)
			logger := logging.Setup("missionboard", version, cfg.LogFormat, nil)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svcs, err := buildServices(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer svcs.Close()

			obs := observability.NewServer(cfg.ObservabilityAddr, func() bool {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return svcs.pool.Ping(pingCtx) == nil
			})
			obsErr, err := obs.Start()
			if err != nil {
				return err
			}

			logger.Info("missionboard started",
				"version", version,
				"observability_addr", obs.Addr(),
			)

			select {
			case <-ctx.Done():
				logger.Info("shutdown signal received")
			case err := <-obsErr:
				if err != nil {
					logger.Error("observability server failed", "error", err)
				}
			}

			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return obs.Stop(stopCtx)
		},
	}
}
