package main

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/missionboard/missionboard/internal/logging"
)

// NewGrantCmd creates the grant command for managing permission grants
// from the command line.
func NewGrantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Manage permission grants",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <user-id> <permission>",
		Short: "Grant a permission to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGrantService(cmd, func(ctx context.Context, svcs *services) error {
				userID, err := ulid.Parse(args[0])
				if err != nil {
					return oops.With("user_id", args[0]).Wrap(err)
				}
				grant, err := svcs.permissions.CreateGrant(ctx, userID, args[1])
				if err != nil {
					return err
				}
				cmd.Printf("granted %s to %s\n", grant.Permission, userID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <user-id> <permission>",
		Short: "Revoke a permission from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGrantService(cmd, func(ctx context.Context, svcs *services) error {
				userID, err := ulid.Parse(args[0])
				if err != nil {
					return oops.With("user_id", args[0]).Wrap(err)
				}
				if err := svcs.permissions.DeleteGrant(ctx, userID, args[1]); err != nil {
					return err
				}
				cmd.Printf("revoked %s from %s\n", args[1], userID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <user-id>",
		Short: "List a user's permission grants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGrantService(cmd, func(ctx context.Context, svcs *services) error {
				userID, err := ulid.Parse(args[0])
				if err != nil {
					return oops.With("user_id", args[0]).Wrap(err)
				}
				grants, err := svcs.permissions.ListGrants(ctx, userID)
				if err != nil {
					return err
				}
				if len(grants) == 0 {
					cmd.Println("no grants")
					return nil
				}
				for _, g := range grants {
					cmd.Println(g.Permission)
				}
				return nil
			})
		},
	})

	return cmd
}

// withGrantService loads configuration, wires the services, and ensures
// the pool is released after fn runs.
func withGrantService(cmd *cobra.Command, fn func(context.Context, *services) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.Setup("missionboard", version, cfg.LogFormat, nil)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	svcs, err := buildServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svcs.Close()

	return fn(ctx, svcs)
}
