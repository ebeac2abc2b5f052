package main

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/missionboard/missionboard/internal/auth"
	"github.com/missionboard/missionboard/internal/community"
	"github.com/missionboard/missionboard/internal/logging"
	"github.com/missionboard/missionboard/internal/mission"
	"github.com/missionboard/missionboard/internal/permission"
)

// Fixed IDs keep the seed idempotent: re-running hits unique violations
// that are tolerated instead of inserting duplicate rows.
var (
	seedAdminID    = ulid.MustParse("01JSEED0000000000000000001")
	seedFounderID  = ulid.MustParse("01JSEED0000000000000000002")
	seedMemberID   = ulid.MustParse("01JSEED0000000000000000003")
	seedCommunity  = ulid.MustParse("01JSEED0000000000000000010")
	seedMissionID  = ulid.MustParse("01JSEED0000000000000000020")
	seedGroupAlpha = ulid.MustParse("01JSEED0000000000000000021")
	seedGroupBravo = ulid.MustParse("01JSEED0000000000000000022")
)

// NewSeedCmd creates the seed command, which loads idempotent demo data.
func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data (idempotent)",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			if err := seed(ctx, cmd, svcs); err != nil {
				return err
			}
			cmd.Println("seed complete")
			return nil
		},
	}
}

func seed(ctx context.Context, cmd *cobra.Command, svcs *services) error {
	users := []*auth.User{
		{ID: seedAdminID, Nickname: "Demo Admin", SteamID: "76561198000000001", CreatedAt: time.Now().UTC()},
		{ID: seedFounderID, Nickname: "Demo Founder", SteamID: "76561198000000002", CreatedAt: time.Now().UTC()},
		{ID: seedMemberID, Nickname: "Demo Member", SteamID: "76561198000000003", CreatedAt: time.Now().UTC()},
	}
	for _, u := range users {
		if err := svcs.users.Create(ctx, u); err != nil {
			if errors.Is(err, auth.ErrDuplicateSteamID) {
				continue
			}
			return err
		}
		cmd.Printf("created user %s\n", u.Nickname)
	}

	if _, err := svcs.permissions.CreateGrant(ctx, seedAdminID, "*"); err != nil {
		if !errors.Is(err, permission.ErrDuplicateGrant) {
			return err
		}
	} else {
		cmd.Println("granted * to Demo Admin")
	}

	c := &community.Community{
		ID:        seedCommunity,
		Name:      "Demo Community",
		Slug:      "demo-community",
		CreatedAt: time.Now().UTC(),
	}
	if err := svcs.communities.CreateCommunity(ctx, c, seedFounderID); err != nil {
		if !errors.Is(err, community.ErrConflict) {
			return err
		}
	} else {
		cmd.Println("created community demo-community")
	}

	start := time.Now().UTC().Truncate(time.Hour).Add(7 * 24 * time.Hour)
	m := &mission.Mission{
		ID:               seedMissionID,
		Slug:             "operation-sandstorm",
		Title:            "Operation Sandstorm",
		ShortDescription: "Combined-arms assault on the northern airfield.",
		BriefingTime:     start.Add(-time.Hour),
		SlottingTime:     start.Add(-30 * time.Minute),
		StartTime:        start,
		EndTime:          start.Add(3 * time.Hour),
		Visibility:       mission.VisibilityPublic,
		CommunityID:      &seedCommunity,
		CreatorID:        seedFounderID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := svcs.missions.CreateMission(ctx, m); err != nil {
		if errors.Is(err, mission.ErrConflict) {
			// Mission already seeded; slotlist follows it.
			return nil
		}
		return err
	}
	cmd.Println("created mission operation-sandstorm")

	groups := []*mission.SlotGroup{
		{ID: seedGroupAlpha, MissionID: seedMissionID, Title: "Alpha Squad", OrderNumber: 1, CreatedAt: time.Now().UTC()},
		{ID: seedGroupBravo, MissionID: seedMissionID, Title: "Bravo Squad", OrderNumber: 2, CreatedAt: time.Now().UTC()},
	}
	for _, g := range groups {
		if err := svcs.missions.CreateSlotGroup(ctx, g); err != nil {
			return err
		}
	}

	slots := []struct {
		group ulid.ULID
		title string
		auto  bool
	}{
		{seedGroupAlpha, "Squad Leader", false},
		{seedGroupAlpha, "Medic", true},
		{seedGroupAlpha, "Rifleman", true},
		{seedGroupBravo, "Squad Leader", false},
		{seedGroupBravo, "Autorifleman", true},
	}
	after := 0
	for _, s := range slots {
		slot := &mission.Slot{
			ID:             ulid.Make(),
			SlotGroupID:    s.group,
			Title:          s.title,
			Difficulty:     2,
			AutoAssignable: s.auto,
			CreatedAt:      time.Now().UTC(),
		}
		if err := svcs.missions.CreateSlot(ctx, slot, after); err != nil {
			return err
		}
		after++
	}
	cmd.Printf("created %d slots in 2 groups\n", len(slots))

	return nil
}
