// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/missionboard/missionboard/internal/auth"
	authpg "github.com/missionboard/missionboard/internal/auth/postgres"
	"github.com/missionboard/missionboard/internal/community"
	communitypg "github.com/missionboard/missionboard/internal/community/postgres"
	"github.com/missionboard/missionboard/internal/config"
	"github.com/missionboard/missionboard/internal/mission"
	missionpg "github.com/missionboard/missionboard/internal/mission/postgres"
	"github.com/missionboard/missionboard/internal/permission"
	permissionpg "github.com/missionboard/missionboard/internal/permission/postgres"
	"github.com/missionboard/missionboard/internal/store"
)

// services bundles the wired application services and their shared pool.
type services struct {
	pool        *pgxpool.Pool
	users       auth.UserRepository
	tokens      *auth.TokenIssuer
	permissions *permission.Service
	missions    *mission.Service
	communities *community.Service
}

// buildServices connects to the database and wires every service with
// its repositories and cross-domain collaborators.
func buildServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services, error) {
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	tx := store.NewTransactor(pool)
	grantRepo := permissionpg.NewGrantRepository(pool)
	grants := &grantStore{repo: grantRepo}

	communitySvc := community.NewService(
		communitypg.NewCommunityRepository(pool),
		communitypg.NewMembershipRepository(pool),
		communitypg.NewApplicationRepository(pool),
		tx,
		grants,
		logger,
	)

	missionSvc := mission.NewService(
		missionpg.NewMissionRepository(pool),
		missionpg.NewSlotGroupRepository(pool),
		missionpg.NewSlotRepository(pool),
		missionpg.NewRegistrationRepository(pool),
		tx,
		grants,
		communitySvc,
		logger,
	)

	return &services{
		pool:        pool,
		users:       authpg.NewUserRepository(pool),
		tokens:      auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL),
		permissions: permission.NewService(grantRepo),
		missions:    missionSvc,
		communities: communitySvc,
	}, nil
}

// Close releases the database pool.
func (s *services) Close() {
	s.pool.Close()
}

// grantStore adapts the permission grant repository to the narrower
// grant interfaces the mission and community services depend on.
type grantStore struct {
	repo *permissionpg.GrantRepository
}

func (s *grantStore) Grant(ctx context.Context, userID ulid.ULID, perm string) error {
	return s.repo.Create(ctx, permission.NewGrant(userID, perm))
}

func (s *grantStore) HasGrant(ctx context.Context, userID ulid.ULID, perm string) (bool, error) {
	grants, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if g.Permission == perm {
			return true, nil
		}
	}
	return false, nil
}

func (s *grantStore) RevokeByPrefix(ctx context.Context, prefix string) error {
	return s.repo.DeleteByPrefix(ctx, prefix)
}

func (s *grantStore) RevokeUserByPrefix(ctx context.Context, userID ulid.ULID, prefix string) error {
	return s.repo.DeleteByUserAndPrefix(ctx, userID, prefix)
}
