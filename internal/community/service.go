// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package community

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service implements community operations.
type Service struct {
	communities CommunityRepository
	memberships MembershipRepository
	apps        ApplicationRepository
	tx          Transactor
	grants      GrantStore
	logger      *slog.Logger
}

// NewService creates a community Service.
func NewService(
	communities CommunityRepository,
	memberships MembershipRepository,
	apps ApplicationRepository,
	tx Transactor,
	grants GrantStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		communities: communities,
		memberships: memberships,
		apps:        apps,
		tx:          tx,
		grants:      grants,
		logger:      logger,
	}
}

// CreateCommunity validates and persists a community. The founder
// receives a membership and the founder grant in the same transaction.
func (s *Service) CreateCommunity(ctx context.Context, c *Community, founderID ulid.ULID) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID.IsZero() {
		c.ID = ulid.Make()
	}

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.communities.Create(ctx, c); err != nil {
			return err
		}
		m := &Membership{ID: ulid.Make(), CommunityID: c.ID, UserID: founderID, CreatedAt: time.Now().UTC()}
		if err := s.memberships.Create(ctx, m); err != nil {
			return err
		}
		return s.grants.Grant(ctx, founderID, FounderPermission(c.Slug))
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return oops.Code("COMMUNITY_SLUG_TAKEN").With("slug", c.Slug).Wrap(err)
		}
		return oops.Code("COMMUNITY_CREATE_FAILED").With("slug", c.Slug).Wrap(err)
	}

	s.logger.InfoContext(ctx, "community created",
		slog.String("community_id", c.ID.String()),
		slog.String("slug", c.Slug))
	return nil
}

// GetCommunity retrieves a community by ID.
func (s *Service) GetCommunity(ctx context.Context, id ulid.ULID) (*Community, error) {
	c, err := s.communities.Get(ctx, id)
	if err != nil {
		return nil, oops.Code("COMMUNITY_GET_FAILED").With("community_id", id.String()).Wrap(err)
	}
	return c, nil
}

// DeleteCommunity removes a community. Memberships and applications
// cascade; community-scoped grants are deleted in the same transaction.
func (s *Service) DeleteCommunity(ctx context.Context, id ulid.ULID) error {
	c, err := s.communities.Get(ctx, id)
	if err != nil {
		return oops.Code("COMMUNITY_DELETE_FAILED").With("community_id", id.String()).Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.communities.Delete(ctx, id); err != nil {
			return err
		}
		return s.grants.RevokeByPrefix(ctx, grantPrefix(c.Slug))
	})
	if err != nil {
		return oops.Code("COMMUNITY_DELETE_FAILED").With("community_id", id.String()).Wrap(err)
	}

	s.logger.InfoContext(ctx, "community deleted",
		slog.String("community_id", id.String()),
		slog.String("slug", c.Slug))
	return nil
}

// Apply submits a membership application. One application per
// (community, user) pair; reapplying after a denial is a conflict.
func (s *Service) Apply(ctx context.Context, communityID, userID ulid.ULID) (*Application, error) {
	app := &Application{
		ID:          ulid.Make(),
		CommunityID: communityID,
		UserID:      userID,
		Status:      StatusSubmitted,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, oops.Code("APPLICATION_DUPLICATE").
				With("community_id", communityID.String()).
				With("user_id", userID.String()).
				Wrap(err)
		}
		return nil, oops.Code("APPLICATION_FAILED").
			With("community_id", communityID.String()).
			Wrap(err)
	}
	return app, nil
}

// AcceptApplication marks an application accepted and creates the
// membership in one transaction. Accepting a non-submitted application
// is a conflict.
func (s *Service) AcceptApplication(ctx context.Context, applicationID ulid.ULID) error {
	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return oops.Code("APPLICATION_FAILED").
			With("application_id", applicationID.String()).
			Wrap(err)
	}
	if app.Status != StatusSubmitted {
		return oops.Code("APPLICATION_ALREADY_DECIDED").
			With("application_id", applicationID.String()).
			With("status", string(app.Status)).
			Wrap(ErrConflict)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.apps.UpdateStatus(ctx, applicationID, StatusAccepted); err != nil {
			return err
		}
		m := &Membership{
			ID:          ulid.Make(),
			CommunityID: app.CommunityID,
			UserID:      app.UserID,
			CreatedAt:   time.Now().UTC(),
		}
		return s.memberships.Create(ctx, m)
	})
	if err != nil {
		return oops.Code("APPLICATION_FAILED").
			With("application_id", applicationID.String()).
			Wrap(err)
	}
	return nil
}

// DenyApplication marks an application denied. No membership is created.
func (s *Service) DenyApplication(ctx context.Context, applicationID ulid.ULID) error {
	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return oops.Code("APPLICATION_FAILED").
			With("application_id", applicationID.String()).
			Wrap(err)
	}
	if app.Status != StatusSubmitted {
		return oops.Code("APPLICATION_ALREADY_DECIDED").
			With("application_id", applicationID.String()).
			With("status", string(app.Status)).
			Wrap(ErrConflict)
	}
	if err := s.apps.UpdateStatus(ctx, applicationID, StatusDenied); err != nil {
		return oops.Code("APPLICATION_FAILED").
			With("application_id", applicationID.String()).
			Wrap(err)
	}
	return nil
}

// RemoveMember removes a user from a community and revokes their
// community-scoped grants in one transaction. Removing a fellow founder
// requires the actor to hold the founder grant themselves.
func (s *Service) RemoveMember(ctx context.Context, communityID, userID, actorID ulid.ULID) error {
	c, err := s.communities.Get(ctx, communityID)
	if err != nil {
		return oops.Code("MEMBER_REMOVE_FAILED").
			With("community_id", communityID.String()).
			Wrap(err)
	}

	founder := FounderPermission(c.Slug)
	targetIsFounder, err := s.grants.HasGrant(ctx, userID, founder)
	if err != nil {
		return oops.Code("MEMBER_REMOVE_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	if targetIsFounder && userID != actorID {
		actorIsFounder, err := s.grants.HasGrant(ctx, actorID, founder)
		if err != nil {
			return oops.Code("MEMBER_REMOVE_FAILED").With("user_id", actorID.String()).Wrap(err)
		}
		if !actorIsFounder {
			return oops.Code("MEMBER_REMOVE_FORBIDDEN").
				With("community_id", communityID.String()).
				With("user_id", userID.String()).
				Wrap(ErrForbidden)
		}
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.memberships.Delete(ctx, communityID, userID); err != nil {
			return err
		}
		return s.grants.RevokeUserByPrefix(ctx, userID, grantPrefix(c.Slug))
	})
	if err != nil {
		return oops.Code("MEMBER_REMOVE_FAILED").
			With("community_id", communityID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "member removed",
		slog.String("community_id", communityID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// IsMember reports whether the user belongs to the community. This is
// the membership check used by community-restricted slot registration.
func (s *Service) IsMember(ctx context.Context, communityID, userID ulid.ULID) (bool, error) {
	ok, err := s.memberships.IsMember(ctx, communityID, userID)
	if err != nil {
		return false, oops.Code("MEMBERSHIP_QUERY_FAILED").
			With("community_id", communityID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	return ok, nil
}
