// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package permission

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Checker is the contract protected operations use to gate mutations.
// Implemented by Service; test doubles live in permissiontest.
type Checker interface {
	// HasPermission reports whether the user holds the required
	// permissions. With strict=false any one suffices; with strict=true
	// all are required.
	HasPermission(ctx context.Context, userID ulid.ULID, required []string, strict bool) (bool, error)
}

// Service evaluates and manages permission grants.
// Trees are built fresh from the user's stored grants on every check;
// there is no cross-request caching.
type Service struct {
	grants GrantRepository
}

// NewService creates a permission Service.
func NewService(grants GrantRepository) *Service {
	return &Service{grants: grants}
}

// HasPermission loads the user's grants once, builds a permission tree,
// and evaluates the required permissions against it. A user with no
// grants is denied without building a tree; a top-level "*" grant is
// allowed without evaluating individual permissions. Repository errors
// propagate and never silently grant or deny.
func (s *Service) HasPermission(ctx context.Context, userID ulid.ULID, required []string, strict bool) (bool, error) {
	start := time.Now()

	grants, err := s.grants.FindByUser(ctx, userID)
	if err != nil {
		return false, oops.Code("PERMISSION_LOAD_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}

	allowed := evaluate(grants, required, strict)
	recordCheckMetrics(time.Since(start), allowed)
	return allowed, nil
}

// evaluate is the pure decision core, exercised directly by tests.
func evaluate(grants []Grant, required []string, strict bool) bool {
	if len(grants) == 0 || len(required) == 0 {
		return false
	}

	permissions := make([]string, len(grants))
	for i, g := range grants {
		permissions[i] = g.Permission
	}
	tree := NewTree(permissions)

	if tree.HasGlobalWildcard() {
		return true
	}

	for _, perm := range required {
		satisfied := tree.Contains(perm)
		if strict && !satisfied {
			return false
		}
		if !strict && satisfied {
			return true
		}
	}
	return strict
}

// CreateGrant validates and persists a new grant for a user.
// Duplicate grants surface as a conflict, never coalesced.
func (s *Service) CreateGrant(ctx context.Context, userID ulid.ULID, permission string) (*Grant, error) {
	if err := ValidatePermission(permission); err != nil {
		return nil, err
	}
	grant := NewGrant(userID, permission)
	if err := s.grants.Create(ctx, grant); err != nil {
		if errors.Is(err, ErrDuplicateGrant) {
			return nil, oops.Code("GRANT_DUPLICATE").
				With("user_id", userID.String()).
				With("permission", grant.Permission).
				Wrap(err)
		}
		return nil, oops.Code("GRANT_CREATE_FAILED").
			With("user_id", userID.String()).
			With("permission", grant.Permission).
			Wrap(err)
	}
	return grant, nil
}

// DeleteGrant removes a user's grant by permission string.
func (s *Service) DeleteGrant(ctx context.Context, userID ulid.ULID, permission string) error {
	if err := s.grants.Delete(ctx, userID, permission); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("GRANT_NOT_FOUND").
				With("user_id", userID.String()).
				With("permission", permission).
				Wrap(err)
		}
		return oops.Code("GRANT_DELETE_FAILED").
			With("user_id", userID.String()).
			With("permission", permission).
			Wrap(err)
	}
	return nil
}

// ListGrants returns all grants held by a user.
func (s *Service) ListGrants(ctx context.Context, userID ulid.ULID) ([]Grant, error) {
	grants, err := s.grants.FindByUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("PERMISSION_LOAD_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return grants, nil
}
