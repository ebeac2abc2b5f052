// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package community

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// CommunityRepository manages community persistence.
type CommunityRepository interface {
	// Get retrieves a community by ID.
	Get(ctx context.Context, id ulid.ULID) (*Community, error)

	// GetBySlug retrieves a community by its unique slug.
	GetBySlug(ctx context.Context, slug string) (*Community, error)

	// Create persists a new community. A duplicate slug returns an error
	// wrapping ErrConflict.
	Create(ctx context.Context, c *Community) error

	// Delete removes a community; memberships and applications cascade.
	Delete(ctx context.Context, id ulid.ULID) error
}

// MembershipRepository manages membership persistence.
type MembershipRepository interface {
	// Create persists a new membership. A duplicate (community, user)
	// pair returns an error wrapping ErrConflict.
	Create(ctx context.Context, m *Membership) error

	// Delete removes a user's membership in a community.
	Delete(ctx context.Context, communityID, userID ulid.ULID) error

	// IsMember reports whether the user belongs to the community.
	IsMember(ctx context.Context, communityID, userID ulid.ULID) (bool, error)

	// ListByCommunity returns a community's memberships.
	ListByCommunity(ctx context.Context, communityID ulid.ULID) ([]*Membership, error)
}

// ApplicationRepository manages membership application persistence.
type ApplicationRepository interface {
	// Get retrieves an application by ID.
	Get(ctx context.Context, id ulid.ULID) (*Application, error)

	// Create persists a new application. A duplicate (community, user)
	// pair returns an error wrapping ErrConflict.
	Create(ctx context.Context, a *Application) error

	// UpdateStatus sets an application's status.
	UpdateStatus(ctx context.Context, id ulid.ULID, status ApplicationStatus) error
}

// Transactor runs a function inside a single database transaction.
// Implemented by store.Transactor.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// GrantStore is the permission surface the community service needs:
// founder grants, founder checks, and grant cleanup on community
// deletion or member removal.
type GrantStore interface {
	Grant(ctx context.Context, userID ulid.ULID, permission string) error
	HasGrant(ctx context.Context, userID ulid.ULID, permission string) (bool, error)
	RevokeByPrefix(ctx context.Context, prefix string) error
	RevokeUserByPrefix(ctx context.Context, userID ulid.ULID, prefix string) error
}
