// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package permission

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// GrantRepository manages permission grant persistence.
type GrantRepository interface {
	// FindByUser returns all grants held by a user, unordered.
	FindByUser(ctx context.Context, userID ulid.ULID) ([]Grant, error)

	// Create persists a new grant. A duplicate (user, permission) pair
	// returns an error wrapping ErrDuplicateGrant.
	Create(ctx context.Context, grant *Grant) error

	// Delete removes a user's grant by permission string.
	Delete(ctx context.Context, userID ulid.ULID, permission string) error

	// DeleteByPrefix removes all grants whose permission starts with the
	// given prefix, across all users. Used for cleanup when a mission or
	// community is deleted.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// DeleteByUserAndPrefix removes one user's grants with the given
	// permission prefix. Used when a member leaves a community.
	DeleteByUserAndPrefix(ctx context.Context, userID ulid.ULID, prefix string) error
}
