// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/missionboard/missionboard/internal/community"
	"github.com/missionboard/missionboard/internal/store"
)

// MembershipRepository implements community.MembershipRepository using
// PostgreSQL.
type MembershipRepository struct {
	pool store.Querier
}

// NewMembershipRepository creates a new PostgreSQL membership repository.
func NewMembershipRepository(pool store.Querier) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// Create persists a new membership. A duplicate (community, user) pair
// is reported as community.ErrConflict.
func (r *MembershipRepository) Create(ctx context.Context, m *community.Membership) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO community_memberships (id, community_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, m.ID.String(), m.CommunityID.String(), m.UserID.String(), m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("MEMBERSHIP_DUPLICATE").
				With("community_id", m.CommunityID.String()).
				With("user_id", m.UserID.String()).
				Wrap(community.ErrConflict)
		}
		return oops.Code("MEMBERSHIP_CREATE_FAILED").
			With("community_id", m.CommunityID.String()).
			Wrap(err)
	}
	return nil
}

// Delete removes a user's membership in a community.
func (r *MembershipRepository) Delete(ctx context.Context, communityID, userID ulid.ULID) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		DELETE FROM community_memberships WHERE community_id = $1 AND user_id = $2
	`, communityID.String(), userID.String())
	if err != nil {
		return oops.Code("MEMBERSHIP_DELETE_FAILED").
			With("community_id", communityID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MEMBERSHIP_NOT_FOUND").
			With("community_id", communityID.String()).
			With("user_id", userID.String()).
			Wrap(community.ErrNotFound)
	}
	return nil
}

// IsMember reports whether the user belongs to the community.
func (r *MembershipRepository) IsMember(ctx context.Context, communityID, userID ulid.ULID) (bool, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM community_memberships WHERE community_id = $1 AND user_id = $2
		)
	`, communityID.String(), userID.String()).Scan(&exists)
	if err != nil {
		return false, oops.Code("MEMBERSHIP_QUERY_FAILED").
			With("community_id", communityID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	return exists, nil
}

// ListByCommunity returns a community's memberships in creation order.
func (r *MembershipRepository) ListByCommunity(ctx context.Context, communityID ulid.ULID) ([]*community.Membership, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, community_id, user_id, created_at
		FROM community_memberships WHERE community_id = $1
		ORDER BY created_at, id
	`, communityID.String())
	if err != nil {
		return nil, oops.Code("MEMBERSHIP_QUERY_FAILED").
			With("community_id", communityID.String()).
			Wrap(err)
	}
	defer rows.Close()

	members := make([]*community.Membership, 0)
	for rows.Next() {
		var m community.Membership
		var idStr, communityStr, userStr string
		if err := rows.Scan(&idStr, &communityStr, &userStr, &m.CreatedAt); err != nil {
			return nil, oops.Code("MEMBERSHIP_SCAN_FAILED").Wrap(err)
		}
		if m.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.Code("MEMBERSHIP_PARSE_FAILED").With("field", "id").Wrap(err)
		}
		if m.CommunityID, err = ulid.Parse(communityStr); err != nil {
			return nil, oops.Code("MEMBERSHIP_PARSE_FAILED").With("field", "community_id").Wrap(err)
		}
		if m.UserID, err = ulid.Parse(userStr); err != nil {
			return nil, oops.Code("MEMBERSHIP_PARSE_FAILED").With("field", "user_id").Wrap(err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MEMBERSHIP_QUERY_FAILED").
			With("community_id", communityID.String()).
			Wrap(err)
	}
	return members, nil
}
