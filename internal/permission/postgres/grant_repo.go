// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package postgres implements permission persistence using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/missionboard/missionboard/internal/permission"
	"github.com/missionboard/missionboard/internal/store"
)

// GrantRepository implements permission.GrantRepository using PostgreSQL.
type GrantRepository struct {
	pool store.Querier
}

// NewGrantRepository creates a new PostgreSQL grant repository.
func NewGrantRepository(pool store.Querier) *GrantRepository {
	return &GrantRepository{pool: pool}
}

// FindByUser returns all grants held by a user.
func (r *GrantRepository) FindByUser(ctx context.Context, userID ulid.ULID) ([]permission.Grant, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, user_id, permission, created_at
		FROM permission_grants WHERE user_id = $1
	`, userID.String())
	if err != nil {
		return nil, oops.Code("GRANT_QUERY_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	defer rows.Close()

	grants := make([]permission.Grant, 0)
	for rows.Next() {
		var g permission.Grant
		var idStr, userIDStr string
		if err := rows.Scan(&idStr, &userIDStr, &g.Permission, &g.CreatedAt); err != nil {
			return nil, oops.Code("GRANT_SCAN_FAILED").Wrap(err)
		}
		if g.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.Code("GRANT_PARSE_FAILED").With("field", "id").With("value", idStr).Wrap(err)
		}
		if g.UserID, err = ulid.Parse(userIDStr); err != nil {
			return nil, oops.Code("GRANT_PARSE_FAILED").With("field", "user_id").With("value", userIDStr).Wrap(err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("GRANT_QUERY_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	return grants, nil
}

// Create persists a new grant. A duplicate (user, permission) pair is
// reported as permission.ErrDuplicateGrant.
func (r *GrantRepository) Create(ctx context.Context, grant *permission.Grant) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO permission_grants (id, user_id, permission, created_at)
		VALUES ($1, $2, $3, $4)
	`, grant.ID.String(), grant.UserID.String(), grant.Permission, grant.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("GRANT_DUPLICATE").
				With("user_id", grant.UserID.String()).
				With("permission", grant.Permission).
				Wrap(permission.ErrDuplicateGrant)
		}
		return oops.Code("GRANT_CREATE_FAILED").With("permission", grant.Permission).Wrap(err)
	}
	return nil
}

// Delete removes a user's grant by permission string.
func (r *GrantRepository) Delete(ctx context.Context, userID ulid.ULID, perm string) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		DELETE FROM permission_grants WHERE user_id = $1 AND permission = $2
	`, userID.String(), perm)
	if err != nil {
		return oops.Code("GRANT_DELETE_FAILED").
			With("user_id", userID.String()).
			With("permission", perm).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("GRANT_NOT_FOUND").
			With("user_id", userID.String()).
			With("permission", perm).
			Wrap(permission.ErrNotFound)
	}
	return nil
}

// DeleteByPrefix removes all grants with the given permission prefix.
func (r *GrantRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		DELETE FROM permission_grants WHERE permission LIKE $1 || '%'
	`, prefix)
	if err != nil {
		return oops.Code("GRANT_DELETE_FAILED").With("prefix", prefix).Wrap(err)
	}
	return nil
}

// DeleteByUserAndPrefix removes one user's grants with the given
// permission prefix.
func (r *GrantRepository) DeleteByUserAndPrefix(ctx context.Context, userID ulid.ULID, prefix string) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		DELETE FROM permission_grants WHERE user_id = $1 AND permission LIKE $2 || '%'
	`, userID.String(), prefix)
	if err != nil {
		return oops.Code("GRANT_DELETE_FAILED").
			With("user_id", userID.String()).
			With("prefix", prefix).
			Wrap(err)
	}
	return nil
}
