// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/missionboard/missionboard/internal/community"
	"github.com/missionboard/missionboard/internal/store"
)

// ApplicationRepository implements community.ApplicationRepository using
// PostgreSQL.
type ApplicationRepository struct {
	pool store.Querier
}

// NewApplicationRepository creates a new PostgreSQL application repository.
func NewApplicationRepository(pool store.Querier) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Get retrieves an application by ID.
func (r *ApplicationRepository) Get(ctx context.Context, id ulid.ULID) (*community.Application, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	var a community.Application
	var idStr, communityStr, userStr, status string
	err := q.QueryRow(ctx, `
		SELECT id, community_id, user_id, status, created_at
		FROM community_applications WHERE id = $1
	`, id.String()).Scan(&idStr, &communityStr, &userStr, &status, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("APPLICATION_NOT_FOUND").
				With("application_id", id.String()).
				Wrap(community.ErrNotFound)
		}
		return nil, oops.Code("APPLICATION_SCAN_FAILED").
			With("application_id", id.String()).
			Wrap(err)
	}
	a.Status = community.ApplicationStatus(status)
	if a.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("APPLICATION_PARSE_FAILED").With("field", "id").Wrap(err)
	}
	if a.CommunityID, err = ulid.Parse(communityStr); err != nil {
		return nil, oops.Code("APPLICATION_PARSE_FAILED").With("field", "community_id").Wrap(err)
	}
	if a.UserID, err = ulid.Parse(userStr); err != nil {
		return nil, oops.Code("APPLICATION_PARSE_FAILED").With("field", "user_id").Wrap(err)
	}
	return &a, nil
}

// Create persists a new application. A duplicate (community, user) pair
// is reported as community.ErrConflict.
func (r *ApplicationRepository) Create(ctx context.Context, a *community.Application) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO community_applications (id, community_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID.String(), a.CommunityID.String(), a.UserID.String(), string(a.Status), a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("APPLICATION_DUPLICATE").
				With("community_id", a.CommunityID.String()).
				With("user_id", a.UserID.String()).
				Wrap(community.ErrConflict)
		}
		return oops.Code("APPLICATION_CREATE_FAILED").
			With("community_id", a.CommunityID.String()).
			Wrap(err)
	}
	return nil
}

// UpdateStatus sets an application's status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id ulid.ULID, status community.ApplicationStatus) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		UPDATE community_applications SET status = $2 WHERE id = $1
	`, id.String(), string(status))
	if err != nil {
		return oops.Code("APPLICATION_UPDATE_FAILED").
			With("application_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("APPLICATION_NOT_FOUND").
			With("application_id", id.String()).
			Wrap(community.ErrNotFound)
	}
	return nil
}
