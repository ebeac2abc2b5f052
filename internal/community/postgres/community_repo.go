// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package postgres implements community persistence using PostgreSQL.
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

// CommunityRepository implements community.CommunityRepository using
// PostgreSQL.
type CommunityRepository struct {
	pool store.Querier
}

// NewCommunityRepository creates a new PostgreSQL community repository.
func NewCommunityRepository(pool store.Querier) *CommunityRepository {
	return &CommunityRepository{pool: pool}
}

// Get retrieves a community by ID.
func (r *CommunityRepository) Get(ctx context.Context, id ulid.ULID) (*community.Community, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, name, slug, website, created_at FROM communities WHERE id = $1
	`, id.String())
	c, err := scanCommunity(row)
	if err != nil {
		return nil, oops.With("community_id", id.String()).Wrap(err)
	}
	return c, nil
}

// GetBySlug retrieves a community by its unique slug.
func (r *CommunityRepository) GetBySlug(ctx context.Context, slug string) (*community.Community, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, name, slug, website, created_at FROM communities WHERE slug = $1
	`, slug)
	c, err := scanCommunity(row)
	if err != nil {
		return nil, oops.With("slug", slug).Wrap(err)
	}
	return c, nil
}

// Create persists a new community. A duplicate slug is reported as
// community.ErrConflict.
func (r *CommunityRepository) Create(ctx context.Context, c *community.Community) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO communities (id, name, slug, website, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID.String(), c.Name, c.Slug, c.Website, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("COMMUNITY_SLUG_TAKEN").
				With("slug", c.Slug).
				Wrap(community.ErrConflict)
		}
		return oops.Code("COMMUNITY_CREATE_FAILED").With("slug", c.Slug).Wrap(err)
	}
	return nil
}

// Delete removes a community; memberships and applications cascade.
func (r *CommunityRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `DELETE FROM communities WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("COMMUNITY_DELETE_FAILED").With("community_id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("COMMUNITY_NOT_FOUND").
			With("community_id", id.String()).
			Wrap(community.ErrNotFound)
	}
	return nil
}

func scanCommunity(row pgx.Row) (*community.Community, error) {
	var c community.Community
	var idStr string
	err := row.Scan(&idStr, &c.Name, &c.Slug, &c.Website, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("COMMUNITY_NOT_FOUND").Wrap(community.ErrNotFound)
		}
		return nil, oops.Code("COMMUNITY_SCAN_FAILED").Wrap(err)
	}
	if c.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("COMMUNITY_PARSE_FAILED").With("field", "id").With("value", idStr).Wrap(err)
	}
	return &c, nil
}
