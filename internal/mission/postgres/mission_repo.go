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

	"github.com/missionboard/missionboard/internal/mission"
	"github.com/missionboard/missionboard/internal/store"
)

const missionColumns = `id, slug, title, short_description, detailed_description,
	banner_url, briefing_time, slotting_time, start_time, end_time,
	repository_text, support_text, rules_text, visibility, community_id,
	creator_id, created_at`

// MissionRepository implements mission.MissionRepository using PostgreSQL.
type MissionRepository struct {
	pool store.Querier
}

// NewMissionRepository creates a new PostgreSQL mission repository.
func NewMissionRepository(pool store.Querier) *MissionRepository {
	return &MissionRepository{pool: pool}
}

// Get retrieves a mission by ID.
func (r *MissionRepository) Get(ctx context.Context, id ulid.ULID) (*mission.Mission, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = $1`, id.String())
	m, err := scanMission(row)
	if err != nil {
		return nil, oops.With("mission_id", id.String()).Wrap(err)
	}
	return m, nil
}

// GetBySlug retrieves a mission by its unique slug.
func (r *MissionRepository) GetBySlug(ctx context.Context, slug string) (*mission.Mission, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+missionColumns+` FROM missions WHERE slug = $1`, slug)
	m, err := scanMission(row)
	if err != nil {
		return nil, oops.With("slug", slug).Wrap(err)
	}
	return m, nil
}

// Create persists a new mission. A duplicate slug is reported as
// mission.ErrConflict.
func (r *MissionRepository) Create(ctx context.Context, m *mission.Mission) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO missions (id, slug, title, short_description, detailed_description,
			banner_url, briefing_time, slotting_time, start_time, end_time,
			repository_text, support_text, rules_text, visibility, community_id,
			creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, m.ID.String(), m.Slug, m.Title, m.ShortDescription, m.DetailedDescription,
		m.BannerURL, m.BriefingTime, m.SlottingTime, m.StartTime, m.EndTime,
		m.RepositoryText, m.SupportText, m.RulesText, m.Visibility.String(),
		ulidString(m.CommunityID), m.CreatorID.String(), m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("MISSION_SLUG_TAKEN").
				With("slug", m.Slug).
				Wrap(mission.ErrConflict)
		}
		return oops.Code("MISSION_CREATE_FAILED").With("slug", m.Slug).Wrap(err)
	}
	return nil
}

// Update modifies an existing mission. The slug is immutable.
func (r *MissionRepository) Update(ctx context.Context, m *mission.Mission) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		UPDATE missions SET title = $2, short_description = $3, detailed_description = $4,
			banner_url = $5, briefing_time = $6, slotting_time = $7, start_time = $8,
			end_time = $9, repository_text = $10, support_text = $11, rules_text = $12,
			visibility = $13, community_id = $14
		WHERE id = $1
	`, m.ID.String(), m.Title, m.ShortDescription, m.DetailedDescription,
		m.BannerURL, m.BriefingTime, m.SlottingTime, m.StartTime, m.EndTime,
		m.RepositoryText, m.SupportText, m.RulesText, m.Visibility.String(),
		ulidString(m.CommunityID))
	if err != nil {
		return oops.Code("MISSION_UPDATE_FAILED").With("mission_id", m.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MISSION_NOT_FOUND").
			With("mission_id", m.ID.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// Delete removes a mission; slot groups, slots, and registrations
// cascade via foreign keys.
func (r *MissionRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `DELETE FROM missions WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("MISSION_DELETE_FAILED").With("mission_id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MISSION_NOT_FOUND").
			With("mission_id", id.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

func scanMission(row pgx.Row) (*mission.Mission, error) {
	var m mission.Mission
	var idStr, creatorStr, visibility string
	var communityStr *string
	err := row.Scan(&idStr, &m.Slug, &m.Title, &m.ShortDescription, &m.DetailedDescription,
		&m.BannerURL, &m.BriefingTime, &m.SlottingTime, &m.StartTime, &m.EndTime,
		&m.RepositoryText, &m.SupportText, &m.RulesText, &visibility, &communityStr,
		&creatorStr, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("MISSION_NOT_FOUND").Wrap(mission.ErrNotFound)
		}
		return nil, oops.Code("MISSION_SCAN_FAILED").Wrap(err)
	}
	m.Visibility = mission.Visibility(visibility)
	if m.ID, err = parseULID("id", idStr); err != nil {
		return nil, err
	}
	if m.CreatorID, err = parseULID("creator_id", creatorStr); err != nil {
		return nil, err
	}
	if m.CommunityID, err = parseOptionalULID("community_id", communityStr); err != nil {
		return nil, err
	}
	return &m, nil
}
