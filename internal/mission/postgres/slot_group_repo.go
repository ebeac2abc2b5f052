// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/missionboard/missionboard/internal/mission"
	"github.com/missionboard/missionboard/internal/store"
)

// SlotGroupRepository implements mission.SlotGroupRepository using PostgreSQL.
type SlotGroupRepository struct {
	pool store.Querier
}

// NewSlotGroupRepository creates a new PostgreSQL slot group repository.
func NewSlotGroupRepository(pool store.Querier) *SlotGroupRepository {
	return &SlotGroupRepository{pool: pool}
}

// Get retrieves a slot group by ID.
func (r *SlotGroupRepository) Get(ctx context.Context, id ulid.ULID) (*mission.SlotGroup, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, mission_id, title, order_number, description, created_at
		FROM mission_slot_groups WHERE id = $1
	`, id.String())
	g, err := scanSlotGroup(row)
	if err != nil {
		return nil, oops.With("slot_group_id", id.String()).Wrap(err)
	}
	return g, nil
}

// Create persists a new slot group.
func (r *SlotGroupRepository) Create(ctx context.Context, g *mission.SlotGroup) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO mission_slot_groups (id, mission_id, title, order_number, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, g.ID.String(), g.MissionID.String(), g.Title, g.OrderNumber, g.Description, g.CreatedAt)
	if err != nil {
		return oops.Code("SLOT_GROUP_CREATE_FAILED").
			With("mission_id", g.MissionID.String()).
			Wrap(err)
	}
	return nil
}

// Update modifies an existing slot group.
func (r *SlotGroupRepository) Update(ctx context.Context, g *mission.SlotGroup) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		UPDATE mission_slot_groups SET title = $2, order_number = $3, description = $4
		WHERE id = $1
	`, g.ID.String(), g.Title, g.OrderNumber, g.Description)
	if err != nil {
		return oops.Code("SLOT_GROUP_UPDATE_FAILED").With("slot_group_id", g.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SLOT_GROUP_NOT_FOUND").
			With("slot_group_id", g.ID.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// Delete removes a slot group; slots and registrations cascade.
func (r *SlotGroupRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `DELETE FROM mission_slot_groups WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("SLOT_GROUP_DELETE_FAILED").With("slot_group_id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SLOT_GROUP_NOT_FOUND").
			With("slot_group_id", id.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// ListByMission returns a mission's slot groups ordered by
// (order_number, id) ascending.
func (r *SlotGroupRepository) ListByMission(ctx context.Context, missionID ulid.ULID) ([]*mission.SlotGroup, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, mission_id, title, order_number, description, created_at
		FROM mission_slot_groups WHERE mission_id = $1
		ORDER BY order_number, id
	`, missionID.String())
	if err != nil {
		return nil, oops.Code("SLOT_GROUP_QUERY_FAILED").
			With("mission_id", missionID.String()).
			Wrap(err)
	}
	defer rows.Close()

	groups := make([]*mission.SlotGroup, 0)
	for rows.Next() {
		g, err := scanSlotGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SLOT_GROUP_QUERY_FAILED").
			With("mission_id", missionID.String()).
			Wrap(err)
	}
	return groups, nil
}

func scanSlotGroup(row pgx.Row) (*mission.SlotGroup, error) {
	var g mission.SlotGroup
	var idStr, missionStr string
	err := row.Scan(&idStr, &missionStr, &g.Title, &g.OrderNumber, &g.Description, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("SLOT_GROUP_NOT_FOUND").Wrap(mission.ErrNotFound)
		}
		return nil, oops.Code("SLOT_GROUP_SCAN_FAILED").Wrap(err)
	}
	if g.ID, err = parseULID("id", idStr); err != nil {
		return nil, err
	}
	if g.MissionID, err = parseULID("mission_id", missionStr); err != nil {
		return nil, err
	}
	return &g, nil
}
