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

const slotColumns = `id, slot_group_id, title, order_number, difficulty,
	short_description, detailed_description, reserve, blocked, auto_assignable,
	required_dlcs, restricted_community_id, assignee_id, external_assignee, created_at`

// SlotRepository implements mission.SlotRepository using PostgreSQL.
type SlotRepository struct {
	pool store.Querier
}

// NewSlotRepository creates a new PostgreSQL slot repository.
func NewSlotRepository(pool store.Querier) *SlotRepository {
	return &SlotRepository{pool: pool}
}

// Get retrieves a slot by ID.
func (r *SlotRepository) Get(ctx context.Context, id ulid.ULID) (*mission.Slot, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+slotColumns+` FROM mission_slots WHERE id = $1`, id.String())
	s, err := scanSlot(row)
	if err != nil {
		return nil, oops.With("slot_id", id.String()).Wrap(err)
	}
	return s, nil
}

// Create persists a new slot.
func (r *SlotRepository) Create(ctx context.Context, s *mission.Slot) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO mission_slots (id, slot_group_id, title, order_number, difficulty,
			short_description, detailed_description, reserve, blocked, auto_assignable,
			required_dlcs, restricted_community_id, assignee_id, external_assignee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, s.ID.String(), s.SlotGroupID.String(), s.Title, s.OrderNumber, s.Difficulty,
		s.ShortDescription, s.DetailedDescription, s.Reserve, s.Blocked, s.AutoAssignable,
		s.RequiredDLCs, ulidString(s.RestrictedCommunityID), ulidString(s.AssigneeID),
		s.ExternalAssignee, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("SLOT_ASSIGNMENT_CONFLICT").
				With("slot_group_id", s.SlotGroupID.String()).
				Wrap(mission.ErrConflict)
		}
		return oops.Code("SLOT_CREATE_FAILED").
			With("slot_group_id", s.SlotGroupID.String()).
			Wrap(err)
	}
	return nil
}

// Update modifies a slot's descriptive fields, flags, group, and order
// number. Assignment columns are owned by UpdateAssignment; a group move
// that collides with the per-group assignee unique is reported as
// mission.ErrConflict.
func (r *SlotRepository) Update(ctx context.Context, s *mission.Slot) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		UPDATE mission_slots SET slot_group_id = $2, title = $3, order_number = $4,
			difficulty = $5, short_description = $6, detailed_description = $7,
			reserve = $8, blocked = $9, auto_assignable = $10, required_dlcs = $11,
			restricted_community_id = $12
		WHERE id = $1
	`, s.ID.String(), s.SlotGroupID.String(), s.Title, s.OrderNumber, s.Difficulty,
		s.ShortDescription, s.DetailedDescription, s.Reserve, s.Blocked, s.AutoAssignable,
		s.RequiredDLCs, ulidString(s.RestrictedCommunityID))
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("SLOT_ASSIGNMENT_CONFLICT").
				With("slot_id", s.ID.String()).
				Wrap(mission.ErrConflict)
		}
		return oops.Code("SLOT_UPDATE_FAILED").With("slot_id", s.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SLOT_NOT_FOUND").
			With("slot_id", s.ID.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// Delete removes a slot; its registrations cascade.
func (r *SlotRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `DELETE FROM mission_slots WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("SLOT_DELETE_FAILED").With("slot_id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SLOT_NOT_FOUND").
			With("slot_id", id.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// ListByGroup returns a group's slots ordered by (order_number, id)
// ascending.
func (r *SlotRepository) ListByGroup(ctx context.Context, groupID ulid.ULID) ([]*mission.Slot, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT `+slotColumns+` FROM mission_slots WHERE slot_group_id = $1
		ORDER BY order_number, id
	`, groupID.String())
	if err != nil {
		return nil, oops.Code("SLOT_QUERY_FAILED").
			With("slot_group_id", groupID.String()).
			Wrap(err)
	}
	defer rows.Close()

	slots := make([]*mission.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SLOT_QUERY_FAILED").
			With("slot_group_id", groupID.String()).
			Wrap(err)
	}
	return slots, nil
}

// UpdateAssignment sets or clears the slot's assignee. Tripping the
// (slot_group_id, assignee_id) unique is reported as mission.ErrConflict.
func (r *SlotRepository) UpdateAssignment(ctx context.Context, slotID ulid.ULID, assignee mission.Assignee) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		UPDATE mission_slots SET assignee_id = $2, external_assignee = $3 WHERE id = $1
	`, slotID.String(), ulidString(assignee.UserID), assignee.External)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("SLOT_ASSIGNMENT_CONFLICT").
				With("slot_id", slotID.String()).
				Wrap(mission.ErrConflict)
		}
		return oops.Code("SLOT_ASSIGN_FAILED").With("slot_id", slotID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SLOT_NOT_FOUND").
			With("slot_id", slotID.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// UpdateOrderNumber persists a recomputed order number.
func (r *SlotRepository) UpdateOrderNumber(ctx context.Context, slotID ulid.ULID, orderNumber int) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		UPDATE mission_slots SET order_number = $2 WHERE id = $1
	`, slotID.String(), orderNumber)
	if err != nil {
		return oops.Code("SLOT_UPDATE_FAILED").With("slot_id", slotID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SLOT_NOT_FOUND").
			With("slot_id", slotID.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// ShiftOrderNumbers increments the order number of every slot of the
// mission past the given position.
func (r *SlotRepository) ShiftOrderNumbers(ctx context.Context, missionID ulid.ULID, after int) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		UPDATE mission_slots SET order_number = order_number + 1
		WHERE order_number > $2 AND slot_group_id IN (
			SELECT id FROM mission_slot_groups WHERE mission_id = $1
		)
	`, missionID.String(), after)
	if err != nil {
		return oops.Code("SLOT_UPDATE_FAILED").
			With("mission_id", missionID.String()).
			Wrap(err)
	}
	return nil
}

// CountByMission counts all slots across the mission's slot groups.
func (r *SlotRepository) CountByMission(ctx context.Context, missionID ulid.ULID) (int, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	var n int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM mission_slots s
		JOIN mission_slot_groups g ON g.id = s.slot_group_id
		WHERE g.mission_id = $1
	`, missionID.String()).Scan(&n)
	if err != nil {
		return 0, oops.Code("SLOT_QUERY_FAILED").
			With("mission_id", missionID.String()).
			Wrap(err)
	}
	return n, nil
}

// CountUnassigned counts slots with no assignee, optionally excluding
// slots that already have a pending registration.
func (r *SlotRepository) CountUnassigned(ctx context.Context, missionID ulid.ULID, excludeRegistered bool) (int, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	var n int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM mission_slots s
		JOIN mission_slot_groups g ON g.id = s.slot_group_id
		WHERE g.mission_id = $1
		  AND s.assignee_id IS NULL AND s.external_assignee IS NULL
		  AND ($2 = FALSE OR NOT EXISTS (
			SELECT 1 FROM mission_slot_registrations r WHERE r.slot_id = s.id
		  ))
	`, missionID.String(), excludeRegistered).Scan(&n)
	if err != nil {
		return 0, oops.Code("SLOT_QUERY_FAILED").
			With("mission_id", missionID.String()).
			Wrap(err)
	}
	return n, nil
}

// IsUserAssigned reports whether the user holds any slot of the mission.
func (r *SlotRepository) IsUserAssigned(ctx context.Context, missionID, userID ulid.ULID) (bool, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM mission_slots s
			JOIN mission_slot_groups g ON g.id = s.slot_group_id
			WHERE g.mission_id = $1 AND s.assignee_id = $2
		)
	`, missionID.String(), userID.String()).Scan(&exists)
	if err != nil {
		return false, oops.Code("SLOT_QUERY_FAILED").
			With("mission_id", missionID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	return exists, nil
}

func scanSlot(row pgx.Row) (*mission.Slot, error) {
	var s mission.Slot
	var idStr, groupStr string
	var communityStr, assigneeStr *string
	err := row.Scan(&idStr, &groupStr, &s.Title, &s.OrderNumber, &s.Difficulty,
		&s.ShortDescription, &s.DetailedDescription, &s.Reserve, &s.Blocked,
		&s.AutoAssignable, &s.RequiredDLCs, &communityStr, &assigneeStr,
		&s.ExternalAssignee, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("SLOT_NOT_FOUND").Wrap(mission.ErrNotFound)
		}
		return nil, oops.Code("SLOT_SCAN_FAILED").Wrap(err)
	}
	if s.ID, err = parseULID("id", idStr); err != nil {
		return nil, err
	}
	if s.SlotGroupID, err = parseULID("slot_group_id", groupStr); err != nil {
		return nil, err
	}
	if s.RestrictedCommunityID, err = parseOptionalULID("restricted_community_id", communityStr); err != nil {
		return nil, err
	}
	if s.AssigneeID, err = parseOptionalULID("assignee_id", assigneeStr); err != nil {
		return nil, err
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
