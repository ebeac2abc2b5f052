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

// RegistrationRepository implements mission.RegistrationRepository using
// PostgreSQL.
type RegistrationRepository struct {
	pool store.Querier
}

// NewRegistrationRepository creates a new PostgreSQL registration repository.
func NewRegistrationRepository(pool store.Querier) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// Get retrieves a registration by ID.
func (r *RegistrationRepository) Get(ctx context.Context, id ulid.ULID) (*mission.SlotRegistration, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, slot_id, user_id, confirmed, comment, created_at
		FROM mission_slot_registrations WHERE id = $1
	`, id.String())
	reg, err := scanRegistration(row)
	if err != nil {
		return nil, oops.With("registration_id", id.String()).Wrap(err)
	}
	return reg, nil
}

// Create persists a new registration. A duplicate (slot, user) pair is
// reported as mission.ErrConflict.
func (r *RegistrationRepository) Create(ctx context.Context, reg *mission.SlotRegistration) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO mission_slot_registrations (id, slot_id, user_id, confirmed, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, reg.ID.String(), reg.SlotID.String(), reg.UserID.String(), reg.Confirmed,
		reg.Comment, reg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("REGISTRATION_DUPLICATE").
				With("slot_id", reg.SlotID.String()).
				With("user_id", reg.UserID.String()).
				Wrap(mission.ErrConflict)
		}
		return oops.Code("REGISTRATION_CREATE_FAILED").
			With("slot_id", reg.SlotID.String()).
			Wrap(err)
	}
	return nil
}

// SetConfirmed updates a registration's confirmed flag.
func (r *RegistrationRepository) SetConfirmed(ctx context.Context, id ulid.ULID, confirmed bool) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		UPDATE mission_slot_registrations SET confirmed = $2 WHERE id = $1
	`, id.String(), confirmed)
	if err != nil {
		return oops.Code("REGISTRATION_UPDATE_FAILED").
			With("registration_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("REGISTRATION_NOT_FOUND").
			With("registration_id", id.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// Delete removes a registration by ID.
func (r *RegistrationRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `DELETE FROM mission_slot_registrations WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("REGISTRATION_DELETE_FAILED").
			With("registration_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("REGISTRATION_NOT_FOUND").
			With("registration_id", id.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// DeleteBySlotAndUser removes a user's registration for a slot.
func (r *RegistrationRepository) DeleteBySlotAndUser(ctx context.Context, slotID, userID ulid.ULID) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		DELETE FROM mission_slot_registrations WHERE slot_id = $1 AND user_id = $2
	`, slotID.String(), userID.String())
	if err != nil {
		return oops.Code("REGISTRATION_DELETE_FAILED").
			With("slot_id", slotID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("REGISTRATION_NOT_FOUND").
			With("slot_id", slotID.String()).
			With("user_id", userID.String()).
			Wrap(mission.ErrNotFound)
	}
	return nil
}

// ListBySlot returns a slot's registrations in creation order.
func (r *RegistrationRepository) ListBySlot(ctx context.Context, slotID ulid.ULID) ([]*mission.SlotRegistration, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, slot_id, user_id, confirmed, comment, created_at
		FROM mission_slot_registrations WHERE slot_id = $1
		ORDER BY created_at, id
	`, slotID.String())
	if err != nil {
		return nil, oops.Code("REGISTRATION_QUERY_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}
	defer rows.Close()

	regs := make([]*mission.SlotRegistration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("REGISTRATION_QUERY_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}
	return regs, nil
}

// IsUserRegistered reports whether the user has a registration for any
// slot of the mission.
func (r *RegistrationRepository) IsUserRegistered(ctx context.Context, missionID, userID ulid.ULID) (bool, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM mission_slot_registrations r
			JOIN mission_slots s ON s.id = r.slot_id
			JOIN mission_slot_groups g ON g.id = s.slot_group_id
			WHERE g.mission_id = $1 AND r.user_id = $2
		)
	`, missionID.String(), userID.String()).Scan(&exists)
	if err != nil {
		return false, oops.Code("REGISTRATION_QUERY_FAILED").
			With("mission_id", missionID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	return exists, nil
}

func scanRegistration(row pgx.Row) (*mission.SlotRegistration, error) {
	var reg mission.SlotRegistration
	var idStr, slotStr, userStr string
	err := row.Scan(&idStr, &slotStr, &userStr, &reg.Confirmed, &reg.Comment, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("REGISTRATION_NOT_FOUND").Wrap(mission.ErrNotFound)
		}
		return nil, oops.Code("REGISTRATION_SCAN_FAILED").Wrap(err)
	}
	if reg.ID, err = parseULID("id", idStr); err != nil {
		return nil, err
	}
	if reg.SlotID, err = parseULID("slot_id", slotStr); err != nil {
		return nil, err
	}
	if reg.UserID, err = parseULID("user_id", userStr); err != nil {
		return nil, err
	}
	return &reg, nil
}
