// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package mission

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// MissionRepository manages mission persistence.
type MissionRepository interface {
	// Get retrieves a mission by ID.
	Get(ctx context.Context, id ulid.ULID) (*Mission, error)

	// GetBySlug retrieves a mission by its unique slug.
	GetBySlug(ctx context.Context, slug string) (*Mission, error)

	// Create persists a new mission. A duplicate slug returns an error
	// wrapping ErrConflict.
	Create(ctx context.Context, m *Mission) error

	// Update modifies an existing mission.
	Update(ctx context.Context, m *Mission) error

	// Delete removes a mission; groups, slots, and registrations cascade.
	Delete(ctx context.Context, id ulid.ULID) error
}

// SlotGroupRepository manages slot group persistence.
type SlotGroupRepository interface {
	// Get retrieves a slot group by ID.
	Get(ctx context.Context, id ulid.ULID) (*SlotGroup, error)

	// Create persists a new slot group.
	Create(ctx context.Context, g *SlotGroup) error

	// Update modifies an existing slot group.
	Update(ctx context.Context, g *SlotGroup) error

	// Delete removes a slot group; its slots cascade.
	Delete(ctx context.Context, id ulid.ULID) error

	// ListByMission returns a mission's slot groups ordered by
	// (order_number, id) ascending.
	ListByMission(ctx context.Context, missionID ulid.ULID) ([]*SlotGroup, error)
}

// SlotRepository manages slot persistence.
type SlotRepository interface {
	// Get retrieves a slot by ID.
	Get(ctx context.Context, id ulid.ULID) (*Slot, error)

	// Create persists a new slot.
	Create(ctx context.Context, s *Slot) error

	// Update modifies an existing slot's descriptive fields and flags.
	// Assignment changes go through UpdateAssignment.
	Update(ctx context.Context, s *Slot) error

	// Delete removes a slot; its registrations cascade.
	Delete(ctx context.Context, id ulid.ULID) error

	// ListByGroup returns a group's slots ordered by (order_number, id)
	// ascending.
	ListByGroup(ctx context.Context, groupID ulid.ULID) ([]*Slot, error)

	// UpdateAssignment sets or clears the slot's assignee. A duplicate
	// (slot_group_id, assignee_id) pair returns an error wrapping
	// ErrConflict.
	UpdateAssignment(ctx context.Context, slotID ulid.ULID, assignee Assignee) error

	// UpdateOrderNumber persists a recomputed order number.
	UpdateOrderNumber(ctx context.Context, slotID ulid.ULID, orderNumber int) error

	// ShiftOrderNumbers increments the order number of every slot of the
	// mission whose order number is greater than after. Used to open a
	// gap for insert-after placement.
	ShiftOrderNumbers(ctx context.Context, missionID ulid.ULID, after int) error

	// CountByMission counts all slots across the mission's slot groups.
	CountByMission(ctx context.Context, missionID ulid.ULID) (int, error)

	// CountUnassigned counts slots with no assignee. When
	// excludeRegistered is true, slots with at least one pending
	// registration are excluded from the count even though technically
	// unassigned.
	CountUnassigned(ctx context.Context, missionID ulid.ULID, excludeRegistered bool) (int, error)

	// IsUserAssigned reports whether the user holds any slot of the mission.
	IsUserAssigned(ctx context.Context, missionID, userID ulid.ULID) (bool, error)
}

// RegistrationRepository manages slot registration persistence.
type RegistrationRepository interface {
	// Get retrieves a registration by ID.
	Get(ctx context.Context, id ulid.ULID) (*SlotRegistration, error)

	// Create persists a new registration. A duplicate (slot, user) pair
	// returns an error wrapping ErrConflict.
	Create(ctx context.Context, r *SlotRegistration) error

	// SetConfirmed updates a registration's confirmed flag.
	SetConfirmed(ctx context.Context, id ulid.ULID, confirmed bool) error

	// Delete removes a registration by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteBySlotAndUser removes a user's registration for a slot.
	// Returns an error wrapping ErrNotFound when none exists.
	DeleteBySlotAndUser(ctx context.Context, slotID, userID ulid.ULID) error

	// ListBySlot returns a slot's registrations ordered by creation.
	ListBySlot(ctx context.Context, slotID ulid.ULID) ([]*SlotRegistration, error)

	// IsUserRegistered reports whether the user has a registration for
	// any slot of the mission.
	IsUserRegistered(ctx context.Context, missionID, userID ulid.ULID) (bool, error)
}

// Transactor runs a function inside a single database transaction.
// Implemented by store.Transactor.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// GrantStore is the subset of permission management the mission service
// needs: creator grants on mission creation and prefix cleanup on
// deletion. This mirrors permission.GrantRepository without coupling
// mission to the permission package.
type GrantStore interface {
	Grant(ctx context.Context, userID ulid.ULID, permission string) error
	RevokeByPrefix(ctx context.Context, prefix string) error
}

// MembershipChecker reports community membership, used to gate
// registration for community-restricted slots.
type MembershipChecker interface {
	IsMember(ctx context.Context, communityID, userID ulid.ULID) (bool, error)
}
