// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package mission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service implements mission, slot group, and slot operations. Multi-row
// mutations run inside a single transaction through the Transactor so
// that grants, order recalculation, and row writes commit atomically.
type Service struct {
	missions      MissionRepository
	groups        SlotGroupRepository
	slots         SlotRepository
	registrations RegistrationRepository
	tx            Transactor
	grants        GrantStore
	members       MembershipChecker
	ordering      *OrderingEngine
	logger        *slog.Logger
}

// NewService creates a mission Service.
func NewService(
	missions MissionRepository,
	groups SlotGroupRepository,
	slots SlotRepository,
	registrations RegistrationRepository,
	tx Transactor,
	grants GrantStore,
	members MembershipChecker,
	logger *slog.Logger,
) *Service {
	return &Service{
		missions:      missions,
		groups:        groups,
		slots:         slots,
		registrations: registrations,
		tx:            tx,
		grants:        grants,
		members:       members,
		ordering:      NewOrderingEngine(groups, slots),
		logger:        logger,
	}
}

// creatorPermission is the grant issued to a mission's creator.
func creatorPermission(slug string) string {
	return fmt.Sprintf("mission.%s.creator", slug)
}

// CreateMission validates and persists a mission, granting the creator
// the mission-scoped creator permission in the same transaction.
func (s *Service) CreateMission(ctx context.Context, m *Mission) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ID.IsZero() {
		m.ID = ulid.Make()
	}

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.missions.Create(ctx, m); err != nil {
			return err
		}
		return s.grants.Grant(ctx, m.CreatorID, creatorPermission(m.Slug))
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return oops.Code("MISSION_SLUG_TAKEN").
				With("slug", m.Slug).
				Wrap(err)
		}
		return oops.Code("MISSION_CREATE_FAILED").
			With("slug", m.Slug).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "mission created",
		slog.String("mission_id", m.ID.String()),
		slog.String("slug", m.Slug))
	return nil
}

// GetMission retrieves a mission by ID.
func (s *Service) GetMission(ctx context.Context, id ulid.ULID) (*Mission, error) {
	m, err := s.missions.Get(ctx, id)
	if err != nil {
		return nil, oops.Code("MISSION_GET_FAILED").
			With("mission_id", id.String()).
			Wrap(err)
	}
	return m, nil
}

// GetMissionBySlug retrieves a mission by its unique slug.
func (s *Service) GetMissionBySlug(ctx context.Context, slug string) (*Mission, error) {
	m, err := s.missions.GetBySlug(ctx, slug)
	if err != nil {
		return nil, oops.Code("MISSION_GET_FAILED").
			With("slug", slug).
			Wrap(err)
	}
	return m, nil
}

// UpdateMission validates and persists mission changes. The slug is
// immutable after creation; permission grants reference it.
func (s *Service) UpdateMission(ctx context.Context, m *Mission) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := s.missions.Update(ctx, m); err != nil {
		return oops.Code("MISSION_UPDATE_FAILED").
			With("mission_id", m.ID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteMission removes a mission. Slot groups, slots, and registrations
// cascade; mission-scoped permission grants are deleted in the same
// transaction.
func (s *Service) DeleteMission(ctx context.Context, id ulid.ULID) error {
	m, err := s.missions.Get(ctx, id)
	if err != nil {
		return oops.Code("MISSION_DELETE_FAILED").
			With("mission_id", id.String()).
			Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.missions.Delete(ctx, id); err != nil {
			return err
		}
		return s.grants.RevokeByPrefix(ctx, fmt.Sprintf("mission.%s.", m.Slug))
	})
	if err != nil {
		return oops.Code("MISSION_DELETE_FAILED").
			With("mission_id", id.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "mission deleted",
		slog.String("mission_id", id.String()),
		slog.String("slug", m.Slug))
	return nil
}

// CreateSlotGroup validates and persists a slot group, then recalculates
// the mission's slot order in the same transaction.
func (s *Service) CreateSlotGroup(ctx context.Context, g *SlotGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.ID.IsZero() {
		g.ID = ulid.Make()
	}

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.groups.Create(ctx, g); err != nil {
			return err
		}
		_, err := s.ordering.Recalculate(ctx, g.MissionID)
		return err
	})
	if err != nil {
		return oops.Code("SLOT_GROUP_CREATE_FAILED").
			With("mission_id", g.MissionID.String()).
			Wrap(err)
	}
	return nil
}

// UpdateSlotGroup persists slot group changes and recalculates order, as
// the group's order number may have moved.
func (s *Service) UpdateSlotGroup(ctx context.Context, g *SlotGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.groups.Update(ctx, g); err != nil {
			return err
		}
		_, err := s.ordering.Recalculate(ctx, g.MissionID)
		return err
	})
	if err != nil {
		return oops.Code("SLOT_GROUP_UPDATE_FAILED").
			With("slot_group_id", g.ID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteSlotGroup removes a slot group. Its slots and their
// registrations cascade; remaining slots are renumbered in-tx.
func (s *Service) DeleteSlotGroup(ctx context.Context, id ulid.ULID) error {
	g, err := s.groups.Get(ctx, id)
	if err != nil {
		return oops.Code("SLOT_GROUP_DELETE_FAILED").
			With("slot_group_id", id.String()).
			Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.groups.Delete(ctx, id); err != nil {
			return err
		}
		_, err := s.ordering.Recalculate(ctx, g.MissionID)
		return err
	})
	if err != nil {
		return oops.Code("SLOT_GROUP_DELETE_FAILED").
			With("slot_group_id", id.String()).
			Wrap(err)
	}
	return nil
}

// CreateSlot inserts a slot after the given mission-global order number.
// Slots past the insertion point are shifted to open a gap, then the
// whole mission is renumbered, all in one transaction. insertAfter 0
// places the slot first.
func (s *Service) CreateSlot(ctx context.Context, slot *Slot, insertAfter int) error {
	slot.RequiredDLCs = NormalizeDLCs(slot.RequiredDLCs)
	if insertAfter < 0 {
		return &ValidationError{Field: "insertAfter", Message: "cannot be negative"}
	}
	if slot.ID.IsZero() {
		slot.ID = ulid.Make()
	}
	slot.OrderNumber = insertAfter + 1
	if err := slot.Validate(); err != nil {
		return err
	}

	g, err := s.groups.Get(ctx, slot.SlotGroupID)
	if err != nil {
		return oops.Code("SLOT_CREATE_FAILED").
			With("slot_group_id", slot.SlotGroupID.String()).
			Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.slots.ShiftOrderNumbers(ctx, g.MissionID, insertAfter); err != nil {
			return err
		}
		if err := s.slots.Create(ctx, slot); err != nil {
			return err
		}
		_, err := s.ordering.Recalculate(ctx, g.MissionID)
		return err
	})
	if err != nil {
		return oops.Code("SLOT_CREATE_FAILED").
			With("slot_group_id", slot.SlotGroupID.String()).
			Wrap(err)
	}
	return nil
}

// UpdateSlot persists slot changes and renumbers the mission. Assignment
// fields are not written here; use AssignSlot and UnassignSlot.
func (s *Service) UpdateSlot(ctx context.Context, slot *Slot) error {
	slot.RequiredDLCs = NormalizeDLCs(slot.RequiredDLCs)
	if err := slot.Validate(); err != nil {
		return err
	}

	g, err := s.groups.Get(ctx, slot.SlotGroupID)
	if err != nil {
		return oops.Code("SLOT_UPDATE_FAILED").
			With("slot_id", slot.ID.String()).
			Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.slots.Update(ctx, slot); err != nil {
			return err
		}
		_, err := s.ordering.Recalculate(ctx, g.MissionID)
		return err
	})
	if err != nil {
		return oops.Code("SLOT_UPDATE_FAILED").
			With("slot_id", slot.ID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteSlot removes a slot and its registrations, then renumbers.
func (s *Service) DeleteSlot(ctx context.Context, id ulid.ULID) error {
	slot, err := s.slots.Get(ctx, id)
	if err != nil {
		return oops.Code("SLOT_DELETE_FAILED").
			With("slot_id", id.String()).
			Wrap(err)
	}
	g, err := s.groups.Get(ctx, slot.SlotGroupID)
	if err != nil {
		return oops.Code("SLOT_DELETE_FAILED").
			With("slot_id", id.String()).
			Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.slots.Delete(ctx, id); err != nil {
			return err
		}
		_, err := s.ordering.Recalculate(ctx, g.MissionID)
		return err
	})
	if err != nil {
		return oops.Code("SLOT_DELETE_FAILED").
			With("slot_id", id.String()).
			Wrap(err)
	}
	return nil
}

// MoveSlot moves a slot to a (possibly different) group within the same
// mission and places it after the given mission-global order number.
func (s *Service) MoveSlot(ctx context.Context, slotID, targetGroupID ulid.ULID, insertAfter int) error {
	if insertAfter < 0 {
		return &ValidationError{Field: "insertAfter", Message: "cannot be negative"}
	}

	slot, err := s.slots.Get(ctx, slotID)
	if err != nil {
		return oops.Code("SLOT_MOVE_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}
	target, err := s.groups.Get(ctx, targetGroupID)
	if err != nil {
		return oops.Code("SLOT_MOVE_FAILED").
			With("slot_group_id", targetGroupID.String()).
			Wrap(err)
	}
	source, err := s.groups.Get(ctx, slot.SlotGroupID)
	if err != nil {
		return oops.Code("SLOT_MOVE_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}
	if source.MissionID != target.MissionID {
		return &ValidationError{Field: "slotGroupId", Message: "target group belongs to a different mission"}
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.slots.ShiftOrderNumbers(ctx, target.MissionID, insertAfter); err != nil {
			return err
		}
		slot.SlotGroupID = targetGroupID
		slot.OrderNumber = insertAfter + 1
		if err := s.slots.Update(ctx, slot); err != nil {
			return err
		}
		_, err := s.ordering.Recalculate(ctx, target.MissionID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return oops.Code("SLOT_ASSIGNMENT_CONFLICT").
				With("slot_id", slotID.String()).
				Wrap(err)
		}
		return oops.Code("SLOT_MOVE_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}
	return nil
}

// AssignSlot sets the slot's assignee directly, bypassing the
// registration workflow. An empty assignee unassigns. Assignment is
// last-write-wins; the previous assignee is returned so callers can
// notify a displaced holder. Assigning a user who already holds another
// slot in the same group surfaces the unique violation as ErrConflict.
func (s *Service) AssignSlot(ctx context.Context, slotID ulid.ULID, assignee Assignee) (Assignee, error) {
	if err := assignee.Validate(); err != nil {
		return Assignee{}, err
	}

	slot, err := s.slots.Get(ctx, slotID)
	if err != nil {
		return Assignee{}, oops.Code("SLOT_ASSIGN_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}
	previous := slot.Assignee()

	if err := s.slots.UpdateAssignment(ctx, slotID, assignee); err != nil {
		if errors.Is(err, ErrConflict) {
			return Assignee{}, oops.Code("SLOT_ASSIGNMENT_CONFLICT").
				With("slot_id", slotID.String()).
				Wrap(err)
		}
		return Assignee{}, oops.Code("SLOT_ASSIGN_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}
	return previous, nil
}

// UnassignSlot clears the slot's assignee. Registrations are untouched.
func (s *Service) UnassignSlot(ctx context.Context, slotID ulid.ULID) error {
	_, err := s.AssignSlot(ctx, slotID, Assignee{})
	return err
}

// TotalSlotCount counts all slots across the mission's slot groups.
func (s *Service) TotalSlotCount(ctx context.Context, missionID ulid.ULID) (int, error) {
	n, err := s.slots.CountByMission(ctx, missionID)
	if err != nil {
		return 0, oops.Code("SLOT_COUNT_FAILED").
			With("mission_id", missionID.String()).
			Wrap(err)
	}
	return n, nil
}

// UnassignedSlotCount counts slots with no assignee. With
// excludeRegistered, unassigned slots that already have a pending
// registration are excluded, which is the number a prospective
// registrant cares about.
func (s *Service) UnassignedSlotCount(ctx context.Context, missionID ulid.ULID, excludeRegistered bool) (int, error) {
	n, err := s.slots.CountUnassigned(ctx, missionID, excludeRegistered)
	if err != nil {
		return 0, oops.Code("SLOT_COUNT_FAILED").
			With("mission_id", missionID.String()).
			Wrap(err)
	}
	return n, nil
}

// IsUserAssignedToAnySlot reports whether the user holds any slot of the
// mission.
func (s *Service) IsUserAssignedToAnySlot(ctx context.Context, missionID, userID ulid.ULID) (bool, error) {
	ok, err := s.slots.IsUserAssigned(ctx, missionID, userID)
	if err != nil {
		return false, oops.Code("SLOT_QUERY_FAILED").
			With("mission_id", missionID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	return ok, nil
}

// IsUserRegisteredForAnySlot reports whether the user has a registration
// for any slot of the mission.
func (s *Service) IsUserRegisteredForAnySlot(ctx context.Context, missionID, userID ulid.ULID) (bool, error) {
	ok, err := s.registrations.IsUserRegistered(ctx, missionID, userID)
	if err != nil {
		return false, oops.Code("SLOT_QUERY_FAILED").
			With("mission_id", missionID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	return ok, nil
}
