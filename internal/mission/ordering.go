// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package mission

import (
	"context"
	"sort"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// OrderingEngine recomputes mission-global slot order numbers. Slots are
// numbered 1..N across the whole mission: groups sorted by their order
// number, slots within each group sorted by their current order number,
// with IDs breaking ties deterministically.
type OrderingEngine struct {
	groups SlotGroupRepository
	slots  SlotRepository
}

// NewOrderingEngine creates an ordering engine over the given repositories.
func NewOrderingEngine(groups SlotGroupRepository, slots SlotRepository) *OrderingEngine {
	return &OrderingEngine{groups: groups, slots: slots}
}

// Recalculate renumbers every slot of the mission and persists only the
// numbers that changed. It returns the number of slots rewritten, so a
// stable slotlist costs zero writes.
func (e *OrderingEngine) Recalculate(ctx context.Context, missionID ulid.ULID) (int, error) {
	groups, err := e.groups.ListByMission(ctx, missionID)
	if err != nil {
		return 0, oops.Code("ORDERING_FAILED").
			With("mission_id", missionID.String()).
			Wrapf(err, "listing slot groups")
	}
	sortGroups(groups)

	next := 1
	changed := 0
	for _, group := range groups {
		slots, err := e.slots.ListByGroup(ctx, group.ID)
		if err != nil {
			return changed, oops.Code("ORDERING_FAILED").
				With("mission_id", missionID.String()).
				With("slot_group_id", group.ID.String()).
				Wrapf(err, "listing slots")
		}
		sortSlots(slots)

		for _, slot := range slots {
			if slot.OrderNumber != next {
				if err := e.slots.UpdateOrderNumber(ctx, slot.ID, next); err != nil {
					return changed, oops.Code("ORDERING_FAILED").
						With("slot_id", slot.ID.String()).
						Wrapf(err, "writing order number")
				}
				slot.OrderNumber = next
				changed++
			}
			next++
		}
	}
	return changed, nil
}

func sortGroups(groups []*SlotGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].OrderNumber != groups[j].OrderNumber {
			return groups[i].OrderNumber < groups[j].OrderNumber
		}
		return groups[i].ID.Compare(groups[j].ID) < 0
	})
}

func sortSlots(slots []*Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].OrderNumber != slots[j].OrderNumber {
			return slots[i].OrderNumber < slots[j].OrderNumber
		}
		return slots[i].ID.Compare(slots[j].ID) < 0
	})
}
