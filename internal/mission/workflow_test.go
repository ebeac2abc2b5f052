// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package mission

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterForSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending registration on a plain slot", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1)
		userID := ulid.Make()

		comment := "first mission, go easy"
		reg, err := svc.RegisterForSlot(ctx, slot.ID, userID, &comment)
		require.NoError(t, err)
		assert.False(t, reg.Confirmed)
		assert.False(t, st.slots[slot.ID].Assigned())
		require.NotNil(t, st.regs[reg.ID].Comment)
		assert.Equal(t, comment, *st.regs[reg.ID].Comment)
	})

	t.Run("blocked slot is forbidden", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1, func(s *Slot) { s.Blocked = true })

		_, err := svc.RegisterForSlot(ctx, slot.ID, ulid.Make(), nil)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, st.regs)
	})

	t.Run("restricted slot requires community membership", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		communityID := ulid.Make()
		slot := seedSlot(st, g.ID, 1, func(s *Slot) { s.RestrictedCommunityID = &communityID })

		outsider := ulid.Make()
		_, err := svc.RegisterForSlot(ctx, slot.ID, outsider, nil)
		assert.ErrorIs(t, err, ErrForbidden)

		member := ulid.Make()
		st.addMember(communityID, member)
		_, err = svc.RegisterForSlot(ctx, slot.ID, member, nil)
		require.NoError(t, err)
	})

	t.Run("duplicate registration is a conflict", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1)
		userID := ulid.Make()

		_, err := svc.RegisterForSlot(ctx, slot.ID, userID, nil)
		require.NoError(t, err)

		_, err = svc.RegisterForSlot(ctx, slot.ID, userID, nil)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("auto-assignable slot promotes immediately", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1, func(s *Slot) { s.AutoAssignable = true })
		userID := ulid.Make()

		reg, err := svc.RegisterForSlot(ctx, slot.ID, userID, nil)
		require.NoError(t, err)
		assert.True(t, reg.Confirmed)
		assert.True(t, st.slots[slot.ID].AssignedTo(userID))
	})

	t.Run("auto-assignable but taken slot falls back to pending", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		holder := ulid.Make()
		slot := seedSlot(st, g.ID, 1, func(s *Slot) {
			s.AutoAssignable = true
			s.AssigneeID = &holder
		})

		reg, err := svc.RegisterForSlot(ctx, slot.ID, ulid.Make(), nil)
		require.NoError(t, err)
		assert.False(t, reg.Confirmed)
		assert.True(t, st.slots[slot.ID].AssignedTo(holder))
	})

	t.Run("auto-assign race loser gets a conflict", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		winner := ulid.Make()
		// winner already holds another slot in the group, so the
		// promotion write trips the per-group assignment unique
		seedSlot(st, g.ID, 1, func(s *Slot) { s.AssigneeID = &winner })
		slot := seedSlot(st, g.ID, 2, func(s *Slot) { s.AutoAssignable = true })

		_, err := svc.RegisterForSlot(ctx, slot.ID, winner, nil)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("registering for a slot the user already holds is a conflict", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		userID := ulid.Make()
		slot := seedSlot(st, g.ID, 1, func(s *Slot) { s.AssigneeID = &userID })

		_, err := svc.RegisterForSlot(ctx, slot.ID, userID, nil)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestConfirmRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms and assigns in one step", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1)
		userID := ulid.Make()
		reg, err := svc.RegisterForSlot(ctx, slot.ID, userID, nil)
		require.NoError(t, err)

		require.NoError(t, svc.ConfirmRegistration(ctx, reg.ID))
		assert.True(t, st.regs[reg.ID].Confirmed)
		assert.True(t, st.slots[slot.ID].AssignedTo(userID))
	})

	t.Run("confirming twice is a no-op", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1)
		reg, err := svc.RegisterForSlot(ctx, slot.ID, ulid.Make(), nil)
		require.NoError(t, err)

		require.NoError(t, svc.ConfirmRegistration(ctx, reg.ID))
		require.NoError(t, svc.ConfirmRegistration(ctx, reg.ID))
	})

	t.Run("never steals a slot assigned to someone else", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1)

		reg, err := svc.RegisterForSlot(ctx, slot.ID, ulid.Make(), nil)
		require.NoError(t, err)

		// an editor assigns the slot to a third party in the meantime
		holder := ulid.Make()
		_, err = svc.AssignSlot(ctx, slot.ID, UserAssignee(holder))
		require.NoError(t, err)

		err = svc.ConfirmRegistration(ctx, reg.ID)
		assert.ErrorIs(t, err, ErrConflict)
		assert.False(t, st.regs[reg.ID].Confirmed)
		assert.True(t, st.slots[slot.ID].AssignedTo(holder))
	})

	t.Run("other pending registrations stay untouched", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1)

		winner, err := svc.RegisterForSlot(ctx, slot.ID, ulid.Make(), nil)
		require.NoError(t, err)
		rival, err := svc.RegisterForSlot(ctx, slot.ID, ulid.Make(), nil)
		require.NoError(t, err)

		require.NoError(t, svc.ConfirmRegistration(ctx, winner.ID))
		assert.False(t, st.regs[rival.ID].Confirmed)
		assert.Len(t, st.regs, 2)
	})
}

func TestRegistrationRemoval(t *testing.T) {
	ctx := context.Background()

	t.Run("deny deletes the registration but keeps an assignment", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1)
		userID := ulid.Make()
		reg, err := svc.RegisterForSlot(ctx, slot.ID, userID, nil)
		require.NoError(t, err)
		require.NoError(t, svc.ConfirmRegistration(ctx, reg.ID))

		require.NoError(t, svc.DenyRegistration(ctx, reg.ID))
		assert.Empty(t, st.regs)
		assert.True(t, st.slots[slot.ID].AssignedTo(userID))
	})

	t.Run("withdraw removes the user's own registration", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1)
		userID := ulid.Make()
		_, err := svc.RegisterForSlot(ctx, slot.ID, userID, nil)
		require.NoError(t, err)

		require.NoError(t, svc.WithdrawRegistration(ctx, slot.ID, userID))
		assert.Empty(t, st.regs)

		err = svc.WithdrawRegistration(ctx, slot.ID, userID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unregister removes registration and assignment together", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		slot := seedSlot(st, g.ID, 1, func(s *Slot) { s.AutoAssignable = true })
		userID := ulid.Make()
		_, err := svc.RegisterForSlot(ctx, slot.ID, userID, nil)
		require.NoError(t, err)
		require.True(t, st.slots[slot.ID].AssignedTo(userID))

		require.NoError(t, svc.UnregisterUser(ctx, slot.ID, userID))
		assert.Empty(t, st.regs)
		assert.False(t, st.slots[slot.ID].Assigned())
	})

	t.Run("unregister tolerates an editor-assigned user with no registration", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		userID := ulid.Make()
		slot := seedSlot(st, g.ID, 1, func(s *Slot) { s.AssigneeID = &userID })

		require.NoError(t, svc.UnregisterUser(ctx, slot.ID, userID))
		assert.False(t, st.slots[slot.ID].Assigned())
	})

	t.Run("unregister leaves another holder's assignment alone", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		_, g := seedMission(st)
		holder := ulid.Make()
		slot := seedSlot(st, g.ID, 1, func(s *Slot) { s.AssigneeID = &holder })
		registrant := ulid.Make()
		_, err := svc.RegisterForSlot(ctx, slot.ID, registrant, nil)
		require.NoError(t, err)

		require.NoError(t, svc.UnregisterUser(ctx, slot.ID, registrant))
		assert.Empty(t, st.regs)
		assert.True(t, st.slots[slot.ID].AssignedTo(holder))
	})
}

// TestSlottingScenario walks a full slotlist lifecycle end to end.
func TestSlottingScenario(t *testing.T) {
	ctx := context.Background()
	st := newState()
	svc := newTestService(st)

	m := validMission()
	require.NoError(t, svc.CreateMission(ctx, m))

	command := &SlotGroup{MissionID: m.ID, Title: "Command", OrderNumber: 1}
	require.NoError(t, svc.CreateSlotGroup(ctx, command))
	alpha := &SlotGroup{MissionID: m.ID, Title: "Alpha", OrderNumber: 2}
	require.NoError(t, svc.CreateSlotGroup(ctx, alpha))

	lead := &Slot{SlotGroupID: command.ID, Title: "Platoon Lead", Difficulty: 4}
	require.NoError(t, svc.CreateSlot(ctx, lead, 0))
	medic := &Slot{SlotGroupID: alpha.ID, Title: "Medic", Difficulty: 2, AutoAssignable: true}
	require.NoError(t, svc.CreateSlot(ctx, medic, 1))
	rifleman := &Slot{SlotGroupID: alpha.ID, Title: "Rifleman", Difficulty: 0, AutoAssignable: true}
	require.NoError(t, svc.CreateSlot(ctx, rifleman, 2))

	total, err := svc.TotalSlotCount(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, 3, total)

	// leader applies for the command slot, needs manual confirmation
	leader := ulid.Make()
	leadReg, err := svc.RegisterForSlot(ctx, lead.ID, leader, nil)
	require.NoError(t, err)
	require.False(t, leadReg.Confirmed)

	// medic slot auto-assigns
	medicUser := ulid.Make()
	medicReg, err := svc.RegisterForSlot(ctx, medic.ID, medicUser, nil)
	require.NoError(t, err)
	require.True(t, medicReg.Confirmed)

	open, err := svc.UnassignedSlotCount(ctx, m.ID, false)
	require.NoError(t, err)
	require.Equal(t, 2, open)

	open, err = svc.UnassignedSlotCount(ctx, m.ID, true)
	require.NoError(t, err)
	require.Equal(t, 1, open) // lead pending, rifleman truly free

	require.NoError(t, svc.ConfirmRegistration(ctx, leadReg.ID))

	assigned, err := svc.IsUserAssignedToAnySlot(ctx, m.ID, leader)
	require.NoError(t, err)
	require.True(t, assigned)

	// medic drops out; the slot opens back up
	require.NoError(t, svc.UnregisterUser(ctx, medic.ID, medicUser))
	open, err = svc.UnassignedSlotCount(ctx, m.ID, true)
	require.NoError(t, err)
	require.Equal(t, 2, open)

	// slots stay densely numbered after structural edits
	require.NoError(t, svc.DeleteSlot(ctx, medic.ID))
	orders := []int{st.slots[lead.ID].OrderNumber, st.slots[rifleman.ID].OrderNumber}
	require.Equal(t, []int{1, 2}, orders)
}
