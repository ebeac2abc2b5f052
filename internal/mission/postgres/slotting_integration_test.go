// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/missionboard/missionboard/internal/mission"
)

var _ = Describe("Mission slotlist", func() {
	var ctx context.Context
	var creatorID ulid.ULID
	var m *mission.Mission

	BeforeEach(func() {
		ctx = context.Background()
		cleanupMissions(ctx, env.pool)

		creatorID = createTestUser("Creator")
		m = createTestMission(creatorID, "op-integration")
		Expect(env.Missions.CreateMission(ctx, m)).To(Succeed())
	})

	Describe("Mission lifecycle", func() {
		It("grants the creator permission on creation", func() {
			grants, err := env.Grants.FindByUser(ctx, creatorID)
			Expect(err).NotTo(HaveOccurred())

			perms := make([]string, len(grants))
			for i, g := range grants {
				perms[i] = g.Permission
			}
			Expect(perms).To(ContainElement("mission.op-integration.creator"))
		})

		It("rejects a duplicate slug", func() {
			dup := createTestMission(creatorID, "op-integration")
			err := env.Missions.CreateMission(ctx, dup)
			Expect(errors.Is(err, mission.ErrConflict)).To(BeTrue())
		})

		It("revokes mission grants on deletion", func() {
			Expect(env.Missions.DeleteMission(ctx, m.ID)).To(Succeed())

			grants, err := env.Grants.FindByUser(ctx, creatorID)
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(BeEmpty())

			_, err = env.Missions.GetMission(ctx, m.ID)
			Expect(errors.Is(err, mission.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("Slot ordering", func() {
		var alpha, bravo *mission.SlotGroup

		BeforeEach(func() {
			alpha = createTestGroup(m.ID, "Alpha", 1)
			bravo = createTestGroup(m.ID, "Bravo", 2)
			Expect(env.Missions.CreateSlotGroup(ctx, alpha)).To(Succeed())
			Expect(env.Missions.CreateSlotGroup(ctx, bravo)).To(Succeed())
		})

		It("numbers slots globally across groups", func() {
			lead := createTestSlot(alpha.ID, "Squad Leader")
			medic := createTestSlot(alpha.ID, "Medic")
			bravoLead := createTestSlot(bravo.ID, "Squad Leader")

			Expect(env.Missions.CreateSlot(ctx, lead, 0)).To(Succeed())
			Expect(env.Missions.CreateSlot(ctx, medic, 1)).To(Succeed())
			Expect(env.Missions.CreateSlot(ctx, bravoLead, 2)).To(Succeed())

			Expect(orderNumbers(ctx, alpha.ID)).To(Equal([]int{1, 2}))
			Expect(orderNumbers(ctx, bravo.ID)).To(Equal([]int{3}))
		})

		It("renumbers following slots when inserting mid-list", func() {
			first := createTestSlot(alpha.ID, "Squad Leader")
			second := createTestSlot(alpha.ID, "Rifleman")
			Expect(env.Missions.CreateSlot(ctx, first, 0)).To(Succeed())
			Expect(env.Missions.CreateSlot(ctx, second, 1)).To(Succeed())

			inserted := createTestSlot(alpha.ID, "Medic")
			Expect(env.Missions.CreateSlot(ctx, inserted, 1)).To(Succeed())

			got, err := env.Slots.Get(ctx, inserted.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.OrderNumber).To(Equal(2))

			got, err = env.Slots.Get(ctx, second.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.OrderNumber).To(Equal(3))
		})

		It("renumbers when a slot moves to another group", func() {
			lead := createTestSlot(alpha.ID, "Squad Leader")
			medic := createTestSlot(alpha.ID, "Medic")
			Expect(env.Missions.CreateSlot(ctx, lead, 0)).To(Succeed())
			Expect(env.Missions.CreateSlot(ctx, medic, 1)).To(Succeed())

			Expect(env.Missions.MoveSlot(ctx, medic.ID, bravo.ID, 0)).To(Succeed())

			Expect(orderNumbers(ctx, alpha.ID)).To(Equal([]int{1}))
			Expect(orderNumbers(ctx, bravo.ID)).To(Equal([]int{2}))
		})
	})

	Describe("Slot assignment", func() {
		var group *mission.SlotGroup
		var lead, medic *mission.Slot
		var userID ulid.ULID

		BeforeEach(func() {
			group = createTestGroup(m.ID, "Alpha", 1)
			Expect(env.Missions.CreateSlotGroup(ctx, group)).To(Succeed())

			lead = createTestSlot(group.ID, "Squad Leader")
			medic = createTestSlot(group.ID, "Medic")
			Expect(env.Missions.CreateSlot(ctx, lead, 0)).To(Succeed())
			Expect(env.Missions.CreateSlot(ctx, medic, 1)).To(Succeed())

			userID = createTestUser("Player One")
		})

		It("assigns and unassigns a user", func() {
			prev, err := env.Missions.AssignSlot(ctx, lead.ID, mission.UserAssignee(userID))
			Expect(err).NotTo(HaveOccurred())
			Expect(prev.Empty()).To(BeTrue())

			got, err := env.Slots.Get(ctx, lead.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AssignedTo(userID)).To(BeTrue())

			Expect(env.Missions.UnassignSlot(ctx, lead.ID)).To(Succeed())
			got, err = env.Slots.Get(ctx, lead.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Assigned()).To(BeFalse())
		})

		It("rejects assigning one user to two slots in the same group", func() {
			_, err := env.Missions.AssignSlot(ctx, lead.ID, mission.UserAssignee(userID))
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Missions.AssignSlot(ctx, medic.ID, mission.UserAssignee(userID))
			Expect(errors.Is(err, mission.ErrConflict)).To(BeTrue())
		})

		It("accepts an external assignee", func() {
			_, err := env.Missions.AssignSlot(ctx, lead.ID, mission.ExternalAssignee("Guest Speaker"))
			Expect(err).NotTo(HaveOccurred())

			got, err := env.Slots.Get(ctx, lead.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ExternalAssignee).NotTo(BeNil())
			Expect(*got.ExternalAssignee).To(Equal("Guest Speaker"))
		})
	})

	Describe("Registration workflow", func() {
		var group *mission.SlotGroup
		var slot *mission.Slot
		var userID ulid.ULID

		BeforeEach(func() {
			group = createTestGroup(m.ID, "Alpha", 1)
			Expect(env.Missions.CreateSlotGroup(ctx, group)).To(Succeed())

			slot = createTestSlot(group.ID, "Squad Leader")
			Expect(env.Missions.CreateSlot(ctx, slot, 0)).To(Succeed())

			userID = createTestUser("Applicant")
		})

		It("keeps a registration pending until confirmed", func() {
			reg, err := env.Missions.RegisterForSlot(ctx, slot.ID, userID, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(reg.Confirmed).To(BeFalse())

			got, err := env.Slots.Get(ctx, slot.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Assigned()).To(BeFalse())

			Expect(env.Missions.ConfirmRegistration(ctx, reg.ID)).To(Succeed())

			got, err = env.Slots.Get(ctx, slot.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AssignedTo(userID)).To(BeTrue())
		})

		It("auto-assigns when the slot allows it", func() {
			auto := createTestSlot(group.ID, "Medic")
			auto.AutoAssignable = true
			Expect(env.Missions.CreateSlot(ctx, auto, 1)).To(Succeed())

			reg, err := env.Missions.RegisterForSlot(ctx, auto.ID, userID, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(reg.Confirmed).To(BeTrue())

			got, err := env.Slots.Get(ctx, auto.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AssignedTo(userID)).To(BeTrue())
		})

		It("rejects a duplicate registration", func() {
			_, err := env.Missions.RegisterForSlot(ctx, slot.ID, userID, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Missions.RegisterForSlot(ctx, slot.ID, userID, nil)
			Expect(errors.Is(err, mission.ErrConflict)).To(BeTrue())
		})

		It("refuses registration on a blocked slot", func() {
			blocked := createTestSlot(group.ID, "Reserved")
			blocked.Blocked = true
			Expect(env.Missions.CreateSlot(ctx, blocked, 1)).To(Succeed())

			_, err := env.Missions.RegisterForSlot(ctx, blocked.ID, userID, nil)
			Expect(errors.Is(err, mission.ErrForbidden)).To(BeTrue())
		})

		It("reopens the slot when the holder is unregistered", func() {
			auto := createTestSlot(group.ID, "Medic")
			auto.AutoAssignable = true
			Expect(env.Missions.CreateSlot(ctx, auto, 1)).To(Succeed())

			_, err := env.Missions.RegisterForSlot(ctx, auto.ID, userID, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Missions.UnregisterUser(ctx, auto.ID, userID)).To(Succeed())

			got, err := env.Slots.Get(ctx, auto.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Assigned()).To(BeFalse())

			regs, err := env.Missions.ListRegistrations(ctx, auto.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs).To(BeEmpty())
		})

		It("counts unassigned slots with and without pending registrations", func() {
			spare := createTestSlot(group.ID, "Rifleman")
			Expect(env.Missions.CreateSlot(ctx, spare, 1)).To(Succeed())

			_, err := env.Missions.RegisterForSlot(ctx, slot.ID, userID, nil)
			Expect(err).NotTo(HaveOccurred())

			total, err := env.Missions.TotalSlotCount(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(2))

			open, err := env.Missions.UnassignedSlotCount(ctx, m.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(Equal(2))

			open, err = env.Missions.UnassignedSlotCount(ctx, m.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(Equal(1))
		})
	})
})

// orderNumbers reads the persisted order numbers for a group, in list order.
func orderNumbers(ctx context.Context, groupID ulid.ULID) []int {
	slots, err := env.Slots.ListByGroup(ctx, groupID)
	Expect(err).NotTo(HaveOccurred())

	orders := make([]int, len(slots))
	for i, s := range slots {
		orders[i] = s.OrderNumber
	}
	return orders
}
