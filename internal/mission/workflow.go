// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package mission

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// RegisterForSlot creates a registration for a slot. Blocked slots and
// community-restricted slots the user is not a member of are forbidden.
// An auto-assignable, unassigned slot promotes the registration
// immediately: the registration is created confirmed and the slot
// assigned in one transaction, so a race between two registrants is
// decided by the database uniques and the loser gets ErrConflict.
func (s *Service) RegisterForSlot(ctx context.Context, slotID, userID ulid.ULID, comment *string) (*SlotRegistration, error) {
	slot, err := s.slots.Get(ctx, slotID)
	if err != nil {
		return nil, oops.Code("REGISTRATION_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}

	if slot.Blocked {
		return nil, oops.Code("SLOT_BLOCKED").
			With("slot_id", slotID.String()).
			Wrap(ErrForbidden)
	}
	if slot.RestrictedCommunityID != nil {
		member, err := s.members.IsMember(ctx, *slot.RestrictedCommunityID, userID)
		if err != nil {
			return nil, oops.Code("REGISTRATION_FAILED").
				With("slot_id", slotID.String()).
				With("community_id", slot.RestrictedCommunityID.String()).
				Wrap(err)
		}
		if !member {
			return nil, oops.Code("SLOT_RESTRICTED").
				With("slot_id", slotID.String()).
				With("community_id", slot.RestrictedCommunityID.String()).
				Wrap(ErrForbidden)
		}
	}
	if slot.AssignedTo(userID) {
		return nil, oops.Code("ALREADY_ASSIGNED").
			With("slot_id", slotID.String()).
			With("user_id", userID.String()).
			Wrap(ErrConflict)
	}

	reg := NewRegistration(slotID, userID, comment)

	if slot.AutoAssignable && !slot.Assigned() {
		reg.Confirmed = true
		err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
			if err := s.registrations.Create(ctx, reg); err != nil {
				return err
			}
			return s.slots.UpdateAssignment(ctx, slotID, UserAssignee(userID))
		})
	} else {
		reg.Confirmed = false
		err = s.registrations.Create(ctx, reg)
	}
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, oops.Code("REGISTRATION_CONFLICT").
				With("slot_id", slotID.String()).
				With("user_id", userID.String()).
				Wrap(err)
		}
		return nil, oops.Code("REGISTRATION_FAILED").
			With("slot_id", slotID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered for slot",
		slog.String("slot_id", slotID.String()),
		slog.String("user_id", userID.String()),
		slog.Bool("auto_assigned", reg.Confirmed))
	return reg, nil
}

// ConfirmRegistration confirms a pending registration and assigns the
// slot to the registrant, both in one transaction. Confirming an
// already-confirmed registration is a no-op. A slot assigned to a
// different user is never stolen; the editor must unassign first.
func (s *Service) ConfirmRegistration(ctx context.Context, registrationID ulid.ULID) error {
	reg, err := s.registrations.Get(ctx, registrationID)
	if err != nil {
		return oops.Code("CONFIRMATION_FAILED").
			With("registration_id", registrationID.String()).
			Wrap(err)
	}
	if reg.Confirmed {
		return nil
	}

	slot, err := s.slots.Get(ctx, reg.SlotID)
	if err != nil {
		return oops.Code("CONFIRMATION_FAILED").
			With("registration_id", registrationID.String()).
			Wrap(err)
	}
	if slot.Assigned() && !slot.AssignedTo(reg.UserID) {
		return oops.Code("SLOT_TAKEN").
			With("slot_id", slot.ID.String()).
			With("user_id", reg.UserID.String()).
			Wrap(ErrConflict)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.registrations.SetConfirmed(ctx, registrationID, true); err != nil {
			return err
		}
		if slot.AssignedTo(reg.UserID) {
			return nil
		}
		return s.slots.UpdateAssignment(ctx, slot.ID, UserAssignee(reg.UserID))
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return oops.Code("SLOT_TAKEN").
				With("slot_id", slot.ID.String()).
				With("user_id", reg.UserID.String()).
				Wrap(err)
		}
		return oops.Code("CONFIRMATION_FAILED").
			With("registration_id", registrationID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "registration confirmed",
		slog.String("registration_id", registrationID.String()),
		slog.String("slot_id", slot.ID.String()),
		slog.String("user_id", reg.UserID.String()))
	return nil
}

// DenyRegistration deletes a registration. An assignment the user
// already holds is deliberately left alone; use UnregisterUser to
// remove both.
func (s *Service) DenyRegistration(ctx context.Context, registrationID ulid.ULID) error {
	if err := s.registrations.Delete(ctx, registrationID); err != nil {
		return oops.Code("REGISTRATION_DELETE_FAILED").
			With("registration_id", registrationID.String()).
			Wrap(err)
	}
	return nil
}

// WithdrawRegistration removes the user's own registration for a slot.
// Like DenyRegistration it never touches the slot's assignment.
func (s *Service) WithdrawRegistration(ctx context.Context, slotID, userID ulid.ULID) error {
	if err := s.registrations.DeleteBySlotAndUser(ctx, slotID, userID); err != nil {
		return oops.Code("REGISTRATION_DELETE_FAILED").
			With("slot_id", slotID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// UnregisterUser removes every trace of a user from a slot: the
// registration, if any, and the assignment, if held by that user, in one
// transaction. A user can hold either without the other (editor-assigned
// users have no registration), so a missing registration is tolerated.
func (s *Service) UnregisterUser(ctx context.Context, slotID, userID ulid.ULID) error {
	slot, err := s.slots.Get(ctx, slotID)
	if err != nil {
		return oops.Code("UNREGISTER_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.registrations.DeleteBySlotAndUser(ctx, slotID, userID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if slot.AssignedTo(userID) {
			return s.slots.UpdateAssignment(ctx, slotID, Assignee{})
		}
		return nil
	})
	if err != nil {
		return oops.Code("UNREGISTER_FAILED").
			With("slot_id", slotID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// ListRegistrations returns a slot's registrations in creation order.
func (s *Service) ListRegistrations(ctx context.Context, slotID ulid.ULID) ([]*SlotRegistration, error) {
	regs, err := s.registrations.ListBySlot(ctx, slotID)
	if err != nil {
		return nil, oops.Code("REGISTRATION_LIST_FAILED").
			With("slot_id", slotID.String()).
			Wrap(err)
	}
	return regs, nil
}
