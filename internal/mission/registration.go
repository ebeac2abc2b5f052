// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package mission

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// SlotRegistration is a user's request to be assigned a specific slot.
// At most one registration exists per (slot, user) pair, enforced by a
// database unique constraint.
type SlotRegistration struct {
	ID        ulid.ULID
	SlotID    ulid.ULID
	UserID    ulid.ULID
	Confirmed bool
	Comment   *string
	CreatedAt time.Time
}

// NewRegistration creates an unconfirmed registration with a fresh ID.
func NewRegistration(slotID, userID ulid.ULID, comment *string) *SlotRegistration {
	return &SlotRegistration{
		ID:        ulid.Make(),
		SlotID:    slotID,
		UserID:    userID,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
}
