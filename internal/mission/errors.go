// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package mission

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a mission, slot group, slot, or
// registration is not found.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint or an exclusivity
// rule rejects a mutation: duplicate registration, duplicate assignment
// within a slot group, or confirming a registration for a slot already
// assigned to someone else. Conflicts from concurrent writers surface
// to the caller; nothing retries automatically.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when a registration precondition tied to the
// acting user fails: the slot is blocked, or restricted to a community
// the user is not a member of.
var ErrForbidden = errors.New("forbidden")

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
