// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package mission

import (
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Difficulty bounds for slots.
const (
	MinDifficulty = 0
	MaxDifficulty = 4
)

// knownDLCs is the fixed enumeration of required-DLC values accepted on
// slot writes.
var knownDLCs = map[string]struct{}{
	"apex":               {},
	"contact":            {},
	"globalmobilization": {},
	"helicopters":        {},
	"jets":               {},
	"karts":              {},
	"lawsofwar":          {},
	"marksmen":           {},
	"prairiefire":        {},
	"tanks":              {},
	"cslaironcurtain":    {},
	"westernsahara":      {},
}

// KnownDLCs returns the accepted required-DLC values, sorted.
func KnownDLCs() []string {
	dlcs := make([]string, 0, len(knownDLCs))
	for dlc := range knownDLCs {
		dlcs = append(dlcs, dlc)
	}
	sort.Strings(dlcs)
	return dlcs
}

// NormalizeDLCs lower-cases and trims DLC values for validation and storage.
func NormalizeDLCs(dlcs []string) []string {
	normalized := make([]string, len(dlcs))
	for i, dlc := range dlcs {
		normalized[i] = strings.ToLower(strings.TrimSpace(dlc))
	}
	return normalized
}

// ValidateRequiredDLCs checks every element against the fixed DLC
// enumeration. Values must be normalized first.
func ValidateRequiredDLCs(dlcs []string) error {
	for _, dlc := range dlcs {
		if _, ok := knownDLCs[dlc]; !ok {
			return &ValidationError{Field: "requiredDLCs", Message: "unknown DLC " + dlc}
		}
	}
	return nil
}

// SlotGroup is an ordered sub-collection of slots within a mission,
// such as a squad or platoon.
type SlotGroup struct {
	ID          ulid.ULID
	MissionID   ulid.ULID
	Title       string
	OrderNumber int
	Description *string
	CreatedAt   time.Time
}

// Validate checks slot group invariants.
func (g *SlotGroup) Validate() error {
	if g.Title == "" {
		return &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if g.MissionID.IsZero() {
		return &ValidationError{Field: "missionId", Message: "cannot be empty"}
	}
	if g.OrderNumber < 0 {
		return &ValidationError{Field: "orderNumber", Message: "cannot be negative"}
	}
	return nil
}

// Assignee identifies who holds a slot: a registered user, a free-text
// external name, or nobody. UserID and External are mutually exclusive.
type Assignee struct {
	UserID   *ulid.ULID
	External *string
}

// UserAssignee builds an Assignee for a registered user.
func UserAssignee(userID ulid.ULID) Assignee {
	return Assignee{UserID: &userID}
}

// ExternalAssignee builds an Assignee for a free-text external name.
func ExternalAssignee(name string) Assignee {
	return Assignee{External: &name}
}

// Empty reports whether the assignee identifies nobody.
func (a Assignee) Empty() bool {
	return a.UserID == nil && a.External == nil
}

// Validate rejects an assignee with both a user and an external name set.
func (a Assignee) Validate() error {
	if a.UserID != nil && a.External != nil {
		return &ValidationError{
			Field:   "assignee",
			Message: "assigneeUid and externalAssignee are mutually exclusive",
		}
	}
	if a.External != nil && *a.External == "" {
		return &ValidationError{Field: "externalAssignee", Message: "cannot be empty"}
	}
	return nil
}

// Slot is a single sign-up position within a slot group. OrderNumber is
// scoped to the whole mission, not the group; see OrderingEngine.
type Slot struct {
	ID                    ulid.ULID
	SlotGroupID           ulid.ULID
	Title                 string
	OrderNumber           int
	Difficulty            int
	ShortDescription      *string
	DetailedDescription   *string
	Reserve               bool
	Blocked               bool
	AutoAssignable        bool
	RequiredDLCs          []string
	RestrictedCommunityID *ulid.ULID
	AssigneeID            *ulid.ULID
	ExternalAssignee      *string
	CreatedAt             time.Time
}

// Assignee returns the slot's current assignment.
func (s *Slot) Assignee() Assignee {
	return Assignee{UserID: s.AssigneeID, External: s.ExternalAssignee}
}

// Assigned reports whether the slot is held by a user or external name.
func (s *Slot) Assigned() bool {
	return s.AssigneeID != nil || s.ExternalAssignee != nil
}

// AssignedTo reports whether the slot is held by the given user.
func (s *Slot) AssignedTo(userID ulid.ULID) bool {
	return s.AssigneeID != nil && *s.AssigneeID == userID
}

// Validate checks slot invariants, including the mutually-exclusive
// assignee model and the required-DLC enumeration.
func (s *Slot) Validate() error {
	if s.Title == "" {
		return &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if s.SlotGroupID.IsZero() {
		return &ValidationError{Field: "slotGroupId", Message: "cannot be empty"}
	}
	if s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
		return &ValidationError{Field: "difficulty", Message: "must be between 0 and 4"}
	}
	if s.OrderNumber < 0 {
		return &ValidationError{Field: "orderNumber", Message: "cannot be negative"}
	}
	if err := s.Assignee().Validate(); err != nil {
		return err
	}
	return ValidateRequiredDLCs(s.RequiredDLCs)
}
