// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package permission

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a grant is not found.
var ErrNotFound = errors.New("not found")

// ErrDuplicateGrant is returned when a (user, permission) pair already exists.
var ErrDuplicateGrant = errors.New("duplicate permission grant")

// Grant is a dotted permission string held by a user.
type Grant struct {
	ID         ulid.ULID
	UserID     ulid.ULID
	Permission string
	CreatedAt  time.Time
}

// NewGrant creates a Grant with a fresh ID and normalized permission.
func NewGrant(userID ulid.ULID, permission string) *Grant {
	return &Grant{
		ID:         ulid.Make(),
		UserID:     userID,
		Permission: strings.ToLower(strings.TrimSpace(permission)),
		CreatedAt:  time.Now().UTC(),
	}
}

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidatePermission checks the minimal shape of a permission string:
// non-empty with no empty segments. Segment content is not restricted
// beyond that; scope-specific rules live in the scoped validators below.
func ValidatePermission(permission string) error {
	permission = strings.TrimSpace(permission)
	if permission == "" {
		return &ValidationError{Field: "permission", Message: "cannot be empty"}
	}
	for _, segment := range strings.Split(permission, ".") {
		if segment == "" {
			return &ValidationError{Field: "permission", Message: "cannot contain empty segments"}
		}
	}
	return nil
}

// Community-scoped grant suffixes accepted by ValidateCommunityPermission.
const (
	CommunityLeader      = "leader"
	CommunityRecruitment = "recruitment"
)

// Mission-scoped grant suffixes accepted by ValidateMissionPermission.
const (
	MissionEditor            = "editor"
	MissionSlotlistCommunity = "slotlist.community"
)

// CommunityPermission builds the grant string for a community role.
func CommunityPermission(slug, role string) string {
	return "community." + strings.ToLower(slug) + "." + role
}

// MissionPermission builds the grant string for a mission role.
func MissionPermission(slug, role string) string {
	return "mission." + strings.ToLower(slug) + "." + role
}

// ValidateCommunityPermission checks that permission is one of the
// exact grants admitted for the community with the given slug:
// community.<slug>.leader or community.<slug>.recruitment.
func ValidateCommunityPermission(permission, slug string) error {
	p := strings.ToLower(strings.TrimSpace(permission))
	switch p {
	case CommunityPermission(slug, CommunityLeader),
		CommunityPermission(slug, CommunityRecruitment):
		return nil
	}
	return &ValidationError{
		Field:   "permission",
		Message: fmt.Sprintf("%q is not a valid permission for community %q", permission, slug),
	}
}

// ValidateMissionPermission checks that permission is one of the exact
// grants admitted for the mission with the given slug:
// mission.<slug>.editor or mission.<slug>.slotlist.community.
func ValidateMissionPermission(permission, slug string) error {
	p := strings.ToLower(strings.TrimSpace(permission))
	switch p {
	case MissionPermission(slug, MissionEditor),
		MissionPermission(slug, MissionSlotlistCommunity):
		return nil
	}
	return &ValidationError{
		Field:   "permission",
		Message: fmt.Sprintf("%q is not a valid permission for mission %q", permission, slug),
	}
}
