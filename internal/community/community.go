// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package community implements the community domain: membership, the
// application workflow, and the founder permission lifecycle.
package community

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/missionboard/missionboard/internal/mission"
)

// ErrNotFound is returned when a community, membership, or application
// is not found.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on duplicate slugs, duplicate memberships, and
// duplicate applications.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when an actor lacks the founder permission
// needed to remove another founder.
var ErrForbidden = errors.New("forbidden")

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Community is a named group of users that can host missions and
// restrict slots to its members.
type Community struct {
	ID        ulid.ULID
	Name      string
	Slug      string
	Website   *string
	CreatedAt time.Time
}

// Validate checks community invariants.
func (c *Community) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if err := mission.ValidateSlug(c.Slug); err != nil {
		return &ValidationError{Field: "slug", Message: "must be a lower-case URL-safe slug"}
	}
	return nil
}

// Membership links a user to a community. One membership per
// (community, user) pair, enforced by a database unique constraint.
type Membership struct {
	ID          ulid.ULID
	CommunityID ulid.ULID
	UserID      ulid.ULID
	CreatedAt   time.Time
}

// ApplicationStatus is the lifecycle state of a membership application.
type ApplicationStatus string

// Application statuses.
const (
	StatusSubmitted ApplicationStatus = "submitted"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusDenied    ApplicationStatus = "denied"
)

// Application is a user's request to join a community.
type Application struct {
	ID          ulid.ULID
	CommunityID ulid.ULID
	UserID      ulid.ULID
	Status      ApplicationStatus
	CreatedAt   time.Time
}

// FounderPermission returns the founder grant for a community slug.
func FounderPermission(slug string) string {
	return fmt.Sprintf("community.%s.founder", slug)
}

// grantPrefix covers every permission scoped to a community slug.
func grantPrefix(slug string) string {
	return fmt.Sprintf("community.%s.", slug)
}
