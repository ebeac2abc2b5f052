// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package mission implements the mission, slot group, slot, and
// registration domain: placement invariants, the registration workflow,
// and mission-global slot ordering.
package mission

import (
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
)

// Visibility controls who can see a mission.
type Visibility string

// Mission visibilities.
const (
	VisibilityPublic    Visibility = "public"
	VisibilityHidden    Visibility = "hidden"
	VisibilityCommunity Visibility = "community"
	VisibilityPrivate   Visibility = "private"
)

// String returns the string representation of the visibility.
func (v Visibility) String() string {
	return string(v)
}

// Validate checks that the visibility is a known value.
func (v Visibility) Validate() error {
	switch v {
	case VisibilityPublic, VisibilityHidden, VisibilityCommunity, VisibilityPrivate:
		return nil
	default:
		return &ValidationError{Field: "visibility", Message: "must be public, hidden, community, or private"}
	}
}

// Validation limits for mission fields.
const (
	MaxTitleLength = 200
	MaxSlugLength  = 100
)

// slugRegex matches URL-safe mission and community slugs.
var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Mission is a scheduled communal event with a sign-up slotlist.
// Associations are ID-based; the object graph is resolved through
// repositories, never traversed live.
type Mission struct {
	ID                  ulid.ULID
	Slug                string
	Title               string
	ShortDescription    string
	DetailedDescription string
	BannerURL           *string
	BriefingTime        time.Time
	SlottingTime        time.Time
	StartTime           time.Time
	EndTime             time.Time
	RepositoryText      *string
	SupportText         *string
	RulesText           *string
	Visibility          Visibility
	CommunityID         *ulid.ULID
	CreatorID           ulid.ULID
	CreatedAt           time.Time
}

// Validate checks mission invariants: non-empty title, a well-formed
// slug, a known visibility, and slotting ≤ start ≤ end.
func (m *Mission) Validate() error {
	if m.Title == "" {
		return &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if len(m.Title) > MaxTitleLength {
		return &ValidationError{Field: "title", Message: "exceeds maximum length"}
	}
	if err := ValidateSlug(m.Slug); err != nil {
		return err
	}
	if err := m.Visibility.Validate(); err != nil {
		return err
	}
	if m.CreatorID.IsZero() {
		return &ValidationError{Field: "creatorId", Message: "cannot be empty"}
	}
	if m.SlottingTime.After(m.StartTime) {
		return &ValidationError{Field: "slottingTime", Message: "must not be after start time"}
	}
	if m.StartTime.After(m.EndTime) {
		return &ValidationError{Field: "startTime", Message: "must not be after end time"}
	}
	return nil
}

// ValidateSlug checks that a slug is non-empty, lower-case, and URL-safe.
func ValidateSlug(slug string) error {
	if slug == "" {
		return &ValidationError{Field: "slug", Message: "cannot be empty"}
	}
	if len(slug) > MaxSlugLength {
		return &ValidationError{Field: "slug", Message: "exceeds maximum length"}
	}
	if !slugRegex.MatchString(slug) {
		return &ValidationError{Field: "slug", Message: "must contain lower-case letters, digits, and single hyphens only"}
	}
	return nil
}
