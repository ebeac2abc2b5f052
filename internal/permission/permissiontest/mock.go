// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package permissiontest provides test doubles for permission checks.
package permissiontest

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// AllowAll is a Checker that allows everything.
type AllowAll struct{}

// HasPermission always returns true.
func (AllowAll) HasPermission(_ context.Context, _ ulid.ULID, _ []string, _ bool) (bool, error) {
	return true, nil
}

// DenyAll is a Checker that denies everything.
type DenyAll struct{}

// HasPermission always returns false.
func (DenyAll) HasPermission(_ context.Context, _ ulid.ULID, _ []string, _ bool) (bool, error) {
	return false, nil
}

// MockChecker is a Checker backed by explicit per-user grants.
type MockChecker struct {
	grants map[string]map[string]bool // userID -> permission -> granted
}

// NewMockChecker creates an empty MockChecker.
func NewMockChecker() *MockChecker {
	return &MockChecker{grants: make(map[string]map[string]bool)}
}

// Grant allows a user a specific permission string (exact match).
func (m *MockChecker) Grant(userID ulid.ULID, permission string) {
	key := userID.String()
	if m.grants[key] == nil {
		m.grants[key] = make(map[string]bool)
	}
	m.grants[key][permission] = true
}

// HasPermission checks the configured grants with any/all semantics.
func (m *MockChecker) HasPermission(_ context.Context, userID ulid.ULID, required []string, strict bool) (bool, error) {
	if len(required) == 0 {
		return false, nil
	}
	held := m.grants[userID.String()]
	for _, perm := range required {
		satisfied := held[perm]
		if strict && !satisfied {
			return false, nil
		}
		if !strict && satisfied {
			return true, nil
		}
	}
	return strict, nil
}
