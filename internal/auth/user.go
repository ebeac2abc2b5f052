// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package auth implements user identity and API token issuance.
// Identity arrives through upstream Steam SSO; there is no password
// storage here.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a user is not found.
var ErrNotFound = errors.New("not found")

// ErrDuplicateSteamID is returned when a Steam account is already bound
// to another user.
var ErrDuplicateSteamID = errors.New("steam id already registered")

// User is a registered account.
type User struct {
	ID        ulid.ULID
	Nickname  string
	SteamID   string
	CreatedAt time.Time
}

// NewUser creates a user with a fresh ID.
func NewUser(nickname, steamID string) *User {
	return &User{
		ID:        ulid.Make(),
		Nickname:  nickname,
		SteamID:   steamID,
		CreatedAt: time.Now().UTC(),
	}
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Get retrieves a user by ID.
	Get(ctx context.Context, id ulid.ULID) (*User, error)

	// GetBySteamID retrieves a user by their Steam account.
	GetBySteamID(ctx context.Context, steamID string) (*User, error)

	// Create persists a new user. A duplicate Steam ID returns an error
	// wrapping ErrDuplicateSteamID.
	Create(ctx context.Context, u *User) error

	// UpdateNickname changes a user's display name.
	UpdateNickname(ctx context.Context, id ulid.ULID, nickname string) error
}
