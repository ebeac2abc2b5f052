// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package postgres implements user persistence using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/missionboard/missionboard/internal/auth"
	"github.com/missionboard/missionboard/internal/store"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool store.Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(pool store.Querier) *UserRepository {
	return &UserRepository{pool: pool}
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, nickname, steam_id, created_at FROM users WHERE id = $1
	`, id.String())
	u, err := scanUser(row)
	if err != nil {
		return nil, oops.With("user_id", id.String()).Wrap(err)
	}
	return u, nil
}

// GetBySteamID retrieves a user by their Steam account.
func (r *UserRepository) GetBySteamID(ctx context.Context, steamID string) (*auth.User, error) {
	q := store.QuerierFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, nickname, steam_id, created_at FROM users WHERE steam_id = $1
	`, steamID)
	u, err := scanUser(row)
	if err != nil {
		return nil, oops.With("steam_id", steamID).Wrap(err)
	}
	return u, nil
}

// Create persists a new user. A duplicate Steam ID is reported as
// auth.ErrDuplicateSteamID.
func (r *UserRepository) Create(ctx context.Context, u *auth.User) error {
	q := store.QuerierFromContext(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO users (id, nickname, steam_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, u.ID.String(), u.Nickname, u.SteamID, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_DUPLICATE").
				With("steam_id", u.SteamID).
				Wrap(auth.ErrDuplicateSteamID)
		}
		return oops.Code("USER_CREATE_FAILED").With("steam_id", u.SteamID).Wrap(err)
	}
	return nil
}

// UpdateNickname changes a user's display name.
func (r *UserRepository) UpdateNickname(ctx context.Context, id ulid.ULID, nickname string) error {
	q := store.QuerierFromContext(ctx, r.pool)
	result, err := q.Exec(ctx, `
		UPDATE users SET nickname = $2 WHERE id = $1
	`, id.String(), nickname)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("user_id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("user_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	var idStr string
	err := row.Scan(&idStr, &u.Nickname, &u.SteamID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
		}
		return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
	}
	if u.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("USER_PARSE_FAILED").With("field", "id").With("value", idStr).Wrap(err)
	}
	return &u, nil
}
