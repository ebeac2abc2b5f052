// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package postgres implements mission persistence using PostgreSQL.
package postgres

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

func parseULID(field, value string) (ulid.ULID, error) {
	id, err := ulid.Parse(value)
	if err != nil {
		return ulid.ULID{}, oops.Code("MISSION_PARSE_FAILED").
			With("field", field).
			With("value", value).
			Wrap(err)
	}
	return id, nil
}

func parseOptionalULID(field string, value *string) (*ulid.ULID, error) {
	if value == nil {
		return nil, nil
	}
	id, err := parseULID(field, *value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func ulidString(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
