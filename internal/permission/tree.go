// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

// Package permission implements hierarchical permission evaluation.
//
// Permissions are dotted, case-insensitive strings such as
// "community.alpha.leader" or "mission.op-anvil.editor". A "*" segment
// in a grant matches any remaining query segments at that position, and
// a bare "*" grant matches everything.
package permission

import "strings"

// wildcard is the grant segment that matches any remaining query segments.
const wildcard = "*"

// Tree is a nested lookup structure built from a flat list of grants.
// Each grant is split on "." and inserted as a chain of child keys;
// grants sharing a prefix merge into the same subtree. Trees are built
// per request from the principal's current grants and never cached, so
// revoked permissions take effect on the next request.
type Tree struct {
	children map[string]*Tree
}

// NewTree builds a Tree from a flat list of grant strings.
// Grants are lower-cased; empty strings and empty segments are ignored.
func NewTree(grants []string) *Tree {
	t := &Tree{children: make(map[string]*Tree)}
	for _, grant := range grants {
		t.insert(grant)
	}
	return t
}

func (t *Tree) insert(grant string) {
	node := t
	for _, segment := range splitPermission(grant) {
		child, ok := node.children[segment]
		if !ok {
			child = &Tree{children: make(map[string]*Tree)}
			node.children[segment] = child
		}
		node = child
	}
}

// Empty reports whether the tree holds no grants.
func (t *Tree) Empty() bool {
	return t == nil || len(t.children) == 0
}

// HasGlobalWildcard reports whether a top-level "*" grant is present.
// Such a grant satisfies any query; callers use this as a fast path
// before descending into Contains.
func (t *Tree) HasGlobalWildcard() bool {
	if t == nil {
		return false
	}
	_, ok := t.children[wildcard]
	return ok
}

// Contains reports whether some grant in the tree subsumes the dotted
// permission string. Matching is case-insensitive.
func (t *Tree) Contains(permission string) bool {
	return t.ContainsPath(splitPermission(permission))
}

// ContainsPath is Contains for a pre-split segment sequence.
// An empty query never matches.
func (t *Tree) ContainsPath(segments []string) bool {
	if t.Empty() || len(segments) == 0 {
		return false
	}
	return t.contains(segments)
}

// contains implements the recursive descent. A query is satisfied when
// the full remaining path exists as an exact key chain (a grant equal to
// or more specific than the query), or when a wildcard or matching
// segment consumes the query during descent.
func (t *Tree) contains(segments []string) bool {
	if len(segments) == 0 {
		return true
	}
	if t.hasExactPath(segments) {
		return true
	}
	for key, child := range t.children {
		switch {
		case key == wildcard:
			if child.Empty() {
				// Trailing wildcard matches all remaining segments.
				return true
			}
			// Interior wildcard: stands in for one or more query segments.
			for i := 1; i <= len(segments); i++ {
				if child.contains(segments[i:]) {
					return true
				}
			}
		case key == segments[0]:
			if child.contains(segments[1:]) {
				return true
			}
		}
	}
	return false
}

// hasExactPath walks segments as literal child keys. The terminal node
// does not need to be a leaf: a grant "a.b.c" satisfies a query "a.b".
func (t *Tree) hasExactPath(segments []string) bool {
	node := t
	for _, segment := range segments {
		child, ok := node.children[segment]
		if !ok {
			return false
		}
		node = child
	}
	return true
}

// splitPermission normalizes a dotted permission string into segments.
func splitPermission(permission string) []string {
	permission = strings.ToLower(strings.TrimSpace(permission))
	if permission == "" {
		return nil
	}
	parts := strings.Split(permission, ".")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
