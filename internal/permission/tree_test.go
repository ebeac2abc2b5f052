// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTree(t *testing.T) {
	t.Run("merges shared prefixes into one subtree", func(t *testing.T) {
		tree := NewTree([]string{"community.alpha.leader", "community.alpha.recruitment"})

		community, ok := tree.children["community"]
		require.True(t, ok)
		alpha, ok := community.children["alpha"]
		require.True(t, ok)
		assert.Len(t, alpha.children, 2)
		assert.Contains(t, alpha.children, "leader")
		assert.Contains(t, alpha.children, "recruitment")
	})

	t.Run("lower-cases grants", func(t *testing.T) {
		tree := NewTree([]string{"Community.Alpha.LEADER"})
		assert.True(t, tree.Contains("community.alpha.leader"))
	})

	t.Run("ignores empty grants and segments", func(t *testing.T) {
		tree := NewTree([]string{"", "  ", "a..b"})
		assert.True(t, tree.Contains("a.b"))
		assert.Len(t, tree.children, 1)
	})

	t.Run("empty grant list builds empty tree", func(t *testing.T) {
		tree := NewTree(nil)
		assert.True(t, tree.Empty())
	})
}

func TestTreeContains(t *testing.T) {
	tests := []struct {
		name   string
		grants []string
		query  string
		want   bool
	}{
		{
			name:   "exact grant satisfies equal query",
			grants: []string{"community.alpha.leader"},
			query:  "community.alpha.leader",
			want:   true,
		},
		{
			name:   "sibling grant does not satisfy query",
			grants: []string{"community.alpha.leader"},
			query:  "community.alpha.recruitment",
			want:   false,
		},
		{
			name:   "trailing wildcard subsumes deeper query",
			grants: []string{"community.*"},
			query:  "community.alpha.leader",
			want:   true,
		},
		{
			name:   "global wildcard subsumes everything",
			grants: []string{"*"},
			query:  "mission.op-anvil.editor",
			want:   true,
		},
		{
			name:   "broader grant does not satisfy deeper query",
			grants: []string{"mission.op-anvil"},
			query:  "mission.op-anvil.editor",
			want:   false,
		},
		{
			name:   "more specific grant satisfies broader query",
			grants: []string{"mission.op-anvil.editor"},
			query:  "mission.op-anvil",
			want:   true,
		},
		{
			name:   "query longer than any stored grant path",
			grants: []string{"a.b"},
			query:  "a.b.c.d",
			want:   false,
		},
		{
			name:   "multiple unrelated grants",
			grants: []string{"community.bravo.leader", "mission.op-hammer.editor"},
			query:  "community.alpha.leader",
			want:   false,
		},
		{
			name:   "match among multiple unrelated grants",
			grants: []string{"community.bravo.leader", "mission.op-hammer.editor"},
			query:  "mission.op-hammer.editor",
			want:   true,
		},
		{
			name:   "case-insensitive query",
			grants: []string{"community.alpha.leader"},
			query:  "Community.Alpha.Leader",
			want:   true,
		},
		{
			name:   "interior wildcard matches single segment",
			grants: []string{"mission.*.editor"},
			query:  "mission.op-anvil.editor",
			want:   true,
		},
		{
			name:   "interior wildcard matches multiple segments",
			grants: []string{"mission.*.community"},
			query:  "mission.op-anvil.slotlist.community",
			want:   true,
		},
		{
			name:   "trailing wildcard covers its own level",
			grants: []string{"community.*"},
			query:  "community.alpha",
			want:   true,
		},
		{
			name:   "empty grant list",
			grants: nil,
			query:  "community.alpha.leader",
			want:   false,
		},
		{
			name:   "empty query",
			grants: []string{"community.alpha.leader"},
			query:  "",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree(tt.grants)
			assert.Equal(t, tt.want, tree.Contains(tt.query))
		})
	}
}

func TestTreeContainsPath(t *testing.T) {
	tree := NewTree([]string{"community.alpha.leader"})

	assert.True(t, tree.ContainsPath([]string{"community", "alpha", "leader"}))
	assert.False(t, tree.ContainsPath([]string{"community", "alpha", "leader", "extra"}))
	assert.False(t, tree.ContainsPath(nil))
}

func TestTreeHasGlobalWildcard(t *testing.T) {
	assert.True(t, NewTree([]string{"*"}).HasGlobalWildcard())
	assert.True(t, NewTree([]string{"community.alpha.leader", "*"}).HasGlobalWildcard())
	assert.False(t, NewTree([]string{"community.*"}).HasGlobalWildcard())

	var nilTree *Tree
	assert.False(t, nilTree.HasGlobalWildcard())
}
