// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package community

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type state struct {
	communities map[ulid.ULID]*Community
	memberships map[ulid.ULID]*Membership
	apps        map[ulid.ULID]*Application
	grants      map[string][]string
}

func newState() *state {
	return &state{
		communities: make(map[ulid.ULID]*Community),
		memberships: make(map[ulid.ULID]*Membership),
		apps:        make(map[ulid.ULID]*Application),
		grants:      make(map[string][]string),
	}
}

type fakeCommunities struct{ st *state }

func (r *fakeCommunities) Get(_ context.Context, id ulid.ULID) (*Community, error) {
	c, ok := r.st.communities[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommunities) GetBySlug(_ context.Context, slug string) (*Community, error) {
	for _, c := range r.st.communities {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeCommunities) Create(_ context.Context, c *Community) error {
	for _, existing := range r.st.communities {
		if existing.Slug == c.Slug {
			return ErrConflict
		}
	}
	cp := *c
	r.st.communities[c.ID] = &cp
	return nil
}

func (r *fakeCommunities) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := r.st.communities[id]; !ok {
		return ErrNotFound
	}
	delete(r.st.communities, id)
	for mid, m := range r.st.memberships {
		if m.CommunityID == id {
			delete(r.st.memberships, mid)
		}
	}
	for aid, a := range r.st.apps {
		if a.CommunityID == id {
			delete(r.st.apps, aid)
		}
	}
	return nil
}

type fakeMemberships struct{ st *state }

func (r *fakeMemberships) Create(_ context.Context, m *Membership) error {
	for _, existing := range r.st.memberships {
		if existing.CommunityID == m.CommunityID && existing.UserID == m.UserID {
			return ErrConflict
		}
	}
	cp := *m
	r.st.memberships[m.ID] = &cp
	return nil
}

func (r *fakeMemberships) Delete(_ context.Context, communityID, userID ulid.ULID) error {
	for id, m := range r.st.memberships {
		if m.CommunityID == communityID && m.UserID == userID {
			delete(r.st.memberships, id)
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeMemberships) IsMember(_ context.Context, communityID, userID ulid.ULID) (bool, error) {
	for _, m := range r.st.memberships {
		if m.CommunityID == communityID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMemberships) ListByCommunity(_ context.Context, communityID ulid.ULID) ([]*Membership, error) {
	var out []*Membership
	for _, m := range r.st.memberships {
		if m.CommunityID == communityID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeApps struct{ st *state }

func (r *fakeApps) Get(_ context.Context, id ulid.ULID) (*Application, error) {
	a, ok := r.st.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeApps) Create(_ context.Context, a *Application) error {
	for _, existing := range r.st.apps {
		if existing.CommunityID == a.CommunityID && existing.UserID == a.UserID {
			return ErrConflict
		}
	}
	cp := *a
	r.st.apps[a.ID] = &cp
	return nil
}

func (r *fakeApps) UpdateStatus(_ context.Context, id ulid.ULID, status ApplicationStatus) error {
	a, ok := r.st.apps[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

type fakeTx struct{}

func (fakeTx) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeGrants struct{ st *state }

func (r *fakeGrants) Grant(_ context.Context, userID ulid.ULID, permission string) error {
	key := userID.String()
	r.st.grants[key] = append(r.st.grants[key], permission)
	return nil
}

func (r *fakeGrants) HasGrant(_ context.Context, userID ulid.ULID, permission string) (bool, error) {
	for _, p := range r.st.grants[userID.String()] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGrants) RevokeByPrefix(_ context.Context, prefix string) error {
	for key, perms := range r.st.grants {
		kept := perms[:0]
		for _, p := range perms {
			if !strings.HasPrefix(p, prefix) {
				kept = append(kept, p)
			}
		}
		r.st.grants[key] = kept
	}
	return nil
}

func (r *fakeGrants) RevokeUserByPrefix(_ context.Context, userID ulid.ULID, prefix string) error {
	key := userID.String()
	kept := r.st.grants[key][:0]
	for _, p := range r.st.grants[key] {
		if !strings.HasPrefix(p, prefix) {
			kept = append(kept, p)
		}
	}
	r.st.grants[key] = kept
	return nil
}

func newTestService(st *state) *Service {
	return NewService(
		&fakeCommunities{st},
		&fakeMemberships{st},
		&fakeApps{st},
		fakeTx{},
		&fakeGrants{st},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestCreateCommunity(t *testing.T) {
	ctx := context.Background()

	t.Run("persists community with founder membership and grant", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		founder := ulid.Make()
		c := &Community{Name: "Task Force Alpha", Slug: "tf-alpha"}

		require.NoError(t, svc.CreateCommunity(ctx, c, founder))

		assert.Len(t, st.memberships, 1)
		assert.Contains(t, st.grants[founder.String()], "community.tf-alpha.founder")

		member, err := svc.IsMember(ctx, c.ID, founder)
		require.NoError(t, err)
		assert.True(t, member)
	})

	t.Run("duplicate slug is a conflict", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		require.NoError(t, svc.CreateCommunity(ctx, &Community{Name: "A", Slug: "tf-alpha"}, ulid.Make()))

		err := svc.CreateCommunity(ctx, &Community{Name: "B", Slug: "tf-alpha"}, ulid.Make())
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("invalid slug is rejected", func(t *testing.T) {
		svc := newTestService(newState())
		var vErr *ValidationError
		err := svc.CreateCommunity(ctx, &Community{Name: "A", Slug: "Bad Slug"}, ulid.Make())
		require.ErrorAs(t, err, &vErr)
	})
}

func TestApplicationWorkflow(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*state, *Service, *Community) {
		t.Helper()
		st := newState()
		svc := newTestService(st)
		c := &Community{Name: "Task Force Alpha", Slug: "tf-alpha"}
		require.NoError(t, svc.CreateCommunity(ctx, c, ulid.Make()))
		return st, svc, c
	}

	t.Run("accepting an application creates the membership", func(t *testing.T) {
		_, svc, c := setup(t)
		applicant := ulid.Make()

		app, err := svc.Apply(ctx, c.ID, applicant)
		require.NoError(t, err)
		assert.Equal(t, StatusSubmitted, app.Status)

		member, err := svc.IsMember(ctx, c.ID, applicant)
		require.NoError(t, err)
		assert.False(t, member)

		require.NoError(t, svc.AcceptApplication(ctx, app.ID))

		member, err = svc.IsMember(ctx, c.ID, applicant)
		require.NoError(t, err)
		assert.True(t, member)
	})

	t.Run("denied application never becomes a membership", func(t *testing.T) {
		st, svc, c := setup(t)
		applicant := ulid.Make()
		app, err := svc.Apply(ctx, c.ID, applicant)
		require.NoError(t, err)

		require.NoError(t, svc.DenyApplication(ctx, app.ID))
		assert.Equal(t, StatusDenied, st.apps[app.ID].Status)

		member, err := svc.IsMember(ctx, c.ID, applicant)
		require.NoError(t, err)
		assert.False(t, member)
	})

	t.Run("deciding twice is a conflict", func(t *testing.T) {
		_, svc, c := setup(t)
		app, err := svc.Apply(ctx, c.ID, ulid.Make())
		require.NoError(t, err)

		require.NoError(t, svc.AcceptApplication(ctx, app.ID))
		assert.ErrorIs(t, svc.AcceptApplication(ctx, app.ID), ErrConflict)
		assert.ErrorIs(t, svc.DenyApplication(ctx, app.ID), ErrConflict)
	})

	t.Run("duplicate application is a conflict", func(t *testing.T) {
		_, svc, c := setup(t)
		applicant := ulid.Make()
		_, err := svc.Apply(ctx, c.ID, applicant)
		require.NoError(t, err)

		_, err = svc.Apply(ctx, c.ID, applicant)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*state, *Service, *Community, ulid.ULID) {
		t.Helper()
		st := newState()
		svc := newTestService(st)
		founder := ulid.Make()
		c := &Community{Name: "Task Force Alpha", Slug: "tf-alpha"}
		require.NoError(t, svc.CreateCommunity(ctx, c, founder))
		return st, svc, c, founder
	}

	join := func(t *testing.T, svc *Service, c *Community) ulid.ULID {
		t.Helper()
		userID := ulid.Make()
		app, err := svc.Apply(ctx, c.ID, userID)
		require.NoError(t, err)
		require.NoError(t, svc.AcceptApplication(ctx, app.ID))
		return userID
	}

	t.Run("removes a regular member and their community grants", func(t *testing.T) {
		st, svc, c, founder := setup(t)
		member := join(t, svc, c)
		st.grants[member.String()] = []string{"community.tf-alpha.recruitment", "mission.op-anvil.editor"}

		require.NoError(t, svc.RemoveMember(ctx, c.ID, member, founder))

		isMember, err := svc.IsMember(ctx, c.ID, member)
		require.NoError(t, err)
		assert.False(t, isMember)
		assert.Equal(t, []string{"mission.op-anvil.editor"}, st.grants[member.String()])
	})

	t.Run("non-founder cannot remove a founder", func(t *testing.T) {
		_, svc, c, founder := setup(t)
		member := join(t, svc, c)

		err := svc.RemoveMember(ctx, c.ID, founder, member)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("founder can remove a fellow founder", func(t *testing.T) {
		st, svc, c, founder := setup(t)
		second := join(t, svc, c)
		st.grants[second.String()] = []string{"community.tf-alpha.founder"}

		require.NoError(t, svc.RemoveMember(ctx, c.ID, second, founder))
		assert.Empty(t, st.grants[second.String()])
	})

	t.Run("a founder may leave on their own", func(t *testing.T) {
		_, svc, c, founder := setup(t)
		require.NoError(t, svc.RemoveMember(ctx, c.ID, founder, founder))
	})

	t.Run("missing membership returns not found", func(t *testing.T) {
		_, svc, c, founder := setup(t)
		err := svc.RemoveMember(ctx, c.ID, ulid.Make(), founder)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteCommunity(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades and revokes all community grants", func(t *testing.T) {
		st := newState()
		svc := newTestService(st)
		founder := ulid.Make()
		c := &Community{Name: "Task Force Alpha", Slug: "tf-alpha"}
		require.NoError(t, svc.CreateCommunity(ctx, c, founder))

		require.NoError(t, svc.DeleteCommunity(ctx, c.ID))

		assert.Empty(t, st.communities)
		assert.Empty(t, st.memberships)
		assert.Empty(t, st.grants[founder.String()])
	})
}
