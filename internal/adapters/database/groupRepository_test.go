package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcourse/internal/adapters/database"
	"webcourse/internal/admin"
	"webcourse/internal/core/account"
	"webcourse/internal/core/group"
	accountPort "webcourse/internal/ports/account"
	groupPort "webcourse/internal/ports/group"
	"webcourse/internal/testutil"
)

func TestGroupMembership(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewGroupRepositoryDatabase(db)
	ctx := context.Background()
	ana := createUser(t, db, "ana", time.Now())
	bob := createUser(t, db, "bob", time.Now())

	g, err := repo.Create(ctx, &group.Group{Name: "gophers", Description: "Go people"})
	require.NoError(t, err)

	require.NoError(t, repo.AddMember(ctx, g.ID, bob.ID))
	require.NoError(t, repo.AddMember(ctx, g.ID, bob.ID))
	require.NoError(t, repo.AddMember(ctx, g.ID, ana.ID))

	ok, err := repo.IsMember(ctx, g.ID, ana.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := repo.Members(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "ana", members[0].Username)

	got, err := repo.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.MemberCount)

	require.NoError(t, repo.RemoveMember(ctx, g.ID, ana.ID))
	ok, err = repo.IsMember(ctx, g.ID, ana.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGroupListFindDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewGroupRepositoryDatabase(db)
	ctx := context.Background()
	ana := createUser(t, db, "ana", time.Now())

	b, err := repo.Create(ctx, &group.Group{Name: "beta"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &group.Group{Name: "alpha"})
	require.NoError(t, err)
	require.NoError(t, repo.AddMember(ctx, b.ID, ana.ID))

	groups, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "alpha", groups[0].Name)
	assert.EqualValues(t, 1, groups[1].MemberCount)

	got, err := repo.FindByName(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	n, err := repo.Delete(ctx, []uint{b.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, groupPort.ErrNotFound)

	var memberships int64
	require.NoError(t, db.Model(&group.Membership{}).Count(&memberships).Error)
	assert.Zero(t, memberships)

	list, total, err := repo.AdminList(ctx, admin.Query{Search: "alp", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "alpha", list[0].Name)
}

func TestAccountRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewAccountRepositoryDatabase(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &account.Account{Username: "admin", PasswordHash: "x", IsStaff: true})
	require.NoError(t, err)

	got, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, got.IsStaff)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, accountPort.ErrNotFound)

	_, err = repo.Create(ctx, &account.Account{Username: "admin", PasswordHash: "y"})
	assert.Error(t, err)
}
