package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"webcourse/internal/adapters/database"
	"webcourse/internal/admin"
	"webcourse/internal/core/group"
	"webcourse/internal/core/post"
	"webcourse/internal/core/user"
	userPort "webcourse/internal/ports/user"
	"webcourse/internal/testutil"
)

func createUser(t *testing.T, db *gorm.DB, username string, created time.Time) *user.User {
	t.Helper()
	u := user.New(username, username+"@example.com", "", "", "")
	u.CreatedAt = created
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestUserCreateAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewUserRepositoryDatabase(db)
	ctx := context.Background()

	u, err := repo.Create(ctx, user.New("ana", "ana@example.com", "Ana", "Pérez", "hi"))
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
	assert.True(t, got.IsActive)

	got, err = repo.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, userPort.ErrNotFound)

	got, err = repo.FindByUsernameOrEmail(ctx, "someone", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserUniqueUsername(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewUserRepositoryDatabase(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, user.New("ana", "ana@example.com", "", "", ""))
	require.NoError(t, err)
	_, err = repo.Create(ctx, user.New("ana", "other@example.com", "", "", ""))
	assert.ErrorIs(t, err, userPort.ErrDuplicate)
	_, err = repo.Create(ctx, user.New("other", "ana@example.com", "", "", ""))
	assert.ErrorIs(t, err, userPort.ErrDuplicate)
}

func TestUserListActiveNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewUserRepositoryDatabase(db)
	ctx := context.Background()

	now := time.Now()
	old := createUser(t, db, "old", now.Add(-2*time.Hour))
	fresh := createUser(t, db, "fresh", now.Add(-time.Hour))
	idle := createUser(t, db, "idle", now)
	_, err := repo.SetActive(ctx, []uint{idle.ID}, false)
	require.NoError(t, err)

	users, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, fresh.ID, users[0].ID)
	assert.Equal(t, old.ID, users[1].ID)
}

func TestUserListCreatedBetween(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewUserRepositoryDatabase(db)

	createUser(t, db, "y2022", time.Date(2022, 12, 31, 23, 0, 0, 0, time.Local))
	in := createUser(t, db, "y2023", time.Date(2023, 6, 1, 12, 0, 0, 0, time.Local))
	createUser(t, db, "y2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local)
	users, err := repo.ListCreatedBetween(context.Background(), from, from.AddDate(1, 0, 0))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, in.ID, users[0].ID)
}

func TestUserSearch(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewUserRepositoryDatabase(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, user.New("ana", "ana@example.com", "Ana", "Lopez", ""))
	require.NoError(t, err)
	_, err = repo.Create(ctx, user.New("bob", "bob@example.com", "Robert", "Smith", ""))
	require.NoError(t, err)

	users, err := repo.Search(ctx, "lope")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ana", users[0].Username)

	users, err = repo.Search(ctx, "example")
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserSearchTreatsWildcardsLiterally(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewUserRepositoryDatabase(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, user.New("axb", "axb@example.com", "", "", ""))
	require.NoError(t, err)
	_, err = repo.Create(ctx, user.New("a_b", "ab@example.com", "", "", ""))
	require.NoError(t, err)

	users, err := repo.Search(ctx, "a_b")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a_b", users[0].Username)

	for _, term := range []string{"%", "!", "_x"} {
		users, err = repo.Search(ctx, term)
		require.NoError(t, err)
		assert.Empty(t, users, "term %q", term)
	}

	users, total, err := repo.AdminList(ctx, admin.Query{Search: "_", PageSize: 10, Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "a_b", users[0].Username)
}

func TestUserDeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewUserRepositoryDatabase(db)
	ctx := context.Background()

	ana := createUser(t, db, "ana", time.Now())
	bob := createUser(t, db, "bob", time.Now())
	anaPost := &post.Post{Title: "a", Content: "a", AuthorID: ana.ID}
	bobPost := &post.Post{Title: "b", Content: "b", AuthorID: bob.ID}
	require.NoError(t, db.Omit("Author").Create(anaPost).Error)
	require.NoError(t, db.Omit("Author").Create(bobPost).Error)
	require.NoError(t, db.Omit("Post", "User").Create(&post.Like{PostID: anaPost.ID, UserID: bob.ID}).Error)
	require.NoError(t, db.Omit("Post", "User").Create(&post.Like{PostID: bobPost.ID, UserID: ana.ID}).Error)
	g := &group.Group{Name: "readers"}
	require.NoError(t, db.Create(g).Error)
	require.NoError(t, db.Omit("Group", "User").Create(&group.Membership{GroupID: g.ID, UserID: ana.ID}).Error)

	n, err := repo.Delete(ctx, []uint{ana.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var count int64
	require.NoError(t, db.Model(&post.Post{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, db.Model(&post.Like{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	require.NoError(t, db.Model(&group.Membership{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	_, err = repo.FindByID(ctx, ana.ID)
	assert.ErrorIs(t, err, userPort.ErrNotFound)
}

func TestUserAdminList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := database.NewUserRepositoryDatabase(db)
	ctx := context.Background()

	ana := createUser(t, db, "ana", time.Date(2023, 3, 1, 0, 0, 0, 0, time.Local))
	createUser(t, db, "anabel", time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local))
	bob := createUser(t, db, "bob", time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local))
	_, err := repo.SetActive(ctx, []uint{bob.ID}, false)
	require.NoError(t, err)
	require.NoError(t, db.Omit("Author").Create(&post.Post{Title: "t", Content: "c", AuthorID: ana.ID}).Error)

	users, total, err := repo.AdminList(ctx, admin.Query{Search: "ana", PageSize: 10, Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 2)
	assert.Equal(t, "anabel", users[0].Username)
	assert.EqualValues(t, 1, users[1].PostCount)

	users, total, err = repo.AdminList(ctx, admin.Query{Filters: map[string]string{"is_active": "0"}, PageSize: 10, Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "bob", users[0].Username)

	_, total, err = repo.AdminList(ctx, admin.Query{Year: 2024, PageSize: 10, Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	users, total, err = repo.AdminList(ctx, admin.Query{PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 1)
	assert.Equal(t, "ana", users[0].Username)

	got, err := repo.AdminGet(ctx, ana.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.PostCount)
}
