package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"webcourse/internal/adapters/database"
	redisAdapter "webcourse/internal/adapters/redis"
	accountapp "webcourse/internal/core/account/service"
	groupapp "webcourse/internal/core/group/service"
	"webcourse/internal/core/post"
	postapp "webcourse/internal/core/post/service"
	"webcourse/internal/core/user"
	userapp "webcourse/internal/core/user/service"
	"webcourse/internal/testutil"
)

type testSite struct {
	t        *testing.T
	db       *gorm.DB
	server   *httptest.Server
	client   *http.Client
	accounts *accountapp.AccountService
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	_, rdb := testutil.NewRedis(t)

	users := database.NewUserRepositoryDatabase(db)
	posts := database.NewPostRepositoryDatabase(db)
	groups := database.NewGroupRepositoryDatabase(db)
	accounts := accountapp.NewAccountService(database.NewAccountRepositoryDatabase(db), []byte("test-secret"), time.Hour)

	reg := prometheus.NewRegistry()
	r, err := SetupRoutes(Dependencies{
		Users:      userapp.NewUserService(users, posts),
		Posts:      postapp.NewPostService(posts, users),
		Groups:     groupapp.NewGroupService(groups, users),
		Accounts:   accounts,
		Flash:      redisAdapter.NewFlashRepositoryRedis(rdb, time.Hour),
		Registerer: reg,
		Gatherer:   reg,
		SessionTTL: time.Hour,
	})
	require.NoError(t, err)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testSite{t: t, db: db, server: server, client: client, accounts: accounts}
}

func (s *testSite) get(path string) (*http.Response, string) {
	s.t.Helper()
	resp, err := s.client.Get(s.server.URL + path)
	require.NoError(s.t, err)
	return resp, readBody(s.t, resp)
}

func (s *testSite) post(path string, form url.Values) (*http.Response, string) {
	s.t.Helper()
	resp, err := s.client.PostForm(s.server.URL+path, form)
	require.NoError(s.t, err)
	return resp, readBody(s.t, resp)
}

func (s *testSite) login(username, password string) {
	s.t.Helper()
	resp, _ := s.post("/accounts/login/", url.Values{"username": {username}, "password": {password}, "next": {"/"}})
	require.Equal(s.t, http.StatusSeeOther, resp.StatusCode)
}

func (s *testSite) user(username string, created time.Time) *user.User {
	s.t.Helper()
	u := user.New(username, username+"@example.com", "", "", "")
	u.CreatedAt = created
	require.NoError(s.t, s.db.Create(u).Error)
	return u
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestCreateUserThenListIt(t *testing.T) {
	s := newTestSite(t)

	resp, _ := s.post("/users/create/", url.Values{"username": {"ana"}, "email": {"ana@example.com"}, "first_name": {"Ana"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Regexp(t, `^/users/\d+/$`, resp.Header.Get("Location"))

	resp, body := s.get("/users/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "ana")
	assert.Contains(t, body, "1 active users.")
	assert.Contains(t, body, "User ana created.")
}

func TestCreateUserRejectsInvalidForm(t *testing.T) {
	s := newTestSite(t)

	resp, body := s.post("/users/create/", url.Values{"username": {"not a slug"}, "email": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Enter a valid email address.")
	assert.Contains(t, body, "letters, numbers, underscores or hyphens")

	var n int64
	require.NoError(t, s.db.Model(&user.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestSite(t)
	s.user("ana", time.Now())

	resp, body := s.post("/users/create/", url.Values{"username": {"ana"}, "email": {"other@example.com"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "already exists")
}

func TestAnonymousPostCreateRedirectsWithFlash(t *testing.T) {
	s := newTestSite(t)

	resp, _ := s.post("/posts/create/", url.Values{"title": {"Hi"}, "content": {"x"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/posts/", resp.Header.Get("Location"))

	var n int64
	require.NoError(t, s.db.Model(&post.Post{}).Count(&n).Error)
	assert.Zero(t, n)

	_, body := s.get("/posts/")
	assert.Contains(t, body, "You must be logged in to create posts.")

	// flash messages show once
	_, body = s.get("/posts/")
	assert.NotContains(t, body, "You must be logged in")
}

func TestHistoryFiltersByYear(t *testing.T) {
	s := newTestSite(t)
	s.user("old", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))
	s.user("new", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	resp, body := s.get("/users/history/2023/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ">old<")
	assert.NotContains(t, body, ">new<")

	resp, _ = s.get("/users/history/1800/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDetailAndArchive(t *testing.T) {
	s := newTestSite(t)
	u := s.user("ana", time.Now())

	resp, body := s.get("/users/" + itoa(u.ID) + "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "ana@example.com")

	resp, _ = s.get("/users/archive/ana/" + itoa(u.ID) + "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.get("/users/archive/bob/" + itoa(u.ID) + "/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.get("/users/999/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTrailingSlashRedirect(t *testing.T) {
	s := newTestSite(t)

	resp, _ := s.get("/users/list")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/users/list/", resp.Header.Get("Location"))

	resp, _ = s.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestSite(t)

	resp, _ := s.post("/users/list/", url.Values{})
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, []string{"GET", "HEAD"}, resp.Header.Values("Allow"))
}

func TestLoginAndCreatePost(t *testing.T) {
	s := newTestSite(t)
	s.user("ana", time.Now())
	_, err := s.accounts.Register(context.Background(), "ana", "secret", false)
	require.NoError(t, err)

	resp, body := s.post("/accounts/login/", url.Values{"username": {"ana"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please enter a correct username and password.")

	resp, _ = s.post("/accounts/login/", url.Values{"username": {"ana"}, "password": {"secret"}, "next": {"/posts/create/"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/posts/create/", resp.Header.Get("Location"))

	resp, body = s.get("/posts/create/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Signed in as ana")

	resp, _ = s.post("/posts/create/", url.Values{"title": {"Hello"}, "content": {"First post"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Regexp(t, `^/posts/\d+/$`, resp.Header.Get("Location"))

	var p post.Post
	require.NoError(t, s.db.First(&p, "title = ?", "Hello").Error)
	assert.True(t, p.IsPublished)
	assert.NotNil(t, p.PublishedAt)

	_, body = s.get("/posts/")
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, "Post created successfully.")

	resp, _ = s.post("/accounts/logout/", url.Values{})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = s.get("/")
	assert.NotContains(t, body, "Signed in as")
}

func (s *testSite) draft(author *user.User, title string) *post.Post {
	s.t.Helper()
	p := &post.Post{Title: title, Content: "x", AuthorID: author.ID}
	require.NoError(s.t, s.db.Create(p).Error)
	return p
}

func TestAnonymousEditAndDeleteRedirect(t *testing.T) {
	s := newTestSite(t)
	p := s.draft(s.user("ana", time.Now()), "Hi")
	detail := "/posts/" + itoa(p.ID) + "/"

	for _, tt := range []struct{ path, message string }{
		{detail + "edit/", "You must be logged in to edit posts."},
		{detail + "delete/", "You must be logged in to delete posts."},
	} {
		resp, _ := s.post(tt.path, url.Values{"title": {"Changed"}, "content": {"y"}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, tt.path)
		assert.Equal(t, detail, resp.Header.Get("Location"))

		_, body := s.get(detail)
		assert.Contains(t, body, tt.message)
	}

	var got post.Post
	require.NoError(t, s.db.First(&got, p.ID).Error)
	assert.Equal(t, "Hi", got.Title)
}

func TestEditPost(t *testing.T) {
	s := newTestSite(t)
	p := s.draft(s.user("ana", time.Now()), "Hi")
	_, err := s.accounts.Register(context.Background(), "ana", "secret", false)
	require.NoError(t, err)
	s.login("ana", "secret")
	edit := "/posts/" + itoa(p.ID) + "/edit/"

	resp, body := s.get(edit)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Edit Hi")

	resp, body = s.post(edit, url.Values{"title": {"   "}, "content": {"y"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "This field is required.")

	resp, _ = s.post(edit, url.Values{"title": {"Changed"}, "content": {"y"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/posts/"+itoa(p.ID)+"/", resp.Header.Get("Location"))

	_, body = s.get("/posts/" + itoa(p.ID) + "/")
	assert.Contains(t, body, "Post updated.")
	assert.Contains(t, body, "Changed")

	var got post.Post
	require.NoError(t, s.db.First(&got, p.ID).Error)
	assert.Equal(t, "Changed", got.Title)
	assert.Equal(t, "y", got.Content)
}

func TestDeletePost(t *testing.T) {
	s := newTestSite(t)
	p := s.draft(s.user("ana", time.Now()), "Doomed")
	_, err := s.accounts.Register(context.Background(), "ana", "secret", false)
	require.NoError(t, err)
	s.login("ana", "secret")
	del := "/posts/" + itoa(p.ID) + "/delete/"

	resp, body := s.get(del)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Yes, delete it")

	resp, _ = s.post(del, url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/posts/", resp.Header.Get("Location"))

	_, body = s.get("/posts/")
	assert.Contains(t, body, "Post deleted.")

	var n int64
	require.NoError(t, s.db.Model(&post.Post{}).Where("id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)

	resp, _ = s.post(del, url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLikeWithoutDomainUser(t *testing.T) {
	s := newTestSite(t)
	author := s.user("ana", time.Now())
	p := &post.Post{Title: "Hi", Content: "x", AuthorID: author.ID}
	require.NoError(t, s.db.Create(p).Error)

	_, err := s.accounts.Register(context.Background(), "ghost", "secret", false)
	require.NoError(t, err)
	s.login("ghost", "secret")

	resp, _ := s.post("/posts/"+itoa(p.ID)+"/like/", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/posts/"+itoa(p.ID)+"/", resp.Header.Get("Location"))

	_, body := s.get("/posts/" + itoa(p.ID) + "/")
	assert.Contains(t, body, "Your account has no matching user.")

	var likes int64
	require.NoError(t, s.db.Model(&post.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestLikeAndUnlike(t *testing.T) {
	s := newTestSite(t)
	author := s.user("ana", time.Now())
	p := &post.Post{Title: "Hi", Content: "x", AuthorID: author.ID}
	require.NoError(t, s.db.Create(p).Error)
	_, err := s.accounts.Register(context.Background(), "ana", "secret", false)
	require.NoError(t, err)
	s.login("ana", "secret")

	resp, _ := s.post("/posts/"+itoa(p.ID)+"/like/", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var likes int64
	require.NoError(t, s.db.Model(&post.Like{}).Count(&likes).Error)
	assert.EqualValues(t, 1, likes)

	resp, _ = s.post("/posts/"+itoa(p.ID)+"/unlike/", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.NoError(t, s.db.Model(&post.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)

	resp, _ = s.get("/posts/" + itoa(p.ID) + "/like/")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAdminRequiresStaff(t *testing.T) {
	s := newTestSite(t)

	resp, _ := s.get("/admin/users/")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/login/?next=%2Fadmin%2Fusers%2F", resp.Header.Get("Location"))

	_, err := s.accounts.Register(context.Background(), "ana", "secret", false)
	require.NoError(t, err)
	s.login("ana", "secret")
	resp, _ = s.get("/admin/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestAdminChangelistAndBulkAction(t *testing.T) {
	s := newTestSite(t)
	author := s.user("ana", time.Now())
	draft := &post.Post{Title: "Draft", Content: "x", AuthorID: author.ID}
	require.NoError(t, s.db.Create(draft).Error)

	_, err := s.accounts.Register(context.Background(), "root", "secret", true)
	require.NoError(t, err)
	s.login("root", "secret")

	resp, body := s.get("/admin/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Web Course administration")
	assert.Contains(t, body, "/admin/posts/")

	resp, body = s.get("/admin/posts/?is_published=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Draft")
	assert.Contains(t, body, "Publish selected posts")

	resp, _ = s.post("/admin/posts/", url.Values{"action": {"publish"}, "ids": {itoa(draft.ID)}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/posts/", resp.Header.Get("Location"))

	_, body = s.get("/admin/posts/")
	assert.Contains(t, body, "1 posts published.")

	var p post.Post
	require.NoError(t, s.db.First(&p, draft.ID).Error)
	assert.True(t, p.IsPublished)

	resp, body = s.get("/admin/posts/" + itoa(draft.ID) + "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Basic information")

	resp, _ = s.get("/admin/posts/999/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = s.get("/admin/widgets/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.post("/admin/users/", url.Values{"action": {"deactivate"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = s.get("/admin/users/")
	assert.Contains(t, body, "Items must be selected in order to perform actions on them.")

	_, body = s.get("/metrics")
	assert.Contains(t, body, `webcourse_admin_action_rows_total{action="publish",model="posts"} 1`)
}

func TestGroupsJoinAndLeave(t *testing.T) {
	s := newTestSite(t)
	s.user("ana", time.Now())
	_, err := s.accounts.Register(context.Background(), "ana", "secret", false)
	require.NoError(t, err)
	s.login("ana", "secret")

	resp, _ := s.post("/groups/create/", url.Values{"name": {"gophers"}, "description": {"Go fans"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.Regexp(t, `^/groups/\d+/$`, location)

	resp, _ = s.post(location+"join/", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := s.get(location + "members/")
	assert.Contains(t, body, ">ana<")

	resp, _ = s.post(location+"leave/", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = s.get(location + "members/")
	assert.NotContains(t, body, ">ana<")
}

func TestSearchRoute(t *testing.T) {
	s := newTestSite(t)
	s.user("anabel", time.Now())
	s.user("bob", time.Now())

	resp, body := s.get("/users/search/ana/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "anabel")
	assert.NotContains(t, body, "bob@example.com")

	resp, body = s.get("/users/search/_/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "0 matches.")

	resp, _ = s.get("/users/search/a-b/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestSite(t)
	s.get("/users/list/")

	resp, body := s.get("/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, `route="users:list"`), "requests are labelled by route name")
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
