package httpapi

import (
	"context"
	"errors"
	"strconv"

	"webcourse/internal/adapters/httpapi/middleware"
	"webcourse/internal/admin"
	"webcourse/internal/core/group"
	groupapp "webcourse/internal/core/group/service"
	"webcourse/internal/core/post"
	postapp "webcourse/internal/core/post/service"
	"webcourse/internal/core/user"
	userapp "webcourse/internal/core/user/service"
)

const dateLayout = "2006-01-02 15:04"

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func count(n int64) string { return strconv.FormatInt(n, 10) }

// counted wraps a bulk operation so its row count reaches the metrics.
func counted(m *middleware.Metrics, model, action string, run func(context.Context, []uint) (int64, error)) func(context.Context, []uint) (int64, error) {
	return func(ctx context.Context, ids []uint) (int64, error) {
		n, err := run(ctx, ids)
		if err == nil {
			m.AdminAction(model, action, n)
		}
		return n, err
	}
}

// getter maps a use case's own not-found error onto admin.ErrNotFound.
func getter[T any](get func(context.Context, uint) (T, error), missing error) func(context.Context, uint) (T, error) {
	return func(ctx context.Context, id uint) (T, error) {
		v, err := get(ctx, id)
		if errors.Is(err, missing) {
			return v, admin.ErrNotFound
		}
		return v, err
	}
}

// NewAdminSite registers the user, post and group admin pages.
func NewAdminSite(users UserUseCase, posts PostUseCase, groups GroupUseCase, m *middleware.Metrics) (*admin.Site, error) {
	site := admin.NewSite("Web Course administration")
	if err := admin.Register(site, userAdmin(users, m)); err != nil {
		return nil, err
	}
	if err := admin.Register(site, postAdmin(posts, users, m)); err != nil {
		return nil, err
	}
	if err := admin.Register(site, groupAdmin(groups, m)); err != nil {
		return nil, err
	}
	return site, nil
}

func userAdmin(users UserUseCase, m *middleware.Metrics) *admin.ModelAdmin[*user.User] {
	username := admin.Column[*user.User]{Name: "username", Label: "Username", Value: func(u *user.User) string { return u.Username }}
	email := admin.Column[*user.User]{Name: "email", Label: "Email", Value: func(u *user.User) string { return u.Email }}
	first := admin.Column[*user.User]{Name: "first_name", Label: "First name", Value: func(u *user.User) string { return u.FirstName }}
	last := admin.Column[*user.User]{Name: "last_name", Label: "Last name", Value: func(u *user.User) string { return u.LastName }}
	full := admin.Column[*user.User]{Name: "full_name", Label: "Full name", Value: func(u *user.User) string { return u.FullName() }}
	active := admin.Column[*user.User]{Name: "is_active", Label: "Active", Value: func(u *user.User) string { return yesNo(u.IsActive) }}
	posts := admin.Column[*user.User]{Name: "post_count", Label: "Posts", Value: func(u *user.User) string { return count(u.PostCount) }}
	created := admin.Column[*user.User]{Name: "created_at", Label: "Created", Value: func(u *user.User) string { return u.CreatedAt.Format(dateLayout) }}
	updated := admin.Column[*user.User]{Name: "updated_at", Label: "Updated", Value: func(u *user.User) string { return u.UpdatedAt.Format(dateLayout) }}
	bio := admin.Column[*user.User]{Name: "bio", Label: "Bio", Value: func(u *user.User) string { return u.Bio }}

	return &admin.ModelAdmin[*user.User]{
		Slug:    "users",
		Title:   "User",
		Source:  admin.SourceFuncs[*user.User]{List: users.AdminList, Get: getter(users.AdminGet, userapp.ErrNotFound)},
		ID:      func(u *user.User) uint { return u.ID },
		Display: func(u *user.User) string { return u.Username },
		Columns: []admin.Column[*user.User]{username, email, first, last, full, active, posts, created},
		Filters: []admin.Filter{
			{Name: "is_active", Label: "active", Choices: admin.YesNo},
		},
		SearchFields:  []string{"username", "email", "first_name", "last_name"},
		DateHierarchy: "created_at",
		Fieldsets: []admin.Fieldset[*user.User]{
			{Title: "Account", Fields: []admin.Column[*user.User]{username, email}},
			{Title: "Personal information", Fields: []admin.Column[*user.User]{first, last, bio}},
			{Title: "Status", Fields: []admin.Column[*user.User]{active, posts}},
			{Title: "Dates", Collapsed: true, Fields: []admin.Column[*user.User]{created, updated}},
		},
		Actions: []admin.Action{
			{Name: "activate", Label: "Activate selected users", Message: "%d users activated.",
				Run: counted(m, "users", "activate", users.ActivateUsers)},
			{Name: "deactivate", Label: "Deactivate selected users", Message: "%d users deactivated.",
				Run: counted(m, "users", "deactivate", users.DeactivateUsers)},
			{Name: "delete", Label: "Delete selected users", Message: "%d users deleted.",
				Run: counted(m, "users", "delete", users.DeleteUsers)},
		},
	}
}

func postAdmin(posts PostUseCase, users UserUseCase, m *middleware.Metrics) *admin.ModelAdmin[*post.Post] {
	title := admin.Column[*post.Post]{Name: "title", Label: "Title", Value: func(p *post.Post) string { return p.Title }}
	content := admin.Column[*post.Post]{Name: "content", Label: "Content", Value: func(p *post.Post) string { return p.Content }}
	author := admin.Column[*post.Post]{Name: "author", Label: "Author", Value: func(p *post.Post) string { return p.Author.Username }}
	published := admin.Column[*post.Post]{Name: "is_published", Label: "Published", Value: func(p *post.Post) string { return yesNo(p.IsPublished) }}
	likes := admin.Column[*post.Post]{Name: "likes", Label: "Likes", Value: func(p *post.Post) string { return count(p.LikesCount) }}
	created := admin.Column[*post.Post]{Name: "created_at", Label: "Created", Value: func(p *post.Post) string { return p.CreatedAt.Format(dateLayout) }}
	updated := admin.Column[*post.Post]{Name: "updated_at", Label: "Updated", Value: func(p *post.Post) string { return p.UpdatedAt.Format(dateLayout) }}
	publishedAt := admin.Column[*post.Post]{Name: "published_at", Label: "Published at", Value: func(p *post.Post) string {
		if p.PublishedAt == nil {
			return "-"
		}
		return p.PublishedAt.Format(dateLayout)
	}}

	authors := func(ctx context.Context) ([]admin.Choice, error) {
		list, err := users.ListActiveUsers(ctx)
		if err != nil {
			return nil, err
		}
		choices := make([]admin.Choice, 0, len(list))
		for _, u := range list {
			choices = append(choices, admin.Choice{Value: strconv.FormatUint(uint64(u.ID), 10), Label: u.Username})
		}
		return choices, nil
	}

	return &admin.ModelAdmin[*post.Post]{
		Slug:    "posts",
		Title:   "Post",
		Source:  admin.SourceFuncs[*post.Post]{List: posts.AdminList, Get: getter(posts.AdminGet, postapp.ErrNotFound)},
		ID:      func(p *post.Post) uint { return p.ID },
		Columns: []admin.Column[*post.Post]{title, author, published, likes, created, publishedAt},
		Filters: []admin.Filter{
			{Name: "is_published", Label: "published", Choices: admin.YesNo},
			{Name: "author", Label: "author", Choices: authors},
		},
		SearchFields:  []string{"title", "content", "author"},
		DateHierarchy: "created_at",
		Fieldsets: []admin.Fieldset[*post.Post]{
			{Title: "Basic information", Fields: []admin.Column[*post.Post]{title, content, author}},
			{Title: "Status", Fields: []admin.Column[*post.Post]{published, publishedAt, likes}},
			{Title: "Dates", Collapsed: true, Fields: []admin.Column[*post.Post]{created, updated}},
		},
		Actions: []admin.Action{
			{Name: "publish", Label: "Publish selected posts", Message: "%d posts published.",
				Run: counted(m, "posts", "publish", posts.PublishPosts)},
			{Name: "unpublish", Label: "Unpublish selected posts", Message: "%d posts unpublished.",
				Run: counted(m, "posts", "unpublish", posts.UnpublishPosts)},
			{Name: "delete", Label: "Delete selected posts", Message: "%d posts deleted.",
				Run: counted(m, "posts", "delete", posts.DeletePosts)},
		},
	}
}

func groupAdmin(groups GroupUseCase, m *middleware.Metrics) *admin.ModelAdmin[*group.Group] {
	name := admin.Column[*group.Group]{Name: "name", Label: "Name", Value: func(g *group.Group) string { return g.Name }}
	description := admin.Column[*group.Group]{Name: "description", Label: "Description", Value: func(g *group.Group) string { return g.Description }}
	members := admin.Column[*group.Group]{Name: "members", Label: "Members", Value: func(g *group.Group) string { return count(g.MemberCount) }}
	created := admin.Column[*group.Group]{Name: "created_at", Label: "Created", Value: func(g *group.Group) string { return g.CreatedAt.Format(dateLayout) }}

	return &admin.ModelAdmin[*group.Group]{
		Slug:         "groups",
		Title:        "Group",
		Source:       admin.SourceFuncs[*group.Group]{List: groups.AdminList, Get: getter(groups.AdminGet, groupapp.ErrNotFound)},
		ID:           func(g *group.Group) uint { return g.ID },
		Columns:      []admin.Column[*group.Group]{name, members, created},
		SearchFields: []string{"name", "description"},
		Fieldsets: []admin.Fieldset[*group.Group]{
			{Fields: []admin.Column[*group.Group]{name, description, members, created}},
		},
		Actions: []admin.Action{
			{Name: "delete", Label: "Delete selected groups", Message: "%d groups deleted.",
				Run: counted(m, "groups", "delete", groups.DeleteGroups)},
		},
	}
}
