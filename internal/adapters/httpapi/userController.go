package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"webcourse/internal/core/flash"
	"webcourse/internal/core/user"
	userapp "webcourse/internal/core/user/service"
	"webcourse/internal/urls"
)

type UserController struct {
	uc UserUseCase
	*pages
}

func NewUserController(uc UserUseCase, pg *pages) *UserController {
	return &UserController{uc: uc, pages: pg}
}

// Home lists active users with their count.
func (ctl *UserController) Home() HandlerFunc {
	return ListView[*user.User]{
		Template: "users/home",
		Title:    "Users",
		Name:     "Users",
		Query: func(ctx context.Context, _ urls.Params) ([]*user.User, error) {
			return ctl.uc.ListActiveUsers(ctx)
		},
	}.Handler(ctl.pages)
}

// List shows active usernames as a numbered list.
func (ctl *UserController) List(c *gin.Context, _ urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodHead) {
		return
	}
	users, err := ctl.uc.ListActiveUsers(c.Request.Context())
	if err != nil {
		ctl.serverError(c, err)
		return
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	ctl.render(c, http.StatusOK, "users/list", gin.H{
		"Title":     "User list",
		"Usernames": names,
		"Total":     len(names),
	})
}

func (ctl *UserController) Create() HandlerFunc {
	return CreateView[userForm]{
		Template: "users/form",
		Title:    "Create user",
		Save: func(c *gin.Context, f userForm) (string, error) {
			u, err := ctl.uc.CreateUser(c.Request.Context(), userapp.CreateUserInput{
				Username:  f.Username,
				Email:     f.Email,
				FirstName: f.FirstName,
				LastName:  f.LastName,
				Bio:       f.Bio,
			})
			if errors.Is(err, userapp.ErrUsernameOrEmailTaken) {
				return "", formErrors{"username": "A user with that username or email already exists."}
			}
			if err != nil {
				return "", err
			}
			ctl.addFlash(c, flash.Success, "User "+u.Username+" created.")
			return ctl.url("users:detail", u.ID), nil
		},
	}.Handler(ctl.pages)
}

// found renders name for u, or the 404 page when the lookup missed.
func (ctl *UserController) found(c *gin.Context, u *user.User, err error, name string, data gin.H) {
	if errors.Is(err, userapp.ErrNotFound) {
		ctl.notFound(c)
		return
	}
	if err != nil {
		ctl.serverError(c, err)
		return
	}
	if data == nil {
		data = gin.H{}
	}
	data["User"] = u
	if _, ok := data["Title"]; !ok {
		data["Title"] = u.Username
	}
	ctl.render(c, http.StatusOK, name, data)
}

func (ctl *UserController) Detail(c *gin.Context, p urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodHead) {
		return
	}
	u, err := ctl.uc.GetUser(c.Request.Context(), uint(p.Int("id")))
	ctl.found(c, u, err, "users/detail", nil)
}

// Profile shows the user with their posts from the last week.
func (ctl *UserController) Profile(c *gin.Context, p urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodHead) {
		return
	}
	ctx := c.Request.Context()
	u, err := ctl.uc.GetUserByUsername(ctx, p.String("username"))
	if err != nil {
		ctl.found(c, nil, err, "", nil)
		return
	}
	posts, err := ctl.uc.RecentPosts(ctx, u, userapp.RecentDays)
	if err != nil {
		ctl.serverError(c, err)
		return
	}
	ctl.found(c, u, nil, "users/profile", gin.H{
		"Title": "Profile of " + u.Username,
		"Posts": posts,
		"Days":  userapp.RecentDays,
	})
}

// Archive needs username and id to name the same user.
func (ctl *UserController) Archive(c *gin.Context, p urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodHead) {
		return
	}
	u, err := ctl.uc.GetArchivedUser(c.Request.Context(), p.String("username"), uint(p.Int("id")))
	ctl.found(c, u, err, "users/archive", nil)
}

// History lists users created in the year from the path, active or not.
func (ctl *UserController) History() HandlerFunc {
	return ListView[*user.User]{
		Template: "users/history",
		Title:    "User history",
		Name:     "Users",
		Query: func(ctx context.Context, p urls.Params) ([]*user.User, error) {
			return ctl.uc.ListUsersByYear(ctx, p.Int("year"))
		},
		Extra: func(p urls.Params) gin.H { return gin.H{"Year": p.Int("year")} },
	}.Handler(ctl.pages)
}

func (ctl *UserController) Search() HandlerFunc {
	return ListView[*user.User]{
		Template: "users/search",
		Title:    "Search users",
		Name:     "Users",
		Query: func(ctx context.Context, p urls.Params) ([]*user.User, error) {
			return ctl.uc.SearchUsers(ctx, p.String("term"))
		},
		Extra: func(p urls.Params) gin.H { return gin.H{"Term": p.String("term")} },
	}.Handler(ctl.pages)
}
