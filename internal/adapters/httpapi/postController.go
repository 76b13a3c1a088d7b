package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"webcourse/internal/adapters/httpapi/middleware"
	"webcourse/internal/core/flash"
	"webcourse/internal/core/post"
	postapp "webcourse/internal/core/post/service"
	"webcourse/internal/urls"
)

type PostController struct {
	pc PostUseCase
	*pages
}

func NewPostController(pc PostUseCase, pg *pages) *PostController {
	return &PostController{pc: pc, pages: pg}
}

func (ctl *PostController) List() HandlerFunc {
	return ListView[*post.Post]{
		Template: "posts/list",
		Title:    "Posts",
		Name:     "Posts",
		Query: func(ctx context.Context, _ urls.Params) ([]*post.Post, error) {
			return ctl.pc.ListPublished(ctx)
		},
	}.Handler(ctl.pages)
}

// Create needs a signed-in account whose username matches a user; the new post is inserted already published.
func (ctl *PostController) Create() HandlerFunc {
	return CreateView[postForm]{
		Template: "posts/form",
		Title:    "New post",
		Extra:    gin.H{"Heading": "Write a post"},
		Guard: func(c *gin.Context) bool {
			_, ok := ctl.requireLogin(c, "create posts", ctl.url("posts:list"))
			return ok
		},
		Save: func(c *gin.Context, f postForm) (string, error) {
			a, _ := middleware.CurrentAccount(c)
			p, err := ctl.pc.CreatePublishedPost(c.Request.Context(), f.Title, f.Content, a.Username)
			switch {
			case errors.Is(err, postapp.ErrDomainUserNotFound):
				ctl.addFlash(c, flash.Error, "Your account has no matching user, so the post was not created.")
				return ctl.url("posts:list"), nil
			case errors.Is(err, postapp.ErrEmptyTitle):
				return "", formErrors{"title": "This field is required."}
			case err != nil:
				return "", err
			}
			ctl.addFlash(c, flash.Success, "Post created successfully.")
			return ctl.url("posts:detail", p.ID), nil
		},
	}.Handler(ctl.pages)
}

// load fetches the post from the path, answering 404 itself when it is missing.
func (ctl *PostController) load(c *gin.Context, p urls.Params) (*post.Post, bool) {
	item, err := ctl.pc.GetPost(c.Request.Context(), uint(p.Int("id")))
	if errors.Is(err, postapp.ErrNotFound) {
		ctl.notFound(c)
		return nil, false
	}
	if err != nil {
		ctl.serverError(c, err)
		return nil, false
	}
	return item, true
}

func (ctl *PostController) Detail(c *gin.Context, p urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodHead) {
		return
	}
	item, ok := ctl.load(c, p)
	if !ok {
		return
	}
	likers, err := ctl.pc.Likers(c.Request.Context(), item.ID)
	if err != nil {
		ctl.serverError(c, err)
		return
	}
	ctl.render(c, http.StatusOK, "posts/detail", gin.H{"Title": item.Title, "Post": item, "Likers": likers})
}

func (ctl *PostController) Edit(c *gin.Context, p urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodPost) {
		return
	}
	item, ok := ctl.load(c, p)
	if !ok {
		return
	}
	if _, ok := ctl.requireLogin(c, "edit posts", ctl.url("posts:detail", item.ID)); !ok {
		return
	}

	form := postForm{Title: item.Title, Content: item.Content}
	data := gin.H{"Title": "Edit post", "Heading": "Edit " + item.Title}
	if c.Request.Method == http.MethodGet {
		data["Form"], data["Errors"] = form, formErrors{}
		ctl.render(c, http.StatusOK, "posts/form", data)
		return
	}
	if err := c.ShouldBind(&form); err != nil {
		data["Form"], data["Errors"] = form, bindErrors(err)
		ctl.render(c, http.StatusBadRequest, "posts/form", data)
		return
	}
	_, err := ctl.pc.UpdatePost(c.Request.Context(), item.ID, form.Title, form.Content)
	switch {
	case errors.Is(err, postapp.ErrEmptyTitle):
		data["Form"], data["Errors"] = form, formErrors{"title": "This field is required."}
		ctl.render(c, http.StatusBadRequest, "posts/form", data)
		return
	case errors.Is(err, postapp.ErrNotFound):
		ctl.notFound(c)
		return
	case err != nil:
		ctl.serverError(c, err)
		return
	}
	ctl.addFlash(c, flash.Success, "Post updated.")
	ctl.redirectTo(c, "posts:detail", item.ID)
}

// Delete confirms on GET and deletes on POST.
func (ctl *PostController) Delete(c *gin.Context, p urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodPost) {
		return
	}
	item, ok := ctl.load(c, p)
	if !ok {
		return
	}
	if _, ok := ctl.requireLogin(c, "delete posts", ctl.url("posts:detail", item.ID)); !ok {
		return
	}
	if c.Request.Method == http.MethodGet {
		ctl.render(c, http.StatusOK, "posts/confirm_delete", gin.H{"Title": "Delete post", "Post": item})
		return
	}
	if err := ctl.pc.DeletePost(c.Request.Context(), item.ID); errors.Is(err, postapp.ErrNotFound) {
		ctl.notFound(c)
		return
	} else if err != nil {
		ctl.serverError(c, err)
		return
	}
	ctl.addFlash(c, flash.Success, "Post deleted.")
	ctl.redirectTo(c, "posts:list")
}

func (ctl *PostController) Like(c *gin.Context, p urls.Params) {
	ctl.toggleLike(c, p, ctl.pc.LikePost, "You liked this post.")
}

func (ctl *PostController) Unlike(c *gin.Context, p urls.Params) {
	ctl.toggleLike(c, p, ctl.pc.UnlikePost, "You no longer like this post.")
}

func (ctl *PostController) toggleLike(c *gin.Context, p urls.Params,
	apply func(ctx context.Context, id uint, username string) (*post.Post, error), done string) {
	if !ctl.allow(c, http.MethodPost) {
		return
	}
	id := uint(p.Int("id"))
	detail := ctl.url("posts:detail", id)
	username, ok := ctl.requireLogin(c, "like posts", detail)
	if !ok {
		return
	}

	_, err := apply(c.Request.Context(), id, username)
	switch {
	case errors.Is(err, postapp.ErrNotFound):
		ctl.notFound(c)
	case errors.Is(err, postapp.ErrDomainUserNotFound):
		ctl.addFlash(c, flash.Error, "Your account has no matching user.")
		ctl.redirect(c, detail)
	case err != nil:
		ctl.serverError(c, err)
	default:
		ctl.addFlash(c, flash.Success, done)
		ctl.redirect(c, detail)
	}
}
