package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"webcourse/internal/core/flash"
	"webcourse/internal/core/group"
	groupapp "webcourse/internal/core/group/service"
	"webcourse/internal/urls"
)

type GroupController struct {
	gc GroupUseCase
	*pages
}

func NewGroupController(gc GroupUseCase, pg *pages) *GroupController {
	return &GroupController{gc: gc, pages: pg}
}

func (ctl *GroupController) List() HandlerFunc {
	return ListView[*group.Group]{
		Template: "groups/list",
		Title:    "Groups",
		Name:     "Groups",
		Query: func(ctx context.Context, _ urls.Params) ([]*group.Group, error) {
			return ctl.gc.ListGroups(ctx)
		},
	}.Handler(ctl.pages)
}

func (ctl *GroupController) Create() HandlerFunc {
	return CreateView[groupForm]{
		Template: "groups/form",
		Title:    "New group",
		Guard: func(c *gin.Context) bool {
			_, ok := ctl.requireLogin(c, "create groups", ctl.url("groups:list"))
			return ok
		},
		Save: func(c *gin.Context, f groupForm) (string, error) {
			g, err := ctl.gc.CreateGroup(c.Request.Context(), f.Name, f.Description)
			switch {
			case errors.Is(err, groupapp.ErrNameTaken):
				return "", formErrors{"name": "A group with that name already exists."}
			case errors.Is(err, groupapp.ErrEmptyName):
				return "", formErrors{"name": "This field is required."}
			case err != nil:
				return "", err
			}
			ctl.addFlash(c, flash.Success, "Group "+g.Name+" created.")
			return ctl.url("groups:detail", g.ID), nil
		},
	}.Handler(ctl.pages)
}

func (ctl *GroupController) load(c *gin.Context, p urls.Params) (*group.Group, bool) {
	g, err := ctl.gc.GetGroup(c.Request.Context(), uint(p.Int("id")))
	if errors.Is(err, groupapp.ErrNotFound) {
		ctl.notFound(c)
		return nil, false
	}
	if err != nil {
		ctl.serverError(c, err)
		return nil, false
	}
	return g, true
}

func (ctl *GroupController) Detail(c *gin.Context, p urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodHead) {
		return
	}
	g, ok := ctl.load(c, p)
	if !ok {
		return
	}
	ctl.render(c, http.StatusOK, "groups/detail", gin.H{"Title": g.Name, "Group": g})
}

func (ctl *GroupController) MemberList(c *gin.Context, p urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodHead) {
		return
	}
	g, ok := ctl.load(c, p)
	if !ok {
		return
	}
	members, err := ctl.gc.Members(c.Request.Context(), g.ID)
	if err != nil {
		ctl.serverError(c, err)
		return
	}
	ctl.render(c, http.StatusOK, "groups/members", gin.H{"Title": g.Name + " members", "Group": g, "Members": members})
}

func (ctl *GroupController) Join(c *gin.Context, p urls.Params) {
	ctl.membership(c, p, ctl.gc.Join, "You joined the group.")
}

func (ctl *GroupController) Leave(c *gin.Context, p urls.Params) {
	ctl.membership(c, p, ctl.gc.Leave, "You left the group.")
}

func (ctl *GroupController) membership(c *gin.Context, p urls.Params,
	apply func(ctx context.Context, id uint, username string) (*group.Group, error), done string) {
	if !ctl.allow(c, http.MethodPost) {
		return
	}
	id := uint(p.Int("id"))
	detail := ctl.url("groups:detail", id)
	username, ok := ctl.requireLogin(c, "join groups", detail)
	if !ok {
		return
	}

	_, err := apply(c.Request.Context(), id, username)
	switch {
	case errors.Is(err, groupapp.ErrNotFound):
		ctl.notFound(c)
		return
	case errors.Is(err, groupapp.ErrUserNotFound):
		ctl.addFlash(c, flash.Error, "Your account has no matching user.")
	case errors.Is(err, groupapp.ErrAlreadyMember):
		ctl.addFlash(c, flash.Info, "You are already a member.")
	case errors.Is(err, groupapp.ErrNotMember):
		ctl.addFlash(c, flash.Info, "You are not a member.")
	case err != nil:
		ctl.serverError(c, err)
		return
	default:
		ctl.addFlash(c, flash.Success, done)
	}
	ctl.redirect(c, detail)
}
