package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"webcourse/internal/admin"
	"webcourse/internal/core/flash"
)

// reserved query parameters; every other parameter is a filter
var changelistParams = map[string]bool{"q": true, "page": true, "year": true}

type AdminController struct {
	site *admin.Site
	*pages
}

func NewAdminController(site *admin.Site, pg *pages) *AdminController {
	return &AdminController{site: site, pages: pg}
}

func (ctl *AdminController) Index(c *gin.Context) {
	ctl.render(c, http.StatusOK, "admin/index", gin.H{
		"Title":     ctl.site.Title,
		"SiteTitle": ctl.site.Title,
		"Models":    ctl.site.Models(),
	})
}

func changelistQuery(c *gin.Context) admin.Query {
	q := admin.Query{Search: c.Query("q"), Filters: map[string]string{}}
	q.Page, _ = strconv.Atoi(c.Query("page"))
	q.Year, _ = strconv.Atoi(c.Query("year"))
	for key, values := range c.Request.URL.Query() {
		if changelistParams[key] || len(values) == 0 || values[0] == "" {
			continue
		}
		q.Filters[key] = values[0]
	}
	return q
}

// recentYears are the date hierarchy links, newest first.
func recentYears(n int) []int {
	now := time.Now().Year()
	years := make([]int, n)
	for i := range years {
		years[i] = now - i
	}
	return years
}

func (ctl *AdminController) Changelist(c *gin.Context) {
	cl, err := ctl.site.Changelist(c.Request.Context(), c.Param("model"), changelistQuery(c))
	if errors.Is(err, admin.ErrUnknownModel) {
		ctl.notFound(c)
		return
	}
	if err != nil {
		ctl.serverError(c, err)
		return
	}
	ctl.render(c, http.StatusOK, "admin/changelist", gin.H{
		"Title":    cl.Meta.TitlePlural,
		"List":     cl,
		"Years":    recentYears(5),
		"PrevPage": cl.Query.Page - 1,
		"NextPage": cl.Query.Page + 1,
	})
}

// Action runs the selected bulk action and reports back through a flash message.
func (ctl *AdminController) Action(c *gin.Context) {
	slug := c.Param("model")
	back := "/admin/" + slug + "/"

	var ids []uint
	for _, raw := range c.PostFormArray("ids") {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}

	msg, err := ctl.site.RunAction(c.Request.Context(), slug, c.PostForm("action"), ids)
	switch {
	case errors.Is(err, admin.ErrUnknownModel):
		ctl.notFound(c)
		return
	case errors.Is(err, admin.ErrNoSelection):
		ctl.addFlash(c, flash.Warning, "Items must be selected in order to perform actions on them.")
	case errors.Is(err, admin.ErrUnknownAction):
		ctl.addFlash(c, flash.Warning, "No action selected.")
	case err != nil:
		ctl.serverError(c, err)
		return
	default:
		ctl.addFlash(c, flash.Success, msg)
	}
	c.Redirect(http.StatusSeeOther, back)
}

func (ctl *AdminController) Change(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		ctl.notFound(c)
		return
	}
	form, err := ctl.site.Change(c.Request.Context(), c.Param("model"), uint(id))
	if errors.Is(err, admin.ErrUnknownModel) || errors.Is(err, admin.ErrNotFound) {
		ctl.notFound(c)
		return
	}
	if err != nil {
		ctl.serverError(c, err)
		return
	}
	ctl.render(c, http.StatusOK, "admin/change", gin.H{
		"Title": form.Meta.Title + ": " + form.Display,
		"Form":  form,
	})
}
