package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"webcourse/internal/urls"
)

// ListView renders every item Query returns under Name, with their count as Total.
type ListView[T any] struct {
	Template string
	Title    string
	Name     string
	Query    func(ctx context.Context, p urls.Params) ([]T, error)
	// Extra adds page-specific data
	Extra func(p urls.Params) gin.H
}

func (v ListView[T]) Handler(pg *pages) HandlerFunc {
	return func(c *gin.Context, p urls.Params) {
		if !pg.allow(c, http.MethodGet, http.MethodHead) {
			return
		}
		items, err := v.Query(c.Request.Context(), p)
		if err != nil {
			pg.serverError(c, err)
			return
		}
		data := gin.H{"Title": v.Title, v.Name: items, "Total": len(items)}
		if v.Extra != nil {
			for k, val := range v.Extra(p) {
				data[k] = val
			}
		}
		pg.render(c, http.StatusOK, v.Template, data)
	}
}

// CreateView shows an empty form on GET and binds, validates and saves it on POST.
type CreateView[F any] struct {
	Template string
	Title    string
	// Guard runs first and returns false when it has already answered the request.
	Guard func(c *gin.Context) bool
	// Save persists the form and returns where to redirect. A formErrors result re-renders the form.
	Save  func(c *gin.Context, form F) (string, error)
	Extra gin.H
}

func (v CreateView[F]) Handler(pg *pages) HandlerFunc {
	return func(c *gin.Context, _ urls.Params) {
		if !pg.allow(c, http.MethodGet, http.MethodPost) {
			return
		}
		if v.Guard != nil && !v.Guard(c) {
			return
		}

		var form F
		if c.Request.Method == http.MethodGet {
			v.form(pg, c, http.StatusOK, form, formErrors{})
			return
		}
		if err := c.ShouldBind(&form); err != nil {
			v.form(pg, c, http.StatusBadRequest, form, bindErrors(err))
			return
		}
		location, err := v.Save(c, form)
		var fe formErrors
		switch {
		case errors.As(err, &fe):
			v.form(pg, c, http.StatusBadRequest, form, fe)
		case err != nil:
			pg.serverError(c, err)
		default:
			pg.redirect(c, location)
		}
	}
}

func (v CreateView[F]) form(pg *pages, c *gin.Context, status int, form F, errs formErrors) {
	data := gin.H{"Title": v.Title, "Form": form, "Errors": errs}
	for k, val := range v.Extra {
		data[k] = val
	}
	pg.render(c, status, v.Template, data)
}
