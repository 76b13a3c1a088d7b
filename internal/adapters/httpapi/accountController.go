package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"webcourse/internal/adapters/httpapi/middleware"
	"webcourse/internal/core/flash"
)

type AccountController struct {
	ac AccountUseCase
	*pages
}

func NewAccountController(ac AccountUseCase, pg *pages) *AccountController {
	return &AccountController{ac: ac, pages: pg}
}

// safeNext only lets login redirect to local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (ctl *AccountController) LoginForm(c *gin.Context) {
	ctl.render(c, http.StatusOK, "accounts/login", gin.H{
		"Title": "Log in",
		"Next":  safeNext(c.Query("next")),
	})
}

func (ctl *AccountController) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		ctl.render(c, http.StatusBadRequest, "accounts/login", gin.H{
			"Title":    "Log in",
			"Error":    "Enter both username and password.",
			"Username": form.Username,
			"Next":     safeNext(form.Next),
		})
		return
	}
	session, err := ctl.ac.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		ctl.render(c, http.StatusBadRequest, "accounts/login", gin.H{
			"Title":    "Log in",
			"Error":    "Please enter a correct username and password.",
			"Username": form.Username,
			"Next":     safeNext(form.Next),
		})
		return
	}

	middleware.SetSession(c, session.Token, int(time.Until(session.ExpiresAt).Seconds()))
	ctl.addFlash(c, flash.Success, "Welcome back, "+form.Username+".")
	c.Redirect(http.StatusSeeOther, safeNext(form.Next))
}

func (ctl *AccountController) Logout(c *gin.Context) {
	middleware.ClearSession(c)
	ctl.addFlash(c, flash.Info, "You have been logged out.")
	c.Redirect(http.StatusSeeOther, "/")
}
