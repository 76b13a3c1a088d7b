package httpapi

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"webcourse/internal/urls"
)

type HomeController struct{ *pages }

// Welcome is the landing page with links to every example.
func (ctl *HomeController) Welcome(c *gin.Context, _ urls.Params) {
	if !ctl.allow(c, http.MethodGet, http.MethodHead) {
		return
	}
	ctl.render(c, http.StatusOK, "home", gin.H{
		"Title":     "Welcome",
		"GoVersion": runtime.Version(),
		"Framework": "gin " + gin.Version,
	})
}
