package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"webcourse/internal/adapters/httpapi/middleware"
	"webcourse/internal/urls"
)

// HandlerFunc serves a resolver route with its converted path parameters.
type HandlerFunc func(c *gin.Context, p urls.Params)

// dispatch serves every path gin itself does not route.
func (p *pages) dispatch(c *gin.Context) {
	path := c.Request.URL.Path
	m, err := p.routes.Resolve(path)
	if err != nil {
		if !strings.HasSuffix(path, "/") {
			if _, err := p.routes.Resolve(path + "/"); err == nil {
				target := path + "/"
				if q := c.Request.URL.RawQuery; q != "" {
					target += "?" + q
				}
				c.Redirect(http.StatusMovedPermanently, target)
				return
			}
		}
		p.notFound(c)
		return
	}
	middleware.SetRouteName(c, m.Name)
	m.Handler(c, m.Params)
}
