package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webcourse/internal/adapters/httpapi/middleware"
	"webcourse/internal/config"
	"webcourse/internal/core/flash"
	flashPort "webcourse/internal/ports/flash"
	"webcourse/internal/urls"
)

const siteTitle = "Web Course"

// pages renders templates and carries the flash store and route table every controller needs.
type pages struct {
	flash  flashPort.Store
	routes *urls.Table[HandlerFunc]
}

// render adds the per-request layout data and writes the named template.
func (p *pages) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = siteTitle
	}
	var messages []flash.Message
	if session := middleware.FlashSessionID(c); session != "" {
		var err error
		messages, err = p.flash.Pop(c.Request.Context(), session)
		if err != nil {
			config.Logger.Warn("Could not pop flash messages", zap.Error(err))
		}
	}
	data["Messages"] = messages
	a, _ := middleware.CurrentAccount(c)
	data["Account"] = a
	c.HTML(status, name, data)
}

// addFlash queues a message for the next rendered page.
func (p *pages) addFlash(c *gin.Context, level flash.Level, text string) {
	session := middleware.FlashSessionID(c)
	if session == "" {
		return
	}
	if err := p.flash.Add(c.Request.Context(), session, flash.Message{Level: level, Text: text}); err != nil {
		config.Logger.Warn("Could not store flash message", zap.Error(err))
	}
}

// redirect answers a POST with 303 and anything else with 302.
func (p *pages) redirect(c *gin.Context, location string) {
	code := http.StatusFound
	if c.Request.Method == http.MethodPost {
		code = http.StatusSeeOther
	}
	c.Redirect(code, location)
}

// redirectTo reverses name and redirects there, falling back to the home page.
func (p *pages) redirectTo(c *gin.Context, name string, args ...any) {
	p.redirect(c, p.url(name, args...))
}

func (p *pages) url(name string, args ...any) string {
	loc, err := p.routes.Reverse(name, args...)
	if err != nil {
		config.Logger.Error("Reverse failed", zap.String("route", name), zap.Error(err))
		return "/"
	}
	return loc
}

func (p *pages) notFound(c *gin.Context) {
	p.render(c, http.StatusNotFound, "error", gin.H{
		"Title":  "Page not found",
		"Status": http.StatusNotFound,
		"Detail": "The page you asked for does not exist.",
	})
}

func (p *pages) serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	config.Logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	p.render(c, http.StatusInternalServerError, "error", gin.H{
		"Title":  "Server error",
		"Status": http.StatusInternalServerError,
		"Detail": "Something went wrong on our side.",
	})
}

func (p *pages) methodNotAllowed(c *gin.Context, allowed ...string) {
	for _, m := range allowed {
		c.Writer.Header().Add("Allow", m)
	}
	p.render(c, http.StatusMethodNotAllowed, "error", gin.H{
		"Title":  "Method not allowed",
		"Status": http.StatusMethodNotAllowed,
		"Detail": "This page does not accept " + c.Request.Method + " requests.",
	})
}

// allow reports whether the request method is one of methods, answering 405 when it is not.
func (p *pages) allow(c *gin.Context, methods ...string) bool {
	for _, m := range methods {
		if c.Request.Method == m {
			return true
		}
	}
	p.methodNotAllowed(c, methods...)
	return false
}

// requireLogin returns the signed-in account. Anonymous requests get an error flash and a redirect to fallback.
func (p *pages) requireLogin(c *gin.Context, action, fallback string) (string, bool) {
	a, ok := middleware.CurrentAccount(c)
	if !ok {
		p.addFlash(c, flash.Error, "You must be logged in to "+action+".")
		p.redirect(c, fallback)
		return "", false
	}
	return a.Username, true
}
