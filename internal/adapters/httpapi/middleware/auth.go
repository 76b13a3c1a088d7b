// Package middleware holds the gin middleware shared by every route.
package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webcourse/internal/config"
	"webcourse/internal/core/account"
)

const (
	SessionCookie = "session"
	AccountKey    = "account"
	LoginPath     = "/accounts/login/"
)

// Authenticator resolves a session token to its account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*account.Account, error)
}

// Identity loads the signed-in account from the session cookie. Requests without a valid token stay anonymous.
func Identity(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		a, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			config.Logger.Debug("Dropping invalid session", zap.Error(err))
			ClearSession(c)
			c.Next()
			return
		}
		c.Set(AccountKey, a)
		c.Next()
	}
}

// CurrentAccount returns the account Identity stored, if any.
func CurrentAccount(c *gin.Context) (*account.Account, bool) {
	v, ok := c.Get(AccountKey)
	if !ok {
		return nil, false
	}
	a, ok := v.(*account.Account)
	return a, ok && a != nil
}

// RequireStaff sends anyone but staff to the login page.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := CurrentAccount(c)
		if !ok || !a.IsStaff {
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetSession stores token in an HttpOnly cookie that lives maxAge seconds.
func SetSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", false, true)
}

func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
