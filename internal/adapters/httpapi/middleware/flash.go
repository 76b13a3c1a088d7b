package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const (
	FlashCookie = "flash_session"
	flashKey    = "flash_session"
)

// FlashSession makes sure the browser carries a flash session id and exposes it to handlers.
func FlashSession(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(FlashCookie)
		if err != nil || uuid.FromStringOrNil(id) == uuid.Nil {
			id = uuid.Must(uuid.NewV4()).String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(FlashCookie, id, int(ttl.Seconds()), "/", "", false, true)
		}
		c.Set(flashKey, id)
		c.Next()
	}
}

// FlashSessionID is the id FlashSession assigned to this request.
func FlashSessionID(c *gin.Context) string {
	return c.GetString(flashKey)
}
