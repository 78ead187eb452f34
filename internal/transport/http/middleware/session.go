package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/model"
)

const sessionIDKey = "sessionID"

// SessionValidator is what the middleware needs from the session service.
type SessionValidator interface {
	ValidateOrCreate(token string) (*model.Session, error)
}

// Session reads the session cookie, validates or mints a session, re-sets
// the cookie and stores the session id in the request context. Absent or
// invalid tokens transparently become a new session, never a 401.
func Session(sessions SessionValidator, cookieName string, maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)

		session, err := sessions.ValidateOrCreate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    50000,
				"message": "session validation failed",
			})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, session.Token, maxAge, "/", "", false, true)
		c.Set(sessionIDKey, session.ID)
		c.Next()
	}
}

// GetSessionID returns the validated session id placed by Session.
func GetSessionID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(sessionIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
