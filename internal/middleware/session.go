package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ppm/internal/config"
	"ppm/internal/service"
)

// ContextKeySessionID is the gin context key of the browsing-session id.
const ContextKeySessionID = "session_id"

// Session resolves the browsing session from its signed cookie, issuing a
// new one when the cookie is missing or invalid. The cookie has no Max-Age,
// so it ends with the browser session.
func Session(tokens service.SessionTokenService, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(cfg.CookieName); err == nil && raw != "" {
			if claims, err := tokens.Validate(raw); err == nil {
				c.Set(ContextKeySessionID, claims.SessionID)
				c.Next()
				return
			}
			logrus.Debugf("middleware.Session: replacing invalid session cookie")
		}

		token, sessionID, err := tokens.Issue()
		if err != nil {
			logrus.Errorf("middleware.Session: issuing session: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "SESSION_UNAVAILABLE", "message": "could not start a session"},
			})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, token, 0, "/", "", cfg.Secure, true)
		c.Set(ContextKeySessionID, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session id set by Session.
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}
