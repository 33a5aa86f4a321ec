package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const CookieName = "token"

type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// SetSessionCookie stores the token in an HttpOnly, SameSite=Lax cookie scoped to the whole site.
func SetSessionCookie(c *gin.Context, cfg CookieConfig, token string) {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultTokenTTL
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(maxAge.Seconds()), "/", "", cfg.Secure, true)
}

func ClearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", cfg.Secure, true)
}

// SessionToken returns the raw cookie value, or "" when absent.
func SessionToken(c *gin.Context) string {
	value, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return value
}
