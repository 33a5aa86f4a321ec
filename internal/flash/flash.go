// Package flash queues one-shot notices in a cookie so they survive a redirect
// and are shown on the next rendered page.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	cookieName = "flash"
	maxAge     = 60

	Success = "success"
	Error   = "error"
)

type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

const (
	contextKey = "flash.pending"
	secureKey  = "flash.secure"
)

// Secure sets the Secure attribute on flash cookies written during the
// request, matching the session cookie.
func Secure(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(secureKey, secure)
		c.Next()
	}
}

// Add queues a notice for the next render. Several notices in one request are kept in order.
func Add(c *gin.Context, kind, message string) {
	pending := append(pendingFrom(c), Notice{Type: kind, Message: message})
	c.Set(contextKey, pending)

	data, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, base64.RawURLEncoding.EncodeToString(data), maxAge, "/", "", c.GetBool(secureKey), true)
}

func AddSuccess(c *gin.Context, message string) { Add(c, Success, message) }
func AddError(c *gin.Context, message string)   { Add(c, Error, message) }

// Pop returns the queued notices and clears the cookie.
func Pop(c *gin.Context) []Notice {
	raw, err := c.Cookie(cookieName)
	if err != nil || raw == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", c.GetBool(secureKey), true)

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var notices []Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil
	}
	return notices
}

// Messages filters notices by kind.
func Messages(notices []Notice, kind string) []string {
	out := make([]string, 0, len(notices))
	for _, n := range notices {
		if n.Type == kind {
			out = append(out, n.Message)
		}
	}
	return out
}

func pendingFrom(c *gin.Context) []Notice {
	if v, ok := c.Get(contextKey); ok {
		if notices, ok := v.([]Notice); ok {
			return notices
		}
	}
	return nil
}
