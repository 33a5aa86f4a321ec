package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shophub/internal/auth"
	"shophub/internal/flash"
	"shophub/internal/models"
	"shophub/internal/store"
)

const accountKey = "account"

var errNoToken = errors.New("missing token")

type Session struct {
	Accounts store.Accounts
	Tokens   *auth.Issuer
	Cookies  auth.CookieConfig
	Log      *zap.Logger
}

// resolve verifies the cookie token and loads the account it names.
func (s Session) resolve(c *gin.Context) (*models.Account, error) {
	raw := auth.SessionToken(c)
	if raw == "" {
		return nil, errNoToken
	}

	claims, err := s.Tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	id, err := claims.ObjectID()
	if err != nil {
		return nil, err
	}

	account, err := s.Accounts.FindAccountByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s Session) logFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		s.Log.Info("session token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
	case errors.Is(err, store.ErrNotFound):
		s.Log.Info("session account not found", zap.String("path", c.Request.URL.Path))
	case errors.Is(err, context.DeadlineExceeded):
		s.Log.Error("session lookup timed out", zap.Error(err))
	default:
		s.Log.Error("session lookup failed", zap.Error(err))
	}
}

// IsLoggedIn guards browser routes. Without a token the visitor is sent to the
// login page; a bad token or a vanished account clears the cookie and sends
// the visitor home.
func IsLoggedIn(s Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := s.resolve(c)
		if errors.Is(err, errNoToken) {
			flash.AddError(c, "Please login first")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if err != nil {
			s.logFailure(c, err)
			auth.ClearSessionCookie(c, s.Cookies)
			flash.AddError(c, "Something went wrong with authentication, please login again")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// APIAuth is IsLoggedIn for fetch callers: it answers 401 instead of redirecting.
func APIAuth(s Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := s.resolve(c)
		if errors.Is(err, errNoToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Please login first"})
			return
		}
		if err != nil {
			s.logFailure(c, err)
			auth.ClearSessionCookie(c, s.Cookies)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token, please login again"})
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// CurrentAccount returns the account attached by IsLoggedIn or APIAuth.
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil, false
	}
	account, ok := v.(*models.Account)
	return account, ok && account != nil
}

const jsonModeKey = "jsonMode"

// JSONOnly pins every handler behind it to the JSON presentation.
func JSONOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(jsonModeKey, true)
		c.Next()
	}
}

// WantsJSON reports whether the caller is a fetch/API client rather than a form post.
func WantsJSON(c *gin.Context) bool {
	if c.GetBool(jsonModeKey) {
		return true
	}
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, gin.MIMEJSON) && !strings.Contains(accept, gin.MIMEHTML)
}
