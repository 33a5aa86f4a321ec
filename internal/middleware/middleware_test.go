package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"shophub/internal/auth"
	"shophub/internal/flash"
	"shophub/internal/models"
	"shophub/internal/store"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newSession(t *testing.T) (Session, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return Session{
		Accounts: mem,
		Tokens:   auth.NewIssuer(testSecret, auth.DefaultTokenTTL),
		Cookies:  auth.CookieConfig{},
		Log:      zap.NewNop(),
	}, mem
}

func seedAccount(t *testing.T, mem *store.Memory, role string) *models.Account {
	t.Helper()
	acc := &models.Account{
		FullName:     "Asha Verma",
		Email:        role + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, mem.CreateAccount(context.Background(), acc))
	return acc
}

func tokenFor(t *testing.T, s Session, acc *models.Account) string {
	t.Helper()
	token, err := s.Tokens.Issue(acc.ID, acc.Email, acc.Role)
	require.NoError(t, err)
	return token
}

func protectedRouter(guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(guards, func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no account")
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": account.Email, "hash": account.PasswordHash})
	})
	r.GET("/private", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			found = ck
		}
	}
	return found
}

func flashes(t *testing.T, rec *httptest.ResponseRecorder) []flash.Notice {
	t.Helper()
	ck := cookieNamed(rec, "flash")
	if ck == nil {
		return nil
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(ck)
	return flash.Pop(c)
}

func TestIsLoggedInWithoutCookieRedirectsToLogin(t *testing.T) {
	s, _ := newSession(t)
	rec := get(protectedRouter(IsLoggedIn(s)), "")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, []string{"Please login first"}, flash.Messages(flashes(t, rec), flash.Error))
}

func TestIsLoggedInWithGarbageTokenClearsCookie(t *testing.T) {
	s, _ := newSession(t)
	rec := get(protectedRouter(IsLoggedIn(s)), "not-a-jwt")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cleared := cookieNamed(rec, auth.CookieName)
	require.NotNil(t, cleared)
	assert.Equal(t, "", cleared.Value)
	assert.True(t, cleared.MaxAge < 0)
	assert.Equal(t,
		[]string{"Something went wrong with authentication, please login again"},
		flash.Messages(flashes(t, rec), flash.Error))
}

func TestIsLoggedInWithExpiredToken(t *testing.T) {
	s, mem := newSession(t)
	acc := seedAccount(t, mem, models.RoleUser)

	old := s.Tokens.WithClock(func() time.Time { return time.Now().Add(-25 * time.Hour) })
	token, err := old.Issue(acc.ID, acc.Email, acc.Role)
	require.NoError(t, err)

	rec := get(protectedRouter(IsLoggedIn(s)), token)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestIsLoggedInWithDeletedAccount(t *testing.T) {
	s, _ := newSession(t)
	ghost := &models.Account{ID: primitive.NewObjectID(), Email: "ghost@example.com", Role: models.RoleUser}

	rec := get(protectedRouter(IsLoggedIn(s)), tokenFor(t, s, ghost))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestIsLoggedInAttachesAccountWithoutHash(t *testing.T) {
	s, mem := newSession(t)
	acc := seedAccount(t, mem, models.RoleUser)

	rec := get(protectedRouter(IsLoggedIn(s)), tokenFor(t, s, acc))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"user@example.com","hash":""}`, rec.Body.String())
}

func TestAPIAuthAnswersJSON(t *testing.T) {
	s, mem := newSession(t)
	r := protectedRouter(APIAuth(s))

	rec := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Please login first"}`, rec.Body.String())

	rec = get(r, "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")

	acc := seedAccount(t, mem, models.RoleUser)
	rec = get(r, tokenFor(t, s, acc))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOwnerOnly(t *testing.T) {
	s, mem := newSession(t)
	user := seedAccount(t, mem, models.RoleUser)
	owner := seedAccount(t, mem, models.RoleOwner)
	r := protectedRouter(IsLoggedIn(s), OwnerOnly())

	rec := get(r, tokenFor(t, s, user))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/shop", rec.Header().Get("Location"))

	rec = get(r, tokenFor(t, s, owner))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIOwnerOnly(t *testing.T) {
	s, mem := newSession(t)
	user := seedAccount(t, mem, models.RoleUser)
	owner := seedAccount(t, mem, models.RoleOwner)
	r := protectedRouter(APIAuth(s), APIOwnerOnly())

	assert.Equal(t, http.StatusForbidden, get(r, tokenFor(t, s, user)).Code)
	assert.Equal(t, http.StatusOK, get(r, tokenFor(t, s, owner)).Code)
}

func TestWantsJSON(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		accept      string
		want        bool
	}{
		{"form post", "application/x-www-form-urlencoded", "text/html,application/xhtml+xml", false},
		{"json body", "application/json; charset=utf-8", "", true},
		{"fetch accept", "", "application/json", true},
		{"browser", "", "text/html,*/*", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.contentType != "" {
				c.Request.Header.Set("Content-Type", tc.contentType)
			}
			if tc.accept != "" {
				c.Request.Header.Set("Accept", tc.accept)
			}
			assert.Equal(t, tc.want, WantsJSON(c))
		})
	}
}

func TestJSONOnlyOverridesBrowserAccept(t *testing.T) {
	r := gin.New()
	r.GET("/x", JSONOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"json": WantsJSON(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.JSONEq(t, `{"json":true}`, rec.Body.String())
}
