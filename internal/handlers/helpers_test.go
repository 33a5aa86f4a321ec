package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shophub/internal/auth"
	"shophub/internal/flash"
	"shophub/internal/models"
	"shophub/internal/pricing"
	"shophub/internal/store"
)

const testSecret = "handlers-test-secret"

var pngImage = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	env    *Env
	mem    *store.Memory
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithRate(t, 1000)
}

func newTestServerWithRate(t *testing.T, perMinute int) *testServer {
	t.Helper()
	mem := store.NewMemory()
	env := &Env{
		Store:       mem,
		Tokens:      auth.NewIssuer(testSecret, auth.DefaultTokenTTL),
		PlatformFee: pricing.DefaultPlatformFee,
		Log:         zap.NewNop(),
	}
	r := NewRouter(env, RouterConfig{TemplatesGlob: "../../templates/*.html", LoginRatePerMinute: perMinute})
	return &testServer{router: r, env: env, mem: mem}
}

func (s *testServer) serve(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		if ck != nil {
			req.AddCookie(ck)
		}
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return s.serve(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (s *testServer) getJSON(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	return s.serve(req, cookies...)
}

func (s *testServer) postJSON(path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return s.serve(req, cookies...)
}

func (s *testServer) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	return s.serve(req, cookies...)
}

type upload struct {
	field    string
	filename string
	data     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (s *testServer) postMultipart(t *testing.T, path string, fields map[string]string, files []upload, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	body, contentType := multipartBody(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return s.serve(req, cookies...)
}

func lastCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			found = ck
		}
	}
	return found
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	ck := lastCookie(rec, auth.CookieName)
	require.NotNil(t, ck, "no session cookie set")
	require.NotEmpty(t, ck.Value)
	return &http.Cookie{Name: ck.Name, Value: ck.Value}
}

func flashMessages(t *testing.T, rec *httptest.ResponseRecorder, kind string) []string {
	t.Helper()
	ck := lastCookie(rec, "flash")
	if ck == nil || ck.Value == "" {
		return nil
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	return flash.Messages(flash.Pop(c), kind)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func registerPayload(email string) gin.H {
	return gin.H{
		"fullName":  "Asha Verma",
		"email":     email,
		"password":  "secret1",
		"location":  "Pune",
		"contactNo": "9876543210",
	}
}

// registerUser signs a shopper up through the API and returns the session cookie.
func (s *testServer) registerUser(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := s.postJSON("/users/register", registerPayload(email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func (s *testServer) createOwner(t *testing.T) *http.Cookie {
	t.Helper()
	rec := s.postJSON("/owners/create", gin.H{
		"fullName": "Store Owner",
		"email":    "owner@example.com",
		"password": "ownerpass",
		"gstNo":    "27AAAPL1234C1ZV",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func (s *testServer) account(t *testing.T, email string) *models.Account {
	t.Helper()
	acc, err := s.mem.FindAccountByEmail(context.Background(), email)
	require.NoError(t, err)
	return acc
}

func (s *testServer) seedProduct(t *testing.T, name, category string, price, discount float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:       name,
		Price:      price,
		Discount:   discount,
		Category:   category,
		BgColor:    "#ffffff",
		TextColor:  "#222222",
		PanelColor: "#f0f0f0",
		Image:      pngImage,
		ImageType:  "image/png",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, s.mem.CreateProduct(context.Background(), p))
	return p
}

func storeUpdatePrice(price float64) store.ProductUpdate {
	return store.ProductUpdate{Price: &price}
}

func newPost(path string) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, nil)
}

func newPostBody(path string, body io.Reader, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return req
}
