package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"quill/internal/config"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-key-that-is-long-enough-123"

type testApp struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	cfg    *config.Config
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWTSecret:           testJWTSecret,
		Port:                "0",
		Env:                 "test",
		LoginURL:            "/auth/login",
		PerPage:             10,
		PageCacheTTLSeconds: 20,
		MediaRoot:           t.TempDir(),
		MediaMaxUploadMB:    1,
	}
}

func newTestApp(t *testing.T, cfg *config.Config, rdb *redis.Client) *testApp {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}
	db := testutil.NewSQLiteDB(t)

	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return &testApp{server: s, app: s.App(), db: db, cfg: cfg}
}

func (ta *testApp) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := middleware.IssueToken(ta.cfg.JWTSecret, user.ID, user.Username, time.Now())
	require.NoError(t, err)
	return token
}

// do sends a request, form-encoding body when present.
func (ta *testApp) do(t *testing.T, method, target string, form url.Values, token string) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return ta.send(t, req)
}

func (ta *testApp) send(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := ta.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func pageItems(t *testing.T, body map[string]any) []any {
	t.Helper()
	page, ok := body["page"].(map[string]any)
	require.True(t, ok, "page missing from %v", body)
	items, ok := page["items"].([]any)
	require.True(t, ok)
	return items
}

func itemTexts(t *testing.T, body map[string]any) []string {
	t.Helper()
	var texts []string
	for _, item := range pageItems(t, body) {
		texts = append(texts, item.(map[string]any)["text"].(string))
	}
	return texts
}

func formErrors(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	form, ok := body["form"].(map[string]any)
	require.True(t, ok, "form missing from %v", body)
	errs, _ := form["errors"].(map[string]any)
	return errs
}
