package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestActor(t *testing.T) {
	revokedID := ""
	app := fiber.New()
	app.Use(Actor(testSecret,
		func(_ context.Context, jti string) bool { return jti == revokedID },
		func(_ context.Context, userID uint) bool { return userID != 404 },
	))
	app.Get("/test", func(c *fiber.Ctx) error {
		id, ok := CurrentUserID(c)
		return c.JSON(fiber.Map{"userID": id, "authenticated": ok})
	})

	valid, _, err := IssueToken(testSecret, 123, "leo", time.Now())
	require.NoError(t, err)
	expired, _, err := IssueToken(testSecret, 123, "leo", time.Now().Add(-2*TokenTTL))
	require.NoError(t, err)
	foreign, _, err := IssueToken("another-secret-key-12345678901234567890", 123, "leo", time.Now())
	require.NoError(t, err)
	revoked, revokedClaims, err := IssueToken(testSecret, 7, "mia", time.Now())
	require.NoError(t, err)
	revokedID = revokedClaims.ID
	deleted, _, err := IssueToken(testSecret, 404, "gone", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		cookie         string
		expectedUserID uint
	}{
		{name: "bearer token", authHeader: "Bearer " + valid, expectedUserID: 123},
		{name: "session cookie", cookie: valid, expectedUserID: 123},
		{name: "anonymous"},
		{name: "basic scheme", authHeader: "Basic dXNlcjpwYXNz"},
		{name: "malformed token", authHeader: "Bearer malformed.token.here"},
		{name: "expired token", authHeader: "Bearer " + expired},
		{name: "wrong signing key", authHeader: "Bearer " + foreign},
		{name: "revoked token", authHeader: "Bearer " + revoked},
		{name: "deleted account", authHeader: "Bearer " + deleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body struct {
				UserID        uint `json:"userID"`
				Authenticated bool `json:"authenticated"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedUserID, body.UserID)
			assert.Equal(t, tt.expectedUserID != 0, body.Authenticated)
		})
	}
}

func TestLoginRequired(t *testing.T) {
	app := fiber.New()
	app.Use(Actor(testSecret, nil, nil))
	app.Get("/new", LoginRequired("/auth/login"), func(c *fiber.Ctx) error {
		return c.SendString("form")
	})

	req := httptest.NewRequest(http.MethodGet, "/new?draft=1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fnew%3Fdraft%3D1", resp.Header.Get("Location"))

	token, _, err := IssueToken(testSecret, 1, "leo", time.Now())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/new", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIssueToken_RequiresSecret(t *testing.T) {
	_, _, err := IssueToken("", 1, "leo", time.Now())
	assert.Error(t, err)
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		ok   bool
	}{
		{"/leo/3", true},
		{"/follow?page=2", true},
		{"", false},
		{"leo/3", false},
		{"//evil.example", false},
		{"https://evil.example/", false},
		{`/\evil.example`, false},
	}
	for _, tt := range tests {
		got, ok := SafeNext(tt.next)
		assert.Equal(t, tt.ok, ok, tt.next)
		if tt.ok {
			assert.Equal(t, tt.next, got)
		}
	}
}
