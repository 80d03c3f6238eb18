package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"quill/internal/middleware"
	"quill/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSignup(t *testing.T) {
	ta := newTestApp(t, nil, nil)

	form := url.Values{"username": {"newbie"}, "email": {"Newbie@Example.test"}, "password": {testutil.TestPassword}}
	resp := ta.do(t, "POST", "/auth/signup", form, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "newbie", body["user"].(map[string]any)["username"])

	resp = ta.do(t, "POST", "/auth/signup", form, "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = ta.do(t, "POST", "/auth/signup", url.Values{"username": {"new"}, "email": {"x@example.test"}, "password": {"short"}}, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	fields := decodeBody(t, resp)["fields"].(map[string]any)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}

func TestLogin(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	testutil.CreateUser(t, ta.db, "leo")

	t.Run("redirects to a safe next path", func(t *testing.T) {
		form := url.Values{"username": {"leo"}, "password": {testutil.TestPassword}, "next": {"/new"}}
		resp := ta.do(t, "POST", "/auth/login", form, "")
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/new", resp.Header.Get(fiber.HeaderLocation))
		require.NotNil(t, sessionCookie(resp))
	})

	t.Run("next from the query string", func(t *testing.T) {
		form := url.Values{"username": {"leo"}, "password": {testutil.TestPassword}}
		resp := ta.do(t, "POST", "/auth/login?next="+url.QueryEscape("/follow"), form, "")
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/follow", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("ignores an off-site next", func(t *testing.T) {
		form := url.Values{"username": {"leo"}, "password": {testutil.TestPassword}, "next": {"//evil.example"}}
		resp := ta.do(t, "POST", "/auth/login", form, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, decodeBody(t, resp)["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		form := url.Values{"username": {"leo"}, "password": {"nope"}}
		resp := ta.do(t, "POST", "/auth/login", form, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Nil(t, sessionCookie(resp))
	})

	t.Run("session cookie authenticates", func(t *testing.T) {
		form := url.Values{"username": {"leo"}, "password": {testutil.TestPassword}}
		login := ta.do(t, "POST", "/auth/login", form, "")
		cookie := sessionCookie(login)
		require.NotNil(t, cookie)

		req := httptest.NewRequest("GET", "/new", nil)
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
		resp := ta.send(t, req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestLoginForm_DropsUnsafeNext(t *testing.T) {
	ta := newTestApp(t, nil, nil)

	body := decodeBody(t, ta.do(t, "GET", "/auth/login?next=%2Fnew", nil, ""))
	assert.Equal(t, "/new", body["next"])

	body = decodeBody(t, ta.do(t, "GET", "/auth/login?next=https%3A%2F%2Fevil.example", nil, ""))
	assert.Equal(t, "", body["next"])
}

func TestLogout_RevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ta := newTestApp(t, nil, rdb)
	leo := testutil.CreateUser(t, ta.db, "leo")
	token := ta.tokenFor(t, leo)

	resp := ta.do(t, "GET", "/new", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = ta.do(t, "POST", "/auth/logout", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)

	resp = ta.do(t, "GET", "/new", nil, token)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fnew", resp.Header.Get(fiber.HeaderLocation))
}
