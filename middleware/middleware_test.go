package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharma-supply/apperror"
	"pharma-supply/models/user"
	"pharma-supply/types"
)

type stubAuth struct{ users map[string]*user.User }

func (s stubAuth) Authenticate(_ context.Context, token string) (*user.User, error) {
	u, ok := s.users[token]
	if !ok {
		return nil, apperror.Unauthorized("Token expired or invalid")
	}
	return u, nil
}

type memorySink struct {
	mu      sync.Mutex
	entries []types.LogEntry
}

func (m *memorySink) Log(entry types.LogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

func TestRequireAuthentication(t *testing.T) {
	auth := stubAuth{users: map[string]*user.User{"good": {ID: "u-1", Phone: "0912345678"}}}
	app := fiber.New()
	app.Get("/me", RequireAuthentication(auth, true), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Phone)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "0912345678", string(body))

	rejected := map[string]string{
		"":           "Not authenticated",
		"Bearer bad": "Token expired or invalid",
		"Token good": "Invalid authorization header format",
	}
	for header, detail := range rejected {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, header)

		var e types.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
		assert.Equal(t, detail, e.Detail, header)
	}
}

func TestRequestLogRedactsSecrets(t *testing.T) {
	sink := &memorySink{}
	app := fiber.New()
	app.Use(RequestLog(sink))
	app.Post("/api/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"access_token": "jwt-value", "token_type": "bearer"})
	})

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"phone":"0912345678","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Equal(t, "POST", entry.Method)
	assert.Equal(t, "/api/login", entry.URL)
	assert.Equal(t, fiber.StatusOK, entry.StatusCode)
	assert.Contains(t, entry.RequestBody, "0912345678")
	assert.NotContains(t, entry.RequestBody, "hunter2")
	assert.NotContains(t, entry.ResponseBody, "jwt-value")
	assert.Contains(t, entry.ResponseBody, "bearer")
	assert.Empty(t, entry.UserID)
	assert.GreaterOrEqual(t, entry.LatencyMS, int64(0))
}

func TestRequestLogRecordsUser(t *testing.T) {
	sink := &memorySink{}
	auth := stubAuth{users: map[string]*user.User{"good": {ID: "u-1", Phone: "0912345678"}}}
	app := fiber.New()
	app.Use(RequestLog(sink))
	app.Get("/drugs", RequireAuthentication(auth, true), func(c *fiber.Ctx) error {
		return c.JSON([]string{})
	})

	req := httptest.NewRequest("GET", "/drugs", nil)
	req.Header.Set("Authorization", "Bearer good")
	_, err := app.Test(req)
	require.NoError(t, err)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, "u-1", sink.entries[0].UserID)
	assert.NotContains(t, sink.entries[0].RequestHeaders, "Bearer good")
}

func TestRequestLogSkipsMetrics(t *testing.T) {
	sink := &memorySink{}
	app := fiber.New()
	app.Use(RequestLog(sink))
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendString("ok") })

	_, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Empty(t, sink.entries)
}
