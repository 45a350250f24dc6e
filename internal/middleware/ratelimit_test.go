package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/finovai/finovai-backend/internal/config"
	"github.com/finovai/finovai-backend/internal/model"
)

func rateKeyContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	req.RemoteAddr = "203.0.113.9:54321"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/conversations")
	return c
}

func TestBuildRateKeyDefaultsToIPAndRoute(t *testing.T) {
	c := rateKeyContext(t)
	cfg := config.LoadRateLimitConfig()

	// Mounted on /api the limiter sees no resolved user, so the default
	// strategy keys on address and route only.
	key := buildRateKey(cfg, c)
	assert.Equal(t, "rl:ip:203.0.113.9:route:GET /api/conversations", key)
	assert.NotContains(t, key, "anon")
}

func TestBuildRateKeyUserStrategyIsAnonWithoutSession(t *testing.T) {
	c := rateKeyContext(t)
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}

	// Without SessionAuth upstream every caller shares the anon bucket.
	key := buildRateKey(cfg, c)
	assert.Equal(t, "rl:user:anon:route:GET /api/conversations", key)
}

func TestBuildRateKeyUserStrategyBehindSession(t *testing.T) {
	c := rateKeyContext(t)
	c.Set(userContextKey, model.User{ID: 42, Phone: "+56911111111"})
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}

	key := buildRateKey(cfg, c)
	assert.Equal(t, "rl:user:42:route:GET /api/conversations", key)
}
