package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adilyam/show-reservation/internal/config"
)

func invokeLimiter(t *testing.T, mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/book", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

// With the limiter disabled requests reach the handler untouched.
func TestTokenBucket_DisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)

	rec := invokeLimiter(t, mw)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from the handler, got %d", rec.Code)
	}
	if h := rec.Header().Get("X-RateLimit-Limit"); h != "" {
		t.Errorf("disabled limiter set X-RateLimit-Limit=%q", h)
	}
}

// Without a Redis client the limiter degrades to a no-op instead of
// failing bookings.
func TestTokenBucket_NoRedisPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	mw := NewTokenBucket(cfg, nil)

	// Capacity 1 would throttle a second request if the bucket were live.
	for i := 0; i < 3; i++ {
		rec := invokeLimiter(t, mw)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204 from the handler, got %d", i, rec.Code)
		}
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()

	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/api/book", nil)
		req.RemoteAddr = "203.0.113.7:4242"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/book")
		return c
	}

	cases := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:203.0.113.7"},
		{"route", "rl:route:POST /api/book"},
		{"ip_route", "rl:ip:203.0.113.7:route:POST /api/book"},
		{"bogus", "rl:ip:203.0.113.7:route:POST /api/book"},
	}
	for _, tc := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tc.strategy}
		if got := buildRateKey(cfg, newCtx()); got != tc.want {
			t.Errorf("strategy %q: got %q, want %q", tc.strategy, got, tc.want)
		}
	}
}
