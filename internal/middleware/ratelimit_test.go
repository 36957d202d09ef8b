package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type memCounter struct {
	hits map[string]int64
	err  error
}

func (m *memCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	m.hits[key]++
	return m.hits[key], window, nil
}

func hitLimiter(t *testing.T, rl *RateLimiter, ip string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := rl.Middleware(KeyByIP)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(&memCounter{hits: map[string]int64{}}, "auth", 2, time.Minute, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if rec := hitLimiter(t, rl, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d", i, rec.Code)
		}
	}
	rec := hitLimiter(t, rl, "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: code = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}

	// Other clients have their own window.
	if rec := hitLimiter(t, rl, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("other ip: code = %d", rec.Code)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl := NewRateLimiter(&memCounter{err: errors.New("connection refused")}, "auth", 1, time.Minute, zerolog.Nop())
	for i := 0; i < 3; i++ {
		if rec := hitLimiter(t, rl, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d", i, rec.Code)
		}
	}

	disabled := NewRateLimiter(nil, "auth", 1, time.Minute, zerolog.Nop())
	for i := 0; i < 3; i++ {
		if rec := hitLimiter(t, disabled, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("disabled %d: code = %d", i, rec.Code)
		}
	}
}
