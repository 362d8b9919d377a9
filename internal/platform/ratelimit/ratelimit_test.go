package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func TestMiddleware_BlocksAfterLimit(t *testing.T) {
	e := echo.New()
	e.POST("/x", ok, Middleware(Policy{Name: "test", Window: time.Minute, Limit: 2}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{204, 204, 429}, codes)
}

func TestMemoryStore_WindowResets(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &memoryStore{now: func() time.Time { return now }, buckets: map[string]*bucket{}}

	allowed, _, _ := s.Allow(context.Background(), "k", 1, time.Minute)
	assert.True(t, allowed)
	allowed, retry, _ := s.Allow(context.Background(), "k", 1, time.Minute)
	assert.False(t, allowed)
	assert.Equal(t, 60, retry)

	now = now.Add(time.Minute)
	allowed, _, _ = s.Allow(context.Background(), "k", 1, time.Minute)
	assert.True(t, allowed)
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (bool, int, error) {
	return false, 0, errors.New("down")
}

func TestMiddlewareWithStore_FailsOpen(t *testing.T) {
	e := echo.New()
	e.POST("/x", ok, MiddlewareWithStore(Policy{Name: "test", Limit: 1}, failingStore{}))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestKeyUserOrIP(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())

	anon := KeyUserOrIP("bulk", func(echo.Context) (int64, bool) { return 0, false })
	require.Equal(t, "bulk:ip:10.0.0.9", anon(c))

	user := KeyUserOrIP("bulk", func(echo.Context) (int64, bool) { return 42, true })
	assert.Equal(t, "bulk:user:42", user(c))
}
