package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	metrics "github.com/haythamforever/HonorHub/internal/metrics"
)

// Policy defines a simple fixed-window rate limit.
// Limit requests within Window per derived key.
type Policy struct {
	// Name is a short identifier for the limited endpoint, used for logging/metrics (e.g. "certificates:bulk").
	Name   string
	Window time.Duration
	Limit  int
	// Key builds the bucket key for this request.
	// Example: func(c echo.Context) string { return "bulk:" + c.RealIP() }
	Key func(echo.Context) string
}

// Store abstracts a shared counter store (e.g., Redis) for fixed-window limiting.
type Store interface {
	// Allow increments the counter for the key in the given window and returns whether the request is allowed.
	// If not allowed, retryAfterSec indicates seconds until the window resets.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfterSec int, err error)
}

func (p Policy) withDefaults() Policy {
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	if p.Limit <= 0 {
		p.Limit = 60
	}
	return p
}

func (p Policy) key(c echo.Context) string {
	if p.Key != nil {
		return p.Key(c)
	}
	return "global"
}

// memoryStore is a process-local fixed window. For multi-instance deployments,
// prefer a shared store (e.g., Redis).
type memoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*bucket
}

type bucket struct {
	start time.Time
	count int
}

// NewMemoryStore returns an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{now: time.Now, buckets: make(map[string]*bucket)}
}

func (s *memoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok || now.Sub(b.start) >= window {
		s.buckets[key] = &bucket{start: now, count: 1}
		return true, 0, nil
	}
	if b.count < limit {
		b.count++
		return true, 0, nil
	}
	retry := int((window - now.Sub(b.start) + time.Second - 1) / time.Second)
	return false, retry, nil
}

// Middleware returns an Echo middleware enforcing the provided Policy using an in-memory fixed window.
func Middleware(p Policy) echo.MiddlewareFunc {
	return MiddlewareWithStore(p, NewMemoryStore())
}

// MiddlewareWithStore uses a shared Store (e.g., Redis) for distributed rate limiting.
func MiddlewareWithStore(p Policy, s Store) echo.MiddlewareFunc {
	p = p.withDefaults()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := p.key(c)
			allowed, retryAfter, err := s.Allow(c.Request().Context(), key, p.Limit, p.Window)
			if err != nil {
				// Fail-open on store errors
				c.Logger().Warnf("rate limit store error: endpoint=%s err=%v", p.Name, err)
				return next(c)
			}
			if allowed {
				return next(c)
			}
			src := "ip"
			if strings.Contains(key, ":user:") {
				src = "user"
			}
			metrics.IncRateLimitExceeded(p.Name, src)
			c.Logger().Warnf("rate limit exceeded: endpoint=%s key=%s limit=%d window=%s retry_after=%ds", p.Name, key, p.Limit, p.Window.String(), retryAfter)
			if retryAfter > 0 {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		}
	}
}

// KeyUserOrIP buckets by the authenticated user when the request carries one
// and falls back to the request's real IP. userID should return false for
// anonymous requests. Prefix allows per-endpoint separation.
func KeyUserOrIP(prefix string, userID func(echo.Context) (int64, bool)) func(echo.Context) string {
	return func(c echo.Context) string {
		if userID != nil {
			if id, ok := userID(c); ok {
				return prefix + ":user:" + strconv.FormatInt(id, 10)
			}
		}
		return prefix + ":ip:" + c.RealIP()
	}
}
