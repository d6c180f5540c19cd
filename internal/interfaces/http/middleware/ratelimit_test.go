package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marvelstore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func newManualLimiter(t *testing.T, limit int, every time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	limiter := NewRateLimiter(limit, every)
	t.Cleanup(limiter.Stop)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	return limiter, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("counts down within the window", func(t *testing.T) {
		limiter, _ := newManualLimiter(t, 3, time.Minute)

		for want := 2; want >= 0; want-- {
			ok, remaining := limiter.Allow("1.2.3.4")
			assert.True(t, ok)
			assert.Equal(t, want, remaining)
		}
		ok, remaining := limiter.Allow("1.2.3.4")
		assert.False(t, ok)
		assert.Zero(t, remaining)
	})

	t.Run("clients are independent", func(t *testing.T) {
		limiter, _ := newManualLimiter(t, 1, time.Minute)

		ok, _ := limiter.Allow("a")
		assert.True(t, ok)
		ok, _ = limiter.Allow("a")
		assert.False(t, ok)
		ok, _ = limiter.Allow("b")
		assert.True(t, ok)
	})

	t.Run("a new window resets the budget", func(t *testing.T) {
		limiter, now := newManualLimiter(t, 1, time.Minute)

		ok, _ := limiter.Allow("a")
		assert.True(t, ok)
		ok, _ = limiter.Allow("a")
		assert.False(t, ok)
		assert.Equal(t, 61, limiter.retryAfter("a"))

		*now = now.Add(time.Minute)
		ok, _ = limiter.Allow("a")
		assert.True(t, ok)
	})

	t.Run("concurrent access never exceeds the limit", func(t *testing.T) {
		limiter, _ := newManualLimiter(t, 50, time.Minute)

		var allowed atomic.Int32
		var wg sync.WaitGroup
		for range 120 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := limiter.Allow("c"); ok {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(50), allowed.Load())
	})
}

func TestRateLimit_Middleware(t *testing.T) {
	limiter, _ := newManualLimiter(t, 2, time.Minute)
	r := newTestEngine(RequestID(), RateLimit(limiter))

	for i := range 2 {
		w := perform(r, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := perform(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	body := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeRateLimited, body.Code)
	assert.NotEmpty(t, body.RequestID)
}
