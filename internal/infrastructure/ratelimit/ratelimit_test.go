package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticker-cache-service/internal/application/dto"
	"ticker-cache-service/internal/infrastructure/config"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestTokenBucket_ConsumesAndRefills(t *testing.T) {
	clock := newClock()
	tb := newTokenBucket(3, 2, clock.Now)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
	assert.Equal(t, 500*time.Millisecond, tb.RetryAfter())

	// medio segundo recarga un token
	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, tb.Tokens())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	clock.Advance(time.Hour)
	assert.Equal(t, 3, tb.Tokens(), "refill is capped at capacity")
	assert.Equal(t, time.Duration(0), tb.RetryAfter())
}

func TestTokenBucket_AllowN(t *testing.T) {
	tb := newTokenBucket(5, 1, newClock().Now)

	assert.False(t, tb.AllowN(6))
	assert.True(t, tb.AllowN(5))
	assert.Equal(t, 0, tb.Tokens())
}

func TestRateLimiterCollection_PerClientBuckets(t *testing.T) {
	clock := newClock()
	rlc := newRateLimiterCollection(1, 1, clock.Now)

	assert.True(t, rlc.Allow("10.0.0.1"))
	assert.False(t, rlc.Allow("10.0.0.1"))
	assert.True(t, rlc.Allow("10.0.0.2"))
	assert.Equal(t, 2, rlc.Clients())
}

func TestRateLimiterCollection_CleansIdleBuckets(t *testing.T) {
	clock := newClock()
	rlc := newRateLimiterCollection(1, 1, clock.Now)

	rlc.Allow("idle")
	clock.Advance(time.Hour)
	rlc.Allow("fresh")

	assert.Equal(t, 1, rlc.Clients())
}

func TestRateLimitMiddleware_Handler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Deshabilitado - deja pasar todo", func(t *testing.T) {
		h := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: false}).Handler(next)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("Excedido - 429 con Retry-After", func(t *testing.T) {
		h := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 2, RefillRate: 1}).Handler(next)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", body.Error)
	})

	t.Run("Probes - nunca limitados", func(t *testing.T) {
		h := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillRate: 1}).Handler(next)
		for _, path := range []string{"/health", "/ready", "/metrics", "/health"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})

	t.Run("Clientes - separados por X-Forwarded-For", func(t *testing.T) {
		h := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillRate: 1}).Handler(next)
		for _, ip := range []string{"1.1.1.1", "2.2.2.2, 10.0.0.1"} {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil)
			req.Header.Set("X-Forwarded-For", ip)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, ip)
		}
	})
}

func TestGetClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4321"
	assert.Equal(t, "192.168.1.5", getClientID(req))

	req.Header.Set("X-Real-IP", "10.1.1.1")
	assert.Equal(t, "10.1.1.1", getClientID(req))

	req.Header.Set("X-Forwarded-For", " 8.8.8.8 , 10.0.0.1")
	assert.Equal(t, "8.8.8.8", getClientID(req))
}
