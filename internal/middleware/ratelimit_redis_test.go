package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/gamehub/station-server-go/internal/model"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisRateLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("allows requests under limit", func(t *testing.T) {
		limiter := NewRedisRateLimiter(newTestRedis(t))

		for i := 0; i < 5; i++ {
			allowed, remaining, _ := limiter.Check(ctx, "ratelimit:user-1", 10)
			assert.True(t, allowed)
			assert.Equal(t, 10-i-1, remaining)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		limiter := NewRedisRateLimiter(newTestRedis(t))

		for i := 0; i < 5; i++ {
			limiter.Check(ctx, "ratelimit:user-2", 5)
		}

		allowed, remaining, resetAt := limiter.Check(ctx, "ratelimit:user-2", 5)
		assert.False(t, allowed)
		assert.Equal(t, 0, remaining)
		assert.Greater(t, resetAt, int64(0))
	})

	t.Run("tracks keys separately", func(t *testing.T) {
		limiter := NewRedisRateLimiter(newTestRedis(t))

		for i := 0; i < 5; i++ {
			limiter.Check(ctx, "ratelimit:user-a", 5)
		}

		allowed, _, _ := limiter.Check(ctx, "ratelimit:user-b", 5)
		assert.True(t, allowed)
	})

	t.Run("fails open when redis is unreachable", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		defer client.Close()

		allowed, _, _ := NewRedisRateLimiter(client).Check(ctx, "ratelimit:user-c", 1)
		assert.True(t, allowed)
	})
}

func TestRedisRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("passes anonymous requests through", func(t *testing.T) {
		handler := NewRedisRateLimitMiddleware(newTestRedis(t), 1).Handler(ok)

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("returns 429 once the user exceeds the limit", func(t *testing.T) {
		handler := NewRedisRateLimitMiddleware(newTestRedis(t), 2).Handler(ok)
		newReq := func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			return req.WithContext(WithActor(req.Context(), model.Actor{UserID: "user-1", Role: model.RolePlayer}))
		}

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newReq())
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newReq())
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
	})
}

func TestLoginLimitMiddleware(t *testing.T) {
	handler := NewLoginLimitMiddleware(newTestRedis(t)).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < loginMaxAttempts; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	other := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	other.RemoteAddr = "198.51.100.9:4000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.1", clientIP(req))
}
