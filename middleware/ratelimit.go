package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"reminder-board/cache"
)

// RateLimiter is a fixed window counter per client address kept in Redis.
// The counter is only ever INCRed, and any counter found without an expiry is
// given one, so a window can never outlive Window.
type RateLimiter struct {
	RedisClient cache.RedisClientInterface
	Limit       int
	Window      time.Duration
}

func NewRateLimiter(redisClient cache.RedisClientInterface, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		RedisClient: redisClient,
		Limit:       limit,
		Window:      window,
	}
}

// ClientKey is the Redis counter key for the caller of r.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "rate_limit:" + host
}

// take counts one request and returns the count in the current window and
// the time left in it.
func (rl *RateLimiter) take(ctx context.Context, key string) (int64, time.Duration, error) {
	count, err := rl.RedisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := rl.RedisClient.Expire(ctx, key, rl.Window).Err(); err != nil {
			return 0, 0, err
		}
		return count, rl.Window, nil
	}
	ttl, err := rl.RedisClient.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// No expiry (-1) or already gone (-2): start the window over.
		if err := rl.RedisClient.Expire(ctx, key, rl.Window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = rl.Window
	}
	return count, ttl, nil
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		count, ttl, err := rl.take(req.Context(), ClientKey(req))
		if err != nil {
			http.Error(w, "Rate limit error", http.StatusInternalServerError)
			return
		}

		remaining := int64(rl.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-Rate-Limit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-Rate-Limit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > int64(rl.Limit) {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}
