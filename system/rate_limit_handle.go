package system

import (
	"encoding/json"
	"errors"
	"net/http"

	"reminder-board/cache"
	"reminder-board/middleware"

	"github.com/go-redis/redis/v8"
)

type RateLimitStatus struct {
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"` // seconds until reset
}

// RateLimitStatusHandler reports the caller's remaining budget on the
// mutating routes without spending any of it.
func RateLimitStatusHandler(redisClient cache.RedisClientInterface, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := middleware.ClientKey(r)

		used, err := redisClient.Get(ctx, key).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			http.Error(w, "Failed to read rate limit", http.StatusInternalServerError)
			return
		}

		ttl, err := redisClient.TTL(ctx, key).Result()
		if err != nil {
			http.Error(w, "Failed to read TTL", http.StatusInternalServerError)
			return
		}

		remaining := limit - used
		if remaining < 0 {
			remaining = 0
		}
		reset := int64(ttl.Seconds())
		if reset < 0 {
			reset = 0
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(RateLimitStatus{
			Remaining: remaining,
			Reset:     reset,
		})
	}
}
