package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClientInterface is the subset of *redis.Client used by the app.
// redismock's client satisfies it in tests.
type RedisClientInterface interface {
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SIsMember(ctx context.Context, key string, member interface{}) *redis.BoolCmd
}

var ErrMiss = errors.New("cache miss")

func InitRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Cache is a small string cache. A nil *Cache or nil client behaves as an
// always-missing cache.
type Cache struct {
	Client RedisClientInterface
	TTL    time.Duration
}

func New(client RedisClientInterface, ttl time.Duration) *Cache {
	return &Cache{Client: client, TTL: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.Client != nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if !c.enabled() {
		return "", ErrMiss
	}
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

func (c *Cache) Set(ctx context.Context, key string, value string) error {
	if !c.enabled() {
		return nil
	}
	return c.Client.Set(ctx, key, value, c.TTL).Err()
}

// Incr bumps a counter. A disabled cache reports 0.
func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	return c.Client.Incr(ctx, key).Result()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.enabled() {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}
