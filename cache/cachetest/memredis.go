// Package cachetest provides an in-memory stand-in for the Redis commands in
// cache.RedisClientInterface, for tests that need real key state and expiry.
package cachetest

import (
	"context"
	"strconv"
	"sync"
	"time"

	"reminder-board/cache"

	"github.com/go-redis/redis/v8"
)

var _ cache.RedisClientInterface = (*MemRedis)(nil)

type entry struct {
	str      string
	set      map[string]struct{}
	expireAt time.Time
}

// MemRedis keeps keys in a map. Expiry is checked lazily against Now.
// After, when set, runs once a command has finished, with the command name
// and key, so a test can change state between two commands of one caller.
type MemRedis struct {
	Now   func() time.Time
	After func(cmd, key string)

	mu   sync.Mutex
	data map[string]*entry
}

func New() *MemRedis {
	return &MemRedis{Now: time.Now, data: map[string]*entry{}}
}

// Drop removes key as if it had expired.
func (m *MemRedis) Drop(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// Seed stores a string value; ttl 0 means no expiry.
func (m *MemRedis) Seed(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &entry{str: value}
	if ttl > 0 {
		e.expireAt = m.Now().Add(ttl)
	}
	m.data[key] = e
}

// Value returns the string at key and whether it has an expiry.
func (m *MemRedis) Value(key string) (string, bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return "", false, false
	}
	return e.str, !e.expireAt.IsZero(), true
}

func (m *MemRedis) live(key string) *entry {
	e, ok := m.data[key]
	if !ok {
		return nil
	}
	if !e.expireAt.IsZero() && !m.Now().Before(e.expireAt) {
		delete(m.data, key)
		return nil
	}
	return e
}

func (m *MemRedis) done(cmd, key string) {
	if m.After != nil {
		m.After(cmd, key)
	}
}

func (m *MemRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	var n int64
	for _, k := range keys {
		if m.live(k) != nil {
			delete(m.data, k)
			n++
		}
	}
	m.mu.Unlock()
	for _, k := range keys {
		m.done("del", k)
	}
	return redis.NewIntResult(n, nil)
}

func (m *MemRedis) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	e := m.live(key)
	m.mu.Unlock()
	defer m.done("get", key)
	if e == nil {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(e.str, nil)
}

func (m *MemRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	e := &entry{str: toString(value)}
	if expiration > 0 {
		e.expireAt = m.Now().Add(expiration)
	}
	m.data[key] = e
	m.mu.Unlock()
	m.done("set", key)
	return redis.NewStatusResult("OK", nil)
}

func (m *MemRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	e := m.live(key)
	if e == nil {
		e = &entry{str: "0"}
		m.data[key] = e
	}
	n, err := strconv.ParseInt(e.str, 10, 64)
	if err == nil {
		n++
		e.str = strconv.FormatInt(n, 10)
	}
	m.mu.Unlock()
	m.done("incr", key)
	return redis.NewIntResult(n, err)
}

func (m *MemRedis) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	e := m.live(key)
	if e != nil {
		e.expireAt = m.Now().Add(expiration)
	}
	m.mu.Unlock()
	m.done("expire", key)
	return redis.NewBoolResult(e != nil, nil)
}

// TTL follows Redis: -2s for a missing key, -1s for a key without expiry.
func (m *MemRedis) TTL(_ context.Context, key string) *redis.DurationCmd {
	m.mu.Lock()
	e := m.live(key)
	var ttl time.Duration
	switch {
	case e == nil:
		ttl = -2 * time.Second
	case e.expireAt.IsZero():
		ttl = -1 * time.Second
	default:
		ttl = e.expireAt.Sub(m.Now()).Round(time.Second)
	}
	m.mu.Unlock()
	m.done("ttl", key)
	return redis.NewDurationResult(ttl, nil)
}

func (m *MemRedis) SAdd(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	m.mu.Lock()
	e := m.live(key)
	if e == nil {
		e = &entry{set: map[string]struct{}{}}
		m.data[key] = e
	}
	var n int64
	for _, v := range members {
		s := toString(v)
		if _, ok := e.set[s]; !ok {
			e.set[s] = struct{}{}
			n++
		}
	}
	m.mu.Unlock()
	m.done("sadd", key)
	return redis.NewIntResult(n, nil)
}

func (m *MemRedis) SIsMember(_ context.Context, key string, member interface{}) *redis.BoolCmd {
	m.mu.Lock()
	e := m.live(key)
	ok := false
	if e != nil {
		_, ok = e.set[toString(member)]
	}
	m.mu.Unlock()
	m.done("sismember", key)
	return redis.NewBoolResult(ok, nil)
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case []byte:
		return string(x)
	default:
		return ""
	}
}
