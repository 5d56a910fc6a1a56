package storage

import (
	"context"
	"encoding/json"
	"errors"

	"reminder-board/cache"
	"reminder-board/entity"

	"go.uber.org/zap"
)

const (
	listKeyPrefix = "tasks:list:"
	listGenKey    = "tasks:list:gen"
	noGen         = ""
	firstGen      = "0"
)

// CachedStore keeps the task list in Redis under a key that carries the list
// generation. Writes bump the generation, so a list read that raced a write
// can only fill a key nobody reads any more. Cache trouble is logged and
// never fails a request.
type CachedStore struct {
	Inner  TaskStore
	Cache  *cache.Cache
	Logger *zap.Logger
}

func NewCachedStore(inner TaskStore, c *cache.Cache, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{Inner: inner, Cache: c, Logger: logger}
}

func (s *CachedStore) Create(ctx context.Context, text, timeOfDay string) (int64, error) {
	id, err := s.Inner.Create(ctx, text, timeOfDay)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return id, nil
}

func (s *CachedStore) ListAll(ctx context.Context) ([]entity.Task, error) {
	gen := s.generation(ctx)
	if gen != noGen {
		cached, err := s.Cache.Get(ctx, listKeyPrefix+gen)
		if err == nil {
			var tasks []entity.Task
			if jsonErr := json.Unmarshal([]byte(cached), &tasks); jsonErr == nil && tasks != nil {
				return tasks, nil
			}
			s.Logger.Warn("discarding unreadable task list cache")
		} else if !errors.Is(err, cache.ErrMiss) {
			s.Logger.Warn("task list cache read failed", zap.Error(err))
		}
	}

	tasks, err := s.Inner.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if gen == noGen {
		return tasks, nil
	}
	if payload, err := json.Marshal(tasks); err == nil {
		if err := s.Cache.Set(ctx, listKeyPrefix+gen, string(payload)); err != nil {
			s.Logger.Warn("task list cache write failed", zap.Error(err))
		}
	}
	return tasks, nil
}

// generation reads the current list generation; noGen bypasses the cache.
func (s *CachedStore) generation(ctx context.Context) string {
	gen, err := s.Cache.Get(ctx, listGenKey)
	switch {
	case err == nil:
		return gen
	case errors.Is(err, cache.ErrMiss):
		return firstGen
	default:
		s.Logger.Warn("task list generation read failed", zap.Error(err))
		return noGen
	}
}

func (s *CachedStore) Delete(ctx context.Context, id int64) error {
	if err := s.Inner.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context) {
	if _, err := s.Cache.Incr(ctx, listGenKey); err != nil {
		s.Logger.Warn("task list cache invalidation failed", zap.Error(err))
	}
}
