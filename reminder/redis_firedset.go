package reminder

import (
	"context"
	"time"

	"reminder-board/cache"
	"reminder-board/component"
)

const firedKeyTTL = 48 * time.Hour

// RedisFiredSet shares the fired set between pollers through a Redis set per day.
type RedisFiredSet struct {
	Client cache.RedisClientInterface
	Prefix string
	clock  Clock
}

func NewRedisFiredSet(client cache.RedisClientInterface, clock Clock) *RedisFiredSet {
	if clock == nil {
		clock = SystemClock
	}
	return &RedisFiredSet{Client: client, Prefix: "reminder:fired:", clock: clock}
}

func (s *RedisFiredSet) CurrentDayKey() string {
	return component.DayKey(s.clock.Now())
}

func (s *RedisFiredSet) setKey(day string) string {
	return s.Prefix + day
}

func (s *RedisFiredSet) HasFired(key AlertKey) (bool, error) {
	ctx := context.Background()
	return s.Client.SIsMember(ctx, s.setKey(key.Day), key.String()).Result()
}

func (s *RedisFiredSet) MarkFired(key AlertKey) error {
	ctx := context.Background()
	setKey := s.setKey(key.Day)
	if err := s.Client.SAdd(ctx, setKey, key.String()).Err(); err != nil {
		return err
	}
	return s.Client.Expire(ctx, setKey, firedKeyTTL).Err()
}
