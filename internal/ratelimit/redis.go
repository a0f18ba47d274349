// internal/ratelimit/redis.go
package ratelimit

import (
	"context"
	"time"

	"blood-sea-api/internal/common/database"
)

// RedisCounterStore keeps fixed-window counters in Redis so limits hold
// across multiple API instances.
type RedisCounterStore struct {
	client *database.RedisClient
	prefix string
}

func NewRedisCounterStore(client *database.RedisClient) *RedisCounterStore {
	return &RedisCounterStore{
		client: client,
		prefix: "ratelimit:",
	}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := s.prefix + key

	count, err := s.client.IncrWindow(ctx, fullKey, window)
	if err != nil {
		return 0, 0, err
	}

	ttl, err := s.client.WindowTTL(ctx, fullKey)
	if err != nil {
		// Counter landed but the TTL read failed: report the full window
		// rather than erroring the whole check.
		return count, window, nil
	}
	return count, ttl, nil
}
