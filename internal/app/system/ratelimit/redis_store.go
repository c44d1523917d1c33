// internal/app/system/ratelimit/redis_store.go
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps counters in Redis so limits hold across instances. Keys
// carry a TTL equal to their window; Redis expiry does the eviction.
type RedisStore struct {
	c      *redis.Client
	prefix string
}

// NewRedisStore wraps c. prefix namespaces every key (e.g. "nagarseva:rl:").
func NewRedisStore(c *redis.Client, prefix string) *RedisStore {
	return &RedisStore{c: c, prefix: prefix}
}

func (s *RedisStore) Incr(ctx context.Context, key string, d time.Duration) (int64, time.Duration, error) {
	k := s.prefix + key

	pipe := s.c.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	left := ttl.Val()
	// A fresh key (or one that lost its TTL) gets the window now.
	if incr.Val() == 1 || left < 0 {
		if err := s.c.PExpire(ctx, k, d).Err(); err != nil {
			return 0, 0, err
		}
		left = d
	}
	return incr.Val(), left, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	n, err := s.c.Get(ctx, s.prefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.c.Del(ctx, s.prefix+key).Err()
}
