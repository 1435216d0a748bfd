package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const geoKeyPrefix = "geo:ip:"

// Negative entries need a marker value because an empty Redis string is
// indistinguishable from one. The marker never leaves this package.
const negativeMarker = "-"

// RedisStore shares the geo cache across instances. TTL handling is
// delegated to Redis key expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed geo cache.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, ip string) (string, bool, error) {
	val, err := s.client.Get(ctx, geoKeyPrefix+ip).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("geo cache get: %w", err)
	}
	if val == negativeMarker {
		return "", true, nil
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, ip, country string, ttl time.Duration) error {
	val := country
	if val == "" {
		val = negativeMarker
	}
	if err := s.client.Set(ctx, geoKeyPrefix+ip, val, ttl).Err(); err != nil {
		return fmt.Errorf("geo cache set: %w", err)
	}
	return nil
}
