package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"linkdeck/internal/ratelimit/models"
)

const counterKeyPrefix = "rl:window:"

// RedisStore is the shared-state variant of the fixed-window counter, for
// deployments running more than one instance. The window lives in the key's
// TTL: INCR creates the key, PEXPIRE NX starts the window exactly once.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed counter store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, identifier string, cfg models.Config) (*models.Result, error) {
	key := counterKeyPrefix + identifier

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.PExpireNX(ctx, key, cfg.Window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit incr: %w", err)
	}

	count := int(incr.Val())
	resetAt := time.Now().Add(ttl.Val())

	if count > cfg.MaxRequests {
		return &models.Result{
			Allowed:    false,
			Remaining:  0,
			Limit:      cfg.MaxRequests,
			ResetAt:    resetAt,
			RetryAfter: int(ttl.Val().Seconds()) + 1,
		}, nil
	}

	return &models.Result{
		Allowed:   true,
		Remaining: cfg.MaxRequests - count,
		Limit:     cfg.MaxRequests,
		ResetAt:   resetAt,
	}, nil
}

func (s *RedisStore) Clear(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, counterKeyPrefix+identifier).Err(); err != nil {
		return fmt.Errorf("rate limit clear: %w", err)
	}
	return nil
}
