//go:build integration

package counter_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"linkdeck/internal/ratelimit/models"
	"linkdeck/internal/ratelimit/store/counter"
	"linkdeck/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *counter.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = counter.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestWindowExhaustion() {
	ctx := context.Background()
	cfg := models.Config{Window: time.Minute, MaxRequests: 3}

	for i := 0; i < 3; i++ {
		res, err := s.store.Allow(ctx, "203.0.113.1", cfg)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(3-i-1, res.Remaining)
	}

	res, err := s.store.Allow(ctx, "203.0.113.1", cfg)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Zero(res.Remaining)
	s.Positive(res.RetryAfter)
}

func (s *RedisStoreSuite) TestWindowExpiry() {
	ctx := context.Background()
	cfg := models.Config{Window: 500 * time.Millisecond, MaxRequests: 1}

	res, err := s.store.Allow(ctx, "203.0.113.1", cfg)
	s.Require().NoError(err)
	s.True(res.Allowed)

	res, err = s.store.Allow(ctx, "203.0.113.1", cfg)
	s.Require().NoError(err)
	s.False(res.Allowed)

	time.Sleep(600 * time.Millisecond)

	res, err = s.store.Allow(ctx, "203.0.113.1", cfg)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *RedisStoreSuite) TestIdentifiersAreIndependent() {
	ctx := context.Background()
	cfg := models.Config{Window: time.Minute, MaxRequests: 1}

	res, err := s.store.Allow(ctx, "203.0.113.1", cfg)
	s.Require().NoError(err)
	s.True(res.Allowed)

	res, err = s.store.Allow(ctx, "203.0.113.2", cfg)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *RedisStoreSuite) TestClearResetsTheWindow() {
	ctx := context.Background()
	cfg := models.Config{Window: time.Minute, MaxRequests: 1}

	_, err := s.store.Allow(ctx, "203.0.113.1", cfg)
	s.Require().NoError(err)
	res, err := s.store.Allow(ctx, "203.0.113.1", cfg)
	s.Require().NoError(err)
	s.False(res.Allowed)

	s.Require().NoError(s.store.Clear(ctx, "203.0.113.1"))

	res, err = s.store.Allow(ctx, "203.0.113.1", cfg)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

// TestConcurrentAllow verifies the INCR path admits exactly MaxRequests
// under contention.
func (s *RedisStoreSuite) TestConcurrentAllow() {
	ctx := context.Background()
	cfg := models.Config{Window: time.Minute, MaxRequests: 50}

	const goroutines = 200
	var wg sync.WaitGroup
	var allowed atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.store.Allow(ctx, "203.0.113.1", cfg)
			if err == nil && res.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(50), allowed.Load())
}
