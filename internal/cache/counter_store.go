// Package cache implements the two Redis-backed stores (CounterStore,
// TagCache) and the process-local TagSnapshot used for prefix lookup.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/kheina-com/tagsvc/internal/db/rdb"
	"github.com/kheina-com/tagsvc/pkg/logger"
	"go.uber.org/zap"
)

// ErrCounterRetriesExhausted is returned when a counter delta could not be
// applied after maxRetries attempts due to transient K/V errors.
var ErrCounterRetriesExhausted = errors.New("counter store: retries exhausted")

// PublicCountLookup runs the populate-on-miss query: the count of public
// posts currently bearing the named tag.
type PublicCountLookup func(ctx context.Context, tag string) (int64, error)

// CounterStore is the per-tag public-use counter: atomic ±1,
// populate-on-miss, unbounded TTL.
type CounterStore interface {
	Get(ctx context.Context, tag string) (int64, error)
	Increment(ctx context.Context, tag string) error
	Decrement(ctx context.Context, tag string) error
}

// RedisCounterStore is the go-redis backed CounterStore implementation.
type RedisCounterStore struct {
	client     redis.Cmdable
	populate   PublicCountLookup
	maxRetries int
}

func NewRedisCounterStore(client redis.Cmdable, populate PublicCountLookup, maxRetries int) *RedisCounterStore {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RedisCounterStore{client: client, populate: populate, maxRetries: maxRetries}
}

func counterKey(tag string) string {
	return rdb.AddPrefix("counter:" + tag)
}

func (s *RedisCounterStore) Get(ctx context.Context, tag string) (int64, error) {
	key := counterKey(tag)
	val, err := s.client.Get(ctx, key).Result()
	if err == nil {
		n, convErr := strconv.ParseInt(val, 10, 64)
		if convErr == nil {
			return n, nil
		}
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("counter store get: %w", err)
	}

	count, err := s.populate(ctx, tag)
	if err != nil {
		return 0, fmt.Errorf("counter store populate: %w", err)
	}
	if setErr := s.client.Set(ctx, key, count, 0).Err(); setErr != nil {
		logger.Log.Warn("counter store: failed to persist populated count", zap.String("tag", tag), zap.Error(setErr))
	}
	return count, nil
}

func (s *RedisCounterStore) Increment(ctx context.Context, tag string) error {
	return s.delta(ctx, tag, 1)
}

func (s *RedisCounterStore) Decrement(ctx context.Context, tag string) error {
	return s.delta(ctx, tag, -1)
}

// delta populates on miss, then applies the atomic add with up to
// maxRetries attempts to survive transient connection errors. INCRBY/DECRBY
// are already atomic per key, so retries exist for availability, not to
// avoid lost updates.
func (s *RedisCounterStore) delta(ctx context.Context, tag string, by int64) error {
	if _, err := s.Get(ctx, tag); err != nil {
		return err
	}

	key := counterKey(tag)
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var err error
		if by >= 0 {
			err = s.client.IncrBy(ctx, key, by).Err()
		} else {
			err = s.client.DecrBy(ctx, key, -by).Err()
		}
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Log.Warn("counter store: delta attempt failed", zap.String("tag", tag), zap.Int("attempt", attempt), zap.Error(err))
	}

	return fmt.Errorf("%w: %v", ErrCounterRetriesExhausted, lastErr)
}
