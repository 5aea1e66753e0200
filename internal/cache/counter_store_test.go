package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCmdable is a minimal redis.Cmdable stand-in: it implements only the
// handful of commands CounterStore and TagCache actually issue, backed by
// an in-memory map, so these tests need no miniredis-style dependency.
type fakeCmdable struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string]string

	failGet bool
	failSet int // number of subsequent IncrBy/DecrBy calls to fail
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{data: map[string]string{}}
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return redis.NewStringResult("", errors.New("transient get failure"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = toStr(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeCmdable) IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	return f.delta(key, value)
}

func (f *fakeCmdable) DecrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	return f.delta(key, -value)
}

func (f *fakeCmdable) delta(key string, by int64) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet > 0 {
		f.failSet--
		return redis.NewIntResult(0, errors.New("transient delta failure"))
	}
	n := parseInt(f.data[key]) + by
	f.data[key] = itoa(n)
	return redis.NewIntResult(n, nil)
}

func toStr(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int:
		return itoa(int64(t))
	case int64:
		return itoa(t)
	default:
		return ""
	}
}

func parseInt(s string) int64 {
	var n int64
	var neg bool
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func TestCounterStore_Get_PopulatesOnMiss(t *testing.T) {
	client := newFakeCmdable()
	populate := func(ctx context.Context, tag string) (int64, error) { return 7, nil }
	store := NewRedisCounterStore(client, populate, 3)

	n, err := store.Get(context.Background(), "fox")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	// a second read must not re-invoke populate; it's served from the store.
	store.populate = func(context.Context, string) (int64, error) {
		t.Fatal("populate should not be called again once the key exists")
		return 0, nil
	}
	n, err = store.Get(context.Background(), "fox")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

// A tag with no public posts repopulates to zero.
func TestCounterStore_Get_NoPublicPosts_PopulatesZero(t *testing.T) {
	client := newFakeCmdable()
	populate := func(ctx context.Context, tag string) (int64, error) { return 0, nil }
	store := NewRedisCounterStore(client, populate, 3)

	n, err := store.Get(context.Background(), "unused-tag")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCounterStore_IncrementDecrement_RoundTrip(t *testing.T) {
	client := newFakeCmdable()
	populate := func(ctx context.Context, tag string) (int64, error) { return 0, nil }
	store := NewRedisCounterStore(client, populate, 3)

	require.NoError(t, store.Increment(context.Background(), "fox"))
	n, err := store.Get(context.Background(), "fox")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.Decrement(context.Background(), "fox"))
	n, err = store.Get(context.Background(), "fox")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

// A delta survives a couple of transient failures within the retry budget.
func TestCounterStore_Increment_RetriesTransientFailures(t *testing.T) {
	client := newFakeCmdable()
	populate := func(ctx context.Context, tag string) (int64, error) { return 0, nil }
	store := NewRedisCounterStore(client, populate, 3)

	client.failSet = 2
	require.NoError(t, store.Increment(context.Background(), "fox"))

	n, err := store.Get(context.Background(), "fox")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// Exhausting all retries surfaces a transient, recoverable error.
func TestCounterStore_Increment_RetriesExhausted(t *testing.T) {
	client := newFakeCmdable()
	populate := func(ctx context.Context, tag string) (int64, error) { return 0, nil }
	store := NewRedisCounterStore(client, populate, 2)

	client.failSet = 5
	err := store.Increment(context.Background(), "fox")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCounterRetriesExhausted)
}
