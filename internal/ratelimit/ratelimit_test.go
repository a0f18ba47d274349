package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"blood-sea-api/internal/common/config"
	"blood-sea-api/internal/common/database"
	"blood-sea-api/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockCounterStore struct {
	IncrFunc func(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

func (m *MockCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return m.IncrFunc(ctx, key, window)
}

// ==========================
// Test Helper Functions
// ==========================

func notificationsPolicy() Policy {
	return Policy{Name: "notifications", Window: time.Minute, MaxRequests: 10}
}

func newMemoryStoreAt(start time.Time) (*MemoryCounterStore, *time.Time) {
	current := start
	s := NewMemoryCounterStore()
	s.now = func() time.Time { return current }
	return s, &current
}

// ==========================
// Limiter Tests
// ==========================

func TestLimiter_DeniesAboveLimit(t *testing.T) {
	store, _ := newMemoryStoreAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewLimiter(store, logger.NewNoOpLogger())
	policy := notificationsPolicy()

	for i := 0; i < 10; i++ {
		decision := limiter.Check(context.Background(), policy, "caller-1")
		assert.True(t, decision.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 10-(i+1), decision.Remaining)
	}

	decision := limiter.Check(context.Background(), policy, "caller-1")
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Greater(t, decision.RetryAfter, time.Duration(0))
}

func TestLimiter_AllowsAfterWindowElapses(t *testing.T) {
	store, clock := newMemoryStoreAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewLimiter(store, logger.NewNoOpLogger())
	policy := notificationsPolicy()

	for i := 0; i < 11; i++ {
		limiter.Check(context.Background(), policy, "caller-1")
	}
	assert.False(t, limiter.Check(context.Background(), policy, "caller-1").Allowed)

	*clock = clock.Add(policy.Window + time.Millisecond)

	decision := limiter.Check(context.Background(), policy, "caller-1")
	assert.True(t, decision.Allowed)
	assert.Equal(t, 9, decision.Remaining)
}

func TestLimiter_PoliciesAreIndependent(t *testing.T) {
	store, _ := newMemoryStoreAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewLimiter(store, logger.NewNoOpLogger())

	notifications := notificationsPolicy()
	bloodRequests := Policy{Name: "bloodRequests", Window: time.Hour, MaxRequests: 5}

	// Exhaust the bloodRequests budget
	for i := 0; i < 6; i++ {
		limiter.Check(context.Background(), bloodRequests, "caller-1")
	}
	assert.False(t, limiter.Check(context.Background(), bloodRequests, "caller-1").Allowed)

	// Same caller still has budget under the other policy
	assert.True(t, limiter.Check(context.Background(), notifications, "caller-1").Allowed)
}

func TestLimiter_CallersAreIndependent(t *testing.T) {
	store, _ := newMemoryStoreAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewLimiter(store, logger.NewNoOpLogger())
	policy := notificationsPolicy()

	for i := 0; i < 11; i++ {
		limiter.Check(context.Background(), policy, "caller-1")
	}
	assert.False(t, limiter.Check(context.Background(), policy, "caller-1").Allowed)
	assert.True(t, limiter.Check(context.Background(), policy, "caller-2").Allowed)
}

func TestLimiter_FailsOpenOnStoreError(t *testing.T) {
	store := &MockCounterStore{
		IncrFunc: func(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
			return 0, 0, errors.New("connection refused")
		},
	}
	limiter := NewLimiter(store, logger.NewTestLogger(t))

	decision := limiter.Check(context.Background(), notificationsPolicy(), "caller-1")
	assert.True(t, decision.Allowed)
}

func TestPoliciesFromConfig(t *testing.T) {
	policies := PoliciesFromConfig(map[string]config.RateLimitPolicy{
		"general": {WindowMS: 15 * 60 * 1000, MaxRequests: 100},
	})

	require.Contains(t, policies, "general")
	assert.Equal(t, 15*time.Minute, policies["general"].Window)
	assert.Equal(t, 100, policies["general"].MaxRequests)
	assert.Equal(t, "general", policies["general"].Name)
}

// ==========================
// Memory Counter Store Tests
// ==========================

func TestMemoryCounterStore_CapacityBound(t *testing.T) {
	store, _ := newMemoryStoreAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store.maxEntries = 3

	ctx := context.Background()
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		_, _, err := store.Incr(ctx, key, time.Minute)
		require.NoError(t, err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.LessOrEqual(t, len(store.entries), 3)
}

// ==========================
// Redis Counter Store Tests
// ==========================

func TestRedisCounterStore_FixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisCounterStore(&database.RedisClient{Client: client})

	ctx := context.Background()

	count, ttl, err := store.Incr(ctx, "notifications:caller-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Greater(t, ttl, time.Duration(0))

	count, _, err = store.Incr(ctx, "notifications:caller-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Window expiry resets the counter
	mr.FastForward(time.Minute + time.Second)

	count, _, err = store.Incr(ctx, "notifications:caller-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedisCounterStore_ErrorFailsOpenThroughLimiter(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectIncr("ratelimit:notifications:caller-1").SetErr(errors.New("connection refused"))

	store := NewRedisCounterStore(&database.RedisClient{Client: client})
	limiter := NewLimiter(store, logger.NewNoOpLogger())

	decision := limiter.Check(context.Background(), notificationsPolicy(), "caller-1")
	assert.True(t, decision.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
