package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T) (*Limiter, *MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock.Now)
	return NewLimiter(store, Rate{Limit: 3, Window: time.Minute}), store, clock
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in      string
		want    Rate
		wantErr bool
	}{
		{in: "3/minute", want: Rate{Limit: 3, Window: time.Minute}},
		{in: "10/s", want: Rate{Limit: 10, Window: time.Second}},
		{in: " 100 / Day ", want: Rate{Limit: 100, Window: 24 * time.Hour}},
		{in: "5/hour", want: Rate{Limit: 5, Window: time.Hour}},
		{in: "3", wantErr: true},
		{in: "0/minute", wantErr: true},
		{in: "x/minute", wantErr: true},
		{in: "3/fortnight", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "friend_request-64b0", Key(ScopeFriendRequest, "64b0"))
	assert.Equal(t, "friend_request-anonymous", Key(ScopeFriendRequest, ""))
}

func TestLimiter_ThreePerWindow(t *testing.T) {
	limiter, _, clock := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(ctx, ScopeFriendRequest, "alice"), "attempt %d", i+1)
	}
	assert.ErrorIs(t, limiter.Allow(ctx, ScopeFriendRequest, "alice"), apperrors.ErrRateLimited)

	// other identities have their own counters
	assert.NoError(t, limiter.Allow(ctx, ScopeFriendRequest, "bob"))

	clock.Advance(59 * time.Second)
	assert.ErrorIs(t, limiter.Allow(ctx, ScopeFriendRequest, "alice"), apperrors.ErrRateLimited)

	clock.Advance(time.Second)
	assert.NoError(t, limiter.Allow(ctx, ScopeFriendRequest, "alice"))
}

func TestLimiter_RejectedAttemptsDoNotExtendWindow(t *testing.T) {
	limiter, store, clock := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(ctx, ScopeFriendRequest, "alice"))
	}
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		assert.ErrorIs(t, limiter.Allow(ctx, ScopeFriendRequest, "alice"), apperrors.ErrRateLimited)
	}
	assert.Equal(t, 3, store.counters[Key(ScopeFriendRequest, "alice")].count)

	clock.Advance(10 * time.Second)
	assert.NoError(t, limiter.Allow(ctx, ScopeFriendRequest, "alice"))
}

func TestLimiter_AnonymousCallersShareCounter(t *testing.T) {
	limiter, _, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(ctx, ScopeFriendRequest, ""))
	}
	assert.ErrorIs(t, limiter.Allow(ctx, ScopeFriendRequest, AnonymousIdentity), apperrors.ErrRateLimited)
}

func TestLimiter_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	limiter, _, _ := newTestLimiter(t)
	ctx := context.Background()

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(ctx, ScopeFriendRequest, "alice") == nil {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), allowed)
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, int, time.Duration) (bool, error) {
	return false, errors.New("cache down")
}

func TestLimiter_StoreError(t *testing.T) {
	limiter := NewLimiter(failingStore{}, Rate{Limit: 3, Window: time.Minute})

	err := limiter.Allow(context.Background(), ScopeFriendRequest, "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrRateLimited)
}

func TestMemoryStore_Sweep(t *testing.T) {
	_, store, clock := newTestLimiter(t)
	ctx := context.Background()

	_, _ = store.Increment(ctx, "a", 3, time.Minute)
	_, _ = store.Increment(ctx, "b", 3, 2*time.Minute)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Len(t, store.counters, 1)
}
