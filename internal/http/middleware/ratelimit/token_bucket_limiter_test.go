package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStubClock() *stubClock {
	return &stubClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTokenBucketLimiter_BurstThenBlocksThenRefills(t *testing.T) {
	t.Parallel()

	clk := newStubClock()
	l := NewTokenBucketLimiter(clk, Config{Rate: 1, Burst: 2})

	require.True(t, l.Allow("ip1"), "a fresh bucket starts at full burst")
	require.True(t, l.Allow("ip1"))
	require.False(t, l.Allow("ip1"), "an empty bucket blocks")

	clk.Advance(time.Second)
	require.True(t, l.Allow("ip1"), "one second refills one token")
	require.False(t, l.Allow("ip1"))

	clk.Advance(10 * time.Second)
	require.True(t, l.Allow("ip1"))
	require.True(t, l.Allow("ip1"))
	require.False(t, l.Allow("ip1"), "refill is capped at burst")
}

func TestTokenBucketLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	l := NewTokenBucketLimiter(newStubClock(), Config{Rate: 1, Burst: 1})

	require.True(t, l.Allow("keyA"))
	require.False(t, l.Allow("keyA"))
	require.True(t, l.Allow("keyB"), "keyA exhausting its bucket must not affect keyB")
}

func TestTokenBucketLimiter_MaxBucketsRefusesNewKeys(t *testing.T) {
	t.Parallel()

	l := NewTokenBucketLimiter(newStubClock(), Config{Rate: 1, Burst: 1, MaxBuckets: 2})

	require.True(t, l.Allow("a"))
	require.True(t, l.Allow("b"))
	require.False(t, l.Allow("c"), "an untrackable key is refused, not waved through")
	require.False(t, l.Allow("a"), "existing keys keep their buckets")
}

func TestTokenBucketLimiter_SweepEvictsIdleBuckets(t *testing.T) {
	t.Parallel()

	clk := newStubClock()
	l := NewTokenBucketLimiter(clk, Config{Rate: 10, Burst: 1, TTL: 2 * time.Second})

	l.Allow("idle")
	l.Allow("busy")
	require.Len(t, l.buckets, 2)

	// past the minimum sweep interval, with only "busy" still active
	clk.Advance(59 * time.Second)
	l.Allow("busy")
	clk.Advance(2 * time.Second)
	l.Allow("busy")

	_, ok := l.buckets["idle"]
	require.False(t, ok, "the idle bucket must be evicted")
	_, ok = l.buckets["busy"]
	require.True(t, ok)
}

func TestNewTokenBucketLimiter_LiftsBadConfig(t *testing.T) {
	t.Parallel()

	l := NewTokenBucketLimiter(nil, Config{Rate: -1, Burst: 0, MaxBuckets: -5})

	require.Equal(t, float64(1), l.cfg.Rate)
	require.Equal(t, 1, l.cfg.Burst)
	require.Zero(t, l.cfg.MaxBuckets)
	require.NotNil(t, l.clock)
}
