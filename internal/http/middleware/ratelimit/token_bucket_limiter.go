package ratelimit

import (
	"sync"
	"time"
)

// Config tunes the token bucket limiter.
type Config struct {
	Rate       float64       // refill rate, tokens per second
	Burst      int           // bucket capacity
	TTL        time.Duration // evict buckets idle longer than this (0 keeps all)
	MaxBuckets int           // cap on tracked keys (0 means unlimited)
}

// TokenBucketLimiter keeps one refilling bucket per client key. Each request
// spends a token; an empty bucket means the key is over its rate.
type TokenBucketLimiter struct {
	cfg   Config
	clock Clock

	mu        sync.RWMutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	mu      sync.Mutex
	tokens  float64
	refill  time.Time
	touched time.Time
}

// NewTokenBucketLimiter builds a limiter. A nil clock falls back to the wall
// clock; non-positive rate and burst are lifted to 1.
func NewTokenBucketLimiter(clock Clock, cfg Config) *TokenBucketLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	return &TokenBucketLimiter{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// Allow spends one token for key and reports whether the request may
// proceed. A key that cannot be tracked because the bucket cap is reached
// is refused rather than waved through.
func (l *TokenBucketLimiter) Allow(key string) bool {
	now := l.clock.Now()
	l.sweepIdle(now)

	b := l.bucketFor(key, now)
	if b == nil {
		return false
	}
	return b.take(now, l.cfg.Rate, float64(l.cfg.Burst))
}

func (l *TokenBucketLimiter) bucketFor(key string, now time.Time) *bucket {
	l.mu.RLock()
	b := l.buckets[key]
	l.mu.RUnlock()
	if b != nil {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b = l.buckets[key]; b != nil {
		return b
	}
	if l.cfg.MaxBuckets > 0 && len(l.buckets) >= l.cfg.MaxBuckets {
		return nil
	}

	b = &bucket{
		tokens:  float64(l.cfg.Burst),
		refill:  now,
		touched: now,
	}
	l.buckets[key] = b
	return b
}

func (b *bucket) take(now time.Time, rate, burst float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.refill); elapsed > 0 {
		b.tokens += elapsed.Seconds() * rate
		if b.tokens > burst {
			b.tokens = burst
		}
		b.refill = now
	}
	b.touched = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweepIdle drops buckets not touched within the TTL. The sweep itself runs
// at most once per minute or half the TTL, whichever is longer, so a busy
// limiter is not scanning the whole map on every request.
func (l *TokenBucketLimiter) sweepIdle(now time.Time) {
	if l.cfg.TTL <= 0 {
		return
	}
	interval := time.Minute
	if half := l.cfg.TTL / 2; half > interval {
		interval = half
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastSweep.IsZero() && now.Sub(l.lastSweep) < interval {
		return
	}
	l.lastSweep = now

	for key, b := range l.buckets {
		b.mu.Lock()
		idle := now.Sub(b.touched)
		b.mu.Unlock()
		if idle > l.cfg.TTL {
			delete(l.buckets, key)
		}
	}
}
