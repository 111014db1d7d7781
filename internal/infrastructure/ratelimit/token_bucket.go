package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucket implements a token bucket with fractional refill
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	lastUsed   time.Time
	now        func() time.Time
}

// NewTokenBucket creates a full bucket
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity, refillRate int, now func() time.Time) *TokenBucket {
	t := now()
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		lastRefill: t,
		lastUsed:   t,
		now:        now,
	}
}

// Allow consumes one token if available
func (tb *TokenBucket) Allow() bool {
	return tb.AllowN(1)
}

// AllowN consumes n tokens if all of them are available
func (tb *TokenBucket) AllowN(n int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	tb.lastUsed = tb.lastRefill
	if tb.tokens >= float64(n) {
		tb.tokens -= float64(n)
		return true
	}
	return false
}

// Tokens returns the whole tokens currently available
func (tb *TokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return int(tb.tokens)
}

// RetryAfter returns how long until one token is available
func (tb *TokenBucket) RetryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1 || tb.refillRate <= 0 {
		return 0
	}
	missing := 1 - tb.tokens
	return time.Duration(math.Ceil(missing / tb.refillRate * float64(time.Second)))
}

// refill must be called with the lock held
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

func (tb *TokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastUsed.Before(cutoff)
}

// RateLimiterCollection keeps one bucket per client
type RateLimiterCollection struct {
	mu              sync.Mutex
	buckets         map[string]*TokenBucket
	capacity        int
	refillRate      int
	now             func() time.Time
	lastCleanup     time.Time
	cleanupInterval time.Duration
	idleTTL         time.Duration
}

// NewRateLimiterCollection creates a new collection of rate limiters
func NewRateLimiterCollection(capacity, refillRate int) *RateLimiterCollection {
	return newRateLimiterCollection(capacity, refillRate, time.Now)
}

func newRateLimiterCollection(capacity, refillRate int, now func() time.Time) *RateLimiterCollection {
	return &RateLimiterCollection{
		buckets:         make(map[string]*TokenBucket),
		capacity:        capacity,
		refillRate:      refillRate,
		now:             now,
		lastCleanup:     now(),
		cleanupInterval: 10 * time.Minute,
		idleTTL:         30 * time.Minute,
	}
}

// Allow checks if a request from the given client is allowed
func (rlc *RateLimiterCollection) Allow(clientID string) bool {
	return rlc.getBucket(clientID).Allow()
}

// Bucket returns the client's bucket, creating it on first use
func (rlc *RateLimiterCollection) Bucket(clientID string) *TokenBucket {
	return rlc.getBucket(clientID)
}

func (rlc *RateLimiterCollection) getBucket(clientID string) *TokenBucket {
	rlc.mu.Lock()
	defer rlc.mu.Unlock()

	if bucket, ok := rlc.buckets[clientID]; ok {
		return bucket
	}

	rlc.maybeCleanup()
	bucket := newTokenBucket(rlc.capacity, rlc.refillRate, rlc.now)
	rlc.buckets[clientID] = bucket
	return bucket
}

// maybeCleanup drops buckets idle for longer than idleTTL; lock held
func (rlc *RateLimiterCollection) maybeCleanup() {
	now := rlc.now()
	if now.Sub(rlc.lastCleanup) < rlc.cleanupInterval {
		return
	}

	cutoff := now.Add(-rlc.idleTTL)
	for clientID, bucket := range rlc.buckets {
		if bucket.idleSince(cutoff) {
			delete(rlc.buckets, clientID)
		}
	}
	rlc.lastCleanup = now
}

// Clients returns the number of tracked clients
func (rlc *RateLimiterCollection) Clients() int {
	rlc.mu.Lock()
	defer rlc.mu.Unlock()
	return len(rlc.buckets)
}
