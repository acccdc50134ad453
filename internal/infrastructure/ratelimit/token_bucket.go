package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements a simple token bucket rate limiter
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int       // Maximum number of tokens
	tokens     int       // Current number of tokens
	refillRate int       // Tokens per second
	lastRefill time.Time // Last refill time
	lastUsed   time.Time // Last Allow/AllowN call
	now        func() time.Time
}

// NewTokenBucket creates a new token bucket rate limiter
// capacity: maximum number of tokens in the bucket
// refillRate: number of tokens added per second
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return newTokenBucketWithClock(capacity, refillRate, time.Now)
}

func newTokenBucketWithClock(capacity, refillRate int, now func() time.Time) *TokenBucket {
	start := now()
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity, // Start with full bucket
		refillRate: refillRate,
		lastRefill: start,
		lastUsed:   start,
		now:        now,
	}
}

// Allow checks if a request is allowed and consumes a token if available
// Returns true if request is allowed, false if rate limited
func (tb *TokenBucket) Allow() bool {
	return tb.AllowN(1)
}

// AllowN checks if N tokens are available and consumes them if so
func (tb *TokenBucket) AllowN(n int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	tb.lastUsed = tb.now()

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}

	return false
}

// Tokens returns the current number of available tokens
func (tb *TokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}

// idleSince reports whether the bucket has not been used since cutoff
func (tb *TokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastUsed.Before(cutoff)
}

// refill adds tokens based on elapsed time since last refill
// Must be called with lock held
func (tb *TokenBucket) refill() {
	if tb.refillRate <= 0 {
		return
	}

	now := tb.now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds() * float64(tb.refillRate))
	if tokensToAdd <= 0 {
		return
	}

	tb.tokens += tokensToAdd
	if tb.tokens >= tb.capacity {
		tb.tokens = tb.capacity
		tb.lastRefill = now
		return
	}

	// Keep the fractional remainder so slow refill rates still make progress
	tb.lastRefill = tb.lastRefill.Add(time.Duration(tokensToAdd) * time.Second / time.Duration(tb.refillRate))
}

// RateLimiterCollection manages multiple token buckets for different clients
type RateLimiterCollection struct {
	mu         sync.RWMutex
	buckets    map[string]*TokenBucket
	capacity   int
	refillRate int
	// Cleanup old buckets to prevent memory leak
	lastCleanup     time.Time
	cleanupInterval time.Duration
	idleTimeout     time.Duration
	onEvict         func(clientID string)
	now             func() time.Time
}

// NewRateLimiterCollection creates a new collection of rate limiters
func NewRateLimiterCollection(capacity, refillRate int) *RateLimiterCollection {
	return &RateLimiterCollection{
		buckets:         make(map[string]*TokenBucket),
		capacity:        capacity,
		refillRate:      refillRate,
		lastCleanup:     time.Now(),
		cleanupInterval: 10 * time.Minute,
		idleTimeout:     30 * time.Minute,
		now:             time.Now,
	}
}

// OnEvict registers a callback invoked for every client bucket removed by cleanup
func (rlc *RateLimiterCollection) OnEvict(fn func(clientID string)) {
	rlc.mu.Lock()
	rlc.onEvict = fn
	rlc.mu.Unlock()
}

// Allow checks if a request from the given client is allowed
func (rlc *RateLimiterCollection) Allow(clientID string) bool {
	return rlc.getBucket(clientID).Allow()
}

// AllowN checks if N requests from the given client are allowed
func (rlc *RateLimiterCollection) AllowN(clientID string, n int) bool {
	return rlc.getBucket(clientID).AllowN(n)
}

// Tokens returns available tokens for the given client
func (rlc *RateLimiterCollection) Tokens(clientID string) int {
	return rlc.getBucket(clientID).Tokens()
}

// getBucket gets or creates a token bucket for the client
func (rlc *RateLimiterCollection) getBucket(clientID string) *TokenBucket {
	rlc.mu.RLock()
	bucket, exists := rlc.buckets[clientID]
	rlc.mu.RUnlock()

	if exists {
		return bucket
	}

	rlc.mu.Lock()
	defer rlc.mu.Unlock()

	// Double-check pattern - another goroutine might have created it
	if bucket, exists := rlc.buckets[clientID]; exists {
		return bucket
	}

	bucket = newTokenBucketWithClock(rlc.capacity, rlc.refillRate, rlc.now)
	rlc.buckets[clientID] = bucket

	rlc.maybeCleanup(clientID)

	return bucket
}

// maybeCleanup removes buckets that have been idle longer than idleTimeout.
// Must be called with write lock held
func (rlc *RateLimiterCollection) maybeCleanup(keep string) {
	now := rlc.now()
	if now.Sub(rlc.lastCleanup) < rlc.cleanupInterval {
		return
	}

	cutoff := now.Add(-rlc.idleTimeout)
	for clientID, bucket := range rlc.buckets {
		if clientID == keep {
			continue
		}
		if bucket.idleSince(cutoff) {
			delete(rlc.buckets, clientID)
			if rlc.onEvict != nil {
				rlc.onEvict(clientID)
			}
		}
	}

	rlc.lastCleanup = now
}

// Stats returns statistics about the rate limiter collection
func (rlc *RateLimiterCollection) Stats() map[string]interface{} {
	rlc.mu.RLock()
	defer rlc.mu.RUnlock()

	return map[string]interface{}{
		"total_clients": len(rlc.buckets),
		"capacity":      rlc.capacity,
		"refill_rate":   rlc.refillRate,
	}
}
