package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTokenBucket_Allow(t *testing.T) {
	tests := []struct {
		name       string
		capacity   int
		refillRate int
		requests   int
		expected   []bool
	}{
		{
			name:       "básico - bucket lleno permite requests hasta capacidad",
			capacity:   3,
			refillRate: 1,
			requests:   5,
			expected:   []bool{true, true, true, false, false},
		},
		{
			name:       "capacidad 1 - solo permite 1 request",
			capacity:   1,
			refillRate: 1,
			requests:   3,
			expected:   []bool{true, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			tb := newTokenBucketWithClock(tt.capacity, tt.refillRate, clock.Now)

			results := make([]bool, tt.requests)
			for i := 0; i < tt.requests; i++ {
				results[i] = tb.Allow()
			}

			assert.Equal(t, tt.expected, results)
		})
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	clock := newFakeClock()
	tb := newTokenBucketWithClock(2, 1, clock.Now)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "bucket vacío")

	clock.Advance(1 * time.Second)
	assert.True(t, tb.Allow(), "un token recargado tras 1s")
	assert.False(t, tb.Allow())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 2, tb.Tokens(), "la recarga no supera la capacidad")
}

func TestTokenBucket_FractionalRefillIsNotLost(t *testing.T) {
	clock := newFakeClock()
	tb := newTokenBucketWithClock(5, 2, clock.Now)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow())
	}

	// 0.75s a 2 tokens/s = 1 token y medio
	clock.Advance(750 * time.Millisecond)
	assert.Equal(t, 1, tb.Tokens())

	// el medio token restante se completa con 0.25s más
	clock.Advance(250 * time.Millisecond)
	assert.Equal(t, 2, tb.Tokens())
}

func TestTokenBucket_AllowN(t *testing.T) {
	clock := newFakeClock()
	tb := newTokenBucketWithClock(5, 1, clock.Now)

	assert.True(t, tb.AllowN(3))
	assert.False(t, tb.AllowN(3))
	assert.True(t, tb.AllowN(2))
	assert.Equal(t, 0, tb.Tokens())
}

func TestRateLimiterCollection_PerClientBuckets(t *testing.T) {
	rlc := NewRateLimiterCollection(1, 1)

	assert.True(t, rlc.Allow("10.0.0.1"))
	assert.False(t, rlc.Allow("10.0.0.1"))
	assert.True(t, rlc.Allow("10.0.0.2"), "cada cliente tiene su propio bucket")

	stats := rlc.Stats()
	assert.Equal(t, 2, stats["total_clients"])
}

func TestRateLimiterCollection_EvictsIdleBuckets(t *testing.T) {
	clock := newFakeClock()
	rlc := NewRateLimiterCollection(1, 1)
	rlc.now = clock.Now
	rlc.lastCleanup = clock.Now()

	var evicted []string
	rlc.OnEvict(func(clientID string) { evicted = append(evicted, clientID) })

	rlc.Allow("idle")
	clock.Advance(31 * time.Minute)
	rlc.Allow("fresh")

	assert.Equal(t, []string{"idle"}, evicted)
	assert.Equal(t, 1, rlc.Stats()["total_clients"])
}

func TestRateLimiterCollection_Concurrent(t *testing.T) {
	rlc := NewRateLimiterCollection(50, 1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rlc.Allow("same-client") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, allowed, 50)
	assert.LessOrEqual(t, allowed, 51)
}
