package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed right now without blocking
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// IntervalGate enforces a minimum interval between permits across all
// callers. It is a single shared gate: the mutex is held for the whole
// wait so concurrent callers are served strictly in arrival order.
type IntervalGate struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
	sleep    func(time.Duration) // injectable for tests
}

// NewIntervalGate creates a gate with the given minimum interval
func NewIntervalGate(interval time.Duration) *IntervalGate {
	return &IntervalGate{
		interval: interval,
		sleep:    time.Sleep,
	}
}

// Allow grants a permit if the interval has elapsed, without blocking
func (g *IntervalGate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if g.last.IsZero() || now.Sub(g.last) >= g.interval {
		g.last = now
		return true
	}
	return false
}

// Wait blocks until the interval since the previous permit has elapsed,
// then grants the permit. It never fails, it only delays.
func (g *IntervalGate) Wait() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.last.IsZero() {
		if remaining := g.interval - time.Since(g.last); remaining > 0 {
			g.sleep(remaining)
		}
	}
	g.last = time.Now()
}

// Reset clears the last-permit marker so the next caller proceeds immediately
func (g *IntervalGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = time.Time{}
}
