package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage = "send_message"
	ActionResolve     = "resolve_conversation"
	ActionUpload      = "upload"
	ActionCheckout    = "checkout"
	ActionAuth        = "auth"
)

// Policy is a token bucket: Burst tokens, refilled at Limit per second.
type Policy struct {
	Limit rate.Limit
	Burst int
}

var DefaultPolicies = map[string]Policy{
	// 10 messages per minute, bursts of 5
	ActionSendMessage: {Limit: rate.Every(6 * time.Second), Burst: 5},
	// 30 conversation opens per hour
	ActionResolve: {Limit: rate.Every(2 * time.Minute), Burst: 30},
	// 20 uploads per hour
	ActionUpload: {Limit: rate.Every(3 * time.Minute), Burst: 20},
	// 10 checkouts per hour
	ActionCheckout: {Limit: rate.Every(6 * time.Minute), Burst: 10},
	// 10 sign-in attempts per minute per client
	ActionAuth: {Limit: rate.Every(6 * time.Second), Burst: 10},
}

var fallbackPolicy = Policy{Limit: rate.Every(3 * time.Second), Burst: 20}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per (user, action).
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	policies map[string]Policy
	now      func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithPolicies(DefaultPolicies)
}

func NewRateLimiterWithPolicies(policies map[string]Policy) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		policies: policies,
		now:      time.Now,
	}
}

// Allow consumes a token for the user's action. When none is available it
// returns false and how long until the next one.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	now := rl.now()
	b := rl.bucketFor(userID, action, now)

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) bucketFor(userID, action string, now time.Time) *bucket {
	key := userID + ":" + action

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		p, ok := rl.policies[action]
		if !ok {
			p = fallbackPolicy
		}
		b = &bucket{limiter: rate.NewLimiter(p.Limit, p.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	cutoff := rl.now().Add(-maxIdle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			}
		}
	}()
}
