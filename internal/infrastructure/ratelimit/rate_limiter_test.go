package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestAllowConsumesBurstThenWaits(t *testing.T) {
	rl := NewRateLimiterWithPolicies(map[string]Policy{
		ActionSendMessage: {Limit: rate.Every(time.Minute), Burst: 2},
	})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("u1", ActionSendMessage)
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", ActionSendMessage)
	assert.True(t, ok)

	ok, wait := rl.Allow("u1", ActionSendMessage)
	assert.False(t, ok)
	assert.InDelta(t, time.Minute.Seconds(), wait.Seconds(), 1)

	// other users and actions have their own buckets
	ok, _ = rl.Allow("u2", ActionSendMessage)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("u1", ActionSendMessage)
	assert.True(t, ok)
}

func TestUnknownActionUsesFallback(t *testing.T) {
	rl := NewRateLimiterWithPolicies(map[string]Policy{})
	for i := 0; i < fallbackPolicy.Burst; i++ {
		ok, _ := rl.Allow("u1", "something")
		assert.True(t, ok)
	}
	ok, _ := rl.Allow("u1", "something")
	assert.False(t, ok)
}

func TestCleanup(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("u1", ActionUpload)
	now = now.Add(2 * time.Hour)
	rl.Allow("u2", ActionUpload)

	assert.Equal(t, 1, rl.Cleanup(time.Hour))
}
