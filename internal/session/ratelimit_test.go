package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	r := newRateLimiter(60, 10*time.Second)
	now := time.Unix(1000, 0)

	for i := 0; i < 60; i++ {
		assert.True(t, r.Allow(now.Add(time.Duration(i)*time.Millisecond)), "frame %d", i+1)
	}
	assert.False(t, r.Allow(now.Add(time.Second)), "61st frame in the window must be limited")
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	r := newRateLimiter(60, 10*time.Second)
	now := time.Unix(2000, 0)

	for i := 0; i < 60; i++ {
		assert.True(t, r.Allow(now))
	}
	assert.False(t, r.Allow(now.Add(5*time.Second)))

	// Once the first burst ages out, frames are allowed again.
	assert.True(t, r.Allow(now.Add(10*time.Second+time.Millisecond)))
}

func TestRateLimiterSpreadTrafficNeverLimited(t *testing.T) {
	r := newRateLimiter(60, 10*time.Second)
	now := time.Unix(3000, 0)

	// One frame per second stays well under 60 per 10s.
	for i := 0; i < 120; i++ {
		assert.True(t, r.Allow(now.Add(time.Duration(i)*time.Second)), "frame %d", i+1)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newRateLimiter(0, time.Second)
	now := time.Now()
	for i := 0; i < 1000; i++ {
		assert.True(t, r.Allow(now))
	}
}
