package session

import "time"

// rateLimiter is a sliding-window counter over frame arrival times.
// It is only ever touched from the connection's read loop, so it needs
// no locking.
type rateLimiter struct {
	limit  int
	window time.Duration
	times  []time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{limit: limit, window: window}
}

// Allow records one frame at now and reports whether it is within the
// ceiling. A zero or negative limit disables limiting.
func (r *rateLimiter) Allow(now time.Time) bool {
	if r.limit <= 0 {
		return true
	}

	cutoff := now.Add(-r.window)
	keep := 0
	for keep < len(r.times) && !r.times[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		r.times = append(r.times[:0], r.times[keep:]...)
	}

	if len(r.times) >= r.limit {
		return false
	}
	r.times = append(r.times, now)
	return true
}
