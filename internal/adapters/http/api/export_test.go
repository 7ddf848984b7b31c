package api

import "time"

// NewRateLimiterWithClock builds a RateLimiter reading time from now.
func NewRateLimiterWithClock(perMinute, burst int, now func() time.Time) *RateLimiter {
	return newRateLimiter(perMinute, burst, now)
}

// Tracked returns the number of per-coach buckets held.
func (l *RateLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
