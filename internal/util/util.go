package util

import "time"

// Throttle admits at most one event per interval and drops the others.
// The first event is always admitted.
type Throttle struct {
	interval time.Duration
	next     time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Allow reports whether an event happening at now is admitted.
func (t *Throttle) Allow(now time.Time) bool {
	if now.Before(t.next) {
		return false
	}
	t.next = now.Add(t.interval)
	return true
}
