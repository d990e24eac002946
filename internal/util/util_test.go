package util

import (
	"testing"
	"time"
)

func TestThrottle(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		after time.Duration
		allow bool
	}{
		{after: 0, allow: true},
		{after: time.Second, allow: false},
		{after: 9 * time.Second, allow: false},
		{after: 10 * time.Second, allow: true},
		{after: 15 * time.Second, allow: false},
		{after: 21 * time.Second, allow: true},
	}
	th := NewThrottle(10 * time.Second)
	for _, test := range tests {
		if allow := th.Allow(start.Add(test.after)); allow != test.allow {
			t.Fatalf("%s %v, expected %v", test.after, allow, test.allow)
		}
	}

	// Zero interval admits everything.
	th = NewThrottle(0)
	for i := range 3 {
		if !th.Allow(start) {
			t.Fatalf("%d", i)
		}
	}
}
