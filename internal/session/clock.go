package session

import (
	"sync"
	"time"
)

// Clock tracks user activity against an idle threshold using wall-clock time.
//
// Deadlines are stored as absolute wall times with the monotonic reading stripped, so
// time spent suspended counts towards the threshold.
type Clock struct {
	mu        sync.Mutex
	threshold time.Duration
	now       func() time.Time
	last      time.Time
	deadline  time.Time
}

// NewClock returns a clock armed from now. A threshold <= 0 disables expiry.
func NewClock(threshold time.Duration, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	c := &Clock{threshold: threshold, now: now}
	c.Touch()
	return c
}

// Touch records activity and rearms the deadline.
func (c *Clock) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.now().Round(0)
	c.deadline = c.last.Add(c.threshold)
}

// SetThreshold changes the idle threshold (config reload) and rearms from the last activity.
func (c *Clock) SetThreshold(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threshold = d
	c.deadline = c.last.Add(d)
}

func (c *Clock) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Expired reports whether now is at or past the deadline.
func (c *Clock) Expired(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.threshold <= 0 {
		return false
	}
	return !now.Round(0).Before(c.deadline)
}
