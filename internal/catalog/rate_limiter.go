package catalog

import (
	"sync"
	"time"
)

// RateLimiter spaces catalog requests evenly; a zero or negative rate means one per second.
type RateLimiter struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
	sleep    func(time.Duration)
}

func NewRateLimiter(perSecond int) *RateLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &RateLimiter{interval: time.Second / time.Duration(perSecond), sleep: time.Sleep}
}

// WaitTurn reserves the next slot and blocks until it is due.
func (r *RateLimiter) WaitTurn() {
	r.mu.Lock()
	now := time.Now()
	slot := now
	if r.next.After(now) {
		slot = r.next
	}
	r.next = slot.Add(r.interval)
	r.mu.Unlock()

	if d := time.Until(slot); d > 0 {
		r.sleep(d)
	}
}
