// Package debounce delays rapidly changing input until it settles.
//
// Every Schedule hands out a ticket. Only the newest ticket can fire, so a
// stale timer that fires after a newer value was scheduled is ignored.
package debounce

import (
	"sync"
	"time"
)

// Ticket identifies one scheduled value.
type Ticket uint64

// Debouncer keeps the latest pending value.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	seq     Ticket
	pending string
	armed   bool
	timer   *time.Timer
}

// New creates a debouncer with the given settle delay.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the settle delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule makes value the pending value and supersedes earlier tickets.
func (d *Debouncer) Schedule(value string) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.pending = value
	d.armed = true
	return d.seq
}

// Cancel drops the pending value. Outstanding tickets will not fire.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Fire settles ticket t. It returns the pending value and true only when t
// is the newest ticket and has not been cancelled or fired already.
func (d *Debouncer) Fire(t Ticket) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.armed || t != d.seq {
		return "", false
	}
	d.armed = false
	return d.pending, true
}

// After schedules value and calls fn with it once the delay passes without
// a newer Schedule or After. fn runs on its own goroutine.
func (d *Debouncer) After(value string, fn func(string)) Ticket {
	t := d.Schedule(value)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if v, ok := d.Fire(t); ok {
			fn(v)
		}
	})
	return t
}
