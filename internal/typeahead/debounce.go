// Package typeahead debounces search-as-you-type input and drops results
// that arrive after their session moved on or was torn down.
package typeahead

import (
	"sync"
	"time"
)

// DefaultDelay is the input inactivity window before a search fires
const DefaultDelay = 300 * time.Millisecond

// Debouncer delays calls per key until no new call for that key has arrived
// for the configured delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[string]*pending
	seq     uint64
	stopped bool
}

type pending struct {
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer. A non-positive delay uses DefaultDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*pending),
	}
}

// Delay returns the configured inactivity window
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger schedules fn for key, replacing any call still waiting for that
// key. It is a no-op after Stop.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.timers[key]; ok {
		prev.timer.Stop()
	}
	d.seq++
	gen := d.seq

	p := &pending{gen: gen}
	p.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		cur, ok := d.timers[key]
		if !ok || cur.gen != gen || d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = p
}

// Cancel drops the pending call for key, if any
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.timers[key]; ok {
		p.timer.Stop()
		delete(d.timers, key)
	}
}

// Pending returns the number of keys with a call waiting to fire
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels every pending call. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, p := range d.timers {
		p.timer.Stop()
		delete(d.timers, key)
	}
}
