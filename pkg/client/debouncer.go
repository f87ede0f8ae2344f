package client

import (
	"sync"
	"time"
)

// Debouncer delays calls per key: a new Trigger for a key replaces that key's pending call
// and restarts its timer, while other keys are untouched.
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]*pendingCall
	running sync.WaitGroup
	stopped bool
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

// NewDebouncer creates an empty debouncer
func NewDebouncer() *Debouncer {
	return &Debouncer{pending: make(map[string]*pendingCall)}
}

// Trigger schedules fn to run once delay has passed without another Trigger for key
func (d *Debouncer) Trigger(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	call := &pendingCall{fn: fn}
	call.timer = time.AfterFunc(delay, func() { d.fire(key, call) })
	d.pending[key] = call
}

func (d *Debouncer) fire(key string, call *pendingCall) {
	d.mu.Lock()
	if d.pending[key] != call {
		// replaced, flushed or stopped while the timer was firing
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	call.fn()
}

// Pending returns the number of keys waiting to fire
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush runs every pending call now, on the caller's goroutine
func (d *Debouncer) Flush() {
	d.mu.Lock()
	calls := make([]*pendingCall, 0, len(d.pending))
	for key, call := range d.pending {
		call.timer.Stop()
		calls = append(calls, call)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, call := range calls {
		call.fn()
	}
}

// Stop drops pending calls, rejects new ones and waits for calls already running
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, call := range d.pending {
		call.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	d.running.Wait()
}
