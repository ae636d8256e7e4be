package query

import (
	"sync"
	"time"
)

// Debouncer delays an action until input pauses for a quiet window,
// restarting the window on every new value. Only the last value
// scheduled within the window fires.
type Debouncer struct {
	delay time.Duration
	fn    func(string)

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration, fn func(string)) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Schedule arms the timer for value, cancelling any pending one.
func (d *Debouncer) Schedule(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fn(value) })
}

// Flush cancels any pending timer and fires immediately with value.
func (d *Debouncer) Flush(value string) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fn(value)
}

// Stop drops any pending fire without running it, e.g. when the page
// unloads mid-window.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
