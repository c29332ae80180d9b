package listview

import (
	"sync"
	"time"
)

const (
	DefaultSearchDelay = 300 * time.Millisecond
	DefaultScrollDelay = 100 * time.Millisecond
)

type Timer interface {
	Stop() bool
}

// Scheduler runs f once d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs only the last function given to Debounce, once the input
// has been quiet for the configured duration (trailing edge).
type Debouncer struct {
	mu        sync.Mutex
	scheduler Scheduler
	duration  time.Duration
	timer     Timer
	pending   func()
	seq       uint64
}

func NewDebouncer(duration time.Duration, scheduler Scheduler) *Debouncer {
	if scheduler == nil {
		scheduler = realScheduler{}
	}
	return &Debouncer{
		scheduler: scheduler,
		duration:  duration,
	}
}

func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stop()
	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = d.scheduler.AfterFunc(d.duration, func() {
		d.fire(seq)
	})
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	// a timer that could not be stopped in time must not release a stale call
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Flush runs the pending function now, if any.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.stop()
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stop()
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.seq++
}
