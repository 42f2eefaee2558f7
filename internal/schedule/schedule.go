// Package schedule provides a cancellable self-rescheduling task.
package schedule

import (
	"sync"
	"time"

	"github.com/verte-zerg/flowread/internal/clock"
)

// TickFunc runs one step and returns the delay before the next one.
// Returning false ends the task.
type TickFunc func() (time.Duration, bool)

// Task runs a TickFunc repeatedly on a clock. Each Start opens a new
// generation; callbacks from older generations are discarded, so a stopped
// task never ticks again and a restart never doubles the schedule.
type Task struct {
	clock clock.Clock
	tick  TickFunc

	mu      sync.Mutex
	timer   clock.Timer
	gen     uint64
	running bool
}

// New returns a stopped task.
func New(clk clock.Clock, tick TickFunc) *Task {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Task{clock: clk, tick: tick}
}

// Start schedules the first tick after delay. It is a no-op while running.
func (t *Task) Start(delay time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return false
	}
	t.gen++
	t.running = true
	gen := t.gen
	t.timer = t.clock.AfterFunc(delay, func() { t.fire(gen) })
	return true
}

// Stop cancels the pending tick. It reports whether the task was running.
func (t *Task) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return false
	}
	t.running = false
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	return true
}

// Running reports whether a tick is pending.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Task) fire(gen uint64) {
	t.mu.Lock()
	if !t.running || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()

	next, more := t.tick()

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || gen != t.gen {
		return
	}
	if !more {
		t.running = false
		return
	}
	if next < 0 {
		next = 0
	}
	t.timer = t.clock.AfterFunc(next, func() { t.fire(gen) })
}
