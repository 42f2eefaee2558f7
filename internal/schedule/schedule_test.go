package schedule

import (
	"testing"
	"time"

	"github.com/verte-zerg/flowread/internal/clock"
)

func TestTaskTicksUntilDone(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	ticks := 0
	task := New(clk, func() (time.Duration, bool) {
		ticks++
		return 10 * time.Millisecond, ticks < 3
	})
	if !task.Start(0) {
		t.Fatalf("expected start")
	}
	clk.Advance(time.Second)
	if ticks != 3 {
		t.Fatalf("expected 3 ticks, got %d", ticks)
	}
	if task.Running() {
		t.Fatalf("task should have finished")
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", clk.Pending())
	}
}

func TestTaskStopCancelsPendingTick(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	ticks := 0
	task := New(clk, func() (time.Duration, bool) {
		ticks++
		return 10 * time.Millisecond, true
	})
	task.Start(10 * time.Millisecond)
	clk.Advance(25 * time.Millisecond)
	if ticks != 2 {
		t.Fatalf("expected 2 ticks, got %d", ticks)
	}
	if !task.Stop() {
		t.Fatalf("expected stop to report running")
	}
	clk.Advance(time.Second)
	if ticks != 2 {
		t.Fatalf("ticked after stop: %d", ticks)
	}
	if task.Stop() {
		t.Fatalf("second stop should be a no-op")
	}
}

func TestTaskRestartDoesNotDoubleSchedule(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	ticks := 0
	task := New(clk, func() (time.Duration, bool) {
		ticks++
		return 10 * time.Millisecond, true
	})
	task.Start(10 * time.Millisecond)
	if task.Start(0) {
		t.Fatalf("start while running should be a no-op")
	}
	task.Stop()
	task.Start(10 * time.Millisecond)
	clk.Advance(50 * time.Millisecond)
	if ticks != 5 {
		t.Fatalf("expected 5 ticks from a single schedule, got %d", ticks)
	}
	if clk.Pending() != 1 {
		t.Fatalf("expected exactly one pending timer, got %d", clk.Pending())
	}
}

func TestTaskStopFromTick(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	var task *Task
	ticks := 0
	task = New(clk, func() (time.Duration, bool) {
		ticks++
		task.Stop()
		return time.Millisecond, true
	})
	task.Start(0)
	clk.Advance(time.Second)
	if ticks != 1 || task.Running() {
		t.Fatalf("stop inside tick not honored: ticks=%d running=%v", ticks, task.Running())
	}
}
