package pacing

import (
	"math"
	"sync"
	"time"

	"github.com/verte-zerg/flowread/internal/clock"
	"github.com/verte-zerg/flowread/internal/schedule"
)

const (
	// RampSteps is the number of speed increments in a ramp.
	RampSteps = 50
	// RampDuration is the time to go from the start to the target speed.
	RampDuration = 5 * time.Second
	// RampStartFraction is the share of the target speed a ramp starts at.
	RampStartFraction = 0.25
)

// Ramp wraps an animator and raises its speed to the target in steps.
// mu is held while the ramp drives inner, so Stop never interleaves with a
// speed step.
type Ramp struct {
	inner   Animator
	task    *schedule.Task
	mu      sync.Mutex
	target  int
	step    int
	stopped bool
}

// NewRamp starts inner at a quarter of target and accelerates it.
func NewRamp(inner Animator, target int, clk clock.Clock) *Ramp {
	r := &Ramp{inner: inner, target: clampWPM(target)}
	inner.SetWPM(RampSpeed(r.target, 0))
	r.task = schedule.New(clk, r.tick)
	return r
}

// RampSpeed is the speed after step of RampSteps.
func RampSpeed(target, step int) int {
	if step > RampSteps {
		step = RampSteps
	}
	start := float64(target) * RampStartFraction
	return clampWPM(int(math.Round(start + (float64(target)-start)*float64(step)/RampSteps)))
}

func (r *Ramp) tick() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// A tick already in flight when Stop ran must not restart inner.
	if r.stopped {
		return 0, false
	}
	r.step++
	r.inner.SetWPM(RampSpeed(r.target, r.step))
	return RampDuration / RampSteps, r.step < RampSteps
}

// Start runs the inner animator and resumes the ramp if it is unfinished.
func (r *Ramp) Start() {
	r.mu.Lock()
	r.stopped = false
	r.inner.Start()
	pending := r.step < RampSteps
	r.mu.Unlock()
	if pending {
		r.task.Start(RampDuration / RampSteps)
	}
}

// Stop freezes both the ramp and the inner animator.
func (r *Ramp) Stop() {
	r.task.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	r.inner.Stop()
}

// SetWPM retargets the ramp.
func (r *Ramp) SetWPM(wpm int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = clampWPM(wpm)
	r.inner.SetWPM(RampSpeed(r.target, r.step))
}

// Position returns the inner animator's position.
func (r *Ramp) Position() int { return r.inner.Position() }

// Running reports whether the inner animator is running.
func (r *Ramp) Running() bool { return r.inner.Running() }
