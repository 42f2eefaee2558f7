// Package drills implements the warm-up exercises: the Schulte table and
// the memory recall drill.
package drills

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/flowread/internal/model"
)

// Schulte table sizes.
const (
	MinSchulteSize     = 3
	MaxSchulteSize     = 7
	DefaultSchulteSize = 5
)

// Schulte is one run of a size×size grid that is cleared by picking
// 1..size² in order.
type Schulte struct {
	Size int
	Grid []int

	target   int
	errors   int
	started  time.Time
	finished time.Time
}

// NewSchulte shuffles a new grid.
func NewSchulte(size int, rnd *rand.Rand) (*Schulte, error) {
	if size < MinSchulteSize || size > MaxSchulteSize {
		return nil, fmt.Errorf("--size must be between %d and %d", MinSchulteSize, MaxSchulteSize)
	}
	grid := make([]int, size*size)
	for i := range grid {
		grid[i] = i + 1
	}
	rnd.Shuffle(len(grid), func(i, j int) { grid[i], grid[j] = grid[j], grid[i] })
	return &Schulte{Size: size, Grid: grid, target: 1}, nil
}

// Start begins timing. Picks before Start are ignored.
func (s *Schulte) Start(now time.Time) {
	if s.started.IsZero() {
		s.started = now
	}
}

// Started reports whether timing has begun.
func (s *Schulte) Started() bool { return !s.started.IsZero() }

// Pick selects the cell at index. Picking the current target advances it;
// any other cell counts as an error.
func (s *Schulte) Pick(index int, now time.Time) bool {
	if !s.Started() || s.Done() || index < 0 || index >= len(s.Grid) {
		return false
	}
	if s.Grid[index] != s.target {
		s.errors++
		return false
	}
	s.target++
	if s.target > len(s.Grid) {
		s.finished = now
	}
	return true
}

// Found reports whether the number has already been picked.
func (s *Schulte) Found(n int) bool { return n < s.target }

// Target is the next number to find.
func (s *Schulte) Target() int { return s.target }

// Errors counts wrong picks.
func (s *Schulte) Errors() int { return s.errors }

// Done reports whether every number was found.
func (s *Schulte) Done() bool { return !s.finished.IsZero() }

// Elapsed is the time since Start, frozen once done.
func (s *Schulte) Elapsed(now time.Time) time.Duration {
	if !s.Started() {
		return 0
	}
	if s.Done() {
		return s.finished.Sub(s.started)
	}
	return now.Sub(s.started)
}

// Result is the drill record of a finished run.
func (s *Schulte) Result() model.Drill {
	d := s.Elapsed(s.finished)
	return model.Drill{
		Type:       model.DrillSchulte,
		DurationMs: d.Milliseconds(),
		Errors:     s.errors,
		Score:      SchulteScore(d, s.errors, s.Size),
		Size:       s.Size,
	}
}

// SchulteScore rates a run against one second per cell, minus five points
// per error.
func SchulteScore(d time.Duration, errors, size int) int {
	base := float64(size*size) * 1000
	ms := float64(d.Milliseconds())
	timeScore := math.Max(0, 100-((ms-base)/base)*50)
	return max(0, int(math.Round(timeScore-float64(errors*5))))
}

// SchulteRating names a score band.
func SchulteRating(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Needs Practice"
	}
}
