package stats

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/flowread/internal/model"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// history builds sessions with the given targets, oldest first, and returns
// them newest first as storage does.
func history(targets ...int) []model.Session {
	out := make([]model.Session, len(targets))
	for i, wpm := range targets {
		out[len(targets)-1-i] = model.Session{
			ID:         fmt.Sprintf("s%02d", i),
			Date:       epoch.Add(time.Duration(i) * time.Hour),
			Mode:       model.ModeMain,
			WPMTarget:  wpm,
			DurationMs: 60000,
		}
	}
	return out
}

func quizzes(sessions []model.Session, pct ...int) []model.Comprehension {
	out := make([]model.Comprehension, 0, len(pct))
	for i, p := range pct {
		out = append(out, model.Comprehension{SessionID: sessions[i].ID, Questions: 5, Percentage: p})
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil, nil); got != (model.Stats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestComputeAverages(t *testing.T) {
	sessions := history(200, 300, 400)
	sessions[0].DurationMs = 0 // newest, no duration
	comps := quizzes(sessions, 90, 70)
	comps = append(comps, model.Comprehension{SessionID: "other", Percentage: 10})

	got := Compute(sessions, comps)
	if !near(got.AvgSpeed, 250) {
		t.Fatalf("avg speed %f", got.AvgSpeed)
	}
	if !near(got.AvgComprehension, 80) {
		t.Fatalf("avg comprehension %f", got.AvgComprehension)
	}
	if !near(got.EffectiveSpeed, 200) || got.TotalSessions != 3 {
		t.Fatalf("unexpected stats %+v", got)
	}
	if got.Improvements != (model.Improvements{}) {
		t.Fatalf("trend needs eight sessions, got %+v", got.Improvements)
	}
}

func TestComputeTwentySessionScenario(t *testing.T) {
	targets := make([]int, 20)
	for i := range targets {
		targets[i] = 300 + 10*i
	}
	sessions := history(targets...)
	comps := quizzes(sessions, 90, 90, 90, 90, 90, 70, 70, 70, 70, 70)

	got := Compute(sessions, comps)
	if !near(got.AvgSpeed, 395) || !near(got.AvgComprehension, 80) {
		t.Fatalf("unexpected averages %+v", got)
	}
	if got.Improvements.Speed <= 0 || !near(got.Improvements.Speed, 50.0/420*100) {
		t.Fatalf("speed trend %f", got.Improvements.Speed)
	}
	if !near(got.Improvements.Comprehension, 20.0/70*100) {
		t.Fatalf("comprehension trend %f", got.Improvements.Comprehension)
	}
	if !near(got.Improvements.Effective, (423.0-294)/294*100) {
		t.Fatalf("effective trend %f", got.Improvements.Effective)
	}
}

func TestTrendWithoutPreviousQuizzes(t *testing.T) {
	sessions := history(100, 100, 100, 100, 200, 200, 200, 200)
	got := Compute(sessions, quizzes(sessions, 80))
	if !near(got.Improvements.Speed, 80) {
		t.Fatalf("speed trend %f", got.Improvements.Speed)
	}
	if got.Improvements.Comprehension != 0 || got.Improvements.Effective != 0 {
		t.Fatalf("comprehension trend needs both groups: %+v", got.Improvements)
	}
}

func TestTrendZeroBase(t *testing.T) {
	sessions := history(0, 0, 0, 100, 100, 100, 100, 100)
	if got := Compute(sessions, nil); got.Improvements.Speed != 0 {
		t.Fatalf("zero base should not divide, got %f", got.Improvements.Speed)
	}
}

func TestProgress(t *testing.T) {
	targets := make([]int, 25)
	for i := range targets {
		targets[i] = 200 + i
	}
	sessions := history(targets...)
	points := Progress(sessions, quizzes(sessions, 75))
	if len(points) != DefaultLimit {
		t.Fatalf("expected %d points, got %d", DefaultLimit, len(points))
	}
	first, last := points[0], points[len(points)-1]
	if first.Speed != 205 || last.Speed != 224 {
		t.Fatalf("points not oldest first: %d..%d", first.Speed, last.Speed)
	}
	if last.Comprehension != 75 || last.EffectiveSpeed != 168 {
		t.Fatalf("unexpected newest point %+v", last)
	}
	if first.Comprehension != 0 || first.EffectiveSpeed != 0 {
		t.Fatalf("session without quiz should be zero: %+v", first)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	same := MovingAverage([]float64{1, 5}, 1)
	if same[0] != 1 || same[1] != 5 {
		t.Fatalf("window 1 should copy, got %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("got %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("flat series: got %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("empty series should be empty")
	}
}
