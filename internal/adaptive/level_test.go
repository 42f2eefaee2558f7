package adaptive

import (
	"strings"
	"testing"

	"github.com/verte-zerg/flowread/internal/model"
)

func TestReadingLevel(t *testing.T) {
	cases := []struct {
		eff, comp float64
		want      Level
	}{
		{300, 80, LevelAdvanced},
		{300, 79, LevelProficient},
		{200, 70, LevelProficient},
		{199, 90, LevelDeveloping},
		{120, 60, LevelDeveloping},
		{119, 60, LevelBeginning},
		{0, 0, LevelBeginning},
	}
	for _, tc := range cases {
		if got := ReadingLevel(model.Stats{EffectiveSpeed: tc.eff, AvgComprehension: tc.comp}); got != tc.want {
			t.Fatalf("eff %.0f comp %.0f: got %s", tc.eff, tc.comp, got)
		}
	}
}

func TestDifficultyAdjustment(t *testing.T) {
	if got := DifficultyAdjustment(LevelBeginning, 0.7); got != -30 {
		t.Fatalf("hard text: %d", got)
	}
	if got := DifficultyAdjustment(LevelAdvanced, 0.5); got != 20 {
		t.Fatalf("easy text: %d", got)
	}
	if got := DifficultyAdjustment(LevelProficient, 0.7); got != 0 {
		t.Fatalf("matched text: %d", got)
	}
	if got := DifficultyAdjustment(Level("unknown"), 0.9); got != -30 {
		t.Fatalf("unknown level should use 0.5: %d", got)
	}
}

func TestSpeedBuckets(t *testing.T) {
	levels := map[int]string{199: "Developing Reader", 200: "Average Reader", 250: "Skilled Reader", 350: "Fast Reader", 500: "Speed Reader"}
	for wpm, want := range levels {
		if got := AssessmentLevel(wpm); got != want {
			t.Fatalf("AssessmentLevel(%d) = %q", wpm, got)
		}
	}
	cats := map[int]string{149: "beginner", 150: "cruiser", 300: "speedster", 500: "champion", 750: "legendary"}
	for wpm, want := range cats {
		if got := SpeedCategory(wpm); got != want {
			t.Fatalf("SpeedCategory(%d) = %q", wpm, got)
		}
	}
}

func TestReport(t *testing.T) {
	e := Default()
	empty := e.Report(model.Stats{}, nil)
	if !strings.HasPrefix(empty, "# FlowRead Progress Report\n\n**Reading Level:** Beginning Reader\n**Total Sessions:** 0\n\n") {
		t.Fatalf("unexpected empty report:\n%s", empty)
	}
	if strings.Contains(empty, "Current Performance") {
		t.Fatalf("empty report should not list performance")
	}

	s := model.Stats{
		AvgSpeed: 320.4, AvgComprehension: 85, EffectiveSpeed: 272.34, TotalSessions: 6,
		Improvements: model.Improvements{Speed: 12.5, Comprehension: -3.25, Effective: 0},
	}
	report := e.Report(s, nil)
	for _, want := range []string{
		"- Reading Speed: 320 WPM\n",
		"- Comprehension: 85%\n",
		"- Effective Speed: 272\n",
		"- Speed: +12.5%\n",
		"- Comprehension: -3.2%\n",
		"- Effective Speed: 0.0%\n",
		"**Recommendation:** ",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("missing %q in:\n%s", want, report)
		}
	}
}
