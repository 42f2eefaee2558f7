package adaptive

import (
	"testing"

	"github.com/verte-zerg/flowread/internal/model"
)

func points(comp int, effective ...int) []model.ProgressPoint {
	out := make([]model.ProgressPoint, len(effective))
	for i, e := range effective {
		out[i] = model.ProgressPoint{Comprehension: comp, EffectiveSpeed: e}
	}
	return out
}

func TestAdaptiveWPMBounds(t *testing.T) {
	e := Default()
	if got := e.AdaptiveWPM(model.Stats{}, nil); got != 200 {
		t.Fatalf("baseline: got %d", got)
	}
	if got := e.AdaptiveWPM(model.Stats{AvgSpeed: 900, AvgComprehension: 40}, nil); got != 600 {
		t.Fatalf("high speed low comprehension: got %d", got)
	}
	if got := e.AdaptiveWPM(model.Stats{AvgSpeed: 50, AvgComprehension: 40}, nil); got != 100 {
		t.Fatalf("low speed: got %d", got)
	}
	for speed := 1.0; speed <= 2000; speed += 37 {
		for comp := 0.0; comp <= 100; comp += 5 {
			got := e.AdaptiveWPM(model.Stats{AvgSpeed: speed, AvgComprehension: comp}, points(90, 1, 2, 3))
			if got < 100 || got > 600 {
				t.Fatalf("speed %.0f comp %.0f: %d out of bounds", speed, comp, got)
			}
		}
	}
}

func TestAdaptiveWPMRules(t *testing.T) {
	e := Default()
	good := model.Stats{AvgSpeed: 300, AvgComprehension: 85}
	if got := e.AdaptiveWPM(good, points(80, 100, 100, 100)); got != 320 {
		t.Fatalf("increase: got %d", got)
	}
	if got := e.AdaptiveWPM(good, points(80, 100, 100)); got != 300 {
		t.Fatalf("too little history should hold speed: got %d", got)
	}
	if got := e.AdaptiveWPM(good, points(70, 100, 100, 100)); got != 300 {
		t.Fatalf("inconsistent sessions should hold speed: got %d", got)
	}
	if got := e.AdaptiveWPM(model.Stats{AvgSpeed: 250.4, AvgComprehension: 59}, nil); got != 235 {
		t.Fatalf("decrease: got %d", got)
	}
	if got := e.AdaptiveWPM(model.Stats{AvgSpeed: 250.6, AvgComprehension: 70}, nil); got != 251 {
		t.Fatalf("hold should round: got %d", got)
	}
}

func TestAnalyze(t *testing.T) {
	e := Default()
	if got := e.Analyze(points(90, 1, 2)); got != (Analysis{}) {
		t.Fatalf("short history: %+v", got)
	}
	got := e.Analyze(points(80, 500, 100, 110, 120, 90, 95))
	if got.ConsistentlyGood != 5 || !got.Improving {
		t.Fatalf("unexpected analysis %+v", got)
	}
	falling := e.Analyze(points(50, 300, 250, 200, 150, 100))
	if falling.Improving || falling.Declining || falling.ConsistentlyGood != 0 {
		t.Fatalf("unexpected falling analysis %+v", falling)
	}
}

func TestRecommendTechnique(t *testing.T) {
	e := Default()
	cases := []struct {
		speed, comp float64
		want        model.Technique
	}{
		{100, 90, model.TechniqueChunking},
		{300, 59, model.TechniqueChunking},
		{400, 90, model.TechniqueFlash},
		{400, 80, model.TechniquePacer},
		{350, 95, model.TechniquePacer},
		{395, 80, model.TechniquePacer},
	}
	for _, tc := range cases {
		if got := e.RecommendTechnique(model.Stats{AvgSpeed: tc.speed, AvgComprehension: tc.comp}); got != tc.want {
			t.Fatalf("speed %.0f comp %.0f: got %s want %s", tc.speed, tc.comp, got, tc.want)
		}
	}
}

func TestSuggestion(t *testing.T) {
	e := Default()
	if got := e.Suggestion(model.Stats{TotalSessions: 2}, nil); got != "Complete a few more sessions to get personalized recommendations." {
		t.Fatalf("got %q", got)
	}
	cases := []struct {
		name  string
		stats model.Stats
		pts   []model.ProgressPoint
		want  string
	}{
		{
			name:  "increase with pacer",
			stats: model.Stats{AvgSpeed: 300, AvgComprehension: 85, TotalSessions: 10, Improvements: model.Improvements{Effective: 20}},
			pts:   points(80, 1, 2, 3),
			want:  "Great comprehension! Try increasing your speed to 320 WPM (+20). Use the guide band to maintain steady reading rhythm. Excellent progress - keep up the balanced approach!",
		},
		{
			name:  "decrease with chunking",
			stats: model.Stats{AvgSpeed: 200, AvgComprehension: 50, TotalSessions: 4, Improvements: model.Improvements{Effective: -20}},
			want:  "Focus on understanding. Try slowing down to 185 WPM (-15). Use phrase grouping to improve comprehension. Consider trying different reading techniques.",
		},
		{
			name:  "hold with flash",
			stats: model.Stats{AvgSpeed: 400, AvgComprehension: 85, TotalSessions: 3},
			want:  "Try flash reading for advanced speed training.",
		},
	}
	for _, tc := range cases {
		if got := e.Suggestion(tc.stats, tc.pts); got != tc.want {
			t.Fatalf("%s: got %q", tc.name, got)
		}
	}
}

func TestPostQuizSuggestion(t *testing.T) {
	cases := []struct {
		pct   int
		stats model.Stats
		want  string
	}{
		{90, model.Stats{AvgSpeed: 250}, "Great comprehension! Try increasing your speed by 20-30 WPM."},
		{50, model.Stats{}, "Focus on understanding. Try slowing down by 10-20 WPM."},
		{70, model.Stats{TotalSessions: 6, Improvements: model.Improvements{Effective: 11}}, "Excellent progress! Keep up the balanced approach."},
		{70, model.Stats{TotalSessions: 6, Improvements: model.Improvements{Effective: -6}}, "Consider mixing different reading techniques."},
		{90, model.Stats{AvgSpeed: 400, TotalSessions: 3}, ""},
	}
	for _, tc := range cases {
		if got := PostQuizSuggestion(tc.pct, tc.stats); got != tc.want {
			t.Fatalf("pct %d: got %q", tc.pct, got)
		}
	}
}
