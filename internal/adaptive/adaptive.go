// Package adaptive turns reading history into speed and technique
// recommendations.
package adaptive

import (
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/flowread/internal/model"
)

// Rules holds the thresholds of the progression engine.
type Rules struct {
	BaselineWPM int
	MinWPM      int
	MaxWPM      int

	IncreaseComprehension float64
	ConsistentSessions    int
	GoodComprehension     int
	Increase              float64

	DecreaseComprehension float64
	Decrease              float64

	SlowReaderWPM float64
	FastReaderWPM float64
}

// DefaultRules are the stock thresholds.
var DefaultRules = Rules{
	BaselineWPM:           200,
	MinWPM:                100,
	MaxWPM:                600,
	IncreaseComprehension: 80,
	ConsistentSessions:    2,
	GoodComprehension:     75,
	Increase:              20,
	DecreaseComprehension: 60,
	Decrease:              15,
	SlowReaderWPM:         150,
	FastReaderWPM:         350,
}

// Engine applies Rules. The zero value is not usable; use New.
type Engine struct {
	rules Rules
}

// New returns an engine with rules.
func New(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Default returns an engine with DefaultRules.
func Default() *Engine {
	return New(DefaultRules)
}

// Analysis summarizes the last few progress points.
type Analysis struct {
	ConsistentlyGood int
	Improving        bool
	Declining        bool
}

// analysisWindow is how many of the newest points Analyze looks at.
const analysisWindow = 5

// Analyze inspects up to the last five points, ordered oldest first. Fewer
// than three points yield a zero Analysis.
func (e *Engine) Analyze(points []model.ProgressPoint) Analysis {
	if len(points) < 3 {
		return Analysis{}
	}
	recent := points[max(0, len(points)-analysisWindow):]
	var a Analysis
	rises := 0
	for i, p := range recent {
		if p.Comprehension >= e.rules.GoodComprehension {
			a.ConsistentlyGood++
		}
		if i > 0 && p.EffectiveSpeed > recent[i-1].EffectiveSpeed {
			rises++
		}
	}
	a.Improving = rises >= 2
	// TODO: rises never goes negative, so Declining is never set. Track falls
	// separately once the intended rule for a declining streak is settled.
	a.Declining = rises <= -2
	return a
}

// AdaptiveWPM proposes the next target speed, within [MinWPM, MaxWPM].
func (e *Engine) AdaptiveWPM(s model.Stats, points []model.ProgressPoint) int {
	if s.AvgSpeed == 0 {
		return e.rules.BaselineWPM
	}
	a := e.Analyze(points)
	next := s.AvgSpeed
	switch {
	case s.AvgComprehension >= e.rules.IncreaseComprehension && a.ConsistentlyGood >= e.rules.ConsistentSessions:
		next += e.rules.Increase
	case s.AvgComprehension < e.rules.DecreaseComprehension:
		next -= e.rules.Decrease
	}
	return max(e.rules.MinWPM, min(e.rules.MaxWPM, int(math.Round(next))))
}

// RecommendTechnique picks chunking for slow or struggling readers, flash
// for fast accurate ones and the pacer otherwise.
func (e *Engine) RecommendTechnique(s model.Stats) model.Technique {
	switch {
	case s.AvgSpeed < e.rules.SlowReaderWPM || s.AvgComprehension < e.rules.DecreaseComprehension:
		return model.TechniqueChunking
	case s.AvgSpeed > e.rules.FastReaderWPM && s.AvgComprehension > e.rules.IncreaseComprehension:
		return model.TechniqueFlash
	default:
		return model.TechniquePacer
	}
}

// MinSessionsForSuggestion is the history needed before suggestions are
// personalized.
const MinSessionsForSuggestion = 3

// Suggestion composes a speed change, a technique tip and a trend remark.
func (e *Engine) Suggestion(s model.Stats, points []model.ProgressPoint) string {
	if s.TotalSessions < MinSessionsForSuggestion {
		return "Complete a few more sessions to get personalized recommendations."
	}
	technique := e.RecommendTechnique(s)
	next := e.AdaptiveWPM(s, points)
	current := int(math.Round(s.AvgSpeed))

	var b strings.Builder
	switch {
	case next > current:
		fmt.Fprintf(&b, "Great comprehension! Try increasing your speed to %d WPM (+%d). ", next, next-current)
	case next < current:
		fmt.Fprintf(&b, "Focus on understanding. Try slowing down to %d WPM (-%d). ", next, current-next)
	}

	switch {
	case technique == model.TechniqueChunking && s.AvgComprehension < 70:
		b.WriteString("Use phrase grouping to improve comprehension.")
	case technique == model.TechniqueFlash && s.AvgSpeed > 300:
		b.WriteString("Try flash reading for advanced speed training.")
	case technique == model.TechniquePacer:
		b.WriteString("Use the guide band to maintain steady reading rhythm.")
	}

	switch {
	case s.Improvements.Effective > 15:
		b.WriteString(" Excellent progress - keep up the balanced approach!")
	case s.Improvements.Effective < -10:
		b.WriteString(" Consider trying different reading techniques.")
	}
	return strings.TrimSpace(b.String())
}

// PostQuizSuggestion is the hint shown right after a quiz. It is empty when
// nothing stands out.
func PostQuizSuggestion(percentage int, s model.Stats) string {
	switch {
	case percentage >= 80 && s.AvgSpeed < 300:
		return "Great comprehension! Try increasing your speed by 20-30 WPM."
	case percentage < 60:
		return "Focus on understanding. Try slowing down by 10-20 WPM."
	case s.TotalSessions > 5 && s.Improvements.Effective > 10:
		return "Excellent progress! Keep up the balanced approach."
	case s.TotalSessions > 5 && s.Improvements.Effective < -5:
		return "Consider mixing different reading techniques."
	}
	return ""
}
