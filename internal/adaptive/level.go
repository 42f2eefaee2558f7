package adaptive

import (
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/flowread/internal/model"
)

// Level is an overall reading level derived from stats.
type Level string

const (
	LevelBeginning  Level = "Beginning Reader"
	LevelDeveloping Level = "Developing Reader"
	LevelProficient Level = "Proficient Reader"
	LevelAdvanced   Level = "Advanced Reader"
)

// ReadingLevel grades effective speed and comprehension together.
func ReadingLevel(s model.Stats) Level {
	switch {
	case s.EffectiveSpeed >= 300 && s.AvgComprehension >= 80:
		return LevelAdvanced
	case s.EffectiveSpeed >= 200 && s.AvgComprehension >= 70:
		return LevelProficient
	case s.EffectiveSpeed >= 120 && s.AvgComprehension >= 60:
		return LevelDeveloping
	default:
		return LevelBeginning
	}
}

var levelCapability = map[Level]float64{
	LevelBeginning:  0.3,
	LevelDeveloping: 0.5,
	LevelProficient: 0.7,
	LevelAdvanced:   0.9,
}

// DifficultyAdjustment suggests a WPM offset for a text of the given
// difficulty in [0,1]: slower for texts well above the reader's level,
// faster for easy ones.
func DifficultyAdjustment(level Level, difficulty float64) int {
	capability, ok := levelCapability[level]
	if !ok {
		capability = 0.5
	}
	gap := difficulty - capability
	switch {
	case gap > 0.3:
		return -30
	case gap < -0.2:
		return 20
	}
	return 0
}

// AssessmentLevel names a single measured speed.
func AssessmentLevel(wpm int) string {
	switch {
	case wpm < 200:
		return "Developing Reader"
	case wpm < 250:
		return "Average Reader"
	case wpm < 350:
		return "Skilled Reader"
	case wpm < 500:
		return "Fast Reader"
	default:
		return "Speed Reader"
	}
}

// SpeedCategory buckets a speed-test result.
func SpeedCategory(wpm int) string {
	switch {
	case wpm < 150:
		return "beginner"
	case wpm < 300:
		return "cruiser"
	case wpm < 500:
		return "speedster"
	case wpm < 750:
		return "champion"
	default:
		return "legendary"
	}
}

// Report renders a Markdown progress report.
func (e *Engine) Report(s model.Stats, points []model.ProgressPoint) string {
	var b strings.Builder
	b.WriteString("# FlowRead Progress Report\n\n")
	fmt.Fprintf(&b, "**Reading Level:** %s\n", ReadingLevel(s))
	fmt.Fprintf(&b, "**Total Sessions:** %d\n\n", s.TotalSessions)
	if s.TotalSessions > 0 {
		b.WriteString("**Current Performance:**\n")
		fmt.Fprintf(&b, "- Reading Speed: %.0f WPM\n", math.Round(s.AvgSpeed))
		fmt.Fprintf(&b, "- Comprehension: %.0f%%\n", math.Round(s.AvgComprehension))
		fmt.Fprintf(&b, "- Effective Speed: %.0f\n\n", math.Round(s.EffectiveSpeed))
		if s.TotalSessions > 5 {
			b.WriteString("**Recent Improvements:**\n")
			fmt.Fprintf(&b, "- Speed: %s%%\n", signed(s.Improvements.Speed))
			fmt.Fprintf(&b, "- Comprehension: %s%%\n", signed(s.Improvements.Comprehension))
			fmt.Fprintf(&b, "- Effective Speed: %s%%\n\n", signed(s.Improvements.Effective))
		}
	}
	if suggestion := e.Suggestion(s, points); suggestion != "" {
		fmt.Fprintf(&b, "**Recommendation:** %s\n", suggestion)
	}
	return b.String()
}

func signed(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.1f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
