// Package stats aggregates reading history into averages, trends and
// progress points, and renders them as text.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/flowread/internal/model"
)

const (
	// DefaultLimit is how many recent sessions the stats consider.
	DefaultLimit = 20
	// TrendGroup is the size of the recent and previous trend groups.
	TrendGroup = 5
	// MinTrendGroup is the smallest group a trend is computed from.
	MinTrendGroup = 3
)

const sparkChars = " .:-=+*#%@"

// Compute derives Stats from sessions ordered newest first and the full
// comprehension set.
func Compute(sessions []model.Session, comps []model.Comprehension) model.Stats {
	if len(sessions) == 0 {
		return model.Stats{}
	}
	byID := comprehensionIndex(comps)

	var speedSum float64
	var speedN int
	for _, s := range sessions {
		if s.WPMTarget > 0 && s.DurationMs > 0 {
			speedSum += float64(s.WPMTarget)
			speedN++
		}
	}
	avgSpeed := 0.0
	if speedN > 0 {
		avgSpeed = speedSum / float64(speedN)
	}
	avgComp, _ := meanComprehension(sessions, byID)

	return model.Stats{
		AvgSpeed:         avgSpeed,
		AvgComprehension: avgComp,
		EffectiveSpeed:   avgSpeed * avgComp / 100,
		TotalSessions:    len(sessions),
		Improvements:     trend(sessions, byID),
	}
}

func comprehensionIndex(comps []model.Comprehension) map[string]model.Comprehension {
	m := make(map[string]model.Comprehension, len(comps))
	for _, c := range comps {
		m[c.SessionID] = c
	}
	return m
}

// meanComprehension averages the quiz results that belong to sessions.
func meanComprehension(sessions []model.Session, byID map[string]model.Comprehension) (float64, int) {
	var sum float64
	var n int
	for _, s := range sessions {
		if c, ok := byID[s.ID]; ok {
			sum += float64(c.Percentage)
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// meanTarget averages target speeds over every session in the group.
func meanTarget(sessions []model.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sessions {
		sum += float64(s.WPMTarget)
	}
	return sum / float64(len(sessions))
}

func trend(sessions []model.Session, byID map[string]model.Comprehension) model.Improvements {
	if len(sessions) < TrendGroup+MinTrendGroup {
		return model.Improvements{}
	}
	recent := sessions[:TrendGroup]
	previous := sessions[TrendGroup:min(len(sessions), 2*TrendGroup)]

	var imp model.Improvements
	recentSpeed, previousSpeed := meanTarget(recent), meanTarget(previous)
	imp.Speed = percentChange(recentSpeed, previousSpeed)

	recentComp, rn := meanComprehension(recent, byID)
	previousComp, pn := meanComprehension(previous, byID)
	if rn > 0 && pn > 0 {
		imp.Comprehension = percentChange(recentComp, previousComp)
		imp.Effective = percentChange(recentSpeed*recentComp/100, previousSpeed*previousComp/100)
	}
	return imp
}

func percentChange(current, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (current - base) / base * 100
}

// Progress projects the newest DefaultLimit sessions into points ordered
// oldest first. Sessions without a quiz have zero comprehension.
func Progress(sessions []model.Session, comps []model.Comprehension) []model.ProgressPoint {
	if len(sessions) > DefaultLimit {
		sessions = sessions[:DefaultLimit]
	}
	byID := comprehensionIndex(comps)
	points := make([]model.ProgressPoint, len(sessions))
	for i, s := range sessions {
		p := model.ProgressPoint{Date: s.Date, Speed: s.WPMTarget, Mode: s.Mode}
		if c, ok := byID[s.ID]; ok {
			p.Comprehension = c.Percentage
			if s.WPMTarget > 0 {
				p.EffectiveSpeed = int(math.Round(float64(s.WPMTarget) * float64(c.Percentage) / 100))
			}
		}
		points[len(sessions)-1-i] = p
	}
	return points
}

// MovingAverage smooths values with a trailing window. Leading values
// average over what is available.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders values on one line of ASCII intensity characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := bounds(values)
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	top := float64(len(sparkChars) - 1)
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * top))
		b.WriteByte(sparkChars[max(0, min(idx, len(sparkChars)-1))])
	}
	return b.String()
}

func bounds(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
