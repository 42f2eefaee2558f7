package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/flowread/internal/model"
)

// RenderSummary prints rounded averages and trend deltas.
func RenderSummary(w io.Writer, s model.Stats) error {
	if s.TotalSessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	tbl := table{
		headers: []string{"Metric", "Value", "Trend"},
		rows: [][]string{
			{"Sessions", strconv.Itoa(s.TotalSessions), ""},
			{"Avg speed", fmt.Sprintf("%.0f WPM", s.AvgSpeed), FormatTrend(s.Improvements.Speed)},
			{"Avg comprehension", fmt.Sprintf("%.0f%%", s.AvgComprehension), FormatTrend(s.Improvements.Comprehension)},
			{"Effective speed", fmt.Sprintf("%.0f WPM", s.EffectiveSpeed), FormatTrend(s.Improvements.Effective)},
		},
		right: map[int]bool{1: true, 2: true},
	}
	return writeLines(w, "Summary", tbl.lines())
}

// FormatTrend renders a signed, rounded percent change.
func FormatTrend(v float64) string {
	return fmt.Sprintf("%+.0f%%", v)
}

// RenderSessions prints one row per session, newest first.
func RenderSessions(w io.Writer, sessions []model.Session, comps []model.Comprehension) error {
	if len(sessions) == 0 {
		return nil
	}
	byID := comprehensionIndex(comps)
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		comp := "-"
		if c, ok := byID[s.ID]; ok {
			comp = fmt.Sprintf("%d%%", c.Percentage)
		}
		rows = append(rows, []string{
			s.Date.Local().Format("2006-01-02 15:04"),
			string(s.Mode),
			string(s.Technique),
			strconv.Itoa(s.Words),
			strconv.Itoa(s.WPMTarget),
			strconv.Itoa(s.ActualWPM),
			comp,
		})
	}
	tbl := table{
		headers: []string{"Date", "Mode", "Technique", "Words", "Target", "Actual", "Comp"},
		rows:    rows,
		right:   map[int]bool{3: true, 4: true, 5: true, 6: true},
	}
	return writeLines(w, "Sessions", tbl.lines())
}

// RenderCurves charts speed and effective speed on one scale and
// comprehension on a fixed 0-100 scale, smoothed over window sessions.
func RenderCurves(w io.Writer, points []model.ProgressPoint, window, totalWidth int, color bool) error {
	if len(points) == 0 {
		return nil
	}
	speed := make([]float64, len(points))
	effective := make([]float64, len(points))
	comp := make([]float64, len(points))
	for i, p := range points {
		speed[i] = float64(p.Speed)
		effective[i] = float64(p.EffectiveSpeed)
		comp[i] = float64(p.Comprehension)
	}
	width := 0
	if totalWidth > 0 {
		width = ChartWidthFor(totalWidth)
	}
	if err := Chart(w, "Speed (WPM)", []Series{
		{Name: "Target", Values: MovingAverage(speed, window)},
		{Name: "Effective", Values: MovingAverage(effective, window)},
	}, ChartOptions{Width: width, Color: color}); err != nil {
		return err
	}
	return Chart(w, "Comprehension (%)", []Series{
		{Name: "Comprehension", Values: MovingAverage(comp, window)},
	}, ChartOptions{Width: width, Min: 0, Max: 100, Color: color})
}

func writeLines(w io.Writer, title string, lines []string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
