package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/flowread/internal/model"
)

func TestChart(t *testing.T) {
	var buf bytes.Buffer
	err := Chart(&buf, "Test Chart", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
	}, ChartOptions{Width: 12, Height: 4})
	if err != nil {
		t.Fatalf("Chart failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "Test Chart" {
		t.Fatalf("expected title, got %q", lines[0])
	}
	if len(lines) != 1+4+1 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "    4 │ ") || !strings.HasPrefix(lines[4], "    1 │ ") {
		t.Fatalf("unexpected axis labels:\n%s", buf.String())
	}
	if !strings.Contains(lines[5], "A (solid)") || !strings.Contains(lines[5], "B (dotted)") {
		t.Fatalf("unexpected legend %q", lines[5])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("buffer output should not be colored")
	}
}

func TestChartSkipsEmptySeries(t *testing.T) {
	var buf bytes.Buffer
	if err := Chart(&buf, "Empty", []Series{{Name: "A"}}, ChartOptions{}); err != nil {
		t.Fatalf("Chart failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestChartWidthFor(t *testing.T) {
	if got := ChartWidthFor(80); got != 80-axisLabelWidth-3 {
		t.Fatalf("got %d", got)
	}
	if got := ChartWidthFor(0); got != minChartWidth {
		t.Fatalf("got %d", got)
	}
}

func TestFit(t *testing.T) {
	if got := fit([]float64{0, 10}, 3); got[1] != 5 || got[2] != 10 {
		t.Fatalf("stretch: %v", got)
	}
	if got := fit([]float64{1, 3, 5, 7}, 2); got[0] != 2 || got[1] != 6 {
		t.Fatalf("shrink: %v", got)
	}
}

func TestRenderCurves(t *testing.T) {
	points := []model.ProgressPoint{
		{Speed: 200, Comprehension: 60, EffectiveSpeed: 120},
		{Speed: 250, Comprehension: 80, EffectiveSpeed: 200},
	}
	var buf bytes.Buffer
	if err := RenderCurves(&buf, points, 1, 60, false); err != nil {
		t.Fatalf("RenderCurves failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Speed (WPM)") || !strings.Contains(out, "Comprehension (%)") {
		t.Fatalf("missing chart titles:\n%s", out)
	}
	if !strings.Contains(out, "  100 │ ") {
		t.Fatalf("comprehension chart should use fixed scale:\n%s", out)
	}
}
