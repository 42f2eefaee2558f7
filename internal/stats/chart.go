package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named line on a chart.
type Series struct {
	Name   string
	Values []float64
}

// ChartOptions sizes and scales a chart. A zero Min and Max scale to the data.
type ChartOptions struct {
	Width  int
	Height int
	Min    float64
	Max    float64
	Color  bool
}

const (
	defaultChartHeight = 8
	minChartWidth      = 10
	fallbackTermWidth  = 80
	axisLabelWidth     = 5
	axisSeparator      = " │ "
	colorReset         = "\x1b[0m"
)

var seriesColors = []string{"\x1b[36m", "\x1b[33m", "\x1b[35m", "\x1b[32m"}

// ChartWidthFor returns the plot area width that fits totalWidth columns.
func ChartWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	return max(minChartWidth, totalWidth-axisLabelWidth-runewidth.StringWidth(axisSeparator))
}

// Chart draws series as braille lines on a shared vertical scale.
func Chart(w io.Writer, title string, series []Series, opts ChartOptions) error {
	var drawn []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			drawn = append(drawn, s)
		}
	}
	if len(drawn) == 0 {
		return nil
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = ChartWidthFor(terminalWidth())
	}
	width = max(width, minChartWidth)
	if height <= 0 {
		height = defaultChartHeight
	}

	lo, hi := opts.Min, opts.Max
	if lo == 0 && hi == 0 {
		var all []float64
		for _, s := range drawn {
			all = append(all, s.Values...)
		}
		lo, hi = bounds(all)
	}
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}

	layers := make([]*canvas, len(drawn))
	for i, s := range drawn {
		c := newCanvas(width, height)
		points := fit(s.Values, width)
		px, py := -1, -1
		for x, v := range points {
			y := c.row(v, lo, hi)
			if px < 0 {
				c.set(2*x, y)
			} else {
				c.line(px, py, 2*x, y, i == 0)
			}
			px, py = 2*x, y
		}
		layers[i] = c
	}

	color := opts.Color || isColorTerminal(w)
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for row := 0; row < height; row++ {
		b.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, axisLabel(row, height, lo, hi), axisSeparator))
		for col := 0; col < width; col++ {
			var mask uint8
			owner := -1
			for i, c := range layers {
				if m := c.cells[row][col]; m != 0 {
					if owner < 0 {
						owner = i
					}
					mask |= m
				}
			}
			ch := string(rune(0x2800 + int(mask)))
			if color && owner >= 0 {
				ch = seriesColors[owner%len(seriesColors)] + ch + colorReset
			}
			b.WriteString(ch)
		}
		b.WriteByte('\n')
	}
	names := make([]string, len(drawn))
	for i, s := range drawn {
		style := "solid"
		if i > 0 {
			style = "dotted"
		}
		names[i] = fmt.Sprintf("%s (%s)", s.Name, style)
	}
	b.WriteString("Legend: " + strings.Join(names, "  ") + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func axisLabel(row, height int, lo, hi float64) string {
	switch row {
	case 0:
		return fmt.Sprintf("%.0f", hi)
	case height - 1:
		return fmt.Sprintf("%.0f", lo)
	case height / 2:
		return fmt.Sprintf("%.0f", (hi+lo)/2)
	}
	return ""
}

// canvas is a grid of braille cells, two dots wide and four tall.
type canvas struct {
	cells [][]uint8
}

func newCanvas(width, height int) *canvas {
	c := &canvas{cells: make([][]uint8, height)}
	for i := range c.cells {
		c.cells[i] = make([]uint8, width)
	}
	return c
}

// row maps v to a dot row, top is hi.
func (c *canvas) row(v, lo, hi float64) int {
	dots := len(c.cells) * 4
	pos := (v - lo) / (hi - lo)
	r := int(math.Round((1 - pos) * float64(dots-1)))
	return max(0, min(r, dots-1))
}

var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func (c *canvas) set(x, y int) {
	if y < 0 || y/4 >= len(c.cells) || x < 0 || x/2 >= len(c.cells[0]) {
		return
	}
	c.cells[y/4][x/2] |= dotBits[x%2][y%4]
}

// line plots a Bresenham segment. Dotted lines skip every other column.
func (c *canvas) line(x0, y0, x1, y1 int, solid bool) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if solid || x0%4 == 0 {
			c.set(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			if x0 == x1 {
				return
			}
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				return
			}
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// fit resamples values to n points: bucket means when shrinking, linear
// interpolation when stretching.
func fit(values []float64, n int) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == n:
		copy(out, values)
	case len(values) > n:
		for i := range out {
			start := i * len(values) / n
			end := max((i+1)*len(values)/n, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		step := float64(len(values)-1) / float64(n-1)
		for i := range out {
			pos := float64(i) * step
			j := min(int(pos), len(values)-2)
			frac := pos - float64(j)
			out[i] = values[j]*(1-frac) + values[j+1]*frac
		}
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

func isColorTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
