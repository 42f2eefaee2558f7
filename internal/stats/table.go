package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// table lays out rows in padded columns. Columns in right are right-aligned.
type table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

func (t table) columns() int {
	n := len(t.headers)
	for _, r := range t.rows {
		n = max(n, len(r))
	}
	return n
}

func (t table) widths() []int {
	widths := make([]int, t.columns())
	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	measure(t.headers)
	for _, r := range t.rows {
		measure(r)
	}
	return widths
}

func (t table) lines() []string {
	widths := t.widths()
	if len(widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, t.line(t.headers, widths))
	}
	for _, r := range t.rows {
		out = append(out, t.line(r, widths))
	}
	return out
}

func (t table) line(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		pad := strings.Repeat(" ", max(0, w-runewidth.StringWidth(cell)))
		if t.right[i] {
			cells[i] = pad + cell
		} else {
			cells[i] = cell + pad
		}
	}
	return strings.Join(cells, " ")
}
