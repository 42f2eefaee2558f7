package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// wrapWords breaks words into lines no wider than width cells. Each line
// holds the indexes of its words. A word wider than width gets its own line.
func wrapWords(words []string, width int) [][]int {
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		line := make([]int, len(words))
		for i := range words {
			line[i] = i
		}
		return [][]int{line}
	}
	var lines [][]int
	var line []int
	lineWidth := 0
	for i, w := range words {
		ww := runewidth.StringWidth(w)
		if len(line) > 0 && lineWidth+1+ww > width {
			lines = append(lines, line)
			line = nil
			lineWidth = 0
		}
		if len(line) > 0 {
			lineWidth++
		}
		line = append(line, i)
		lineWidth += ww
	}
	return append(lines, line)
}

// lineOf returns the line containing word, or the last line past the end.
func lineOf(lines [][]int, word int) int {
	for i, line := range lines {
		if len(line) > 0 && word <= line[len(line)-1] {
			return i
		}
	}
	return len(lines) - 1
}

// renderBand styles lines above current as read, the current line as the
// pacer band, and the rest as pending. A negative current renders the text plain.
func renderBand(words []string, lines [][]int, current int) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		parts := make([]string, len(line))
		for j, idx := range line {
			parts[j] = words[idx]
		}
		text := strings.Join(parts, " ")
		var style lipgloss.Style
		switch {
		case current < 0:
			style = textStyle
		case i < current:
			style = readStyle
		case i == current:
			style = bandStyle
		default:
			style = pendingStyle
		}
		out[i] = style.Render(text)
	}
	return out
}

// window returns at most height lines keeping current roughly a third
// of the way down.
func window(lines []string, current, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := max(0, current-height/3)
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}
