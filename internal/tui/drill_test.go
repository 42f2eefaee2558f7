package tui

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/flowread/internal/drills"
	"github.com/verte-zerg/flowread/internal/model"
)

type drillRecorder struct {
	saved []model.Drill
	fail  error
}

func (r *drillRecorder) SaveDrill(_ context.Context, d model.Drill) (model.Drill, error) {
	if r.fail != nil {
		return model.Drill{}, r.fail
	}
	d.ID = "drill"
	r.saved = append(r.saved, d)
	return d, nil
}

func TestSchulteModelRun(t *testing.T) {
	game, err := drills.NewSchulte(3, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("NewSchulte: %v", err)
	}
	rec := &drillRecorder{}
	m := NewSchulteModel(game, rec, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Update(spaceKey)
	if !game.Started() {
		t.Fatalf("space should start the drill")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 4 {
		t.Fatalf("expected cursor in the center, got %d", m.cursor)
	}
	for n := 1; n <= 9; n++ {
		if n == 1 {
			m.cursor = indexOf(game.Grid, 2)
			m.Update(enterKey)
			if !m.missed || game.Errors() != 1 {
				t.Fatalf("wrong pick should be a miss")
			}
		}
		m.cursor = indexOf(game.Grid, n)
		now = now.Add(time.Second)
		m.Update(enterKey)
	}
	if len(rec.saved) != 1 {
		t.Fatalf("expected one saved drill, got %d", len(rec.saved))
	}
	d := rec.saved[0]
	if d.Type != model.DrillSchulte || d.Size != 3 || d.Errors != 1 || d.DurationMs != 9000 {
		t.Fatalf("unexpected drill %+v", d)
	}
	if out := m.View(); !strings.Contains(out, "Score: 95 (Excellent)") {
		t.Fatalf("results missing score:\n%s", out)
	}
}

func indexOf(grid []int, n int) int {
	for i, v := range grid {
		if v == n {
			return i
		}
	}
	return -1
}

func TestMemoryModelRun(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &drillRecorder{}
	p := drills.Passages[1]
	m := NewMemoryModel(p, rec, nil, start)

	m.Update(tickMsg(start.Add(2 * time.Second)))
	if m.phase != memoryCountdown {
		t.Fatalf("countdown should still run")
	}
	m.Update(tickMsg(start.Add(3 * time.Second)))
	if m.phase != memoryReading || !strings.Contains(m.View(), "smartphone") {
		t.Fatalf("expected passage after countdown")
	}
	m.Update(tickMsg(start.Add(18 * time.Second)))
	if m.phase != memoryQuestions || m.readFor != drills.MemoryReadTime {
		t.Fatalf("passage should hide after read time, phase %d read %v", m.phase, m.readFor)
	}
	for i, q := range p.Questions {
		answer := q.Correct
		if i == 0 {
			answer = (q.Correct + 1) % len(q.Options)
		}
		m.Update(runeKey(string(rune('1' + answer))))
	}
	if len(rec.saved) != 1 || rec.saved[0].Score != 67 || rec.saved[0].DurationMs != 15000 {
		t.Fatalf("unexpected saved drill %+v", rec.saved)
	}
	if out := m.View(); !strings.Contains(out, "Recall: 2/3 (67%)") || !strings.Contains(out, "Good recall ability.") {
		t.Fatalf("results missing:\n%s", out)
	}
}

func TestMemoryModelEarlyHideAndSaveError(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &drillRecorder{fail: errors.New("disk full")}
	m := NewMemoryModel(drills.Passages[0], rec, nil, start)
	m.Update(tickMsg(start.Add(3 * time.Second)))
	m.Update(tickMsg(start.Add(8 * time.Second)))
	m.Update(enterKey)
	if m.phase != memoryQuestions || m.readFor != 5*time.Second {
		t.Fatalf("enter should hide the passage early, read %v", m.readFor)
	}
	for range drills.Passages[0].Questions {
		m.Update(enterKey)
	}
	if m.phase != memoryResults || !strings.Contains(m.View(), "failed to save drill") {
		t.Fatalf("save error should be shown")
	}
}
