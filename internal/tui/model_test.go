package tui

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/flowread/internal/clock"
	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/pacing"
	"github.com/verte-zerg/flowread/internal/session"
	"github.com/verte-zerg/flowread/internal/store"
)

const passage = "Reading speed depends on practice and attention. " +
	"Dr. Smith said that most readers can double their pace within six weeks. " +
	"The lab tested 420 readers over several months and found steady gains. " +
	"Readers who paused to review each page retained more of the material because they connected new ideas to old ones."

var (
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newReader(t *testing.T, mode model.Mode, opts Options) (*Model, *store.Store, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 4, 2, 18, 0, 0, 0, time.UTC))
	st, err := store.Open(filepath.Join(t.TempDir(), "flowread.db"), store.WithClock(clk.Now))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	events := NewEvents()
	sess := session.New(st, session.WithClock(clk), session.WithListener(events.Publish))
	if _, err := sess.Init(context.Background(), passage, mode, session.Options{WPMTarget: 250, MaxDuration: -1}); err != nil {
		t.Fatalf("init session: %v", err)
	}
	opts.Rand = rand.New(rand.NewSource(7))
	return NewModel(sess, events, st, opts), st, clk
}

func TestReaderQuizFlow(t *testing.T) {
	m, st, clk := newReader(t, model.ModeMain, Options{Quiz: true, Questions: 3})
	m.Update(spaceKey)
	if m.phase != phaseReading {
		t.Fatalf("expected reading phase, got %d", m.phase)
	}
	clk.Advance(30 * time.Second)
	m.Update(enterKey)
	if m.phase != phaseQuiz || len(m.questions) == 0 {
		t.Fatalf("expected quiz after reading, phase %d", m.phase)
	}
	if got := m.Result().WPM; got != len(m.words)*2 {
		t.Fatalf("unexpected wpm %d for %d words in 30s", got, len(m.words))
	}
	for range m.questions {
		q := m.questions[m.qIndex]
		m.Update(runeKey(string(rune('1' + q.CorrectIndex))))
	}
	if m.phase != phaseResults || m.score.Percentage != 100 {
		t.Fatalf("expected perfect results, phase %d score %+v", m.phase, m.score)
	}
	comps, err := st.AllComprehension(context.Background())
	if err != nil || len(comps) != 1 || comps[0].SessionID != m.Result().Session.ID {
		t.Fatalf("comprehension not stored: %v %+v", err, comps)
	}
	out := m.View()
	if !strings.Contains(out, "(100%)") || !strings.Contains(out, "Excellent comprehension!") {
		t.Fatalf("results missing score:\n%s", out)
	}
	if m.advice == "" || m.nextWPM == 0 {
		t.Fatalf("expected suggestion and next target")
	}
}

func TestReaderPauseAndSpeed(t *testing.T) {
	m, _, _ := newReader(t, model.ModeMain, Options{})
	m.Update(spaceKey)
	m.Update(runeKey("+"))
	if got := m.sess.Summary().WPMTarget; got != 250+SpeedStep {
		t.Fatalf("expected faster target, got %d", got)
	}
	m.Update(spaceKey)
	if m.phase != phasePaused || m.sess.State() != session.StatePaused {
		t.Fatalf("expected paused")
	}
	if !strings.Contains(m.View(), "paused") {
		t.Fatalf("paused status not shown")
	}
	m.Update(spaceKey)
	if m.phase != phaseReading {
		t.Fatalf("expected resumed")
	}
	m.Update(runeKey("t"))
	if got := m.sess.Summary().Technique; got != model.TechniquePacer {
		t.Fatalf("expected pacer after normal, got %s", got)
	}
}

func TestReaderFinishesOnLastFrame(t *testing.T) {
	m, _, clk := newReader(t, model.ModeAssessment, Options{})
	m.Update(spaceKey)
	clk.Advance(20 * time.Second)
	m.Update(FrameMsg{Frame: pacing.Frame{Done: true, Progress: 1}})
	if m.phase != phaseResults || m.Result() == nil {
		t.Fatalf("expected results after last frame")
	}
	out := m.View()
	if !strings.Contains(out, "Reading level:") || !strings.Contains(out, "Speed category:") {
		t.Fatalf("assessment results missing level:\n%s", out)
	}
}

func TestReaderIgnoresAutoStopBeforeStart(t *testing.T) {
	m, _, _ := newReader(t, model.ModeMain, Options{})
	m.Update(AutoStopMsg{})
	if m.phase != phaseReady {
		t.Fatalf("auto-stop before start should be ignored")
	}
}

func TestEventsKeepAutoStop(t *testing.T) {
	e := NewEvents()
	for i := 0; i < frameBuffer*2; i++ {
		e.Publish(session.Event{Kind: session.EventFrame, Frame: pacing.Frame{WordIndex: i}})
	}
	e.Publish(session.Event{Kind: session.EventAutoStop, Result: &session.Result{WPM: 250}})
	if len(e.frames) != frameBuffer || len(e.stops) != 1 {
		t.Fatalf("unexpected buffers: frames %d stops %d", len(e.frames), len(e.stops))
	}
	msg := e.wait()()
	if _, ok := msg.(FrameMsg); !ok {
		if stop, ok := msg.(AutoStopMsg); !ok || stop.Result.WPM != 250 {
			t.Fatalf("unexpected message %T", msg)
		}
	}
}

func TestEventsKeepFinalFrame(t *testing.T) {
	e := NewEvents()
	for i := 0; i < frameBuffer*2; i++ {
		e.Publish(session.Event{Kind: session.EventFrame, Frame: pacing.Frame{WordIndex: i}})
	}
	e.Publish(session.Event{Kind: session.EventFrame, Frame: pacing.Frame{WordIndex: 500, Done: true}})
	if len(e.frames) != frameBuffer || len(e.done) != 1 {
		t.Fatalf("unexpected buffers: frames %d done %d", len(e.frames), len(e.done))
	}
	for i := 0; i < frameBuffer; i++ {
		msg, ok := e.wait()().(FrameMsg)
		if !ok || msg.Frame.Done {
			t.Fatalf("message %d: buffered frames should come first, got %+v", i, msg)
		}
	}
	msg, ok := e.wait()().(FrameMsg)
	if !ok || !msg.Frame.Done || msg.Frame.WordIndex != 500 {
		t.Fatalf("final frame lost, got %+v", msg)
	}
}

func TestStandaloneQuiz(t *testing.T) {
	questions := []model.Question{
		{Type: model.QuestionBasic, Question: "First?", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0},
		{Type: model.QuestionBasic, Question: "Second?", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 1},
	}
	m := NewQuizModel(questions, Options{Rand: rand.New(rand.NewSource(3))})
	first := m.questions[0]
	m.Update(runeKey(string(rune('1' + first.CorrectIndex))))
	wrong := (m.questions[1].CorrectIndex + 1) % 4
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.choice = wrong
	m.Update(enterKey)
	if m.phase != phaseResults || m.score.Correct != 1 || m.score.Percentage != 50 {
		t.Fatalf("unexpected score %+v", m.score)
	}
	if !strings.Contains(m.View(), "Focus on accuracy.") {
		t.Fatalf("feedback missing")
	}
}

func TestNextTechniqueAndOptionIndex(t *testing.T) {
	if nextTechnique(model.TechniqueChunking) != model.TechniqueNormal || nextTechnique("bogus") != model.TechniqueNormal {
		t.Fatalf("unexpected technique cycle")
	}
	cases := map[string]int{"1": 0, "4": 3, "a": 0, "c": 2}
	for in, want := range cases {
		if got, ok := optionIndex(in, 4); !ok || got != want {
			t.Fatalf("optionIndex(%q) = %d,%v", in, got, ok)
		}
	}
	for _, in := range []string{"5", "e", "enter", "0"} {
		if _, ok := optionIndex(in, 4); ok {
			t.Fatalf("optionIndex(%q) should be rejected", in)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(125 * time.Second); got != "2:05" {
		t.Fatalf("got %q", got)
	}
}
