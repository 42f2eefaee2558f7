package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/flowread/internal/pacing"
	"github.com/verte-zerg/flowread/internal/session"
)

const (
	frameBuffer  = 64
	tickInterval = 250 * time.Millisecond
)

// FrameMsg carries an animation frame from the session.
type FrameMsg struct {
	Frame pacing.Frame
}

// AutoStopMsg is sent when the session hit its time limit.
type AutoStopMsg struct {
	Result *session.Result
	Err    error
}

// tickMsg refreshes clocks and countdowns.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Events bridges session callbacks, which run on timer goroutines, to the
// Bubble Tea loop. Frames are dropped when the UI falls behind; the final
// frame of an animation and auto-stop results never are.
type Events struct {
	frames chan pacing.Frame
	done   chan pacing.Frame
	stops  chan session.Event
}

// NewEvents creates an event bridge.
func NewEvents() *Events {
	return &Events{
		frames: make(chan pacing.Frame, frameBuffer),
		done:   make(chan pacing.Frame, 1),
		stops:  make(chan session.Event, 1),
	}
}

// Publish is the session listener.
func (e *Events) Publish(ev session.Event) {
	switch ev.Kind {
	case session.EventFrame:
		if ev.Frame.Done {
			select {
			case e.done <- ev.Frame:
			default:
			}
			return
		}
		select {
		case e.frames <- ev.Frame:
		default:
		}
	case session.EventAutoStop:
		select {
		case e.stops <- ev:
		default:
		}
	}
}

// wait delivers buffered frames before the final one so the reader never
// sees progress move after completion.
func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-e.frames:
			return FrameMsg{Frame: f}
		default:
		}
		select {
		case f := <-e.frames:
			return FrameMsg{Frame: f}
		case f := <-e.done:
			return FrameMsg{Frame: f}
		case ev := <-e.stops:
			return AutoStopMsg{Result: ev.Result, Err: ev.Err}
		}
	}
}
