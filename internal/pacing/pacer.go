package pacing

import (
	"math"
	"sync"
	"time"

	"github.com/verte-zerg/flowread/internal/clock"
	"github.com/verte-zerg/flowread/internal/schedule"
	"github.com/verte-zerg/flowread/internal/textproc"
)

// Pacer sweeps a highlight band across the text at a steady rate. The band
// follows per-second pace markers and moves linearly between them.
type Pacer struct {
	mu      sync.Mutex
	clock   clock.Clock
	text    string
	words   int
	markers []textproc.PaceMarker
	wpm     int
	elapsed time.Duration
	last    time.Time
	done    bool
	task    *schedule.Task
	emit    Emit
}

// NewPacer builds a pacer over text.
func NewPacer(text string, wpm int, clk clock.Clock, emit Emit) *Pacer {
	if clk == nil {
		clk = clock.Real{}
	}
	p := &Pacer{clock: clk, text: text, words: textproc.CountWords(text), wpm: clampWPM(wpm), emit: emit}
	p.markers = textproc.GeneratePaceMarkers(text, p.wpm, 1)
	p.task = schedule.New(clk, p.tick)
	return p
}

// Duration is the full sweep time at the current rate.
func (p *Pacer) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.durationLocked()
}

func (p *Pacer) durationLocked() time.Duration {
	wps := float64(p.wpm) / 60
	return time.Duration(float64(p.words) / wps * float64(time.Second))
}

func (p *Pacer) tick() (time.Duration, bool) {
	p.mu.Lock()
	now := p.clock.Now()
	p.elapsed += now.Sub(p.last)
	p.last = now
	progress := 1.0
	if total := p.durationLocked(); total > 0 {
		progress = math.Min(1, float64(p.elapsed)/float64(total))
	}
	frame := Frame{
		WordIndex: p.indexLocked(),
		WordCount: 1,
		Progress:  progress,
		WPM:       p.wpm,
	}
	if progress >= 1 {
		p.done = true
		frame.WordIndex = p.words
		frame.WordCount = 0
		frame.Done = true
	}
	p.mu.Unlock()
	if p.emit != nil {
		p.emit(frame)
	}
	return PacerTick, !frame.Done
}

func (p *Pacer) indexLocked() int {
	if len(p.markers) == 0 {
		return 0
	}
	sec := p.elapsed.Seconds()
	i := min(int(sec), len(p.markers)-1)
	wps := float64(p.wpm) / 60
	idx := p.markers[i].WordIndex + int(math.Floor((sec-float64(i))*wps))
	return min(idx, p.words-1)
}

// Start continues the sweep from where it stopped.
func (p *Pacer) Start() {
	if p.task.Running() {
		return
	}
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.last = p.clock.Now()
	p.mu.Unlock()
	p.task.Start(0)
}

// Stop freezes the band and banks the elapsed sweep time.
func (p *Pacer) Stop() {
	if !p.task.Stop() {
		return
	}
	p.mu.Lock()
	now := p.clock.Now()
	p.elapsed += now.Sub(p.last)
	p.last = now
	p.mu.Unlock()
}

// Running reports whether the band is moving.
func (p *Pacer) Running() bool { return p.task.Running() }

// SetWPM rescales the sweep so the band stays on roughly the same word.
func (p *Pacer) SetWPM(wpm int) {
	running := p.task.Running()
	p.Stop()
	p.mu.Lock()
	oldTotal := p.durationLocked()
	p.wpm = clampWPM(wpm)
	p.markers = textproc.GeneratePaceMarkers(p.text, p.wpm, 1)
	if oldTotal > 0 {
		fraction := float64(p.elapsed) / float64(oldTotal)
		p.elapsed = time.Duration(fraction * float64(p.durationLocked()))
	}
	p.mu.Unlock()
	if running {
		p.Start()
	}
}

// Position returns the word under the band.
func (p *Pacer) Position() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return p.words
	}
	return p.indexLocked()
}
