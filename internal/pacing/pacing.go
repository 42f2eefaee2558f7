// Package pacing drives technique animations (pacer band, flash, chunks and
// trainers) and publishes frames for a presentation layer to render.
package pacing

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/flowread/internal/clock"
	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/schedule"
	"github.com/verte-zerg/flowread/internal/textproc"
)

const (
	// FlashGap is the blank pause between flashed words.
	FlashGap = 50 * time.Millisecond
	// PacerTick is the pacer band refresh interval.
	PacerTick = 50 * time.Millisecond
	// PhraseWords is the phrase trainer unit size.
	PhraseWords = 6
	// LineGap is the pause after each line in the line trainer.
	LineGap = 150 * time.Millisecond
)

// Trainer names a training-mode animation.
type Trainer string

const (
	TrainerWord   Trainer = "word"
	TrainerPhrase Trainer = "phrase"
	TrainerLine   Trainer = "line"
	TrainerRamp   Trainer = "ramp"
)

// Frame is one display update.
type Frame struct {
	WordIndex int
	WordCount int
	Text      string
	Progress  float64
	WPM       int
	Done      bool
}

// Animator is a pausable technique animation.
type Animator interface {
	// Start begins or continues from the current position.
	Start()
	// Stop freezes the animation and cancels pending ticks.
	Stop()
	// SetWPM changes the rate, restarting the animation if it was running.
	SetWPM(wpm int)
	// Position returns the index of the word currently shown.
	Position() int
	// Running reports whether ticks are pending.
	Running() bool
}

// Options configures an animator.
type Options struct {
	WPM        int
	ChunkSize  int
	LineLength int
}

// Emit receives frames. It is called outside animator locks.
type Emit func(Frame)

// ForTechnique returns the animator for t, or nil for unassisted reading.
func ForTechnique(t model.Technique, text string, opts Options, clk clock.Clock, emit Emit) Animator {
	switch t {
	case model.TechniquePacer:
		return NewPacer(text, opts.WPM, clk, emit)
	case model.TechniqueFlash:
		return NewFlash(text, opts.WPM, clk, emit)
	case model.TechniqueChunking:
		return NewChunker(text, opts.ChunkSize, opts.WPM, clk, emit)
	default:
		return nil
	}
}

// ForTrainer returns the animator for a training mode.
func ForTrainer(tr Trainer, text string, opts Options, clk clock.Clock, emit Emit) (Animator, error) {
	switch tr {
	case TrainerWord:
		return NewWordTrainer(text, opts.WPM, clk, emit), nil
	case TrainerPhrase:
		return NewPhraseTrainer(text, opts.WPM, clk, emit), nil
	case TrainerLine:
		return NewLineTrainer(text, opts.LineLength, opts.WPM, clk, emit), nil
	case TrainerRamp:
		return NewRamp(NewFlash(text, opts.WPM, clk, emit), opts.WPM, clk), nil
	default:
		return nil, fmt.Errorf("unknown trainer %q", tr)
	}
}

// Unit is one displayed step of a sequence.
type Unit struct {
	Text  string
	Start int
	Words int
}

// DelayFunc returns how long a unit stays on screen at wpm.
type DelayFunc func(u Unit, wpm int) time.Duration

// Sequence shows units one at a time, each for its own dwell.
type Sequence struct {
	mu         sync.Mutex
	units      []Unit
	totalWords int
	next       int
	cur        int
	done       bool
	wpm        int
	delay      DelayFunc
	task       *schedule.Task
	emit       Emit
}

// NewSequence builds a sequence animator.
func NewSequence(units []Unit, wpm int, delay DelayFunc, clk clock.Clock, emit Emit) *Sequence {
	s := &Sequence{units: units, cur: -1, wpm: clampWPM(wpm), delay: delay, emit: emit}
	for _, u := range units {
		s.totalWords += u.Words
	}
	s.task = schedule.New(clk, s.tick)
	return s
}

func (s *Sequence) tick() (time.Duration, bool) {
	s.mu.Lock()
	if s.next >= len(s.units) {
		s.done = true
		frame := Frame{WordIndex: s.totalWords, Progress: 1, WPM: s.wpm, Done: true}
		s.mu.Unlock()
		s.send(frame)
		return 0, false
	}
	u := s.units[s.next]
	frame := Frame{
		WordIndex: u.Start,
		WordCount: u.Words,
		Text:      u.Text,
		Progress:  s.progressLocked(u.Start + u.Words),
		WPM:       s.wpm,
	}
	d := s.delay(u, s.wpm)
	s.cur = s.next
	s.next++
	s.mu.Unlock()
	s.send(frame)
	return d, true
}

func (s *Sequence) progressLocked(read int) float64 {
	if s.totalWords == 0 {
		return 1
	}
	return float64(read) / float64(s.totalWords)
}

func (s *Sequence) send(f Frame) {
	if s.emit != nil {
		s.emit(f)
	}
}

// Start continues with the unit that was on screen when stopped.
func (s *Sequence) Start() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if !done {
		s.task.Start(0)
	}
}

// Stop freezes the sequence. The unit on screen is shown again on Start.
func (s *Sequence) Stop() {
	if !s.task.Stop() {
		return
	}
	s.mu.Lock()
	if s.cur >= 0 {
		s.next = s.cur
	}
	s.mu.Unlock()
}

// Running reports whether the sequence is ticking.
func (s *Sequence) Running() bool { return s.task.Running() }

// SetWPM changes the dwell rate. A running sequence restarts on the current unit.
func (s *Sequence) SetWPM(wpm int) {
	running := s.task.Running()
	s.Stop()
	s.mu.Lock()
	s.wpm = clampWPM(wpm)
	s.mu.Unlock()
	if running {
		s.Start()
	}
}

// Position returns the first word of the unit on screen.
func (s *Sequence) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return s.totalWords
	}
	if s.cur < 0 {
		return 0
	}
	return s.units[s.cur].Start
}

// MsPerWord is the base dwell for one word at wpm.
func MsPerWord(wpm int) time.Duration {
	return time.Duration(float64(time.Minute) / float64(clampWPM(wpm)))
}

// FlashDelay lengthens the dwell for words that end a clause or sentence.
func FlashDelay(u Unit, wpm int) time.Duration {
	base := float64(MsPerWord(wpm))
	switch {
	case strings.ContainsAny(lastRune(u.Text), ".!?"):
		base *= 2
	case strings.ContainsAny(lastRune(u.Text), ",;:"):
		base *= 1.5
	}
	return time.Duration(base) + FlashGap
}

func lastRune(s string) string {
	r, _ := utf8.DecodeLastRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// WordTrainerDelay scales dwell with word length.
func WordTrainerDelay(u Unit, wpm int) time.Duration {
	length := float64(utf8.RuneCountInString(u.Text))
	factor := 0.8 + math.Min(length/5, 2)*0.4
	return time.Duration(float64(MsPerWord(wpm)) * factor)
}

// WordsDelay gives every word in the unit the base dwell.
func WordsDelay(u Unit, wpm int) time.Duration {
	return MsPerWord(wpm) * time.Duration(u.Words)
}

func wordUnits(text string) []Unit {
	words := textproc.GetWords(text)
	units := make([]Unit, len(words))
	for i, w := range words {
		units[i] = Unit{Text: w, Start: i, Words: 1}
	}
	return units
}

func chunkUnits(chunks []textproc.Chunk) []Unit {
	units := make([]Unit, len(chunks))
	for i, c := range chunks {
		units[i] = Unit{Text: c.Text, Start: c.Start, Words: len(c.Words)}
	}
	return units
}

// NewFlash reveals one word at a time.
func NewFlash(text string, wpm int, clk clock.Clock, emit Emit) *Sequence {
	return NewSequence(wordUnits(text), wpm, FlashDelay, clk, emit)
}

// NewChunker shows phrase-aware chunks of about chunkSize words.
func NewChunker(text string, chunkSize, wpm int, clk clock.Clock, emit Emit) *Sequence {
	return NewSequence(chunkUnits(textproc.CreateSmartChunks(text, chunkSize)), wpm, WordsDelay, clk, emit)
}

// NewWordTrainer flashes words with length-scaled dwell.
func NewWordTrainer(text string, wpm int, clk clock.Clock, emit Emit) *Sequence {
	return NewSequence(wordUnits(text), wpm, WordTrainerDelay, clk, emit)
}

// NewPhraseTrainer shows fixed six-word phrases.
func NewPhraseTrainer(text string, wpm int, clk clock.Clock, emit Emit) *Sequence {
	return NewSequence(chunkUnits(textproc.CreateChunks(text, PhraseWords)), wpm, WordsDelay, clk, emit)
}

// NewLineTrainer advances through wrapped display lines.
func NewLineTrainer(text string, lineLength, wpm int, clk clock.Clock, emit Emit) *Sequence {
	var units []Unit
	start := 0
	for _, line := range textproc.WrapLines(text, lineLength) {
		n := textproc.CountWords(line)
		units = append(units, Unit{Text: line, Start: start, Words: n})
		start += n
	}
	return NewSequence(units, wpm, func(u Unit, wpm int) time.Duration {
		return WordsDelay(u, wpm) + LineGap
	}, clk, emit)
}

// MinWPM and MaxWPM bound every speed setting.
const (
	MinWPM = 50
	MaxWPM = 1000
)

// ClampWPM bounds wpm to [MinWPM, MaxWPM].
func ClampWPM(wpm int) int { return clampWPM(wpm) }

func clampWPM(wpm int) int {
	if wpm < MinWPM {
		return MinWPM
	}
	if wpm > MaxWPM {
		return MaxWPM
	}
	return wpm
}
