// Package session implements the timed reading-session state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/flowread/internal/clock"
	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/pacing"
	"github.com/verte-zerg/flowread/internal/textproc"
	"github.com/verte-zerg/flowread/internal/validate"
)

const (
	// DefaultWPM is the target speed when none is given.
	DefaultWPM = 250
	// DefaultChunkSize is the chunking target when none is given.
	DefaultChunkSize = 3
	// MainReadingLimit stops unattended main reading sessions.
	MainReadingLimit = 5 * time.Minute
)

// ErrNotIdle is returned by Init once a session has started.
var ErrNotIdle = errors.New("session already started")

// State is a lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Store persists texts and sessions.
type Store interface {
	SaveText(ctx context.Context, title, content string) (model.Text, error)
	SaveSession(ctx context.Context, s model.Session) (model.Session, error)
}

// Options configures Init.
type Options struct {
	Title      string
	WPMTarget  int
	ChunkSize  int
	Technique  model.Technique
	LineLength int
	// Trainer replaces the technique animation in training runs.
	Trainer pacing.Trainer
	// MaxDuration auto-finishes the session. Zero uses MainReadingLimit for
	// main reading and no limit otherwise; negative disables it.
	MaxDuration time.Duration
}

// Result is returned by Finish.
type Result struct {
	Session     model.Session
	Text        model.Text
	WordCount   int
	DurationMs  int64
	DurationMin float64
	WPM         int
	WPMTarget   int
	Mode        model.Mode
	Technique   model.Technique
}

// Position is reading progress through the text.
type Position struct {
	WordIndex  int
	Percentage float64
}

// Summary is a snapshot for display.
type Summary struct {
	State     State
	Mode      model.Mode
	Technique model.Technique
	WPMTarget int
	ChunkSize int
	Words     int
	Elapsed   time.Duration
	Position  Position
}

// EventKind identifies an Event.
type EventKind int

const (
	// EventFrame carries an animation frame.
	EventFrame EventKind = iota
	// EventAutoStop carries the result of a session stopped by its time limit.
	EventAutoStop
)

// Event is published to the listener from timer goroutines.
type Event struct {
	Kind   EventKind
	Frame  pacing.Frame
	Result *Result
	Err    error
}

// Option customizes a Session.
type Option func(*Session)

// WithClock injects the time source.
func WithClock(c clock.Clock) Option { return func(s *Session) { s.clock = c } }

// WithLogger injects a logger.
func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

// WithValidator injects the text validator.
func WithValidator(v *validate.Validator) Option { return func(s *Session) { s.validator = v } }

// WithListener receives frames and auto-stop results. It must not call back
// into the session synchronously.
func WithListener(f func(Event)) Option { return func(s *Session) { s.listener = f } }

// Session is one reading run. It is safe for use from the UI goroutine and
// timer callbacks at the same time.
type Session struct {
	store     Store
	clock     clock.Clock
	log       *zap.Logger
	validator *validate.Validator
	listener  func(Event)

	mu          sync.Mutex
	state       State
	bound       bool
	text        model.Text
	content     string
	words       []string
	mode        model.Mode
	opts        Options
	startTime   time.Time
	endTime     time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	animator    pacing.Animator
	offset      int
	limit       clock.Timer
}

// New creates an idle session backed by store.
func New(store Store, opts ...Option) *Session {
	s := &Session{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.validator == nil {
		s.validator = validate.New()
	}
	return s
}

// Init validates and binds text, persisting (or reusing) its Text record.
// A rejected text leaves the session untouched and stores nothing.
func (s *Session) Init(ctx context.Context, content string, mode model.Mode, opts Options) (model.Text, error) {
	if err := s.validator.Text(mode, content); err != nil {
		return model.Text{}, err
	}
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return model.Text{}, ErrNotIdle
	}
	s.mu.Unlock()

	opts = normalize(opts)
	title := validate.SanitizeTitle(opts.Title, s.clock.Now())
	text, err := s.store.SaveText(ctx, title, content)
	if err != nil {
		return model.Text{}, fmt.Errorf("failed to save text: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.content = textproc.CleanText(content)
	s.words = textproc.GetWords(s.content)
	s.mode = mode
	s.opts = opts
	s.bound = true
	s.log.Debug("session initialized",
		zap.String("mode", string(mode)),
		zap.String("text_id", text.ID),
		zap.Int("words", len(s.words)),
		zap.Int("wpm_target", opts.WPMTarget),
		zap.String("technique", string(opts.Technique)))
	return text, nil
}

func normalize(opts Options) Options {
	if opts.WPMTarget == 0 {
		opts.WPMTarget = DefaultWPM
	}
	opts.WPMTarget = pacing.ClampWPM(opts.WPMTarget)
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Technique == "" {
		opts.Technique = model.TechniqueNormal
	}
	if opts.LineLength <= 0 {
		opts.LineLength = textproc.DefaultLineLength
	}
	return opts
}

// Start begins timing. Only valid from idle with a bound text.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle || !s.bound {
		return false
	}
	s.state = StateActive
	s.startTime = s.clock.Now()
	s.animator = s.newAnimatorLocked(0)
	if s.animator != nil {
		s.animator.Start()
	}
	if limit := s.limitLocked(); limit > 0 {
		s.limit = s.clock.AfterFunc(limit, s.autoStop)
	}
	s.log.Info("session started",
		zap.String("mode", string(s.mode)),
		zap.String("technique", string(s.opts.Technique)),
		zap.Int("wpm_target", s.opts.WPMTarget))
	return true
}

func (s *Session) limitLocked() time.Duration {
	switch {
	case s.opts.MaxDuration < 0:
		return 0
	case s.opts.MaxDuration > 0:
		return s.opts.MaxDuration
	case s.mode == model.ModeMain:
		return MainReadingLimit
	default:
		return 0
	}
}

// newAnimatorLocked builds the animation over the words from offset on.
// Frames are shifted back to whole-text word indexes.
func (s *Session) newAnimatorLocked(offset int) pacing.Animator {
	if offset < 0 || offset >= len(s.words) {
		offset = 0
	}
	s.offset = offset
	rest := strings.Join(s.words[offset:], " ")
	popts := pacing.Options{
		WPM:        s.opts.WPMTarget,
		ChunkSize:  s.opts.ChunkSize,
		LineLength: s.opts.LineLength,
	}
	emit := s.frameEmitter(offset)
	if s.mode == model.ModeTraining && s.opts.Trainer != "" {
		a, err := pacing.ForTrainer(s.opts.Trainer, rest, popts, s.clock, emit)
		if err != nil {
			s.log.Warn("unknown trainer, reading unassisted", zap.Error(err))
			return nil
		}
		return a
	}
	return pacing.ForTechnique(s.opts.Technique, rest, popts, s.clock, emit)
}

func (s *Session) frameEmitter(offset int) pacing.Emit {
	total := len(s.words)
	return func(f pacing.Frame) {
		f.WordIndex += offset
		if total > 0 {
			f.Progress = math.Min(1, float64(f.WordIndex+f.WordCount)/float64(total))
		}
		if s.listener != nil {
			s.listener(Event{Kind: EventFrame, Frame: f})
		}
	}
}

// Pause suspends timing and animation. No-op unless active.
func (s *Session) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return false
	}
	s.state = StatePaused
	s.pausedAt = s.clock.Now()
	if s.animator != nil {
		s.animator.Stop()
	}
	s.log.Debug("session paused", zap.Duration("elapsed", s.elapsedLocked()))
	return true
}

// Resume continues a paused session, shifting the start time past the pause.
func (s *Session) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return false
	}
	s.resumeLocked()
	if s.animator != nil {
		s.animator.Start()
	}
	s.log.Debug("session resumed", zap.Duration("paused_total", s.pausedTotal))
	return true
}

func (s *Session) resumeLocked() {
	paused := s.clock.Now().Sub(s.pausedAt)
	s.startTime = s.startTime.Add(paused)
	s.pausedTotal += paused
	s.pausedAt = time.Time{}
	s.state = StateActive
}

// Finish stops the session and persists it. It returns nil once finished
// or before start. A paused session is finished without its current pause.
func (s *Session) Finish(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.state != StateActive && s.state != StatePaused {
		s.mu.Unlock()
		return nil, nil
	}
	if s.state == StatePaused {
		s.resumeLocked()
	}
	s.endTime = s.clock.Now()
	s.state = StateFinished
	if s.animator != nil {
		s.animator.Stop()
	}
	if s.limit != nil {
		s.limit.Stop()
		s.limit = nil
	}
	res := s.resultLocked()
	s.mu.Unlock()

	saved, err := s.store.SaveSession(ctx, res.Session)
	if err != nil {
		s.log.Error("failed to save session", zap.Error(err))
		return res, fmt.Errorf("failed to save session: %w", err)
	}
	res.Session = saved
	s.log.Info("session finished",
		zap.String("session_id", saved.ID),
		zap.Int64("duration_ms", res.DurationMs),
		zap.Int("wpm", res.WPM))
	return res, nil
}

func (s *Session) resultLocked() *Result {
	durationMs := s.endTime.Sub(s.startTime).Milliseconds()
	durationMin := float64(durationMs) / 60000
	wpm := 0
	if durationMin > 0 {
		wpm = int(math.Round(float64(len(s.words)) / durationMin))
	}
	return &Result{
		Session: model.Session{
			Mode:       s.mode,
			TextID:     s.text.ID,
			Words:      len(s.words),
			WPMTarget:  s.opts.WPMTarget,
			ActualWPM:  wpm,
			DurationMs: durationMs,
			Technique:  s.opts.Technique,
			ChunkSize:  s.opts.ChunkSize,
		},
		Text:        s.text,
		WordCount:   len(s.words),
		DurationMs:  durationMs,
		DurationMin: durationMin,
		WPM:         wpm,
		WPMTarget:   s.opts.WPMTarget,
		Mode:        s.mode,
		Technique:   s.opts.Technique,
	}
}

func (s *Session) autoStop() {
	res, err := s.Finish(context.Background())
	if res == nil {
		return
	}
	s.log.Warn("session auto-stopped", zap.Int64("duration_ms", res.DurationMs))
	if s.listener != nil {
		s.listener(Event{Kind: EventAutoStop, Result: res, Err: err})
	}
}

// SetSpeed clamps and applies a new target speed. A running animation is
// restarted at the new rate near its current word.
func (s *Session) SetSpeed(wpm int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	wpm = pacing.ClampWPM(wpm)
	if s.state == StateFinished {
		return s.opts.WPMTarget
	}
	s.opts.WPMTarget = wpm
	if s.animator != nil {
		s.animator.SetWPM(wpm)
	}
	return wpm
}

// ChangeTechnique switches the pacing strategy, continuing from the current word.
func (s *Session) ChangeTechnique(t model.Technique) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateFinished:
		return false
	case StateIdle:
		s.opts.Technique = t
		return true
	}
	pos := s.positionLocked().WordIndex
	if s.animator != nil {
		s.animator.Stop()
	}
	s.opts.Technique = t
	s.animator = s.newAnimatorLocked(pos)
	if s.animator != nil && s.state == StateActive {
		s.animator.Start()
	}
	s.log.Debug("technique changed", zap.String("technique", string(t)), zap.Int("word", pos))
	return true
}

// Elapsed returns reading time excluding pauses.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() time.Duration {
	switch s.state {
	case StateActive:
		return s.clock.Now().Sub(s.startTime)
	case StatePaused:
		return s.pausedAt.Sub(s.startTime)
	case StateFinished:
		return s.endTime.Sub(s.startTime)
	default:
		return 0
	}
}

// CurrentPosition reports the word being read. Without an animation it is
// estimated from elapsed time at the target speed.
func (s *Session) CurrentPosition() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

func (s *Session) positionLocked() Position {
	total := len(s.words)
	if total == 0 {
		return Position{}
	}
	var idx int
	if s.animator != nil {
		idx = s.offset + s.animator.Position()
	} else {
		idx = int(s.elapsedLocked().Minutes() * float64(s.opts.WPMTarget))
	}
	if idx > total {
		idx = total
	}
	return Position{WordIndex: idx, Percentage: float64(idx) / float64(total) * 100}
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Words returns the tokenized text.
func (s *Session) Words() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// Content returns the cleaned text.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Summary returns a display snapshot.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		State:     s.state,
		Mode:      s.mode,
		Technique: s.opts.Technique,
		WPMTarget: s.opts.WPMTarget,
		ChunkSize: s.opts.ChunkSize,
		Words:     len(s.words),
		Elapsed:   s.elapsedLocked(),
		Position:  s.positionLocked(),
	}
}
