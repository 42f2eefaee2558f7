// Package tui provides the Bubble Tea reading, quiz and drill screens.
package tui

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/flowread/internal/adaptive"
	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/pacing"
	"github.com/verte-zerg/flowread/internal/quiz"
	"github.com/verte-zerg/flowread/internal/session"
	"github.com/verte-zerg/flowread/internal/stats"
	"github.com/verte-zerg/flowread/internal/textproc"
)

// SpeedStep is the WPM change per faster/slower key press.
const SpeedStep = 25

type phase int

const (
	phaseReady phase = iota
	phaseReading
	phasePaused
	phaseQuiz
	phaseResults
)

var (
	textStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	readStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	bandStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#3A3222"))
	flashStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	errorStyle     = incorrectStyle
)

// Repository is the store surface used by the reader.
type Repository interface {
	session.Store
	stats.Source
	SaveComprehension(ctx context.Context, sessionID string, questions, correct int) (model.Comprehension, error)
}

// Options configures the reader.
type Options struct {
	// Quiz asks comprehension questions after reading.
	Quiz bool
	// Questions is the number of questions to generate.
	Questions int
	Engine    *adaptive.Engine
	Generator *quiz.Generator
	Rand      *rand.Rand
	Log       *zap.Logger
}

// Model implements the Bubble Tea reading UI: ready, reading, paused,
// quiz and results.
type Model struct {
	sess   *session.Session
	events *Events
	repo   Repository
	opts   Options
	keys   keyMap
	help   help.Model
	bar    progress.Model

	phase phase
	words []string
	frame pacing.Frame

	width  int
	height int

	result    *session.Result
	questions []model.Question
	answers   []int
	qIndex    int
	choice    int
	score     quiz.Result
	advice    string
	nextWPM   int
	errMsg    string
}

// NewModel builds a reader for a session whose listener is events.Publish.
// The session must already be initialized.
func NewModel(sess *session.Session, events *Events, repo Repository, opts Options) *Model {
	m := newModel(repo, opts)
	m.sess = sess
	m.events = events
	m.words = sess.Words()
	return m
}

// NewQuizModel builds a standalone quiz over questions. Nothing is stored.
func NewQuizModel(questions []model.Question, opts Options) *Model {
	m := newModel(nil, opts)
	m.startQuiz(questions)
	return m
}

func newModel(repo Repository, opts Options) *Model {
	if opts.Questions <= 0 {
		opts.Questions = quiz.DefaultQuestions
	}
	if opts.Engine == nil {
		opts.Engine = adaptive.Default()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Generator == nil {
		opts.Generator = quiz.New(opts.Log)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Model{
		repo: repo,
		opts: opts,
		keys: defaultKeyMap(),
		help: help.New(),
		bar:  progress.New(progress.WithSolidFill("#C89A3A"), progress.WithoutPercentage()),
	}
}

// Result returns the finished session, if any.
func (m *Model) Result() *session.Result { return m.result }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return m.events.wait()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, m.contentWidth())
		m.help.Width = msg.Width
		return m, nil
	case FrameMsg:
		m.frame = msg.Frame
		if msg.Frame.Done && (m.phase == phaseReading || m.phase == phasePaused) {
			m.finish()
			return m, nil
		}
		return m, m.events.wait()
	case AutoStopMsg:
		if m.phase != phaseReading && m.phase != phasePaused {
			return m, nil
		}
		m.afterReading(msg.Result, msg.Err)
		return m, nil
	case tickMsg:
		if m.phase == phaseReading || m.phase == phasePaused {
			return m, tick()
		}
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.phase == phaseReading || m.phase == phasePaused {
				m.finish()
			}
			return m, tea.Quit
		}
		switch m.phase {
		case phaseReady:
			return m, m.updateReady(msg)
		case phaseReading, phasePaused:
			return m, m.updateReading(msg)
		case phaseQuiz:
			return m, m.updateQuiz(msg)
		case phaseResults:
			if key.Matches(msg, m.keys.Finish) || msg.String() == "q" {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *Model) updateReady(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Start):
		if !m.sess.Start() {
			return nil
		}
		m.phase = phaseReading
		return tick()
	case msg.String() == "q":
		return tea.Quit
	case key.Matches(msg, m.keys.Technique):
		m.sess.ChangeTechnique(nextTechnique(m.sess.Summary().Technique))
	case key.Matches(msg, m.keys.Faster):
		m.sess.SetSpeed(m.sess.Summary().WPMTarget + SpeedStep)
	case key.Matches(msg, m.keys.Slower):
		m.sess.SetSpeed(m.sess.Summary().WPMTarget - SpeedStep)
	}
	return nil
}

func (m *Model) updateReading(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Start):
		if m.phase == phaseReading && m.sess.Pause() {
			m.phase = phasePaused
		} else if m.phase == phasePaused && m.sess.Resume() {
			m.phase = phaseReading
		}
	case key.Matches(msg, m.keys.Faster):
		m.sess.SetSpeed(m.sess.Summary().WPMTarget + SpeedStep)
	case key.Matches(msg, m.keys.Slower):
		m.sess.SetSpeed(m.sess.Summary().WPMTarget - SpeedStep)
	case key.Matches(msg, m.keys.Technique):
		m.frame = pacing.Frame{}
		m.sess.ChangeTechnique(nextTechnique(m.sess.Summary().Technique))
	case key.Matches(msg, m.keys.Finish):
		m.finish()
	}
	return nil
}

func nextTechnique(t model.Technique) model.Technique {
	for i, c := range model.Techniques {
		if c == t {
			return model.Techniques[(i+1)%len(model.Techniques)]
		}
	}
	return model.TechniqueNormal
}

func (m *Model) finish() {
	res, err := m.sess.Finish(context.Background())
	if res == nil {
		return
	}
	m.afterReading(res, err)
}

func (m *Model) afterReading(res *session.Result, err error) {
	m.result = res
	if err != nil {
		m.errMsg = err.Error()
	}
	if m.opts.Quiz {
		questions := m.opts.Generator.Generate(m.sess.Content(), m.opts.Questions)
		if len(questions) > 0 {
			m.startQuiz(questions)
			return
		}
		m.opts.Log.Warn("no questions generated, skipping quiz")
	}
	m.showResults()
}

func (m *Model) startQuiz(questions []model.Question) {
	m.questions = make([]model.Question, len(questions))
	for i, q := range questions {
		m.questions[i] = quiz.Shuffle(q, m.opts.Rand)
	}
	m.answers = make([]int, len(questions))
	for i := range m.answers {
		m.answers[i] = -1
	}
	m.qIndex = 0
	m.choice = 0
	m.phase = phaseQuiz
}

func (m *Model) updateQuiz(msg tea.KeyMsg) tea.Cmd {
	q := m.questions[m.qIndex]
	switch {
	case key.Matches(msg, m.keys.Up):
		m.choice = (m.choice - 1 + len(q.Options)) % len(q.Options)
		return nil
	case key.Matches(msg, m.keys.Down):
		m.choice = (m.choice + 1) % len(q.Options)
		return nil
	case key.Matches(msg, m.keys.Choose):
	default:
		idx, ok := optionIndex(msg.String(), len(q.Options))
		if !ok {
			return nil
		}
		m.choice = idx
	}
	m.answers[m.qIndex] = m.choice
	m.qIndex++
	m.choice = 0
	if m.qIndex >= len(m.questions) {
		m.scoreQuiz()
	}
	return nil
}

func (m *Model) scoreQuiz() {
	m.score = quiz.Score(m.questions, m.answers)
	if m.result != nil && m.result.Session.ID != "" && m.repo != nil {
		_, err := m.repo.SaveComprehension(context.Background(), m.result.Session.ID, m.score.Questions, m.score.Correct)
		if err != nil {
			m.opts.Log.Error("failed to save comprehension", zap.Error(err))
			m.errMsg = fmt.Sprintf("failed to save quiz result: %v", err)
		}
	}
	m.showResults()
}

func (m *Model) showResults() {
	m.phase = phaseResults
	if m.repo == nil || m.result == nil {
		return
	}
	report := stats.Load(context.Background(), m.repo, model.StatsConfig{}, m.opts.Log)
	if len(m.questions) > 0 {
		m.advice = adaptive.PostQuizSuggestion(m.score.Percentage, report.Stats)
	} else {
		m.advice = m.opts.Engine.Suggestion(report.Stats, report.Progress)
	}
	m.nextWPM = m.opts.Engine.AdaptiveWPM(report.Stats, report.Progress)
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	var keys help.KeyMap = readingKeys(m.keys)
	switch m.phase {
	case phaseReady:
		body = m.viewReady()
	case phaseReading, phasePaused:
		body = m.viewReading()
	case phaseQuiz:
		body = m.viewQuiz()
		keys = choiceKeys(m.keys)
	case phaseResults:
		body = m.viewResults()
		keys = nil
	}
	if m.errMsg != "" {
		body += "\n\n" + errorStyle.Render(m.errMsg)
	}
	footer := ""
	if keys != nil {
		footer = footerStyle.Render(m.help.View(keys))
	}
	if m.width == 0 || m.height == 0 {
		if footer == "" {
			return body
		}
		return body + "\n\n" + footer
	}
	content := lipgloss.NewStyle().Width(m.contentWidth()).Render(body)
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	main := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return main + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return textproc.DefaultLineLength
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) viewReady() string {
	sum := m.sess.Summary()
	lines := []string{
		titleStyle.Render("Ready"),
		"",
		fmt.Sprintf("%d words · about %d min at %d WPM", sum.Words, textproc.ReadingTime(m.sess.Content(), sum.WPMTarget), sum.WPMTarget),
		fmt.Sprintf("Technique: %s", sum.Technique),
		"",
		footerStyle.Render("Press space to start. t changes technique, +/- adjusts speed."),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewReading() string {
	sum := m.sess.Summary()
	status := fmt.Sprintf("%s · %d WPM · %s", sum.Technique, sum.WPMTarget, formatElapsed(sum.Elapsed))
	if m.phase == phasePaused {
		status += " · paused"
	}
	header := footerStyle.Render(status)
	bar := m.bar.ViewAs(sum.Position.Percentage / 100)

	var text string
	switch sum.Technique {
	case model.TechniqueFlash, model.TechniqueChunking:
		text = m.viewFlash()
	default:
		text = m.viewPage(sum)
	}
	if sum.Mode == model.ModeTraining && m.frame.Text != "" {
		text = m.viewFlash()
	}
	return header + "\n\n" + text + "\n\n" + bar
}

func (m *Model) viewFlash() string {
	word := m.frame.Text
	if word == "" {
		word = " "
	}
	return lipgloss.PlaceHorizontal(m.contentWidth(), lipgloss.Center, flashStyle.Render(word))
}

func (m *Model) viewPage(sum session.Summary) string {
	lines := wrapWords(m.words, m.contentWidth())
	current := -1
	if sum.Technique == model.TechniquePacer {
		current = lineOf(lines, m.frame.WordIndex)
	}
	rendered := renderBand(m.words, lines, current)
	height := m.height - 8
	if current < 0 {
		current = lineOf(lines, sum.Position.WordIndex)
	}
	return strings.Join(window(rendered, current, height), "\n")
}

func (m *Model) viewQuiz() string {
	q := m.questions[m.qIndex]
	lines := []string{
		footerStyle.Render(fmt.Sprintf("Question %d of %d", m.qIndex+1, len(m.questions))),
		"",
		titleStyle.Render(q.Question),
		"",
	}
	for i, opt := range q.Options {
		label := fmt.Sprintf("%d. %s", i+1, opt)
		if i == m.choice {
			lines = append(lines, selectedStyle.Render("> "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewResults() string {
	lines := []string{titleStyle.Render("Results"), ""}
	if r := m.result; r != nil {
		lines = append(lines,
			fmt.Sprintf("Words read: %d", r.WordCount),
			fmt.Sprintf("Time: %s", formatElapsed(time.Duration(r.DurationMs)*time.Millisecond)),
			fmt.Sprintf("Reading speed: %d WPM (target %d)", r.WPM, r.WPMTarget),
		)
		if r.Mode == model.ModeAssessment {
			lines = append(lines,
				fmt.Sprintf("Reading level: %s", adaptive.AssessmentLevel(r.WPM)),
				fmt.Sprintf("Speed category: %s", adaptive.SpeedCategory(r.WPM)),
			)
		}
	}
	if len(m.questions) > 0 {
		lines = append(lines, "", m.renderAnswers(), "",
			fmt.Sprintf("Comprehension: %d/%d (%d%%)", m.score.Correct, m.score.Questions, m.score.Percentage),
			quiz.Feedback(m.score.Percentage),
		)
	}
	if m.advice != "" {
		lines = append(lines, "", m.advice)
	}
	if m.nextWPM > 0 {
		lines = append(lines, fmt.Sprintf("Recommended next target: %d WPM", m.nextWPM))
	}
	lines = append(lines, "", footerStyle.Render("Press enter to exit."))
	return strings.Join(lines, "\n")
}

func (m *Model) renderAnswers() string {
	lines := make([]string, len(m.questions))
	for i, q := range m.questions {
		mark := incorrectStyle.Render("✗")
		if m.answers[i] == q.CorrectIndex {
			mark = correctStyle.Render("✓")
		}
		lines[i] = fmt.Sprintf("%s %s  %s", mark, q.Question, footerStyle.Render(q.Options[q.CorrectIndex]))
	}
	return strings.Join(lines, "\n")
}

func formatElapsed(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
