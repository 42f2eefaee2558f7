package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/flowread/internal/drills"
	"github.com/verte-zerg/flowread/internal/model"
)

// DrillStore persists drill results.
type DrillStore interface {
	SaveDrill(ctx context.Context, d model.Drill) (model.Drill, error)
}

var (
	cellStyle       = lipgloss.NewStyle().Width(4).Align(lipgloss.Center).Foreground(lipgloss.Color("#F0F0F0"))
	foundCellStyle  = cellStyle.Foreground(lipgloss.Color("#4A4A4A"))
	cursorCellStyle = cellStyle.Foreground(lipgloss.Color("#1E1E1E")).Background(lipgloss.Color("#C89A3A")).Bold(true)
)

// SchulteModel runs one Schulte table.
type SchulteModel struct {
	game  *drills.Schulte
	store DrillStore
	log   *zap.Logger
	keys  keyMap
	now   func() time.Time

	cursor int
	missed bool
	saved  *model.Drill
	errMsg string

	width  int
	height int
}

// NewSchulteModel builds a Schulte drill screen.
func NewSchulteModel(game *drills.Schulte, store DrillStore, log *zap.Logger) *SchulteModel {
	if log == nil {
		log = zap.NewNop()
	}
	return &SchulteModel{game: game, store: store, log: log, keys: defaultKeyMap(), now: time.Now}
}

// Init implements tea.Model.
func (m *SchulteModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *SchulteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		if m.game.Started() && !m.game.Done() {
			return m, tick()
		}
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.game.Done() {
			if key.Matches(msg, m.keys.Finish) {
				return m, tea.Quit
			}
			return m, nil
		}
		if !m.game.Started() {
			if key.Matches(msg, m.keys.Choose) {
				m.game.Start(m.now())
				return m, tick()
			}
			return m, nil
		}
		m.move(msg)
	}
	return m, nil
}

func (m *SchulteModel) move(msg tea.KeyMsg) {
	size := m.game.Size
	row, col := m.cursor/size, m.cursor%size
	switch {
	case key.Matches(msg, m.keys.Up):
		row = (row - 1 + size) % size
	case key.Matches(msg, m.keys.Down):
		row = (row + 1) % size
	case key.Matches(msg, m.keys.Left):
		col = (col - 1 + size) % size
	case key.Matches(msg, m.keys.Right):
		col = (col + 1) % size
	case key.Matches(msg, m.keys.Choose):
		m.missed = !m.game.Pick(m.cursor, m.now())
		if m.game.Done() {
			m.save()
		}
		return
	}
	m.cursor = row*size + col
}

func (m *SchulteModel) save() {
	res := m.game.Result()
	saved, err := m.store.SaveDrill(context.Background(), res)
	if err != nil {
		m.log.Error("failed to save drill", zap.String("type", string(res.Type)), zap.Error(err))
		m.errMsg = fmt.Sprintf("failed to save drill: %v", err)
		saved = res
	}
	m.saved = &saved
}

// View implements tea.Model.
func (m *SchulteModel) View() string {
	var body string
	switch {
	case m.saved != nil:
		d := m.saved
		body = strings.Join([]string{
			titleStyle.Render("Schulte table complete"),
			"",
			fmt.Sprintf("Time: %.1fs", float64(d.DurationMs)/1000),
			fmt.Sprintf("Errors: %d", d.Errors),
			fmt.Sprintf("Score: %d (%s)", d.Score, drills.SchulteRating(d.Score)),
			"",
			footerStyle.Render("Press enter to exit."),
		}, "\n")
	case !m.game.Started():
		body = strings.Join([]string{
			titleStyle.Render(fmt.Sprintf("Schulte table %dx%d", m.game.Size, m.game.Size)),
			"",
			"Keep your eyes on the center and find the numbers in order.",
			"",
			footerStyle.Render("Press space to start."),
		}, "\n")
	default:
		status := fmt.Sprintf("Find: %d  Errors: %d  Time: %s", m.game.Target(), m.game.Errors(), formatElapsed(m.game.Elapsed(m.now())))
		if m.missed {
			status += "  " + incorrectStyle.Render("miss")
		}
		body = footerStyle.Render(status) + "\n\n" + m.renderGrid()
	}
	if m.errMsg != "" {
		body += "\n\n" + errorStyle.Render(m.errMsg)
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *SchulteModel) renderGrid() string {
	size := m.game.Size
	rows := make([]string, size)
	for r := 0; r < size; r++ {
		cells := make([]string, size)
		for c := 0; c < size; c++ {
			idx := r*size + c
			n := m.game.Grid[idx]
			style := cellStyle
			switch {
			case idx == m.cursor:
				style = cursorCellStyle
			case m.game.Found(n):
				style = foundCellStyle
			}
			cells[c] = style.Render(fmt.Sprintf("%d", n))
		}
		rows[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

type memoryPhase int

const (
	memoryCountdown memoryPhase = iota
	memoryReading
	memoryQuestions
	memoryResults
)

// MemoryModel runs one memory drill: countdown, timed reading, recall
// questions and results.
type MemoryModel struct {
	passage drills.Passage
	store   DrillStore
	log     *zap.Logger
	keys    keyMap

	phase   memoryPhase
	phaseAt time.Time
	now     time.Time
	readFor time.Duration
	answers []int
	qIndex  int
	choice  int
	saved   *model.Drill
	errMsg  string
	width   int
	height  int
}

// NewMemoryModel builds a memory drill screen starting its countdown at start.
func NewMemoryModel(p drills.Passage, store DrillStore, log *zap.Logger, start time.Time) *MemoryModel {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryModel{
		passage: p,
		store:   store,
		log:     log,
		keys:    defaultKeyMap(),
		phaseAt: start,
		now:     start,
		answers: make([]int, len(p.Questions)),
	}
}

// Init implements tea.Model.
func (m *MemoryModel) Init() tea.Cmd { return tick() }

// Update implements tea.Model.
func (m *MemoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.now = time.Time(msg)
		m.advance()
		if m.phase == memoryCountdown || m.phase == memoryReading {
			return m, tick()
		}
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.phase {
		case memoryReading:
			if key.Matches(msg, m.keys.Finish) {
				m.hide()
			}
		case memoryQuestions:
			m.answer(msg)
		case memoryResults:
			if key.Matches(msg, m.keys.Finish) || msg.String() == "q" {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *MemoryModel) advance() {
	elapsed := m.now.Sub(m.phaseAt)
	switch {
	case m.phase == memoryCountdown && elapsed >= drills.MemoryCountdown:
		m.phase = memoryReading
		m.phaseAt = m.now
	case m.phase == memoryReading && elapsed >= drills.MemoryReadTime:
		m.hide()
	}
}

func (m *MemoryModel) hide() {
	m.readFor = min(m.now.Sub(m.phaseAt), drills.MemoryReadTime)
	m.phase = memoryQuestions
	m.phaseAt = m.now
}

func (m *MemoryModel) answer(msg tea.KeyMsg) {
	q := m.passage.Questions[m.qIndex]
	switch {
	case key.Matches(msg, m.keys.Up):
		m.choice = (m.choice - 1 + len(q.Options)) % len(q.Options)
		return
	case key.Matches(msg, m.keys.Down):
		m.choice = (m.choice + 1) % len(q.Options)
		return
	case key.Matches(msg, m.keys.Choose):
	default:
		idx, ok := optionIndex(msg.String(), len(q.Options))
		if !ok {
			return
		}
		m.choice = idx
	}
	m.answers[m.qIndex] = m.choice
	m.qIndex++
	m.choice = 0
	if m.qIndex < len(m.passage.Questions) {
		return
	}
	m.phase = memoryResults
	res := drills.MemoryResult(m.passage, m.answers, m.readFor)
	saved, err := m.store.SaveDrill(context.Background(), res)
	if err != nil {
		m.log.Error("failed to save drill", zap.String("type", string(res.Type)), zap.Error(err))
		m.errMsg = fmt.Sprintf("failed to save drill: %v", err)
		saved = res
	}
	m.saved = &saved
}

// View implements tea.Model.
func (m *MemoryModel) View() string {
	var body string
	switch m.phase {
	case memoryCountdown:
		left := drills.MemoryCountdown - m.now.Sub(m.phaseAt)
		body = titleStyle.Render(fmt.Sprintf("Get ready... %d", int(left.Seconds())+1))
	case memoryReading:
		left := drills.MemoryReadTime - m.now.Sub(m.phaseAt)
		body = footerStyle.Render(fmt.Sprintf("Memorize: %ds left (enter when done)", int(left.Seconds())+1)) +
			"\n\n" + textStyle.Render(m.passage.Text)
	case memoryQuestions:
		q := m.passage.Questions[m.qIndex]
		lines := []string{
			footerStyle.Render(fmt.Sprintf("Question %d of %d", m.qIndex+1, len(m.passage.Questions))),
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
		body = strings.Join(lines, "\n")
	case memoryResults:
		correct := len(m.passage.Questions) - m.saved.Errors
		body = strings.Join([]string{
			titleStyle.Render("Memory drill complete"),
			"",
			fmt.Sprintf("Recall: %d/%d (%d%%)", correct, len(m.passage.Questions), m.saved.Score),
			drills.MemoryFeedback(m.saved.Score),
			"",
			footerStyle.Render("Press enter to exit."),
		}, "\n")
	}
	if m.errMsg != "" {
		body += "\n\n" + errorStyle.Render(m.errMsg)
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	width := max(1, int(float64(m.width)*0.70))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, lipgloss.NewStyle().Width(width).Render(body))
}
