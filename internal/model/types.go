// Package model defines shared data structures.
package model

import "time"

// Mode is the kind of reading run a session belongs to.
type Mode string

const (
	ModeBaseline   Mode = "baseline"
	ModeAssessment Mode = "assessment"
	ModeMain       Mode = "main"
	ModeTraining   Mode = "training"
	ModeTest       Mode = "test"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeBaseline, ModeAssessment, ModeMain, ModeTraining, ModeTest}

// Technique is the pacing strategy used while reading.
type Technique string

const (
	TechniqueNormal   Technique = "normal"
	TechniquePacer    Technique = "pacer"
	TechniqueFlash    Technique = "flash"
	TechniqueChunking Technique = "chunking"
)

// Techniques lists every supported technique in cycling order.
var Techniques = []Technique{TechniqueNormal, TechniquePacer, TechniqueFlash, TechniqueChunking}

// ParseMode returns the mode named by s.
func ParseMode(s string) (Mode, bool) {
	for _, m := range Modes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// ParseTechnique returns the technique named by s.
func ParseTechnique(s string) (Technique, bool) {
	for _, t := range Techniques {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// QuestionType identifies the generator that produced a question.
type QuestionType string

const (
	QuestionFact       QuestionType = "fact"
	QuestionInference  QuestionType = "inference"
	QuestionDetail     QuestionType = "detail"
	QuestionMainIdea   QuestionType = "main-idea"
	QuestionVocabulary QuestionType = "vocabulary"
	QuestionBasic      QuestionType = "basic"
)

// DrillType identifies a warm-up drill.
type DrillType string

const (
	DrillSchulte DrillType = "schulte"
	DrillPacing  DrillType = "pacing"
	DrillMemory  DrillType = "memory"
)

// Text is a stored reading text, de-duplicated by content hash.
type Text struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	WordCount  int       `json:"wordCount"`
	Difficulty float64   `json:"difficulty"`
	Hash       string    `json:"hash"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Session is a persisted reading session. ID and Date are assigned by storage.
type Session struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Mode       Mode      `json:"mode"`
	TextID     string    `json:"textId"`
	Words      int       `json:"words"`
	WPMTarget  int       `json:"wpmTarget"`
	ActualWPM  int       `json:"actualWpm"`
	DurationMs int64     `json:"durationMs"`
	Technique  Technique `json:"technique"`
	ChunkSize  int       `json:"chunkSize"`
}

// Comprehension is the quiz outcome for one session.
type Comprehension struct {
	SessionID  string    `json:"sessionId"`
	Questions  int       `json:"questions"`
	Correct    int       `json:"correct"`
	Percentage int       `json:"percentage"`
	Date       time.Time `json:"date"`
}

// Drill is a warm-up drill result.
type Drill struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Type       DrillType `json:"type"`
	DurationMs int64     `json:"duration"`
	Errors     int       `json:"errors"`
	Score      int       `json:"score"`
	Size       int       `json:"size,omitempty"`
	Date       time.Time `json:"date"`
}

// Question is a multiple-choice comprehension question.
type Question struct {
	Type         QuestionType `json:"type"`
	Question     string       `json:"question"`
	Options      []string     `json:"options"`
	CorrectIndex int          `json:"correctIndex"`
}

// Improvements holds period-over-period trend deltas in percent.
type Improvements struct {
	Speed         float64 `json:"speed"`
	Comprehension float64 `json:"comprehension"`
	Effective     float64 `json:"effective"`
}

// Stats summarizes recent sessions. Values are unrounded.
type Stats struct {
	AvgSpeed         float64      `json:"avgSpeed"`
	AvgComprehension float64      `json:"avgComprehension"`
	EffectiveSpeed   float64      `json:"effectiveSpeed"`
	TotalSessions    int          `json:"totalSessions"`
	Improvements     Improvements `json:"improvements"`
}

// ProgressPoint is one session projected for charts and trend analysis.
type ProgressPoint struct {
	Date           time.Time `json:"date"`
	Speed          int       `json:"speed"`
	Comprehension  int       `json:"comprehension"`
	EffectiveSpeed int       `json:"effectiveSpeed"`
	Mode           Mode      `json:"mode"`
}

// SampleText is a seed text offered when the user has none.
type SampleText struct {
	Title      string  `yaml:"title" json:"title"`
	Content    string  `yaml:"content" json:"content"`
	WordCount  int     `yaml:"word-count,omitempty" json:"wordCount,omitempty"`
	Difficulty float64 `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
}

// Config defines reading settings.
type Config struct {
	Mode       Mode
	WPM        int
	Technique  Technique
	ChunkSize  int
	LineLength int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        Mode
	Since       *time.Time
	Last        int
	CurveWindow int
}
