package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/textproc"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniquely keyed record already exists.
	ErrDuplicate = errors.New("record already exists")
)

// TimeLayout is a fixed-width UTC timestamp so text ordering matches time ordering.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository is the storage contract shared by every backend.
type Repository interface {
	SaveText(ctx context.Context, title, content string) (model.Text, error)
	GetText(ctx context.Context, id string) (model.Text, error)
	ListTexts(ctx context.Context, limit int) ([]model.Text, error)
	SaveSession(ctx context.Context, s model.Session) (model.Session, error)
	RecentSessions(ctx context.Context, limit int) ([]model.Session, error)
	DeleteSession(ctx context.Context, id string) error
	SaveComprehension(ctx context.Context, sessionID string, questions, correct int) (model.Comprehension, error)
	AllComprehension(ctx context.Context) ([]model.Comprehension, error)
	SaveDrill(ctx context.Context, d model.Drill) (model.Drill, error)
	ListDrills(ctx context.Context, kind model.DrillType, limit int) ([]model.Drill, error)
	Close() error
}

// NewText derives a Text record for content.
func NewText(title, content string, now time.Time) model.Text {
	return model.Text{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		WordCount:  textproc.CountWords(content),
		Difficulty: textproc.Difficulty(content),
		Hash:       textproc.Hash(content),
		CreatedAt:  now.UTC(),
	}
}

// NewComprehension builds a quiz result; zero questions yields 0%.
func NewComprehension(sessionID string, questions, correct int, now time.Time) model.Comprehension {
	pct := 0
	if questions > 0 {
		pct = int(math.Round(float64(correct) / float64(questions) * 100))
	}
	return model.Comprehension{
		SessionID:  sessionID,
		Questions:  questions,
		Correct:    correct,
		Percentage: pct,
		Date:       now.UTC(),
	}
}

// Stamp assigns a fresh id and date.
func Stamp(now time.Time) (string, time.Time) {
	return uuid.NewString(), now.UTC()
}
