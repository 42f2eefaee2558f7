package drills

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/quiz"
)

// Memory drill phases.
const (
	MemoryCountdown = 3 * time.Second
	MemoryReadTime  = 15 * time.Second
)

// RecallQuestion is one memory question with the index of its answer.
type RecallQuestion struct {
	Question string
	Options  []string
	Correct  int
}

// Passage is a short text and the questions asked after it is hidden.
type Passage struct {
	Text      string
	Questions []RecallQuestion
}

// Passages are the memory drill texts.
var Passages = []Passage{
	{
		Text: "Sarah visited three cities last summer: Paris, Rome, and Barcelona. In Paris, she climbed the Eiffel Tower and visited the Louvre Museum. Rome impressed her with the Colosseum and Vatican City. Barcelona's Park Güell and Sagrada Familia were architectural marvels. She spent five days in each city, trying local cuisine and meeting new people.",
		Questions: []RecallQuestion{
			{"How many cities did Sarah visit?", []string{"2", "3", "4", "5"}, 1},
			{"What was the primary subject of the passage?", []string{"Travel", "Technology", "Environment", "Education"}, 0},
			{"How many days did she spend in each city?", []string{"Three", "Four", "Five", "Seven"}, 2},
		},
	},
	{
		Text: "The new smartphone features a 6.5-inch display, 128GB storage, and a 48-megapixel camera. Its battery lasts 24 hours with normal use. The device supports wireless charging and is water-resistant. Available in three colors: black, silver, and blue. The price starts at $599 for the basic model.",
		Questions: []RecallQuestion{
			{"How many colors is the phone available in?", []string{"2", "3", "4", "5"}, 1},
			{"What was the primary subject of the passage?", []string{"Travel", "Technology", "Environment", "Education"}, 1},
			{"How long does the battery last with normal use?", []string{"12 hours", "18 hours", "24 hours", "48 hours"}, 2},
		},
	},
	{
		Text: "Climate change affects global weather patterns significantly. Average temperatures have risen by 1.2 degrees Celsius since 1880. Arctic ice melts faster each decade, raising sea levels. Extreme weather events occur more frequently. Scientists recommend reducing carbon emissions by 45% before 2030 to limit damage.",
		Questions: []RecallQuestion{
			{"By how much have average temperatures risen?", []string{"0.8 degrees", "1.2 degrees", "1.5 degrees", "2 degrees"}, 1},
			{"What was the primary subject of the passage?", []string{"Travel", "Technology", "Environment", "Education"}, 2},
			{"By when should emissions fall by 45%?", []string{"2025", "2030", "2040", "2050"}, 1},
		},
	},
}

// PickPassage chooses a passage at random.
func PickPassage(rnd *rand.Rand) Passage {
	return Passages[rnd.Intn(len(Passages))]
}

// MemoryResult scores answers to p. Unanswered questions are -1.
func MemoryResult(p Passage, answers []int, d time.Duration) model.Drill {
	correct := 0
	for i, q := range p.Questions {
		if i < len(answers) && answers[i] == q.Correct {
			correct++
		}
	}
	return model.Drill{
		Type:       model.DrillMemory,
		DurationMs: d.Milliseconds(),
		Errors:     len(p.Questions) - correct,
		Score:      quiz.Percentage(correct, len(p.Questions)),
	}
}

// MemoryFeedback is the verdict shown with a memory score.
func MemoryFeedback(score int) string {
	switch {
	case score >= 80:
		return "Excellent memory retention!"
	case score >= 60:
		return "Good recall ability."
	default:
		return "Practice focusing while reading."
	}
}
