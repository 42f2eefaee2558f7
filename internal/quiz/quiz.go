// Package quiz builds multiple-choice comprehension questions from a text
// and scores answers.
package quiz

import (
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/textproc"
)

const (
	// DefaultQuestions is the quiz length.
	DefaultQuestions = 5
	// OptionCount is the number of options on every question.
	OptionCount = 4
	// MinKeySentences is needed for the full generator set.
	MinKeySentences = 3
	// KeySentenceWords is the minimum length of a key sentence.
	KeySentenceWords = 10
	// BasicMinWords is the shortest sentence a basic question is built from.
	BasicMinWords = 5
)

var cycle = []model.QuestionType{
	model.QuestionFact,
	model.QuestionInference,
	model.QuestionDetail,
	model.QuestionMainIdea,
	model.QuestionVocabulary,
}

// Generator derives questions deterministically from text.
type Generator struct {
	log *zap.Logger
}

// New returns a generator. A nil logger discards output.
func New(log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{log: log}
}

// Generate returns up to n questions, each with four distinct options and
// the correct one first. Slots whose sentence cannot carry even a basic
// question are skipped.
func Generate(text string, n int) []model.Question {
	return New(nil).Generate(text, n)
}

// Generate is the method form of the package-level Generate.
func (g *Generator) Generate(text string, n int) []model.Question {
	if n <= 0 {
		n = DefaultQuestions
	}
	keys := textproc.ExtractKeySentences(text, KeySentenceWords)
	if len(keys) < MinKeySentences {
		g.log.Debug("short text, using basic questions", zap.Int("key_sentences", len(keys)))
		return g.shortText(text, n)
	}
	entities := textproc.ExtractEntities(text)

	var out []model.Question
	for i := 0; i < n && i < len(keys); i++ {
		kind := cycle[i%len(cycle)]
		sentence := keys[i].Text
		var q model.Question
		var ok bool
		switch kind {
		case model.QuestionFact:
			q, ok = fact(sentence, entities)
		case model.QuestionInference:
			q, ok = inference(sentence)
		case model.QuestionDetail:
			q, ok = detail(sentence)
		case model.QuestionMainIdea:
			q, ok = mainIdea(keys)
		case model.QuestionVocabulary:
			q, ok = vocabulary(sentence)
		}
		if !ok {
			g.log.Debug("question fell back to basic", zap.String("type", string(kind)), zap.Int("slot", i))
			q, ok = basic(sentence)
		}
		if !ok {
			g.log.Debug("question slot skipped", zap.Int("slot", i))
			continue
		}
		out = append(out, q)
	}
	return out
}

func (g *Generator) shortText(text string, n int) []model.Question {
	sentences := textproc.GetSentences(text)
	limit := min(n, MinKeySentences)
	var out []model.Question
	for i := 0; i < len(sentences) && i < limit; i++ {
		s := sentences[i]
		q, ok := build(model.QuestionBasic,
			"What does the text say about "+subject(s)+"?",
			s, similar(s), opposite(s), notMentioned)
		if !ok {
			g.log.Debug("short text sentence skipped", zap.Int("sentence", i))
			continue
		}
		out = append(out, q)
	}
	return out
}

func build(kind model.QuestionType, question string, options ...string) (model.Question, bool) {
	if !distinct(options) {
		return model.Question{}, false
	}
	return model.Question{Type: kind, Question: question, Options: options, CorrectIndex: 0}, true
}

func fact(sentence string, e textproc.Entities) (model.Question, bool) {
	for _, name := range e.Names {
		if strings.Contains(sentence, name) {
			ctx := contextAround(sentence, name)
			return build(model.QuestionFact,
				"According to the text, what is mentioned about "+name+"?",
				ctx, similar(ctx), opposite(ctx), notProvided)
		}
	}
	for _, num := range e.Numbers {
		if strings.Contains(sentence, num) {
			ctx := contextAround(sentence, num)
			return build(model.QuestionFact,
				"What significance does the number "+num+" have in the text?",
				ctx, numberVariant(ctx, num), opposite(ctx), notProvided)
		}
	}
	for _, year := range e.Dates {
		if strings.Contains(sentence, year) {
			ctx := contextAround(sentence, year)
			return build(model.QuestionFact,
				"What happened in "+year+" according to the text?",
				ctx, numberVariant(ctx, year), opposite(ctx), notProvided)
		}
	}
	return model.Question{}, false
}

// inferenceWords bounds the clause restated by an inference answer.
const inferenceWords = 12

func inference(sentence string) (model.Question, bool) {
	words := textproc.GetWords(sentence)
	if len(words) > inferenceWords {
		words = words[:inferenceWords]
	}
	core := lowerFirst(strings.Join(words, " "))
	return build(model.QuestionInference,
		"Based on the text, what can you infer about the situation described?",
		inferPrefix+core, inferPrefix+opposite(core), inferPrefix+partial(core), notInferrable)
}

func detail(sentence string) (model.Question, bool) {
	for _, w := range textproc.GetWords(sentence) {
		word := textproc.TrimPunctuation(w)
		if utf8.RuneCountInString(word) <= 4 {
			continue
		}
		if _, stop := detailStopwords[strings.ToLower(word)]; stop {
			continue
		}
		masked := mask(sentence, word)
		options := append([]string{word}, wordVariants(word)...)
		return build(model.QuestionDetail,
			"Complete this sentence from the text: \""+masked+"\"", options...)
	}
	return model.Question{}, false
}

func mask(sentence, word string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	masked := re.ReplaceAllString(sentence, blank)
	if masked == sentence {
		masked = strings.ReplaceAll(sentence, word, blank)
	}
	return masked
}

func mainIdea(keys []textproc.KeySentence) (model.Question, bool) {
	top := keys
	if len(top) > 3 {
		top = top[:3]
	}
	theme := defaultTheme
	if themes := themeWords(top); len(themes) > 0 {
		theme = "The " + themes[0] + " aspect"
	}
	options := append([]string{theme}, genericThemes...)
	return build(model.QuestionMainIdea, "What is the main theme of this text?", options...)
}

// themeWords ranks words longer than four letters by frequency, ties in
// order of first appearance.
func themeWords(sentences []textproc.KeySentence) []string {
	counts := make(map[string]int)
	var order []string
	for _, s := range sentences {
		for _, w := range textproc.GetWords(strings.ToLower(s.Text)) {
			w = textproc.StripPunctuation(w)
			if utf8.RuneCountInString(w) <= 4 {
				continue
			}
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})
	if len(order) > 3 {
		order = order[:3]
	}
	return order
}

func vocabulary(sentence string) (model.Question, bool) {
	for _, w := range textproc.GetWords(sentence) {
		word := textproc.TrimPunctuation(w)
		if len(word) <= 6 || !alphabetic.MatchString(word) {
			continue
		}
		if _, skip := vocabularyExcluded[strings.ToLower(word)]; skip {
			continue
		}
		ctx := contextAround(sentence, word)
		options := append([]string{definition(word)}, definitionDistractors[:3]...)
		return build(model.QuestionVocabulary,
			"In the context \""+ctx+"\", what does \""+word+"\" most likely mean?", options...)
	}
	return model.Question{}, false
}

func basic(sentence string) (model.Question, bool) {
	if textproc.CountWords(sentence) < BasicMinWords {
		return model.Question{}, false
	}
	return build(model.QuestionBasic, "Which statement about the text is accurate?",
		sentence, similar(sentence), opposite(sentence), partial(sentence))
}

// Result is a scored quiz.
type Result struct {
	Questions  int
	Correct    int
	Percentage int
}

// Score counts answers matching each question's correct index. Missing
// answers count as wrong; -1 marks an unanswered question.
func Score(questions []model.Question, answers []int) Result {
	r := Result{Questions: len(questions)}
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectIndex {
			r.Correct++
		}
	}
	r.Percentage = Percentage(r.Correct, r.Questions)
	return r
}

// Percentage is round(correct/total*100), or 0 for an empty quiz.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Feedback is the one-line verdict shown with a quiz score.
func Feedback(percentage int) string {
	switch {
	case percentage >= 80:
		return "Excellent comprehension! Try faster next time."
	case percentage >= 60:
		return "Good understanding. Consider your reading speed."
	default:
		return "Focus on accuracy. Slow down if needed."
	}
}

// Shuffle returns a copy of q with options permuted and CorrectIndex
// following the correct option.
func Shuffle(q model.Question, rnd *rand.Rand) model.Question {
	out := q
	out.Options = append([]string(nil), q.Options...)
	correct := q.Options[q.CorrectIndex]
	rnd.Shuffle(len(out.Options), func(i, j int) {
		out.Options[i], out.Options[j] = out.Options[j], out.Options[i]
	})
	for i, o := range out.Options {
		if o == correct {
			out.CorrectIndex = i
			break
		}
	}
	return out
}
