package quiz

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/textproc"
)

const passage = "Dr. Smith said that speed reading changes how people absorb written information every day. " +
	"In 1999 researchers near Boston measured 42 readers because they wanted reliable comparisons of reading speed. " +
	"The results showed that trained readers can process familiar material faster than untrained readers. " +
	"However comprehension often drops when readers push their speed beyond a comfortable threshold for long. " +
	"Regular practice with pacing techniques gradually improves both speed and understanding for most committed learners. " +
	"Experts recommend balancing ambitious reading targets with frequent comprehension checks to keep progress sustainable."

func checkInvariants(t *testing.T, qs []model.Question) {
	t.Helper()
	for i, q := range qs {
		if len(q.Options) != OptionCount {
			t.Fatalf("question %d has %d options", i, len(q.Options))
		}
		if q.CorrectIndex != 0 {
			t.Fatalf("question %d correct index %d", i, q.CorrectIndex)
		}
		seen := map[string]bool{}
		for _, o := range q.Options {
			if o == "" || seen[o] {
				t.Fatalf("question %d options not distinct: %q", i, q.Options)
			}
			seen[o] = true
		}
		if q.Question == "" {
			t.Fatalf("question %d has no prompt", i)
		}
	}
}

func TestGenerateFullPassage(t *testing.T) {
	qs := Generate(passage, DefaultQuestions)
	if len(qs) != DefaultQuestions {
		t.Fatalf("expected %d questions, got %d", DefaultQuestions, len(qs))
	}
	checkInvariants(t, qs)
	if !reflect.DeepEqual(qs, Generate(passage, DefaultQuestions)) {
		t.Fatalf("generation is not deterministic")
	}
	types := map[model.QuestionType]bool{}
	for _, q := range qs {
		types[q.Type] = true
	}
	if !types[model.QuestionMainIdea] || !types[model.QuestionInference] {
		t.Fatalf("expected main-idea and inference questions, got %v", types)
	}
}

func TestGenerateFewerRequested(t *testing.T) {
	qs := Generate(passage, 2)
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	checkInvariants(t, qs)
}

func TestGenerateShortText(t *testing.T) {
	qs := Generate("Alice reads fast. Bob reads slowly.", DefaultQuestions)
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	checkInvariants(t, qs)
	if qs[0].Type != model.QuestionBasic || qs[0].Question != "What does the text say about Alice?" {
		t.Fatalf("unexpected first question %+v", qs[0])
	}
	if qs[0].Options[1] != "Alice reads quick" || qs[0].Options[3] != notMentioned {
		t.Fatalf("unexpected options %q", qs[0].Options)
	}
}

func TestGenerateSkipsUnusableSentences(t *testing.T) {
	if qs := Generate("Hi. Yo.", DefaultQuestions); len(qs) != 0 {
		t.Fatalf("expected no questions, got %+v", qs)
	}
	if qs := Generate("", DefaultQuestions); len(qs) != 0 {
		t.Fatalf("expected no questions for empty text")
	}
}

func TestDetailQuestion(t *testing.T) {
	q, ok := detail("We were reading quietly in the library today")
	if !ok {
		t.Fatalf("expected detail question")
	}
	want := []string{"reading", "readied", "readining", "readings"}
	if !reflect.DeepEqual(q.Options, want) {
		t.Fatalf("got %q want %q", q.Options, want)
	}
	if !strings.Contains(q.Question, "We were _____ quietly") {
		t.Fatalf("word not masked: %q", q.Question)
	}
}

func TestWordVariantsSkipsIdentity(t *testing.T) {
	got := wordVariants("speed")
	want := []string{"speeing", "speeds", "peeds"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFactQuestionUsesNames(t *testing.T) {
	sentence := "Dr. Smith said that speed reading changes how people absorb written information"
	q, ok := fact(sentence, textprocEntities(sentence))
	if !ok {
		t.Fatalf("expected fact question")
	}
	if q.Question != "According to the text, what is mentioned about Smith?" {
		t.Fatalf("unexpected prompt %q", q.Question)
	}
	if q.Options[0] != "Dr. Smith said that speed" {
		t.Fatalf("unexpected context %q", q.Options[0])
	}
	if q.Options[3] != notProvided {
		t.Fatalf("missing not-provided distractor %q", q.Options)
	}
}

func TestFactQuestionUsesNumbers(t *testing.T) {
	sentence := "The lab tested 42 readers over several weeks of training"
	q, ok := fact(sentence, textprocEntities(sentence))
	if !ok {
		t.Fatalf("expected fact question")
	}
	if q.Question != "What significance does the number 42 have in the text?" {
		t.Fatalf("unexpected prompt %q", q.Question)
	}
	if q.Options[1] != "The lab tested 420 readers over several" {
		t.Fatalf("unexpected variant %q", q.Options[1])
	}
	if _, ok := fact("nothing to see here at all today", textprocEntities("")); ok {
		t.Fatalf("expected no fact question without entities")
	}
}

func TestFactQuestionUsesYears(t *testing.T) {
	sentence := "In 1999 researchers measured reading speed carefully"
	e := textprocEntities(sentence)
	if len(e.Numbers) != 0 || len(e.Dates) != 1 {
		t.Fatalf("unexpected entities %+v", e)
	}
	q, ok := fact(sentence, e)
	if !ok {
		t.Fatalf("expected fact question for a year")
	}
	if q.Question != "What happened in 1999 according to the text?" {
		t.Fatalf("unexpected prompt %q", q.Question)
	}
	if q.Options[0] != "In 1999 researchers measured reading" {
		t.Fatalf("unexpected context %q", q.Options[0])
	}
	if !strings.Contains(q.Options[1], "19990") {
		t.Fatalf("unexpected variant %q", q.Options[1])
	}
}

const accentedPassage = "“Élan matters more than raw talent for patient readers who practice daily,” the coach said. " +
	"Émile trained with a pacer every morning and slowly doubled his comfortable reading speed. " +
	"Überall in the library students copied his routine and reported steady improvements in comprehension. " +
	"Études published later confirmed that regular short sessions beat occasional marathon reading efforts."

func TestGenerateKeepsMultiByteLeadingRunes(t *testing.T) {
	qs := Generate(accentedPassage, DefaultQuestions)
	if len(qs) == 0 {
		t.Fatalf("expected questions")
	}
	checkInvariants(t, qs)
	for i, q := range qs {
		if !utf8.ValidString(q.Question) {
			t.Fatalf("question %d prompt is not valid UTF-8: %q", i, q.Question)
		}
		for _, o := range q.Options {
			if !utf8.ValidString(o) {
				t.Fatalf("question %d option is not valid UTF-8: %q", i, o)
			}
		}
	}
}

func TestLowerFirst(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"Speed":   "speed",
		"Émile":   "émile",
		"Überall": "überall",
		"“Quote":  "“Quote",
	}
	for in, want := range cases {
		if got := lowerFirst(in); got != want {
			t.Fatalf("lowerFirst(%q) = %q, want %q", in, got, want)
		}
	}
	if got := opposite("Émile trained daily"); !utf8.ValidString(got) {
		t.Fatalf("opposite() produced invalid UTF-8: %q", got)
	}
}

func TestVocabularyQuestion(t *testing.T) {
	q, ok := vocabulary("We now learn through deliberate repetition of drills")
	if !ok {
		t.Fatalf("expected vocabulary question")
	}
	if !strings.Contains(q.Question, "\"deliberate\"") {
		t.Fatalf("unexpected word in %q", q.Question)
	}
	if q.Options[0] != defaultDefinition {
		t.Fatalf("unexpected definition %q", q.Options[0])
	}
	if definition("repetition") != "An action or process described in the passage" {
		t.Fatalf("suffix definition not applied")
	}
	if _, ok := vocabulary("short words only here"); ok {
		t.Fatalf("expected no vocabulary question")
	}
}

func TestMainIdeaThemes(t *testing.T) {
	q, ok := mainIdea(nil)
	if !ok || q.Options[0] != defaultTheme {
		t.Fatalf("expected default theme, got %+v", q)
	}
}

func TestStatementTransforms(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"synonym", similar, "The big dog runs", "The large dog runs"},
		{"synonym keeps punctuation", similar, "It was fast, really", "It was quick, really"},
		{"swap", similar, "alpha beta gamma", "alpha gamma beta"},
		{"negate verb", opposite, "It was late", "It was not late"},
		{"negate can", opposite, "You can read", "You cannot read"},
		{"negate whole", opposite, "Birds fly south", "It is not true that birds fly south"},
		{"partial", partial, "a b c d e", "a b..."},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestContextAround(t *testing.T) {
	s := "one two three four five six seven eight nine"
	if got := contextAround(s, "five"); got != "two three four five six seven eight" {
		t.Fatalf("got %q", got)
	}
	if got := contextAround(s, "ten"); got != s {
		t.Fatalf("missing target should return sentence, got %q", got)
	}
}

func TestScore(t *testing.T) {
	qs := make([]model.Question, 5)
	r := Score(qs, []int{0, 0, 0, 1, 2})
	if r.Correct != 3 || r.Questions != 5 || r.Percentage != 60 {
		t.Fatalf("unexpected result %+v", r)
	}
	if r := Score(qs, []int{0}); r.Percentage != 20 {
		t.Fatalf("missing answers should count wrong, got %+v", r)
	}
	if r := Score(nil, nil); r.Percentage != 0 {
		t.Fatalf("empty quiz should score 0, got %+v", r)
	}
	if Percentage(2, 3) != 67 {
		t.Fatalf("percentage should round")
	}
}

func TestFeedback(t *testing.T) {
	cases := map[int]string{
		100: "Excellent comprehension! Try faster next time.",
		80:  "Excellent comprehension! Try faster next time.",
		79:  "Good understanding. Consider your reading speed.",
		60:  "Good understanding. Consider your reading speed.",
		59:  "Focus on accuracy. Slow down if needed.",
	}
	for pct, want := range cases {
		if got := Feedback(pct); got != want {
			t.Fatalf("Feedback(%d) = %q", pct, got)
		}
	}
}

func TestShuffleTracksCorrectOption(t *testing.T) {
	q := model.Question{Options: []string{"right", "w1", "w2", "w3"}}
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		s := Shuffle(q, rnd)
		if s.Options[s.CorrectIndex] != "right" {
			t.Fatalf("correct option lost: %+v", s)
		}
	}
	if q.Options[0] != "right" {
		t.Fatalf("shuffle mutated the input")
	}
}

func textprocEntities(s string) textproc.Entities { return textproc.ExtractEntities(s) }
