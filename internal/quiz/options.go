package quiz

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/flowread/internal/textproc"
)

const (
	notProvided   = "This information is not provided in the text"
	notMentioned  = "This is not mentioned in the text"
	notInferrable = "This cannot be inferred from the text"
	inferPrefix   = "The text suggests that "
	blank         = "_____"
	defaultTheme  = "The central topic discussed"
	defaultTopic  = "the topic"
)

var synonyms = map[string]string{
	"big":   "large",
	"small": "little",
	"good":  "excellent",
	"bad":   "poor",
	"fast":  "quick",
	"slow":  "gradual",
}

var negations = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\bis\b`), "is not"},
	{regexp.MustCompile(`\bwas\b`), "was not"},
	{regexp.MustCompile(`\bcan\b`), "cannot"},
	{regexp.MustCompile(`\bwill\b`), "will not"},
}

var (
	detailStopwords = map[string]struct{}{
		"that": {}, "this": {}, "with": {}, "from": {},
		"they": {}, "were": {}, "been": {}, "have": {},
	}
	vocabularyExcluded = map[string]struct{}{
		"through": {}, "because": {}, "without": {}, "between": {},
	}
	fillerWords   = []string{"important", "significant", "relevant", "apparent", "obvious", "clear"}
	genericThemes = []string{"The historical context", "The technical details", "The personal opinions"}
	alphabetic    = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// similar swaps known words for a synonym. Without a match it swaps two
// neighbouring words so the statement still reads differently.
func similar(s string) string {
	words := textproc.GetWords(s)
	changed := false
	for i, w := range words {
		core := textproc.TrimPunctuation(w)
		syn, ok := synonyms[strings.ToLower(core)]
		if !ok {
			continue
		}
		words[i] = strings.Replace(w, core, syn, 1)
		changed = true
	}
	if !changed && len(words) >= 2 {
		i := len(words) - 2
		if words[i] == words[i+1] {
			i = 0
		}
		words[i], words[i+1] = words[i+1], words[i]
	}
	return strings.Join(words, " ")
}

// opposite negates the main verb, or the whole statement when none is found.
func opposite(s string) string {
	out := s
	for _, n := range negations {
		out = n.re.ReplaceAllString(out, n.repl)
	}
	if out == s {
		return "It is not true that " + lowerFirst(s)
	}
	return out
}

// partial keeps the first half of the words.
func partial(s string) string {
	words := textproc.GetWords(s)
	return strings.Join(words[:len(words)/2], " ") + "..."
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

// contextAround returns up to three words either side of the first word
// containing target, or the whole sentence when target is absent.
func contextAround(sentence, target string) string {
	words := strings.Fields(sentence)
	needle := strings.ToLower(target)
	idx := -1
	for i, w := range words {
		if strings.Contains(strings.ToLower(w), needle) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return sentence
	}
	start := max(0, idx-3)
	end := min(len(words), idx+4)
	return strings.Join(words[start:end], " ")
}

// subject is the first capitalized word longer than two letters.
func subject(sentence string) string {
	for _, w := range textproc.GetWords(sentence) {
		if len(w) > 2 && w[0] >= 'A' && w[0] <= 'Z' {
			return w
		}
	}
	return defaultTopic
}

// wordVariants builds morphological look-alikes followed by filler words.
func wordVariants(word string) []string {
	r := []rune(word)
	var out []string
	for _, v := range []string{
		string(r[:len(r)-2]) + "ed",
		string(r[:len(r)-1]) + "ing",
		word + "s",
		string(r[1:]) + string(r[0]),
	} {
		if v != word {
			out = append(out, v)
		}
	}
	out = append(out, fillerWords...)
	return out[:3]
}

// numberVariant changes a numeric token so the statement becomes wrong.
func numberVariant(context, number string) string {
	replacement := number + "0"
	if strings.ContainsAny(number, ".,") {
		replacement = "about " + number + "0"
	}
	return strings.Replace(context, number, replacement, 1)
}

var definitions = []struct {
	suffixes []string
	text     string
}{
	{[]string{"tion", "sion"}, "An action or process described in the passage"},
	{[]string{"ness", "ity"}, "A quality or condition described in the passage"},
	{[]string{"ment"}, "A result or outcome of an activity"},
	{[]string{"ly"}, "The manner in which something is done"},
	{[]string{"ing"}, "An ongoing activity or effort"},
	{[]string{"ed"}, "Something that has already been done or changed"},
	{[]string{"able", "ible"}, "Capable of being done or achieved"},
	{[]string{"ous", "ful", "ive", "al"}, "Having a particular characteristic"},
}

const defaultDefinition = "A key idea the passage refers to"

var definitionDistractors = []string{
	"The opposite of what the passage describes",
	"A person or place named in the passage",
	"A unit of measurement",
	"An unrelated technical term",
}

// definition guesses a gloss for word from its suffix.
func definition(word string) string {
	lw := strings.ToLower(word)
	for _, d := range definitions {
		for _, suf := range d.suffixes {
			if strings.HasSuffix(lw, suf) {
				return d.text
			}
		}
	}
	return defaultDefinition
}

// distinct reports whether options holds four different non-empty strings.
func distinct(options []string) bool {
	if len(options) != OptionCount {
		return false
	}
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if strings.TrimSpace(o) == "" {
			return false
		}
		if _, ok := seen[o]; ok {
			return false
		}
		seen[o] = struct{}{}
	}
	return true
}
