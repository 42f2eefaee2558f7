package textproc

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// TokenClass is the entity category assigned to a token.
type TokenClass int

const (
	TokenNone TokenClass = iota
	TokenName
	TokenPlace
	TokenNumber
	TokenDate
)

// Entities groups tokens by class, in order of first appearance.
type Entities struct {
	Names   []string
	Places  []string
	Numbers []string
	Dates   []string
}

// KeySentence is a scored sentence with its position in the text.
type KeySentence struct {
	Text  string
	Index int
	Words int
	Score float64
}

const punctuation = ".,;:!?()[]{}\"'“”‘’—–-"

var (
	properNoun   = regexp.MustCompile(`^[A-Z][a-z]+$`)
	properInText = regexp.MustCompile(`[A-Z][a-z]+`)
	hasDigit     = regexp.MustCompile(`\d`)
	connective   = regexp.MustCompile(`(?i)\b(because|therefore|however|although|since|while)\b`)
	integerTok   = regexp.MustCompile(`^\d+$`)
	decimalTok   = regexp.MustCompile(`^\d+[.,]\d+$`)
	yearTok      = regexp.MustCompile(`^\d{4}$`)
)

var (
	titleWords     = wordSet("mr", "mrs", "dr", "prof")
	reportingVerbs = wordSet("said", "told", "asked", "replied")
	locatives      = wordSet("in", "at", "to", "from", "near")
	phraseEnders   = wordSet("and", "but", "or", "so", "yet", "for", "nor",
		"the", "a", "an", "to", "of", "in", "on", "at", "by")
	phraseStarters = wordSet("the", "a", "an", "that", "this", "these", "those",
		"when", "where", "why", "how", "what", "who", "which",
		"after", "before", "during", "while", "since", "until",
		"because", "although", "though", "unless", "if")
)

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func inSet(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

// StripPunctuation removes every punctuation rune from word.
func StripPunctuation(word string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, word)
}

// TrimPunctuation removes leading and trailing punctuation only.
func TrimPunctuation(word string) string {
	return strings.Trim(word, punctuation)
}

// IsPhraseEnder reports whether a chunk may close after word.
func IsPhraseEnder(word string) bool {
	if strings.ContainsAny(word, ",;") {
		return true
	}
	return inSet(phraseEnders, strings.ToLower(StripPunctuation(word)))
}

// IsPhraseStarter reports whether word tends to open a new phrase.
func IsPhraseStarter(word string) bool {
	if word != "" && word[0] >= 'A' && word[0] <= 'Z' {
		return true
	}
	return inSet(phraseStarters, strings.ToLower(StripPunctuation(word)))
}

// ClassifyToken assigns words[i] to at most one entity class using its
// neighbours. The returned string is the normalized token.
func ClassifyToken(words []string, i int) (TokenClass, string) {
	if i < 0 || i >= len(words) {
		return TokenNone, ""
	}
	word := words[i]
	clean := StripPunctuation(word)
	if properNoun.MatchString(clean) && len(clean) > 2 {
		prev, next := "", ""
		if i > 0 {
			prev = strings.ToLower(StripPunctuation(words[i-1]))
		}
		if i+1 < len(words) {
			next = strings.ToLower(StripPunctuation(words[i+1]))
		}
		switch {
		case inSet(titleWords, prev) || inSet(reportingVerbs, next):
			return TokenName, clean
		case inSet(locatives, prev):
			return TokenPlace, clean
		}
		return TokenNone, ""
	}
	trimmed := TrimPunctuation(word)
	if yearTok.MatchString(trimmed) {
		if y, err := strconv.Atoi(trimmed); err == nil && y > 1900 && y < 2100 {
			return TokenDate, trimmed
		}
	}
	if integerTok.MatchString(trimmed) || decimalTok.MatchString(trimmed) {
		return TokenNumber, trimmed
	}
	return TokenNone, ""
}

// ExtractEntities classifies every token of text. Repeated tokens are kept once.
func ExtractEntities(text string) Entities {
	var e Entities
	seen := make(map[string]struct{})
	words := GetWords(text)
	for i := range words {
		class, tok := ClassifyToken(words, i)
		if class == TokenNone {
			continue
		}
		key := strconv.Itoa(int(class)) + ":" + tok
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		switch class {
		case TokenName:
			e.Names = append(e.Names, tok)
		case TokenPlace:
			e.Places = append(e.Places, tok)
		case TokenNumber:
			e.Numbers = append(e.Numbers, tok)
		case TokenDate:
			e.Dates = append(e.Dates, tok)
		}
	}
	return e
}

// ScoreSentence rates how useful a sentence is for questions, in [0,1].
func ScoreSentence(sentence string, index, total int) float64 {
	n := len(strings.Fields(strings.ToLower(sentence)))
	score := (1 - math.Abs(float64(n)-15)/15) * 0.3

	position := 0.0
	if total > 0 {
		position = float64(index) / float64(total)
	}
	score += (1 - math.Abs(position-0.5)*2) * 0.2

	if hasDigit.MatchString(sentence) {
		score += 0.2
	}
	if properInText.MatchString(sentence) {
		score += 0.15
	}
	if connective.MatchString(sentence) {
		score += 0.25
	}
	if strings.Contains(sentence, "?") {
		score -= 0.3
	}
	if n < 8 || n > 25 {
		score -= 0.2
	}
	return math.Max(0, math.Min(1, score))
}

// ExtractKeySentences returns sentences with at least minWords words,
// highest score first. Equal scores keep text order.
func ExtractKeySentences(text string, minWords int) []KeySentence {
	sentences := GetSentences(text)
	out := make([]KeySentence, 0, len(sentences))
	for i, s := range sentences {
		words := CountWords(s)
		if words < minWords {
			continue
		}
		out = append(out, KeySentence{
			Text:  s,
			Index: i,
			Words: words,
			Score: ScoreSentence(s, i, len(sentences)),
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	return out
}
