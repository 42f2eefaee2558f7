// Package textproc contains pure text segmentation and analysis helpers.
package textproc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const (
	// DefaultLineLength is the wrap width used when none is given.
	DefaultLineLength = 80
	// DefaultWPM is the reading speed assumed by ReadingTime.
	DefaultWPM = 250
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Chunk is a contiguous group of words with its inclusive word-index range.
type Chunk struct {
	Text  string
	Words []string
	Start int
	End   int
}

// PaceMarker maps an elapsed second to the word the pacer should be on.
type PaceMarker struct {
	Time       int
	WordIndex  int
	Y          float64
	Percentage float64
}

// CleanText trims and collapses whitespace runs into single spaces.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// GetWords tokenizes cleaned text on whitespace.
func GetWords(text string) []string {
	return strings.Fields(text)
}

// CountWords returns len(GetWords(text)).
func CountWords(text string) int {
	return len(GetWords(text))
}

// GetSentences splits on runs of sentence terminators and drops empty parts.
func GetSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// CreateChunks groups words into fixed-size chunks; the last one may be shorter.
func CreateChunks(text string, size int) []Chunk {
	if size < 1 {
		size = 1
	}
	words := GetWords(text)
	chunks := make([]Chunk, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, newChunk(words[i:end], i))
	}
	return chunks
}

// CreateSmartChunks grows a chunk to target words and then closes it at the
// next phrase boundary, never letting it reach 1.5x target.
func CreateSmartChunks(text string, target int) []Chunk {
	if target < 1 {
		target = 1
	}
	words := GetWords(text)
	hardCap := float64(target) * 1.5
	var chunks []Chunk
	start := 0
	for i, word := range words {
		n := i - start + 1
		if n < target {
			continue
		}
		boundary := IsPhraseEnder(word) || (i+1 < len(words) && IsPhraseStarter(words[i+1]))
		if boundary || float64(n) >= hardCap {
			chunks = append(chunks, newChunk(words[start:i+1], start))
			start = i + 1
		}
	}
	if start < len(words) {
		chunks = append(chunks, newChunk(words[start:], start))
	}
	return chunks
}

func newChunk(words []string, start int) Chunk {
	cp := make([]string, len(words))
	copy(cp, words)
	return Chunk{
		Text:  strings.Join(cp, " "),
		Words: cp,
		Start: start,
		End:   start + len(cp) - 1,
	}
}

// FormatForDisplay greedily wraps words into lines of at most maxLineLength
// display cells. A single word wider than the limit gets its own line.
func FormatForDisplay(text string, maxLineLength int) string {
	return strings.Join(WrapLines(text, maxLineLength), "\n")
}

// WrapLines is FormatForDisplay returning the individual lines.
func WrapLines(text string, maxLineLength int) []string {
	if maxLineLength <= 0 {
		maxLineLength = DefaultLineLength
	}
	var lines []string
	var line []string
	width := 0
	for _, word := range GetWords(text) {
		w := runewidth.StringWidth(word)
		if len(line) > 0 && width+1+w > maxLineLength {
			lines = append(lines, strings.Join(line, " "))
			line = line[:0]
			width = 0
		}
		if len(line) > 0 {
			width++
		}
		line = append(line, word)
		width += w
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}
	return lines
}

// GeneratePaceMarkers produces one marker per whole second of estimated
// reading time at wpm, spread over containerHeight.
func GeneratePaceMarkers(text string, wpm int, containerHeight float64) []PaceMarker {
	n := CountWords(text)
	if n == 0 || wpm <= 0 {
		return nil
	}
	wps := float64(wpm) / 60
	total := float64(n) / wps
	markers := make([]PaceMarker, 0, int(total)+1)
	for i := 0; float64(i) <= total; i++ {
		idx := int(math.Floor(float64(i) * wps))
		if idx > n-1 {
			idx = n - 1
		}
		progress := float64(i) / total
		markers = append(markers, PaceMarker{
			Time:       i,
			WordIndex:  idx,
			Y:          progress * containerHeight,
			Percentage: progress * 100,
		})
	}
	return markers
}

// ReadingTime estimates whole minutes needed to read text at wpm.
func ReadingTime(text string, wpm int) int {
	if wpm <= 0 {
		wpm = DefaultWPM
	}
	return int(math.Ceil(float64(CountWords(text)) / float64(wpm)))
}

// Hash is a 32-bit rolling checksum over UTF-16 code units, rendered as a
// signed decimal so existing stored hashes stay comparable.
func Hash(content string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(content)) {
		h = h*31 + int32(c)
	}
	return strconv.FormatInt(int64(h), 10)
}

// Difficulty estimates text difficulty in [0,1] from word and sentence length.
func Difficulty(content string) float64 {
	words := GetWords(content)
	if len(words) == 0 {
		return 0
	}
	letters := 0
	for _, w := range words {
		letters += utf8.RuneCountInString(w)
	}
	avgWord := float64(letters) / float64(len(words))
	avgSentence := float64(len(words)) / float64(len(sentenceSplit.Split(content, -1)))
	return math.Min(1, (avgWord*0.1+avgSentence*0.05)/10)
}
