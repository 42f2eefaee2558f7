package textproc

import (
	"math"
	"reflect"
	"testing"
)

func TestExtractEntities(t *testing.T) {
	text := "Dr. Smith visited Paris in 1999. John said that 42 people came from Berlin, and 3.5 tons arrived. John said more."
	got := ExtractEntities(text)
	want := Entities{
		Names:   []string{"Smith", "John"},
		Places:  []string{"Berlin"},
		Numbers: []string{"42", "3.5"},
		Dates:   []string{"1999"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestClassifyTokenSingleCategory(t *testing.T) {
	words := GetWords("from 2020 to 1850 near Rome")
	cases := []struct {
		idx   int
		class TokenClass
		tok   string
	}{
		{1, TokenDate, "2020"},
		{3, TokenNumber, "1850"},
		{5, TokenPlace, "Rome"},
		{0, TokenNone, ""},
	}
	for _, tc := range cases {
		class, tok := ClassifyToken(words, tc.idx)
		if class != tc.class || tok != tc.tok {
			t.Fatalf("token %d: got (%v,%q) want (%v,%q)", tc.idx, class, tok, tc.class, tc.tok)
		}
	}
	if class, _ := ClassifyToken(words, 99); class != TokenNone {
		t.Fatalf("out of range index should classify as none")
	}
}

func TestScoreSentence(t *testing.T) {
	plain := "the quick brown fox jumps over the lazy dog and then runs far away home"
	if got := ScoreSentence(plain, 1, 2); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("plain score %f", got)
	}
	withConnective := "the quick brown fox jumps over the lazy dog because then runs far away home"
	if got := ScoreSentence(withConnective, 1, 2); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("connective score %f", got)
	}
	if got := ScoreSentence("a b c", 0, 1); got != 0 {
		t.Fatalf("short sentence should clamp to 0, got %f", got)
	}
	rich := "In 1999 Alice moved north because the fox jumped over the lazy dog every single day"
	if got := ScoreSentence(rich, 1, 2); got != 1 {
		t.Fatalf("rich sentence should clamp to 1, got %f", got)
	}
}

func TestExtractKeySentences(t *testing.T) {
	text := "Short one. " +
		"the quick brown fox jumps over the lazy dog and then runs far away home. " +
		"the quick brown fox jumps over the lazy dog because then runs far away home. " +
		"the slow brown fox walks over the lazy dog and then runs far away home."
	got := ExtractKeySentences(text, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 key sentences, got %d", len(got))
	}
	if got[0].Index != 2 {
		t.Fatalf("connective sentence should rank first, got index %d", got[0].Index)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("not sorted by score: %+v", got)
		}
	}
	for _, ks := range got {
		if ks.Words < 10 {
			t.Fatalf("sentence below minimum: %+v", ks)
		}
	}
}
