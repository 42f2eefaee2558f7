package tui

import (
	"reflect"
	"strings"
	"testing"
)

func TestWrapWords(t *testing.T) {
	words := strings.Fields("aaa bbb ccc ddd supercalifragilistic e")
	got := wrapWords(words, 7)
	want := [][]int{{0, 1}, {2, 3}, {4}, {5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if wrapWords(nil, 10) != nil {
		t.Fatalf("expected no lines")
	}
	if got := wrapWords(words, 0); len(got) != 1 || len(got[0]) != len(words) {
		t.Fatalf("zero width should keep one line, got %v", got)
	}
}

func TestWrapWordsWideRunes(t *testing.T) {
	got := wrapWords([]string{"日本語", "テキスト"}, 10)
	if len(got) != 2 {
		t.Fatalf("wide runes should wrap by cell width, got %v", got)
	}
}

func TestLineOf(t *testing.T) {
	lines := [][]int{{0, 1}, {2, 3}, {4}}
	cases := map[int]int{0: 0, 1: 0, 2: 1, 4: 2, 9: 2}
	for word, want := range cases {
		if got := lineOf(lines, word); got != want {
			t.Fatalf("lineOf(%d) = %d want %d", word, got, want)
		}
	}
}

func TestRenderBandStyles(t *testing.T) {
	words := []string{"one", "two", "three"}
	lines := [][]int{{0}, {1}, {2}}
	out := renderBand(words, lines, 1)
	if out[0] != readStyle.Render("one") || out[1] != bandStyle.Render("two") || out[2] != pendingStyle.Render("three") {
		t.Fatalf("unexpected band rendering %q", out)
	}
	plain := renderBand(words, lines, -1)
	if plain[2] != textStyle.Render("three") {
		t.Fatalf("expected plain style")
	}
}

func TestWindow(t *testing.T) {
	lines := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	if got := window(lines, 6, 3); !reflect.DeepEqual(got, []string{"5", "6", "7"}) {
		t.Fatalf("got %v", got)
	}
	if got := window(lines, 9, 4); !reflect.DeepEqual(got, []string{"6", "7", "8", "9"}) {
		t.Fatalf("got %v", got)
	}
	if got := window(lines, 0, 20); len(got) != 10 {
		t.Fatalf("short text should be returned whole")
	}
}
