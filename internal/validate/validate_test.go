package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/flowread/internal/model"
)

func TestAssessmentMinimum(t *testing.T) {
	v := New()
	short := strings.Repeat("a", 49)
	err := v.Text(model.ModeAssessment, short)
	if err == nil || !IsInputError(err) {
		t.Fatalf("expected input error, got %v", err)
	}
	if !strings.Contains(err.Error(), "at least 50 characters") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := v.Text(model.ModeAssessment, short+"a"); err != nil {
		t.Fatalf("50 characters should pass: %v", err)
	}
}

func TestTrainingNeedsWords(t *testing.T) {
	v := New()
	longWords := strings.Repeat("abcdefghij ", 12)
	err := v.Text(model.ModeTraining, longWords)
	if err == nil {
		t.Fatalf("expected rejection for too few words")
	}
	if !strings.Contains(err.Error(), "at least 50 words") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := v.Text(model.ModeTraining, strings.Repeat("word ", 50)); err != nil {
		t.Fatalf("50 words of 250 characters should pass: %v", err)
	}
}

func TestReadingBounds(t *testing.T) {
	v := New()
	if err := v.Text(model.ModeMain, "   tiny   "); err == nil {
		t.Fatalf("expected rejection for short text")
	}
	if err := v.Text(model.ModeMain, strings.Repeat("x", MaxTextLength+1)); err == nil {
		t.Fatalf("expected rejection for long text")
	}
	if err := v.Text(model.ModeMain, "long enough text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSanitizeTitle(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	if got := SanitizeTitle("<b>Hello</b>", now); got != "bHello/b" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeTitle(strings.Repeat("t", 80), now); len(got) != MaxTitleLength {
		t.Fatalf("title not truncated: %d", len(got))
	}
	if got := SanitizeTitle(" <> ", now); got != "Reading Session 2024-03-01 09:30" {
		t.Fatalf("got %q", got)
	}
}
