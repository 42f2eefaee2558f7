package stats

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/store"
)

func TestBuildReport(t *testing.T) {
	now := epoch
	st, err := store.Open(filepath.Join(t.TempDir(), "flowread.db"), store.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	modes := []model.Mode{model.ModeMain, model.ModeAssessment, model.ModeMain}
	for i, mode := range modes {
		now = epoch.Add(time.Duration(i) * time.Minute)
		sess, err := st.SaveSession(ctx, model.Session{Mode: mode, WPMTarget: 200 + 100*i, DurationMs: 60000})
		if err != nil {
			t.Fatalf("save session: %v", err)
		}
		if _, err := st.SaveComprehension(ctx, sess.ID, 5, 4); err != nil {
			t.Fatalf("save comprehension: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 || report.Sessions[0].WPMTarget != 400 {
		t.Fatalf("unexpected sessions: %+v", report.Sessions)
	}
	if report.Stats.AvgSpeed != 350 || report.Stats.AvgComprehension != 80 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}
	if len(report.Progress) != 2 || report.Progress[0].Speed != 300 {
		t.Fatalf("unexpected progress: %+v", report.Progress)
	}

	mainOnly, err := BuildReport(ctx, st, model.StatsConfig{Mode: model.ModeMain})
	if err != nil {
		t.Fatalf("build filtered report: %v", err)
	}
	if mainOnly.Stats.TotalSessions != 2 || mainOnly.Stats.AvgSpeed != 300 {
		t.Fatalf("mode filter not applied: %+v", mainOnly.Stats)
	}

	since := epoch.Add(90 * time.Second)
	recent, err := BuildReport(ctx, st, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("build since report: %v", err)
	}
	if recent.Stats.TotalSessions != 1 {
		t.Fatalf("since filter not applied: %+v", recent.Stats)
	}
}

type failingSource struct{}

func (failingSource) RecentSessions(context.Context, int) ([]model.Session, error) {
	return nil, errors.New("disk gone")
}

func (failingSource) AllComprehension(context.Context) ([]model.Comprehension, error) {
	return nil, nil
}

func TestLoadSubstitutesZeroStats(t *testing.T) {
	if _, err := BuildReport(context.Background(), failingSource{}, model.StatsConfig{}); err == nil {
		t.Fatalf("expected error from BuildReport")
	}
	report := Load(context.Background(), failingSource{}, model.StatsConfig{}, nil)
	if !report.Unavailable || report.Stats != (model.Stats{}) {
		t.Fatalf("expected zero stats, got %+v", report)
	}
}

func TestRenderSummaryAndSessions(t *testing.T) {
	sessions := history(250, 300)
	comps := quizzes(sessions, 80)
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Compute(sessions, comps)); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderSessions(&buf, sessions, comps); err != nil {
		t.Fatalf("render sessions: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Avg speed", "275 WPM", "80%", "+0%", "Sessions", "main"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderSummary(&buf, model.Stats{}); err != nil {
		t.Fatalf("render empty summary: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("unexpected empty summary %q", buf.String())
	}
}
