// Package storetest holds the behaviour every store.Repository must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/store"
)

// Clock is a settable time source for repositories under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Factory opens an empty repository using clock for record dates.
type Factory func(t *testing.T, clock *Clock) store.Repository

// Run exercises the shared repository contract.
func Run(t *testing.T, open Factory) {
	t.Run("TextDedupByContent", func(t *testing.T) { testTextDedup(t, open) })
	t.Run("TextLookup", func(t *testing.T) { testTextLookup(t, open) })
	t.Run("SessionsNewestFirst", func(t *testing.T) { testSessions(t, open) })
	t.Run("ComprehensionUnique", func(t *testing.T) { testComprehension(t, open) })
	t.Run("DeleteSession", func(t *testing.T) { testDelete(t, open) })
	t.Run("Drills", func(t *testing.T) { testDrills(t, open) })
}

func openRepo(t *testing.T, open Factory) (store.Repository, *Clock) {
	t.Helper()
	clock := NewClock()
	repo := open(t, clock)
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return repo, clock
}

func testTextDedup(t *testing.T, open Factory) {
	repo, clock := openRepo(t, open)
	ctx := context.Background()
	content := "Speed reading is a skill. It improves with practice."
	first, err := repo.SaveText(ctx, "First", content)
	if err != nil {
		t.Fatalf("SaveText error: %v", err)
	}
	clock.Advance(time.Minute)
	second, err := repo.SaveText(ctx, "Second", content)
	if err != nil {
		t.Fatalf("SaveText error: %v", err)
	}
	if first.ID != second.ID || second.Title != "First" || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected identical record, got %+v and %+v", first, second)
	}
	if first.WordCount != 9 || first.Hash == "" || first.Difficulty <= 0 {
		t.Fatalf("derived fields missing: %+v", first)
	}
	other, err := repo.SaveText(ctx, "First", content+" More.")
	if err != nil {
		t.Fatalf("SaveText error: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("different content must create a new record")
	}
}

func testTextLookup(t *testing.T, open Factory) {
	repo, clock := openRepo(t, open)
	ctx := context.Background()
	if _, err := repo.GetText(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var ids []string
	for _, content := range []string{"alpha text body", "beta text body", "gamma text body"} {
		txt, err := repo.SaveText(ctx, content, content)
		if err != nil {
			t.Fatalf("SaveText error: %v", err)
		}
		ids = append(ids, txt.ID)
		clock.Advance(time.Second)
	}
	got, err := repo.GetText(ctx, ids[1])
	if err != nil || got.Content != "beta text body" {
		t.Fatalf("GetText: %+v %v", got, err)
	}
	list, err := repo.ListTexts(ctx, 2)
	if err != nil {
		t.Fatalf("ListTexts error: %v", err)
	}
	if len(list) != 2 || list[0].ID != ids[2] || list[1].ID != ids[1] {
		t.Fatalf("unexpected order %+v", list)
	}
	all, err := repo.ListTexts(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListTexts all: %d %v", len(all), err)
	}
}

func testSessions(t *testing.T, open Factory) {
	repo, clock := openRepo(t, open)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		saved, err := repo.SaveSession(ctx, model.Session{
			Mode:       model.ModeMain,
			TextID:     "t",
			Words:      100,
			WPMTarget:  200 + i*10,
			ActualWPM:  190 + i*10,
			DurationMs: 30000,
			Technique:  model.TechniquePacer,
			ChunkSize:  3,
		})
		if err != nil {
			t.Fatalf("SaveSession error: %v", err)
		}
		if saved.ID == "" || !saved.Date.Equal(clock.Now()) {
			t.Fatalf("id/date not assigned: %+v", saved)
		}
		clock.Advance(time.Hour)
	}
	recent, err := repo.RecentSessions(ctx, 3)
	if err != nil {
		t.Fatalf("RecentSessions error: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(recent))
	}
	for i, want := range []int{240, 230, 220} {
		if recent[i].WPMTarget != want {
			t.Fatalf("session %d: wpm %d want %d", i, recent[i].WPMTarget, want)
		}
	}
	if recent[0].Technique != model.TechniquePacer || recent[0].Mode != model.ModeMain || recent[0].ChunkSize != 3 {
		t.Fatalf("fields not round-tripped: %+v", recent[0])
	}
	all, err := repo.RecentSessions(ctx, 0)
	if err != nil || len(all) != 5 {
		t.Fatalf("RecentSessions all: %d %v", len(all), err)
	}
}

func testComprehension(t *testing.T, open Factory) {
	repo, _ := openRepo(t, open)
	ctx := context.Background()
	c, err := repo.SaveComprehension(ctx, "s1", 5, 3)
	if err != nil {
		t.Fatalf("SaveComprehension error: %v", err)
	}
	if c.Percentage != 60 {
		t.Fatalf("expected 60%%, got %d", c.Percentage)
	}
	if _, err := repo.SaveComprehension(ctx, "s1", 5, 5); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if c, err := repo.SaveComprehension(ctx, "s2", 0, 0); err != nil || c.Percentage != 0 {
		t.Fatalf("zero questions: %+v %v", c, err)
	}
	all, err := repo.AllComprehension(ctx)
	if err != nil {
		t.Fatalf("AllComprehension error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 results, got %d", len(all))
	}
	for _, c := range all {
		if c.SessionID == "s1" && (c.Correct != 3 || c.Questions != 5) {
			t.Fatalf("duplicate overwrote the first result: %+v", c)
		}
	}
}

func testDelete(t *testing.T, open Factory) {
	repo, _ := openRepo(t, open)
	ctx := context.Background()
	saved, err := repo.SaveSession(ctx, model.Session{Mode: model.ModeTest, Words: 10, WPMTarget: 250, DurationMs: 1000})
	if err != nil {
		t.Fatalf("SaveSession error: %v", err)
	}
	if _, err := repo.SaveComprehension(ctx, saved.ID, 5, 4); err != nil {
		t.Fatalf("SaveComprehension error: %v", err)
	}
	if err := repo.DeleteSession(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteSession error: %v", err)
	}
	sessions, _ := repo.RecentSessions(ctx, 0)
	comps, _ := repo.AllComprehension(ctx)
	if len(sessions) != 0 || len(comps) != 0 {
		t.Fatalf("expected everything removed, got %d sessions %d results", len(sessions), len(comps))
	}
	if err := repo.DeleteSession(ctx, saved.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testDrills(t *testing.T, open Factory) {
	repo, clock := openRepo(t, open)
	ctx := context.Background()
	kinds := []model.DrillType{model.DrillSchulte, model.DrillMemory, model.DrillSchulte}
	for i, kind := range kinds {
		if _, err := repo.SaveDrill(ctx, model.Drill{Type: kind, DurationMs: int64(1000 * (i + 1)), Score: 10 * i, Size: 5}); err != nil {
			t.Fatalf("SaveDrill error: %v", err)
		}
		clock.Advance(time.Minute)
	}
	schulte, err := repo.ListDrills(ctx, model.DrillSchulte, 0)
	if err != nil {
		t.Fatalf("ListDrills error: %v", err)
	}
	if len(schulte) != 2 || schulte[0].DurationMs != 3000 || schulte[0].Size != 5 {
		t.Fatalf("unexpected schulte drills %+v", schulte)
	}
	all, err := repo.ListDrills(ctx, "", 2)
	if err != nil || len(all) != 2 || all[1].Type != model.DrillMemory {
		t.Fatalf("unexpected drills %+v %v", all, err)
	}
}
