package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/starcatch/internal/leaderboard"
	"github.com/verte-zerg/starcatch/internal/model"
)

func openTestStore(t *testing.T, keep int) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "starcatch.db"), keep)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestAddScoreKeepsTopN(t *testing.T) {
	st := openTestStore(t, 5)
	ctx := context.Background()
	for _, e := range leaderboard.Seed() {
		if err := st.AddScore(ctx, e.Name, e.Score); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := st.AddScore(ctx, "Nova", 40); err != nil {
		t.Fatalf("add score: %v", err)
	}
	top, err := st.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("top scores: %v", err)
	}
	want := []int{42, 40, 38, 35, 30}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(top))
	}
	for i, w := range want {
		if top[i].Score != w {
			t.Fatalf("position %d: expected %d, got %d", i, w, top[i].Score)
		}
	}
	if top[1].Name != "Nova" || top[1].ID == "" || top[1].CreatedAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", top[1])
	}
}

func TestTopScoresTieOrder(t *testing.T) {
	st := openTestStore(t, 10)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	for _, name := range []string{"first", "second", "third"} {
		if err := st.AddScore(ctx, name, 10); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	top, err := st.TopScores(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].Name != "first" || top[1].Name != "second" {
		t.Fatalf("unexpected tie order: %+v", top)
	}
}

func TestTieAtBoundaryKeepsEarlierSubSecond(t *testing.T) {
	st := openTestStore(t, 1)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)
	stamps := []time.Time{base, base.Add(500 * time.Millisecond)}
	i := 0
	st.now = func() time.Time {
		ts := stamps[i]
		i++
		return ts
	}
	for _, name := range []string{"earlier", "later"} {
		if err := st.AddScore(ctx, name, 10); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	top, err := st.TopScores(ctx, 5)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Name != "earlier" {
		t.Fatalf("tie at the boundary kept %+v, want the earlier entry", top)
	}
	if !top[0].CreatedAt.Equal(base) {
		t.Fatalf("created_at round trip: got %s want %s", top[0].CreatedAt, base)
	}
}

func TestAddScoreValidates(t *testing.T) {
	st := openTestStore(t, 5)
	ctx := context.Background()
	if err := st.AddScore(ctx, "  ", 5); !errors.Is(err, leaderboard.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if err := st.AddScore(ctx, "x", -5); !errors.Is(err, leaderboard.ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore, got %v", err)
	}
	top, err := st.TopScores(ctx, 5)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("expected empty board, got %d", len(top))
	}
}

func TestScoresSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starcatch.db")
	st, err := Open(path, 5)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.AddScore(context.Background(), "Sana", 42); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	st, err = Open(path, 5)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	top, err := st.TopScores(context.Background(), 5)
	if err != nil || len(top) != 1 || top[0].Score != 42 {
		t.Fatalf("expected persisted score, got %+v (%v)", top, err)
	}
}

func TestRounds(t *testing.T) {
	st := openTestStore(t, 5)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		mode := model.ModeCatch
		if i == 3 {
			mode = model.ModeClassic
		}
		round := model.Round{
			StartedAt:  start.Add(time.Duration(i) * time.Minute),
			EndedAt:    start.Add(time.Duration(i)*time.Minute + 15*time.Second),
			Mode:       mode,
			Score:      10 * (i + 1),
			Hits:       i + 1,
			Misses:     1,
			HazardHits: 0,
			BestCombo:  i + 1,
			EndReason:  model.EndTimeout,
		}
		if _, err := st.InsertRound(ctx, round); err != nil {
			t.Fatalf("insert round: %v", err)
		}
	}

	all, err := st.ListRounds(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	if len(all) != 4 || all[0].Score != 10 || all[3].Mode != model.ModeClassic {
		t.Fatalf("unexpected rounds: %+v", all)
	}

	catch, err := st.ListRounds(ctx, model.StatsConfig{Mode: model.ModeCatch, Last: 2})
	if err != nil {
		t.Fatalf("list catch rounds: %v", err)
	}
	if len(catch) != 2 || catch[0].Score != 20 || catch[1].Score != 30 {
		t.Fatalf("unexpected filtered rounds: %+v", catch)
	}

	since := start.Add(2 * time.Minute)
	recent, err := st.ListRounds(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rounds since cutoff, got %d", len(recent))
	}
}
