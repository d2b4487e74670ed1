package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/starcatch/internal/boltstore"
	"github.com/verte-zerg/starcatch/internal/leaderboard"
	"github.com/verte-zerg/starcatch/internal/model"
	"github.com/verte-zerg/starcatch/internal/remote"
	"github.com/verte-zerg/starcatch/internal/store"
)

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		backend string
		check   func(leaderboard.Store) bool
	}{
		{"", func(s leaderboard.Store) bool { _, ok := s.(*leaderboard.Memory); return ok }},
		{"Memory", func(s leaderboard.Store) bool { _, ok := s.(*leaderboard.Memory); return ok }},
		{"sqlite", func(s leaderboard.Store) bool { _, ok := s.(*store.Store); return ok }},
		{"bolt", func(s leaderboard.Store) bool { _, ok := s.(*boltstore.Store); return ok }},
		{"remote", func(s leaderboard.Store) bool { _, ok := s.(*remote.Client); return ok }},
	}
	for _, tc := range cases {
		opened, err := Open(model.LeaderboardConfig{
			Backend: tc.backend,
			Size:    5,
			URL:     "http://127.0.0.1:1",
			DBPath:  filepath.Join(dir, "scores.db"),
			KVPath:  filepath.Join(dir, "scores.bolt"),
		})
		if err != nil {
			t.Fatalf("open %q: %v", tc.backend, err)
		}
		if !tc.check(opened.Store) {
			t.Fatalf("backend %q opened %T", tc.backend, opened.Store)
		}
		if err := opened.Close(); err != nil {
			t.Fatalf("close %q: %v", tc.backend, err)
		}
	}
}

func TestMemoryBackendSeeded(t *testing.T) {
	opened, err := Open(model.LeaderboardConfig{Backend: Memory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	top, err := opened.Store.TopScores(context.Background(), 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 5 || top[0].Name != "Sana ⭐" {
		t.Fatalf("expected seed board, got %+v", top)
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open(model.LeaderboardConfig{Backend: "redis"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := Open(model.LeaderboardConfig{Backend: Remote}); err == nil {
		t.Fatalf("expected error for remote without url")
	}
}
