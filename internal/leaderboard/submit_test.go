package leaderboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/verte-zerg/starcatch/internal/model"
)

type failingStore struct {
	addErr error
	topErr error
	inner  Store
}

func (f *failingStore) TopScores(ctx context.Context, n int) ([]model.Entry, error) {
	if f.topErr != nil {
		return nil, f.topErr
	}
	return f.inner.TopScores(ctx, n)
}

func (f *failingStore) AddScore(ctx context.Context, name string, score int) error {
	if f.addErr != nil {
		return f.addErr
	}
	return f.inner.AddScore(ctx, name, score)
}

type blockingStore struct {
	*Memory
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) AddScore(ctx context.Context, name string, score int) error {
	close(b.entered)
	<-b.release
	return b.Memory.AddScore(ctx, name, score)
}

// slowReadStore blocks its first TopScores call until released.
type slowReadStore struct {
	*Memory
	reads   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *slowReadStore) TopScores(ctx context.Context, n int) ([]model.Entry, error) {
	if b.reads.Add(1) > 1 {
		return b.Memory.TopScores(ctx, n)
	}
	top, err := b.Memory.TopScores(ctx, n)
	close(b.entered)
	<-b.release
	return top, err
}

func TestSubmitPersistsAndRefreshes(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(5, Seed())
	s := NewSubmitter(store, 5, nil)
	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	res, err := s.Submit(ctx, 1, "  Nova ", 40)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Persisted || res.Err != nil {
		t.Fatalf("expected persisted result, got %+v", res)
	}
	if want := []int{42, 40, 38, 35, 30}; !equalInts(scores(res.Board), want) {
		t.Fatalf("expected %v, got %v", want, scores(res.Board))
	}
	if res.Board[1].Name != "Nova" {
		t.Fatalf("expected trimmed name, got %q", res.Board[1].Name)
	}
}

func TestSubmitFallsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection refused")
	store := &failingStore{addErr: storeErr, inner: NewMemory(5, nil)}
	s := NewSubmitter(store, 5, Seed())

	res, err := s.Submit(ctx, 7, "Nova", 50)
	if err != nil {
		t.Fatalf("expected fallback, not error: %v", err)
	}
	if res.Persisted {
		t.Fatalf("expected not persisted")
	}
	if !errors.Is(res.Err, storeErr) {
		t.Fatalf("expected store error in result, got %v", res.Err)
	}
	if want := []int{50, 42, 38, 35, 30}; !equalInts(scores(res.Board), want) {
		t.Fatalf("expected %v, got %v", want, scores(res.Board))
	}
	if want := []int{50, 42, 38, 35, 30}; !equalInts(scores(s.Board()), want) {
		t.Fatalf("snapshot not updated: %v", scores(s.Board()))
	}

	res, err = s.Submit(ctx, 7, "Nova", 50)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if want := []int{50, 42, 38, 35, 30}; !equalInts(scores(res.Board), want) {
		t.Fatalf("retry duplicated the fallback entry: %v", scores(res.Board))
	}
}

func TestSubmitReloadFailureStillShowsScore(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{topErr: errors.New("read timeout"), inner: NewMemory(5, nil)}
	s := NewSubmitter(store, 5, Seed())
	res, err := s.Submit(ctx, 1, "Nova", 39)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Persisted || res.Err == nil {
		t.Fatalf("expected persisted with reload error, got %+v", res)
	}
	if want := []int{42, 39, 38, 35, 30}; !equalInts(scores(res.Board), want) {
		t.Fatalf("expected %v, got %v", want, scores(res.Board))
	}
}

func TestSubmitBlankNameLeavesBoard(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(5, Seed())
	s := NewSubmitter(store, 5, Seed())
	for _, name := range []string{"", "   ", "\t"} {
		if _, err := s.Submit(ctx, 1, name, 99); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected ErrInvalidName for %q, got %v", name, err)
		}
	}
	top, _ := store.TopScores(ctx, 5)
	if want := []int{42, 38, 35, 30, 25}; !equalInts(scores(top), want) {
		t.Fatalf("store changed: %v", scores(top))
	}
	if want := []int{42, 38, 35, 30, 25}; !equalInts(scores(s.Board()), want) {
		t.Fatalf("snapshot changed: %v", scores(s.Board()))
	}
}

func TestSubmitOncePerRound(t *testing.T) {
	ctx := context.Background()
	s := NewSubmitter(NewMemory(5, nil), 5, nil)
	if _, err := s.Submit(ctx, 3, "A", 10); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := s.Submit(ctx, 3, "A", 10); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if _, err := s.Submit(ctx, 4, "A", 10); err != nil {
		t.Fatalf("next round: %v", err)
	}
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{
		Memory:  NewMemory(5, nil),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSubmitter(store, 5, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(ctx, 1, "A", 10)
		done <- err
	}()
	<-store.entered
	if !s.InFlight() {
		t.Fatalf("expected submission in flight")
	}
	if _, err := s.Submit(ctx, 1, "A", 10); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if s.InFlight() {
		t.Fatalf("expected guard released")
	}
}

func TestRefreshKeepsBoardOnFailure(t *testing.T) {
	store := &failingStore{topErr: errors.New("offline"), inner: NewMemory(5, nil)}
	s := NewSubmitter(store, 5, Seed())
	board, err := s.Refresh(context.Background())
	if err == nil {
		t.Fatalf("expected refresh error")
	}
	if want := []int{42, 38, 35, 30, 25}; !equalInts(scores(board), want) {
		t.Fatalf("expected seed board kept, got %v", scores(board))
	}
}

func TestRefreshOverlappingSubmitKeepsNewScore(t *testing.T) {
	ctx := context.Background()
	store := &slowReadStore{
		Memory:  NewMemory(5, Seed()),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSubmitter(store, 5, Seed())

	type refreshed struct {
		board []model.Entry
		err   error
	}
	done := make(chan refreshed, 1)
	go func() {
		board, err := s.Refresh(ctx)
		done <- refreshed{board, err}
	}()
	<-store.entered

	res, err := s.Submit(ctx, 1, "Nova", 50)
	if err != nil || !res.Persisted {
		t.Fatalf("submit: %+v %v", res, err)
	}
	close(store.release)
	got := <-done
	if got.err != nil {
		t.Fatalf("refresh: %v", got.err)
	}

	want := []int{50, 42, 38, 35, 30}
	if !equalInts(scores(got.board), want) {
		t.Fatalf("refresh returned stale board %v, want %v", scores(got.board), want)
	}
	if !equalInts(scores(s.Board()), want) {
		t.Fatalf("board regressed to %v, want %v", scores(s.Board()), want)
	}
}
