package leaderboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/verte-zerg/starcatch/internal/model"
)

// Result describes the board after a submission.
type Result struct {
	Board     []model.Entry
	Persisted bool
	// Err holds the store failure when the board is a local fallback.
	Err error
}

// Submitter writes finished rounds to a Store and keeps the last known board.
// When the store fails, the board is merged locally so the player still sees
// the score.
type Submitter struct {
	store Store
	size  int
	now   func() time.Time

	inFlight atomic.Bool

	mu        sync.Mutex
	board     []model.Entry
	version   uint64
	persisted map[uint64]struct{}
	fallback  map[uint64]string
}

// NewSubmitter returns a submitter showing seed until the first refresh.
func NewSubmitter(store Store, size int, seed []model.Entry) *Submitter {
	if size <= 0 {
		size = DefaultSize
	}
	return &Submitter{
		store:     store,
		size:      size,
		now:       time.Now,
		board:     Rank(seed, size),
		persisted: map[uint64]struct{}{},
		fallback:  map[uint64]string{},
	}
}

// Size returns the number of entries kept.
func (s *Submitter) Size() int {
	return s.size
}

// Board returns a copy of the last known board.
func (s *Submitter) Board() []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Entry, len(s.board))
	copy(out, s.board)
	return out
}

// InFlight reports whether a submission is pending.
func (s *Submitter) InFlight() bool {
	return s.inFlight.Load()
}

// Refresh reloads the board from the store. On failure the previous board is
// kept and the error returned. A read that overlaps a submission is discarded
// in favour of the board the submission produced.
func (s *Submitter) Refresh(ctx context.Context) ([]model.Entry, error) {
	s.mu.Lock()
	version := s.version
	s.mu.Unlock()

	top, err := s.store.TopScores(ctx, s.size)
	if err != nil {
		return s.Board(), fmt.Errorf("failed to load leaderboard: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version == version && !s.inFlight.Load() {
		s.board = Rank(top, s.size)
	}
	out := make([]model.Entry, len(s.board))
	copy(out, s.board)
	return out, nil
}

// Submit saves score under name for the given round. Validation and guard
// errors are returned as err with the board untouched. Store failures are not
// returned as err: they produce a local fallback board with Result.Err set.
func (s *Submitter) Submit(ctx context.Context, round uint64, name string, score int) (Result, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return Result{Board: s.Board()}, err
	}
	if score < 0 {
		return Result{Board: s.Board()}, fmt.Errorf("%w: got %d", ErrInvalidScore, score)
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return Result{Board: s.Board()}, ErrInFlight
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	s.version++
	_, done := s.persisted[round]
	s.mu.Unlock()
	if done {
		return Result{Board: s.Board()}, ErrAlreadySubmitted
	}

	if err := s.store.AddScore(ctx, normalized, score); err != nil {
		board := s.mergeLocal(round, normalized, score)
		return Result{Board: board, Err: fmt.Errorf("failed to save score: %w", err)}, nil
	}

	s.mu.Lock()
	s.persisted[round] = struct{}{}
	s.mu.Unlock()

	top, err := s.store.TopScores(ctx, s.size)
	if err != nil {
		board := s.mergeLocal(round, normalized, score)
		return Result{Board: board, Persisted: true, Err: fmt.Errorf("failed to reload leaderboard: %w", err)}, nil
	}
	s.mu.Lock()
	delete(s.fallback, round)
	s.board = Rank(top, s.size)
	s.mu.Unlock()
	return Result{Board: s.Board(), Persisted: true}, nil
}

// mergeLocal adds the entry to the snapshot, replacing an earlier fallback
// entry of the same round.
func (s *Submitter) mergeLocal(round uint64, name string, score int) []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	board := s.board
	if prev, ok := s.fallback[round]; ok {
		board = withoutEntry(board, prev)
	}
	entry := model.Entry{
		Name:      name,
		Score:     score,
		CreatedAt: s.now().UTC(),
	}
	entry.ID = fmt.Sprintf("local-%d-%d", round, entry.CreatedAt.UnixNano())
	s.fallback[round] = entry.ID
	s.board = Merge(board, entry, s.size)
	out := make([]model.Entry, len(s.board))
	copy(out, s.board)
	return out
}

func withoutEntry(board []model.Entry, id string) []model.Entry {
	out := make([]model.Entry, 0, len(board))
	for _, e := range board {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
