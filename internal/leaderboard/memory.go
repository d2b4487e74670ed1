package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/verte-zerg/starcatch/internal/model"
)

// Memory keeps the board in process memory. Writes last for the session.
type Memory struct {
	mu      sync.Mutex
	size    int
	entries []model.Entry
	now     func() time.Time
}

// NewMemory returns a store holding at most size entries, starting from seed.
func NewMemory(size int, seed []model.Entry) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	return &Memory{
		size:    size,
		entries: Rank(seed, size),
		now:     time.Now,
	}
}

// TopScores implements Store.
func (m *Memory) TopScores(ctx context.Context, n int) ([]model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Rank(m.entries, n), nil
}

// AddScore implements Store.
func (m *Memory) AddScore(ctx context.Context, name string, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry, err := NewEntry(name, score, m.now())
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = Merge(m.entries, entry, m.size)
	return nil
}
