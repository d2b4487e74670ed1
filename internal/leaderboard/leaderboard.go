// Package leaderboard defines the score store contract, ranking helpers and
// the submission flow.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/verte-zerg/starcatch/internal/model"
)

// MaxNameLen is the longest accepted player name, in runes.
const MaxNameLen = 15

// DefaultSize is the number of entries shown and kept.
const DefaultSize = 5

var (
	// ErrInvalidName is returned for names that are empty after trimming.
	ErrInvalidName = errors.New("player name must not be empty")
	// ErrInvalidScore is returned for negative scores.
	ErrInvalidScore = errors.New("score must be >= 0")
	// ErrInFlight is returned while a previous submission is still pending.
	ErrInFlight = errors.New("submission already in progress")
	// ErrAlreadySubmitted is returned when a round was already persisted.
	ErrAlreadySubmitted = errors.New("score for this round already submitted")
)

// Store persists and ranks leaderboard entries.
type Store interface {
	// TopScores returns at most n entries sorted by score, highest first.
	TopScores(ctx context.Context, n int) ([]model.Entry, error)
	// AddScore records a new entry.
	AddScore(ctx context.Context, name string, score int) error
}

// NormalizeName trims the name and cuts it to MaxNameLen runes.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		name = strings.TrimSpace(string([]rune(name)[:MaxNameLen]))
	}
	return name, nil
}

// NewEntry validates the input and builds an entry stamped with now.
func NewEntry(name string, score int, now time.Time) (model.Entry, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return model.Entry{}, err
	}
	if score < 0 {
		return model.Entry{}, fmt.Errorf("%w: got %d", ErrInvalidScore, score)
	}
	return model.Entry{
		ID:        uuid.NewString(),
		Name:      normalized,
		Score:     score,
		CreatedAt: now.UTC(),
	}, nil
}

// Rank sorts entries by score, highest first, and truncates to n. Equal
// scores keep their input order, so earlier entries stay ahead.
func Rank(entries []model.Entry, n int) []model.Entry {
	out := make([]model.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Merge appends entry to board and ranks the result.
func Merge(board []model.Entry, entry model.Entry, n int) []model.Entry {
	all := make([]model.Entry, 0, len(board)+1)
	all = append(all, board...)
	all = append(all, entry)
	return Rank(all, n)
}

// Seed returns the default board shown before any score is saved.
func Seed() []model.Entry {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []struct {
		name  string
		score int
	}{
		{"Sana ⭐", 42},
		{"Cutie Pie", 38},
		{"Star Player", 35},
		{"Lucky Duck", 30},
		{"Sparkle", 25},
	}
	out := make([]model.Entry, 0, len(rows))
	for i, r := range rows {
		out = append(out, model.Entry{
			ID:        fmt.Sprintf("seed-%d", i+1),
			Name:      r.name,
			Score:     r.score,
			CreatedAt: base.AddDate(0, 0, i),
		})
	}
	return out
}
