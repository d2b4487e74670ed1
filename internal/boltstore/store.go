// Package boltstore keeps the leaderboard in a local BoltDB file.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/verte-zerg/starcatch/internal/leaderboard"
	"github.com/verte-zerg/starcatch/internal/model"
)

const (
	leaderboardBucket = "leaderboard"
	topKey            = "top"
)

// Store provides a BoltDB-backed leaderboard. The whole board lives under a
// single key, merged and truncated on every write.
type Store struct {
	db   *bbolt.DB
	size int
	now  func() time.Time
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string, size int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}
	if size <= 0 {
		size = leaderboard.DefaultSize
	}
	store := &Store{db: db, size: size, now: time.Now}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// TopScores implements leaderboard.Store.
func (s *Store) TopScores(ctx context.Context, n int) ([]model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entries []model.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		entries, err = readBoard(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return leaderboard.Rank(entries, n), nil
}

// AddScore implements leaderboard.Store.
func (s *Store) AddScore(ctx context.Context, name string, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry, err := leaderboard.NewEntry(name, score, s.now())
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		entries, err := readBoard(tx)
		if err != nil {
			return err
		}
		entries = leaderboard.Merge(entries, entry, s.size)
		payload, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshal leaderboard: %w", err)
		}
		return tx.Bucket([]byte(leaderboardBucket)).Put([]byte(topKey), payload)
	})
}

func readBoard(tx *bbolt.Tx) ([]model.Entry, error) {
	bucket := tx.Bucket([]byte(leaderboardBucket))
	if bucket == nil {
		return nil, fmt.Errorf("leaderboard bucket is missing")
	}
	payload := bucket.Get([]byte(topKey))
	if payload == nil {
		return nil, nil
	}
	var entries []model.Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard: %w", err)
	}
	return entries, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(leaderboardBucket)); err != nil {
			return fmt.Errorf("create leaderboard bucket: %w", err)
		}
		return nil
	})
}
