// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/starcatch/internal/leaderboard"
	"github.com/verte-zerg/starcatch/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for scores and round history.
type Store struct {
	db   *sql.DB
	keep int
	now  func() time.Time
}

// Open opens or creates the SQLite database and applies migrations. keep is
// the number of scores retained after each write.
func Open(path string, keep int) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if keep <= 0 {
		keep = leaderboard.DefaultSize
	}
	store := &Store{db: db, keep: keep, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			score INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			hazard_hits INTEGER NOT NULL,
			best_combo INTEGER NOT NULL,
			end_reason TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_rank ON scores(score DESC, created_at ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_ended_at ON rounds(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddScore stores a score and prunes everything below the retained top.
func (s *Store) AddScore(ctx context.Context, name string, score int) (err error) {
	entry, err := leaderboard.NewEntry(name, score, s.now())
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO scores (id, name, score, created_at) VALUES (?, ?, ?, ?)`,
		entry.ID,
		entry.Name,
		entry.Score,
		entry.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM scores WHERE id NOT IN (
			SELECT id FROM scores ORDER BY score DESC, created_at ASC, rowid ASC LIMIT ?
		)`, s.keep); err != nil {
		return err
	}
	return tx.Commit()
}

// TopScores returns the highest scores, ties ordered by age.
func (s *Store) TopScores(ctx context.Context, n int) ([]model.Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, score, created_at FROM scores
		 ORDER BY score DESC, created_at ASC, rowid ASC
		 LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Entry
	for rows.Next() {
		var entry model.Entry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Score, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = parsed
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// InsertRound stores a finished round.
func (s *Store) InsertRound(ctx context.Context, round model.Round) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (started_at, ended_at, mode, score, hits, misses, hazard_hits, best_combo, end_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		round.StartedAt.UTC().Format(timeLayout),
		round.EndedAt.UTC().Format(timeLayout),
		string(round.Mode),
		round.Score,
		round.Hits,
		round.Misses,
		round.HazardHits,
		round.BestCombo,
		string(round.EndReason),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRounds returns rounds filtered by stats config, oldest first.
func (s *Store) ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.Round, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, string(cfg.Mode))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, mode, score, hits, misses, hazard_hits, best_combo, end_reason
		FROM rounds
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rounds []model.Round
	for rows.Next() {
		var r model.Round
		var startedAt, endedAt, mode, reason string
		if err := rows.Scan(&r.ID, &startedAt, &endedAt, &mode, &r.Score, &r.Hits, &r.Misses, &r.HazardHits, &r.BestCombo, &reason); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, err
		}
		if r.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, err
		}
		r.Mode = model.Mode(mode)
		r.EndReason = model.EndReason(reason)
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}
	return rounds, nil
}
