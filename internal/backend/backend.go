// Package backend opens the configured leaderboard store.
package backend

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/starcatch/internal/boltstore"
	"github.com/verte-zerg/starcatch/internal/leaderboard"
	"github.com/verte-zerg/starcatch/internal/model"
	"github.com/verte-zerg/starcatch/internal/remote"
	"github.com/verte-zerg/starcatch/internal/store"
)

// Backend names accepted in configuration.
const (
	Memory = "memory"
	SQLite = "sqlite"
	Bolt   = "bolt"
	Remote = "remote"
)

// Names lists the accepted backend names.
var Names = []string{Memory, SQLite, Bolt, Remote}

// Opened is an open leaderboard store and its cleanup.
type Opened struct {
	Store leaderboard.Store
	Name  string
	close func() error
}

// Close releases the store.
func (o *Opened) Close() error {
	if o == nil || o.close == nil {
		return nil
	}
	return o.close()
}

// Open opens the store named by cfg.Backend.
func Open(cfg model.LeaderboardConfig) (*Opened, error) {
	size := cfg.Size
	if size <= 0 {
		size = leaderboard.DefaultSize
	}
	name := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if name == "" {
		name = Memory
	}
	switch name {
	case Memory:
		return &Opened{Store: leaderboard.NewMemory(size, leaderboard.Seed()), Name: name}, nil
	case SQLite:
		st, err := store.Open(cfg.DBPath, size)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return &Opened{Store: st, Name: name, close: st.Close}, nil
	case Bolt:
		st, err := boltstore.Open(cfg.KVPath, size)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		return &Opened{Store: st, Name: name, close: st.Close}, nil
	case Remote:
		client, err := remote.New(cfg.URL, nil)
		if err != nil {
			return nil, err
		}
		return &Opened{Store: client, Name: name}, nil
	default:
		return nil, fmt.Errorf("unknown leaderboard backend %q (want one of %s)", cfg.Backend, strings.Join(Names, ", "))
	}
}
