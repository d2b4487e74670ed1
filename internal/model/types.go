// Package model defines shared data structures.
package model

import "time"

// Mode selects the round rules.
type Mode string

const (
	// ModeCatch spawns falling items with combo, hazards and lives.
	ModeCatch Mode = "catch"
	// ModeClassic keeps a single target that jumps on every hit.
	ModeClassic Mode = "classic"
)

// Phase is the round state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlaying
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlaying:
		return "playing"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// Kind identifies an item type.
type Kind int

const (
	KindStar Kind = iota
	KindHeart
	KindSparkle
	KindBomb
)

// EndReason tells why a round finished.
type EndReason string

const (
	EndTimeout EndReason = "timeout"
	EndNoLives EndReason = "no-lives"
)

// GameConfig defines round settings.
type GameConfig struct {
	Mode          Mode
	Duration      int
	Lives         int
	MaxCombo      int
	SpawnInterval time.Duration
	ComboWindow   time.Duration
	MinLifetime   time.Duration
	MaxLifetime   time.Duration
	MarginPct     float64
	Seed          int64
}

// LeaderboardConfig defines which backend holds scores.
type LeaderboardConfig struct {
	Backend string
	Size    int
	URL     string
	DBPath  string
	KVPath  string
}

// Item is an active target in the play area.
type Item struct {
	ID       int
	Kind     Kind
	Label    rune
	X        float64
	Age      time.Duration
	Lifetime time.Duration
}

// Progress returns how far the item has travelled, in [0, 1].
func (it Item) Progress() float64 {
	if it.Lifetime <= 0 {
		return 0
	}
	p := float64(it.Age) / float64(it.Lifetime)
	if p > 1 {
		return 1
	}
	return p
}

// Snapshot is a read-only view of the engine used for rendering.
type Snapshot struct {
	Mode          Mode
	Phase         Phase
	Score         int
	TimeRemaining int
	Lives         int
	LivesEnabled  bool
	Combo         int
	Items         []Item
}

// Entry is one leaderboard row.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Round captures a finished round for local history.
type Round struct {
	ID         int64
	StartedAt  time.Time
	EndedAt    time.Time
	Mode       Mode
	Score      int
	Hits       int
	Misses     int
	HazardHits int
	BestCombo  int
	EndReason  EndReason
}

// StatsConfig defines filters for round history output.
type StatsConfig struct {
	Mode  Mode
	Since *time.Time
	Last  int
}
