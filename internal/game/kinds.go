package game

import (
	"time"

	"github.com/verte-zerg/starcatch/internal/generator"
	"github.com/verte-zerg/starcatch/internal/model"
)

// ClassicPoints is the fixed award for a hit in classic mode.
const ClassicPoints = 1

var basePoints = map[model.Kind]int{
	model.KindStar:    10,
	model.KindHeart:   15,
	model.KindSparkle: 20,
}

// DefaultKinds is the spawn table: four parts positive to one part hazard.
var DefaultKinds = []generator.Weighted{
	{Kind: model.KindStar, Weight: 2},
	{Kind: model.KindHeart, Weight: 1},
	{Kind: model.KindSparkle, Weight: 1},
	{Kind: model.KindBomb, Weight: 1},
}

// BasePoints returns the points a positive kind is worth before the combo
// multiplier. Hazards are worth nothing.
func BasePoints(k model.Kind) int {
	return basePoints[k]
}

// IsHazard reports whether hitting k costs a life.
func IsHazard(k model.Kind) bool {
	return k == model.KindBomb
}

// DefaultConfig returns the standard catch-mode settings.
func DefaultConfig() model.GameConfig {
	return model.GameConfig{
		Mode:          model.ModeCatch,
		Duration:      15,
		Lives:         3,
		MaxCombo:      5,
		SpawnInterval: 600 * time.Millisecond,
		ComboWindow:   2 * time.Second,
		MinLifetime:   2 * time.Second,
		MaxLifetime:   4 * time.Second,
		MarginPct:     10,
	}
}

func normalizeConfig(cfg model.GameConfig) model.GameConfig {
	def := DefaultConfig()
	if cfg.Mode == "" {
		cfg.Mode = def.Mode
	}
	if cfg.Duration <= 0 {
		cfg.Duration = def.Duration
	}
	if cfg.Lives < 0 {
		cfg.Lives = 0
	}
	if cfg.MaxCombo <= 0 {
		cfg.MaxCombo = def.MaxCombo
	}
	if cfg.SpawnInterval <= 0 {
		cfg.SpawnInterval = def.SpawnInterval
	}
	if cfg.ComboWindow <= 0 {
		cfg.ComboWindow = def.ComboWindow
	}
	if cfg.MinLifetime <= 0 {
		cfg.MinLifetime = def.MinLifetime
	}
	if cfg.MaxLifetime < cfg.MinLifetime {
		cfg.MaxLifetime = cfg.MinLifetime
	}
	if cfg.MarginPct <= 0 || cfg.MarginPct >= 50 {
		cfg.MarginPct = def.MarginPct
	}
	return cfg
}
