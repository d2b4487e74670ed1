package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds STARCATCH_* overrides. Unset variables stay nil.
type EnvConfig struct {
	Mode       *string `env:"STARCATCH_MODE"`
	Duration   *int    `env:"STARCATCH_DURATION"`
	Lives      *int    `env:"STARCATCH_LIVES"`
	MaxCombo   *int    `env:"STARCATCH_MAX_COMBO"`
	Backend    *string `env:"STARCATCH_BACKEND"`
	Size       *int    `env:"STARCATCH_SIZE"`
	URL        *string `env:"STARCATCH_URL"`
	DBPath     *string `env:"STARCATCH_DB"`
	KVPath     *string `env:"STARCATCH_KV"`
	Addr       *string `env:"STARCATCH_ADDR"`
	ConfigPath *string `env:"STARCATCH_CONFIG"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv reads the STARCATCH_* variables.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := ParseEnv(&cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Overlay returns file with every set environment value applied on top.
func (e EnvConfig) Overlay(file FileConfig) FileConfig {
	set := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	setInt := func(dst **int, v *int) {
		if v != nil {
			*dst = v
		}
	}
	set(&file.Game.Mode, e.Mode)
	setInt(&file.Game.Duration, e.Duration)
	setInt(&file.Game.Lives, e.Lives)
	setInt(&file.Game.MaxCombo, e.MaxCombo)
	set(&file.Leaderboard.Backend, e.Backend)
	setInt(&file.Leaderboard.Size, e.Size)
	set(&file.Leaderboard.URL, e.URL)
	set(&file.Leaderboard.DBPath, e.DBPath)
	set(&file.Leaderboard.KVPath, e.KVPath)
	set(&file.Server.Addr, e.Addr)
	return file
}
