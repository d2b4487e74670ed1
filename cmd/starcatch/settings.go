package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/starcatch/internal/config"
	"github.com/verte-zerg/starcatch/internal/game"
	"github.com/verte-zerg/starcatch/internal/model"
)

// configPath returns the config file location, honouring STARCATCH_CONFIG.
func configPath() (string, error) {
	envCfg, err := config.LoadEnv()
	if err != nil {
		return "", err
	}
	if envCfg.ConfigPath != nil && *envCfg.ConfigPath != "" {
		return config.ExpandHome(*envCfg.ConfigPath), nil
	}
	return config.DefaultConfigPath(), nil
}

// loadConfig reads the config file with environment overrides applied.
// Flags are applied on top by the apply helpers.
func loadConfig() (config.FileConfig, error) {
	envCfg, err := config.LoadEnv()
	if err != nil {
		return config.FileConfig{}, err
	}
	path, err := configPath()
	if err != nil {
		return config.FileConfig{}, err
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return envCfg.Overlay(fileCfg), nil
}

func applyGameConfig(cmd *cobra.Command, fc config.GameConfig) model.GameConfig {
	applyStringConfig(cmd, "mode", &playMode, fc.Mode)
	applyIntConfig(cmd, "duration", &playDuration, fc.Duration)
	applyIntConfig(cmd, "lives", &playLives, fc.Lives)
	applyIntConfig(cmd, "max-combo", &playMaxCombo, fc.MaxCombo)

	cfg := game.DefaultConfig()
	cfg.Mode = model.Mode(playMode)
	cfg.Duration = playDuration
	cfg.Lives = playLives
	cfg.MaxCombo = playMaxCombo
	cfg.Seed = playSeed
	if fc.SpawnMS != nil && *fc.SpawnMS > 0 {
		cfg.SpawnInterval = time.Duration(*fc.SpawnMS) * time.Millisecond
	}
	if fc.ComboWindow != nil && *fc.ComboWindow > 0 {
		cfg.ComboWindow = time.Duration(*fc.ComboWindow) * time.Millisecond
	}
	return cfg
}

func applyLeaderboardConfig(cmd *cobra.Command, fc config.LeaderboardConfig) model.LeaderboardConfig {
	applyStringConfig(cmd, "backend", &boardBackend, fc.Backend)
	applyIntConfig(cmd, "size", &boardSize, fc.Size)
	applyStringConfig(cmd, "url", &boardURL, fc.URL)
	applyStringConfig(cmd, "db", &boardDB, fc.DBPath)
	applyStringConfig(cmd, "kv", &boardKV, fc.KVPath)
	return model.LeaderboardConfig{
		Backend: boardBackend,
		Size:    boardSize,
		URL:     boardURL,
		DBPath:  config.ExpandHome(boardDB),
		KVPath:  config.ExpandHome(boardKV),
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validMode(mode string) bool {
	return mode == string(model.ModeCatch) || mode == string(model.ModeClassic)
}

func validateGameConfig(cfg model.GameConfig) error {
	if !validMode(string(cfg.Mode)) {
		return fmt.Errorf("--mode must be %s or %s", model.ModeCatch, model.ModeClassic)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.Lives < 0 {
		return fmt.Errorf("--lives must be >= 0")
	}
	if cfg.MaxCombo < 1 {
		return fmt.Errorf("--max-combo must be >= 1")
	}
	return nil
}

func validateLeaderboardConfig(cfg model.LeaderboardConfig) error {
	if cfg.Size <= 0 {
		return fmt.Errorf("--size must be > 0")
	}
	return nil
}
