package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.Mode != nil || cfg.Leaderboard.Backend != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[game]
mode = "classic"
duration = 20
lives = 0

[leaderboard]
backend = "bolt"
size = 7

[server]
addr = ":9000"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.Mode == nil || *cfg.Game.Mode != "classic" {
		t.Fatalf("unexpected mode: %v", cfg.Game.Mode)
	}
	if cfg.Game.Duration == nil || *cfg.Game.Duration != 20 {
		t.Fatalf("unexpected duration: %v", cfg.Game.Duration)
	}
	if cfg.Game.Lives == nil || *cfg.Game.Lives != 0 {
		t.Fatalf("explicit zero lives lost: %v", cfg.Game.Lives)
	}
	if cfg.Game.MaxCombo != nil {
		t.Fatalf("unset key should stay nil")
	}
	if *cfg.Leaderboard.Backend != "bolt" || *cfg.Leaderboard.Size != 7 || *cfg.Server.Addr != ":9000" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[game]\nspeed = 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "speed") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("template should decode: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("STARCATCH_BACKEND", "sqlite")
	t.Setenv("STARCATCH_LIVES", "0")
	envCfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if envCfg.Duration != nil {
		t.Fatalf("unset variable should stay nil")
	}
	backend := "bolt"
	lives := 3
	duration := 30
	file := FileConfig{}
	file.Leaderboard.Backend = &backend
	file.Game.Lives = &lives
	file.Game.Duration = &duration

	merged := envCfg.Overlay(file)
	if *merged.Leaderboard.Backend != "sqlite" {
		t.Fatalf("env should win, got %s", *merged.Leaderboard.Backend)
	}
	if *merged.Game.Lives != 0 {
		t.Fatalf("env zero should win, got %d", *merged.Game.Lives)
	}
	if *merged.Game.Duration != 30 {
		t.Fatalf("file value should survive, got %d", *merged.Game.Duration)
	}
}

func TestEnvRejectsBadNumber(t *testing.T) {
	t.Setenv("STARCATCH_SIZE", "many")
	if _, err := LoadEnv(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "starcatch", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "starcatch", "starcatch.db") {
		t.Fatalf("unexpected db path %s", got)
	}
	if got := DefaultKVPath(); got != filepath.Join("/tmp/data", "starcatch", "starcatch.bolt") {
		t.Fatalf("unexpected kv path %s", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/player")
	if got := ExpandHome("~/x.db"); got != filepath.Join("/home/player", "x.db") {
		t.Fatalf("unexpected expansion %s", got)
	}
	if got := ExpandHome("/abs/x.db"); got != "/abs/x.db" {
		t.Fatalf("absolute path changed: %s", got)
	}
}
