// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game        GameConfig        `toml:"game"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	Server      ServerConfig      `toml:"server"`
}

// GameConfig maps round settings.
type GameConfig struct {
	Mode        *string `toml:"mode"`
	Duration    *int    `toml:"duration"`
	Lives       *int    `toml:"lives"`
	MaxCombo    *int    `toml:"max-combo"`
	SpawnMS     *int    `toml:"spawn-ms"`
	ComboWindow *int    `toml:"combo-window-ms"`
}

// LeaderboardConfig maps leaderboard backend settings.
type LeaderboardConfig struct {
	Backend *string `toml:"backend"`
	Size    *int    `toml:"size"`
	URL     *string `toml:"url"`
	DBPath  *string `toml:"db"`
	KVPath  *string `toml:"kv"`
}

// ServerConfig maps settings of the serve command.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by the config command when no file exists.
const Template = `# starcatch configuration

[game]
# mode = "catch"        # catch or classic
# duration = 15         # seconds per round
# lives = 3             # 0 disables lives
# max-combo = 5
# spawn-ms = 600
# combo-window-ms = 2000

[leaderboard]
# backend = "memory"    # memory, sqlite, bolt or remote
# size = 5
# url = "http://127.0.0.1:8080"
# db = "~/.local/share/starcatch/starcatch.db"
# kv = "~/.local/share/starcatch/starcatch.bolt"

[server]
# addr = "127.0.0.1:8080"
`
