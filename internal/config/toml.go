// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Reading ReadingConfig `toml:"reading"`
	Stats   StatsConfig   `toml:"stats"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
}

// ReadingConfig maps reading-related settings.
type ReadingConfig struct {
	WPM        *int    `toml:"wpm"`
	Technique  *string `toml:"technique"`
	ChunkSize  *int    `toml:"chunk-size"`
	LineLength *int    `toml:"line-length"`
	Adaptive   *bool   `toml:"adaptive"`
}

// StatsConfig maps stats-related settings.
type StatsConfig struct {
	Last        *int `toml:"last"`
	CurveWindow *int `toml:"curve-window"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	Backend       *string `toml:"backend"`
	Path          *string `toml:"path"`
	RedisAddr     *string `toml:"redis-addr"`
	RedisPassword *string `toml:"redis-password"`
	RedisDB       *int    `toml:"redis-db"`
	RedisPrefix   *string `toml:"redis-prefix"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// DefaultTemplate returns the commented config written by `config init`.
func DefaultTemplate(wpm int, technique string, chunkSize, lineLength int) string {
	return fmt.Sprintf(`# flowread configuration

[reading]
# Target words per minute for new sessions.
wpm = %d
# normal, pacer, flash or chunking.
technique = %q
chunk-size = %d
line-length = %d
# Use the adaptive recommendation as the starting speed.
adaptive = true

[stats]
last = 20
curve-window = 3

[store]
# sqlite or redis.
backend = "sqlite"
# path = ""
# redis-addr = "localhost:6379"
# redis-db = 0
# redis-prefix = "flowread"

[log]
level = "info"
# file = ""
`, wpm, technique, chunkSize, lineLength)
}
