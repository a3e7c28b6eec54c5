package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the static server configuration loaded from YAML.
type Config struct {
	Addr    string `yaml:"addr"`
	LogFile string `yaml:"log_file"`
	DataDir string `yaml:"data_dir"`

	// Room settings.
	CodeLength        int `yaml:"code_length"`
	DefaultMaxPlayers int `yaml:"default_max_players"`
	MaxRoomPlayers    int `yaml:"max_room_players"`

	// HTTP server timeouts, seconds.
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
	IdleTimeout  int `yaml:"idle_timeout"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Addr:              ":8080",
		LogFile:           "pixelminer.log",
		DataDir:           "data",
		CodeLength:        6,
		DefaultMaxPlayers: 4,
		MaxRoomPlayers:    8,
		ReadTimeout:       15,
		WriteTimeout:      15,
		IdleTimeout:       60,
	}
}

// Load reads the YAML config at path, filling missing fields with defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.CodeLength < 4 {
		cfg.CodeLength = 4
	}
	if cfg.DefaultMaxPlayers < 1 {
		cfg.DefaultMaxPlayers = 1
	}
	if cfg.MaxRoomPlayers < cfg.DefaultMaxPlayers {
		cfg.MaxRoomPlayers = cfg.DefaultMaxPlayers
	}
	return cfg, nil
}
