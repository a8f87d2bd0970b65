// Package config loads mathemmita settings from YAML, .env and MATHEMMITA_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/speech"
	"github.com/abhisek/mathemmita/internal/tricks"
	"github.com/abhisek/mathemmita/internal/tutor"
)

// Config holds all mathemmita configuration.
type Config struct {
	// ChildName is used in spoken praise.
	ChildName string `yaml:"child_name"`

	// UserID identifies the player whose attempts are logged.
	UserID string `yaml:"user_id"`

	// Database is a SQLite path or a postgres:// DSN. Empty uses the
	// default data directory.
	Database string `yaml:"database"`

	Tutor  tutor.Config  `yaml:"tutor"`
	Game   GameConfig    `yaml:"game"`
	Speech SpeechConfig  `yaml:"speech"`
	Tricks tricks.Config `yaml:"tricks"`

	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GameConfig tunes round behaviour and scoring.
type GameConfig struct {
	LevelChangeProbability float64        `yaml:"level_change_probability"`
	StartLevel             int            `yaml:"start_level"`
	Points                 rewards.Points `yaml:"points"`

	// SnapshotsKept is how many snapshots per user survive the nightly prune.
	SnapshotsKept int `yaml:"snapshots_kept"`
}

// SpeechConfig configures the text-to-speech command.
type SpeechConfig struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	SessionKey string `yaml:"session_key"`
}

// TelegramConfig configures the Telegram bot.
type TelegramConfig struct {
	Token string `yaml:"token"`
	Debug bool   `yaml:"debug"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // used by the terminal UI
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		ChildName: speech.DefaultChildName,
		UserID:    "local",
		Tutor:     tutor.DefaultConfig(),
		Tricks:    tricks.DefaultConfig(),
		Game: GameConfig{
			LevelChangeProbability: session.DefaultLevelChangeProbability,
			StartLevel:             1,
			Points:                 rewards.DefaultPoints(),
			SnapshotsKept:          20,
		},
		Speech: SpeechConfig{
			Enabled: true,
			Command: speech.DefaultCommand,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mathemmita/config.yaml, falling back
// to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mathemmita", "config.yaml")
}

// Load reads the config file at path (missing file means defaults), loads
// .env from the working directory and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MATHEMMITA_CHILD_NAME"); v != "" {
		c.ChildName = v
	}
	if v := os.Getenv("MATHEMMITA_USER"); v != "" {
		c.UserID = v
	}
	if v := os.Getenv("MATHEMMITA_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("MATHEMMITA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MATHEMMITA_SESSION_KEY"); v != "" {
		c.Server.SessionKey = v
	}
	if v := os.Getenv("MATHEMMITA_TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("MATHEMMITA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MATHEMMITA_SPEECH"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Speech.Enabled = on
		}
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if err := c.Tutor.Validate(); err != nil {
		return fmt.Errorf("tutor: %w", err)
	}
	if p := c.Game.LevelChangeProbability; p < 0 || p > 1 {
		return fmt.Errorf("game: level_change_probability must be in [0,1], got %v", p)
	}
	if c.Game.StartLevel != 1 && c.Game.StartLevel != 2 {
		return fmt.Errorf("game: start_level must be 1 or 2, got %d", c.Game.StartLevel)
	}
	if c.Game.Points.Correct < 0 || c.Game.Points.HardWon < 0 {
		return fmt.Errorf("game: points must not be negative")
	}
	if c.Game.SnapshotsKept < 1 {
		return fmt.Errorf("game: snapshots_kept must be at least 1")
	}
	if c.UserID == "" {
		return fmt.Errorf("user_id must not be empty")
	}
	return nil
}
