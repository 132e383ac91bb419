package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Poll     PollConfig
	Seed     SeedConfig
	Log      LogConfig

	// Keys rebinds TUI actions, e.g. keys.sort-asc = ["s"].
	Keys map[string][]string
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path       string
	Migrations string
}

// PollConfig controls how often the todo list is refetched.
type PollConfig struct {
	Interval      time.Duration
	WatchDatabase bool `mapstructure:"watch_database"`
	StampFetch    bool `mapstructure:"stamp_fetch"`
}

// SeedConfig sets how many todos a fresh database gets.
type SeedConfig struct {
	Count int
}

// LogConfig holds logging settings. An empty File discards logs.
type LogConfig struct {
	Level string
	File  string
}

func configPath() string {
	if p := os.Getenv("MVILIST_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "mvilist", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix MVILIST_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "mvilist", "mvilist.db"))
	v.SetDefault("database.migrations", "internal/database/migrations")
	v.SetDefault("poll.interval", "5s")
	v.SetDefault("poll.watch_database", true)
	v.SetDefault("poll.stamp_fetch", true)
	v.SetDefault("seed.count", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetConfigType("toml")
	if p := os.Getenv("MVILIST_CONFIG"); p != "" {
		v.SetConfigFile(p)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "mvilist"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MVILIST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("config: poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Seed.Count < 0 {
		return fmt.Errorf("config: seed.count must not be negative, got %d", c.Seed.Count)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("config: database.path is required")
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("poll.interval", cfg.Poll.Interval.String())
	v.Set("poll.watch_database", cfg.Poll.WatchDatabase)
	v.Set("poll.stamp_fetch", cfg.Poll.StampFetch)
	v.Set("seed.count", cfg.Seed.Count)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	if len(cfg.Keys) > 0 {
		v.Set("keys", cfg.Keys)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
