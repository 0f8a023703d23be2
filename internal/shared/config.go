package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Emby       EmbyConfig       `toml:"emby"`
	Letterboxd LetterboxdConfig `toml:"letterboxd"`
	Sync       SyncConfig       `toml:"sync"`
	Database   DatabaseConfig   `toml:"database"`
}

// EmbyConfig contains the media server connection settings.
type EmbyConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// LetterboxdConfig contains watchlist scraping settings.
type LetterboxdConfig struct {
	BaseURL string `toml:"base_url"`
	// PageSize is the number of posters Letterboxd renders per watchlist
	// page. A page shorter than this is the last page.
	PageSize          int     `toml:"page_size"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// SyncConfig contains sync pass settings.
type SyncConfig struct {
	IntervalMS int `toml:"interval_ms"`
	// Workers bounds concurrent per-user syncs. 1 processes users sequentially.
	Workers int `toml:"workers"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Interval returns the daemon idle delay between sync passes.
func (s SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyDefaults()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Letterboxd.BaseURL == "" {
		c.Letterboxd.BaseURL = "https://letterboxd.com"
	}
	if c.Letterboxd.PageSize <= 0 {
		c.Letterboxd.PageSize = 28
	}
	if c.Letterboxd.RequestsPerSecond <= 0 {
		c.Letterboxd.RequestsPerSecond = 2.0
	}
	if c.Sync.IntervalMS <= 0 {
		c.Sync.IntervalMS = 300000
	}
	if c.Sync.Workers <= 0 {
		c.Sync.Workers = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = "lbsync.db"
	}
}

// Validate checks that the fields required for talking to Emby are present.
func (c *Config) Validate() error {
	if c.Emby.BaseURL == "" {
		return fmt.Errorf("%w: emby.base_url is required", ErrInvalidConfig)
	}
	if c.Emby.APIKey == "" {
		return fmt.Errorf("%w: emby.api_key is required", ErrInvalidConfig)
	}
	return nil
}
