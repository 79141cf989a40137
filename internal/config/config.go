package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
)

// Config holds all runtime settings, read from the environment.
type Config struct {
	APIBaseURL     string `env:"IOTDECK_API_URL" envDefault:"https://lichen129.icu/iot"`
	DashboardURL   string `env:"IOTDECK_DASHBOARD_URL" envDefault:"https://lichen129.icu/iot/"`
	StateDir       string `env:"IOTDECK_STATE_DIR"`
	RequestTimeout int    `env:"IOTDECK_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	HistoryLimit   int    `env:"IOTDECK_HISTORY_LIMIT" envDefault:"100"`
}

// Load reads configuration from environment variables. StateDir defaults to
// ~/.iotdeck when unset.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.StateDir = filepath.Join(home, ".iotdeck")
	}
	return &cfg, nil
}

// CredentialsPath returns the path of the persisted credential record.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.StateDir, "credentials.json")
}

// LogPath returns the path of the log file. The TUI owns the terminal, so
// logs go to disk.
func (c *Config) LogPath() string {
	return filepath.Join(c.StateDir, "iotdeck.log")
}

// RulesPath returns the path of the locally persisted automation rules.
func (c *Config) RulesPath() string {
	return filepath.Join(c.StateDir, "rules.json")
}
