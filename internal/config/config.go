// Package config provides YAML-based configuration for focuserve.
// The config file is optional: every setting has a default that
// reproduces the launcher's stock behavior, and command-line flags
// override whatever the file supplies.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration validation.
var (
	ErrInvalidPort         = errors.New("port must be between 0 and 65535")
	ErrDatabasePathMissing = errors.New("history database_path is required when history is enabled")
)

// DefaultPort is the port the launcher has always served on.
const DefaultPort = 8000

// DefaultFileName is the config file looked up when --config is not given.
const DefaultFileName = "focuserve.yaml"

// Config represents the top-level configuration structure.
type Config struct {
	Port        int           `yaml:"port"`
	Host        string        `yaml:"host"`
	BuildDir    string        `yaml:"build_dir"`
	OpenBrowser *bool         `yaml:"open_browser"`
	History     HistoryConfig `yaml:"history"`
}

// HistoryConfig controls recording of serve sessions.
type HistoryConfig struct {
	Enabled      *bool  `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

// Default returns the configuration used when no file is present:
// port 8000 on all interfaces, build dir resolved next to the
// executable, browser opened, history recorded under the user home.
func Default() *Config {
	return &Config{
		Port: DefaultPort,
		History: HistoryConfig{
			DatabasePath: defaultHistoryPath(),
		},
	}
}

// Load reads and validates the config file at path. A missing file is
// not an error when path is the default name; explicitly given paths
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && path == DefaultFileName {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values no server could run with.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	if c.HistoryEnabled() && c.History.DatabasePath == "" {
		return ErrDatabasePathMissing
	}
	return nil
}

// BrowserEnabled reports whether the browser should be opened on start.
// Unset means yes.
func (c *Config) BrowserEnabled() bool {
	return c.OpenBrowser == nil || *c.OpenBrowser
}

// HistoryEnabled reports whether serve sessions are recorded.
// Unset means yes.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// defaultHistoryPath places the history database under the user home,
// falling back to the temp dir when no home is known.
func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "focuserve", "history.db")
	}
	return filepath.Join(home, ".focuserve", "history.db")
}
