// Package config loads daybook configuration from file, environment, and
// defaults.
//
// Configuration lives in $DAYBOOK_HOME (default ~/.daybook) as config.yaml;
// every key can be overridden with a DAYBOOK_* environment variable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DefaultDocumentName is the well-known name of the remote document.
const DefaultDocumentName = "daybook.json"

// Config holds runtime configuration.
type Config struct {
	// RemoteBaseURL is the base URL of the remote object store.
	RemoteBaseURL string `mapstructure:"remote_base_url"`

	// DocumentName is the well-known remote name of the document.
	DocumentName string `mapstructure:"document_name"`

	// TokenPath is the file the auth helper writes the bearer token to.
	TokenPath string `mapstructure:"token_path"`

	// DebounceMS is the autosave debounce window in milliseconds.
	DebounceMS int `mapstructure:"debounce_ms"`

	// CachePath is the local SQLite mirror location.
	CachePath string `mapstructure:"cache_path"`

	// LogPath enables the rotating log file when set.
	LogPath string `mapstructure:"log_path"`

	// DashboardPort is the local dashboard listen port.
	DashboardPort int `mapstructure:"dashboard_port"`
}

// Debounce returns the configured debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Dir returns the daybook home directory.
func Dir() string {
	if dir := os.Getenv("DAYBOOK_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".daybook"
	}
	return filepath.Join(home, ".daybook")
}

// Path returns the config file location inside Dir.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads configuration. A missing config file is not an error; defaults
// and environment variables still apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())
	v.SetEnvPrefix("DAYBOOK")
	v.AutomaticEnv()

	dir := Dir()
	v.SetDefault("remote_base_url", "")
	v.SetDefault("document_name", DefaultDocumentName)
	v.SetDefault("token_path", filepath.Join(dir, "token"))
	v.SetDefault("debounce_ms", 1000)
	v.SetDefault("cache_path", filepath.Join(dir, "cache.db"))
	v.SetDefault("log_path", "")
	v.SetDefault("dashboard_port", 8080)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
