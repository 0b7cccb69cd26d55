// ABOUTME: cortitrack configuration management with backend selection.
// ABOUTME: JSON file settings, CORTITRACK_* environment overrides, and the storage factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/harperreed/cortitrack/internal/charm"
	"github.com/harperreed/cortitrack/internal/storage"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendCharm  = "charm"
)

// DefaultListen is the default HTTP listen address.
const DefaultListen = ":8080"

// Config stores cortitrack configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "badger" or "charm".
	Backend string `json:"backend,omitempty" env:"BACKEND"`

	// DataDir is the root directory for local data. SQLite puts cortitrack.db
	// here; badger uses a badger/ subdirectory. Supports ~ expansion.
	DataDir string `json:"data_dir,omitempty" env:"DATA_DIR"`

	// Timezone is the IANA zone used to decide calendar days. Defaults to UTC.
	Timezone string `json:"timezone,omitempty" env:"TIMEZONE"`

	LogLevel string `json:"log_level,omitempty" env:"LOG_LEVEL"`
	Listen   string `json:"listen,omitempty" env:"LISTEN"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel returns the configured log level, defaulting to "info".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetListen returns the HTTP listen address.
func (c *Config) GetListen() string {
	if c.Listen == "" {
		return DefaultListen
	}
	return c.Listen
}

// Location resolves Timezone, defaulting to UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(logger *log.Logger) (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case BackendSQLite:
		db, err := storage.Open(filepath.Join(dataDir, "cortitrack.db"))
		if err != nil {
			return nil, err
		}
		db.SetLogger(logger)
		return db, nil
	case BackendBadger:
		kv, err := storage.OpenBadger(filepath.Join(dataDir, "badger"))
		if err != nil {
			return nil, err
		}
		return storage.NewKVStore(kv, logger), nil
	case BackendCharm:
		client, err := charm.InitClient()
		if err != nil {
			return nil, fmt.Errorf("init charm: %w", err)
		}
		return storage.NewKVStore(client, logger), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "cortitrack", "config.json")
}

// Load reads config from disk, then applies CORTITRACK_* environment overrides.
func Load() (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(GetConfigPath())
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CORTITRACK_"}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
