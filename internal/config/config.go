// Package config handles reading and writing the Stride config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure of config.yaml.
type Config struct {
	General GeneralConfig `yaml:"general"`
	Storage StorageConfig `yaml:"storage"`
}

// GeneralConfig holds tracking and review settings.
type GeneralConfig struct {
	// CategorySeparator splits categories into sub-categories.
	CategorySeparator string `yaml:"category_separator"`
	// WeekStartsOn is the weekday that opens a review week.
	WeekStartsOn string `yaml:"week_starts_on"`
	// TimeZone is an IANA zone name; empty means the local system zone.
	TimeZone string `yaml:"time_zone,omitempty"`
	// TimeZoneOffset is a fixed UTC offset in minutes, mutually
	// exclusive with TimeZone.
	TimeZoneOffset *int `yaml:"time_zone_offset,omitempty"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `yaml:"backend"`
	// Path is the sqlite database file.
	Path string `yaml:"path"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			CategorySeparator: "::",
			WeekStartsOn:      "monday",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    defaultDBPath(),
		},
	}
}

// Load reads the config file at path. A missing file yields the default
// configuration; unset fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.General.CategorySeparator == "" {
		cfg.General.CategorySeparator = "::"
	}
	if cfg.General.WeekStartsOn == "" {
		cfg.General.WeekStartsOn = "monday"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultDBPath()
	}
	return cfg, nil
}

// Save writes the config file, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "stride", "config.yaml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "stride", "stride.db")
}
