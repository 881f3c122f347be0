package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.General.CategorySeparator != "::" {
		t.Errorf("Expected default separator, got %q", cfg.General.CategorySeparator)
	}
	if cfg.General.WeekStartsOn != "monday" {
		t.Errorf("Expected default week start, got %q", cfg.General.WeekStartsOn)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Expected sqlite backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Path == "" {
		t.Error("Expected a default database path")
	}
}

func TestLoadFillsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("general:\n  week_starts_on: sunday\nstorage:\n  backend: memory\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.General.WeekStartsOn != "sunday" {
		t.Errorf("Expected sunday, got %q", cfg.General.WeekStartsOn)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Expected memory backend, got %q", cfg.Storage.Backend)
	}
	if cfg.General.CategorySeparator != "::" {
		t.Errorf("Expected separator default to survive a partial file, got %q", cfg.General.CategorySeparator)
	}
	if cfg.Storage.Path == "" {
		t.Error("Expected path default to survive a partial file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("general: [not a mapping"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	offset := -300
	cfg := Default()
	cfg.General.WeekStartsOn = "sunday"
	cfg.General.TimeZoneOffset = &offset
	cfg.Storage.Path = "/tmp/custom.db"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.General.WeekStartsOn != "sunday" {
		t.Errorf("Expected sunday, got %q", loaded.General.WeekStartsOn)
	}
	if loaded.General.TimeZoneOffset == nil || *loaded.General.TimeZoneOffset != -300 {
		t.Errorf("Expected offset -300, got %v", loaded.General.TimeZoneOffset)
	}
	if loaded.Storage.Path != "/tmp/custom.db" {
		t.Errorf("Expected custom path, got %q", loaded.Storage.Path)
	}
}
