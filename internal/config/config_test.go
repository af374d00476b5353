package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.DataDir != ".aigov/data" {
		t.Errorf("DataDir = %q, want .aigov/data", cfg.DataDir)
	}
	if cfg.ReportsDir != "reports" {
		t.Errorf("ReportsDir = %q, want reports", cfg.ReportsDir)
	}
	if cfg.Logging.Format != "human" || cfg.Logging.Level != "info" {
		t.Errorf("Logging = %+v, want human/info", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != ".aigov/data" {
		t.Errorf("DataDir = %q, want defaults", cfg.DataDir)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.ReportsDir = "evidence-out"
	cfg.Attribution = "Model Risk Office"
	cfg.Logging.Format = "json"
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.ReportsDir != "evidence-out" {
		t.Errorf("ReportsDir = %q, want evidence-out", loaded.ReportsDir)
	}
	if loaded.Attribution != "Model Risk Office" {
		t.Errorf("Attribution = %q", loaded.Attribution)
	}
	if loaded.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", loaded.Logging.Format)
	}
}

func TestLoadConfigRejectsBadVersion(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".aigov")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := `{"version": 99, "dataDir": "d", "reportsDir": "r"}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadConfig(root); err == nil {
		t.Error("unsupported version should be rejected")
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown logging format should be rejected")
	}
}
