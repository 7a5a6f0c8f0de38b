// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	if cfg.Store.Path == "" {
		t.Error("Default() Store.Path is empty")
	}
	if cfg.Store.SettlePeriod != 3*time.Second {
		t.Errorf("Store.SettlePeriod = %v, want %v", cfg.Store.SettlePeriod, 3*time.Second)
	}
	if cfg.Store.GCCapacity != 256 {
		t.Errorf("Store.GCCapacity = %d, want 256", cfg.Store.GCCapacity)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  path: "./test-settings.conf"
  legacy_path: "./test-settings.xml"
  settle_period: "500ms"
  gc_capacity: 64

logging:
  level: "debug"
  format: "json"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Path != "./test-settings.conf" {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, "./test-settings.conf")
	}
	if cfg.Store.LegacyPath != "./test-settings.xml" {
		t.Errorf("Store.LegacyPath = %q, want %q", cfg.Store.LegacyPath, "./test-settings.xml")
	}
	if cfg.Store.SettlePeriod != 500*time.Millisecond {
		t.Errorf("Store.SettlePeriod = %v, want %v", cfg.Store.SettlePeriod, 500*time.Millisecond)
	}
	if cfg.Store.GCCapacity != 64 {
		t.Errorf("Store.GCCapacity = %d, want 64", cfg.Store.GCCapacity)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_OmittedFieldsKeepDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "warn"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := Default()
	if cfg.Store.Path != def.Store.Path {
		t.Errorf("Store.Path = %q, want default %q", cfg.Store.Path, def.Store.Path)
	}
	if cfg.Store.SettlePeriod != def.Store.SettlePeriod {
		t.Errorf("Store.SettlePeriod = %v, want default %v", cfg.Store.SettlePeriod, def.Store.SettlePeriod)
	}
	if cfg.Store.GCCapacity != def.Store.GCCapacity {
		t.Errorf("Store.GCCapacity = %d, want default %d", cfg.Store.GCCapacity, def.Store.GCCapacity)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BONDSTORE_PATH", "/tmp/from-env.conf")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  path: "${TEST_BONDSTORE_PATH}"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Path != "/tmp/from-env.conf" {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, "/tmp/from-env.conf")
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// An unset variable expands to an empty path, which fails validation.
	configContent := `
store:
  path: "${UNSET_VAR_FOR_TEST}"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty store.path, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  path "missing colon"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  settle_period: "invalid-duration"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid duration, got nil")
	}
}

func TestLoad_NegativeGCCapacity(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  gc_capacity: -1
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("Load() expected error for negative gc_capacity, got nil")
	}
}

func TestValidate_BadLoggingValues(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for bad logging.level, got nil")
	}

	cfg = Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for bad logging.format, got nil")
	}
}
