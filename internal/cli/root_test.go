package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCommands(t *testing.T) {
	if rootCmd.Name() != "hmid" {
		t.Errorf("Expected root command name hmid, got %s", rootCmd.Name())
	}

	if len(rootCmd.Commands()) < 2 {
		t.Errorf("Expected at least 2 subcommands, got %d", len(rootCmd.Commands()))
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hmid.yaml")
	content := `
catalog:
  modes_dir: /tmp/modes
runtime:
  default_mode: Standard
  publish_interval: 2s
observability:
  log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Catalog.ModesDir != "/tmp/modes" {
		t.Errorf("Expected modes_dir /tmp/modes, got %s", cfg.Catalog.ModesDir)
	}
	if cfg.Runtime.DefaultMode != "Standard" {
		t.Errorf("Expected default mode Standard, got %s", cfg.Runtime.DefaultMode)
	}
	if got := cfg.Runtime.PublishIntervalOrDefault().Seconds(); got != 2 {
		t.Errorf("Expected publish interval 2s, got %vs", got)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing config")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("Expected error for malformed config")
	}
}
