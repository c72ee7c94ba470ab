package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("DAYBOOK_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DocumentName != DefaultDocumentName {
		t.Errorf("DocumentName = %q, want %q", cfg.DocumentName, DefaultDocumentName)
	}
	if cfg.Debounce() != time.Second {
		t.Errorf("Debounce = %v, want 1s", cfg.Debounce())
	}
	if cfg.DashboardPort != 8080 {
		t.Errorf("DashboardPort = %d, want 8080", cfg.DashboardPort)
	}
	if cfg.RemoteBaseURL != "" {
		t.Errorf("RemoteBaseURL = %q, want empty", cfg.RemoteBaseURL)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYBOOK_HOME", dir)

	content := []byte("remote_base_url: https://store.example.com\ndebounce_ms: 250\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RemoteBaseURL != "https://store.example.com" {
		t.Errorf("RemoteBaseURL = %q", cfg.RemoteBaseURL)
	}
	if cfg.Debounce() != 250*time.Millisecond {
		t.Errorf("Debounce = %v, want 250ms", cfg.Debounce())
	}
	// Keys absent from the file keep their defaults.
	if cfg.DocumentName != DefaultDocumentName {
		t.Errorf("DocumentName = %q", cfg.DocumentName)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYBOOK_HOME", dir)
	t.Setenv("DAYBOOK_DEBOUNCE_MS", "50")

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("debounce_ms: 250\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DebounceMS != 50 {
		t.Errorf("DebounceMS = %d, environment must win over the file", cfg.DebounceMS)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYBOOK_HOME", dir)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{broken yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("a present but unparsable config file must be an error, not silently ignored")
	}
}

func TestDirAndPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYBOOK_HOME", dir)

	if Dir() != dir {
		t.Errorf("Dir = %q, want %q", Dir(), dir)
	}
	if Path() != filepath.Join(dir, "config.yaml") {
		t.Errorf("Path = %q", Path())
	}
}
