package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MLPERM_CONFIG_DIR", dir)
	wd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.UIPath != "/oidc/ui" {
		t.Errorf("ui_path = %q", cfg.Server.UIPath)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Server.Timeout)
	}
	if cfg.Log.Format != "text" || cfg.Output.Format != "table" {
		t.Errorf("unexpected formats %+v %+v", cfg.Log, cfg.Output)
	}
}

func TestSetThenLoad(t *testing.T) {
	dir := isolate(t)

	path, err := Set("server.url", "https://mlflow.example.com")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if path != filepath.Join(dir, "config.yaml") {
		t.Fatalf("path = %q", path)
	}
	if _, err := Set("server.timeout", "5s"); err != nil {
		t.Fatalf("Set timeout: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "https://mlflow.example.com" {
		t.Errorf("url = %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Server.Timeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	Set("output.format", "table")
	t.Setenv("MLPERM_OUTPUT_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Fatalf("output.format = %q, want json", cfg.Output.Format)
	}
}

func TestSetRejectsBadInput(t *testing.T) {
	isolate(t)

	if _, err := Set("server.port", "1"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
	if _, err := Set("server.timeout", "soon"); err == nil {
		t.Fatal("expected duration error")
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	isolate(t)
	t.Setenv("MLPERM_LOG_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error")
	}
}
