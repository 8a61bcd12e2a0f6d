package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultHasSaneBounds(t *testing.T) {
	cfg := Default()
	if cfg.Agent.MaxSteps <= 0 {
		t.Fatal("expected a positive default MaxSteps")
	}
	if cfg.Model.MaxTokens != -1 {
		t.Fatalf("expected unbounded default MaxTokens (-1), got %d", cfg.Model.MaxTokens)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pilot.yaml")
	body := []byte("agent:\n  max_steps: 10\nmodel:\n  strategy: round_robin\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agent.MaxSteps != 10 {
		t.Fatalf("expected overridden MaxSteps=10, got %d", cfg.Agent.MaxSteps)
	}
	if cfg.Model.Strategy != "round_robin" {
		t.Fatalf("expected overridden strategy, got %q", cfg.Model.Strategy)
	}
	if cfg.Browser.Viewport.Width != 1280 {
		t.Fatalf("expected un-overridden default viewport width to survive, got %d", cfg.Browser.Viewport.Width)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
