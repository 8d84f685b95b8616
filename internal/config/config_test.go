package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
anthropic:
  api_key: sk-ant-test-key-abcdef
wavespeed:
  api_key: ws-test
hydration:
  batch_size: 3
  batch_delay: 2s
output:
  dir: out
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-ant-test-key-abcdef" {
		t.Errorf("api_key = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Hydration.BatchSize != 3 {
		t.Errorf("batch_size = %d, want 3", cfg.Hydration.BatchSize)
	}
	if cfg.Hydration.BatchDelay != 2*time.Second {
		t.Errorf("batch_delay = %s, want 2s", cfg.Hydration.BatchDelay)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("output.dir = %q, want out", cfg.Output.Dir)
	}
}

func TestLoadFromPathDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Hydration.BatchSize != 5 {
		t.Errorf("default batch_size = %d, want 5", cfg.Hydration.BatchSize)
	}
	if cfg.Hydration.BatchDelay != 10*time.Second {
		t.Errorf("default batch_delay = %s, want 10s", cfg.Hydration.BatchDelay)
	}
	if cfg.Hydration.RequestTimeout != 30*time.Second {
		t.Errorf("default request_timeout = %s, want 30s", cfg.Hydration.RequestTimeout)
	}
	if cfg.Wavespeed.BaseURL == "" {
		t.Error("expected default wavespeed base_url")
	}
}

func TestExpandEnvUnresolved(t *testing.T) {
	if got := expandEnv("${DEFINITELY_NOT_SET_VAR_XYZ}"); got != "" {
		t.Errorf("expandEnv left unresolved reference: %q", got)
	}
	t.Setenv("TOPSHELF_TEST_KEY", "value123")
	if got := expandEnv("${TOPSHELF_TEST_KEY}"); got != "value123" {
		t.Errorf("expandEnv = %q, want value123", got)
	}
}
