package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	dir := filepath.Join(home, ".cascade")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file := "api_keys:\n  anthropic: file-key\n  openai: file-openai\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(file), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "env-key" {
		t.Fatalf("anthropic key %q, want env-key", cfg.AnthropicAPIKey)
	}
	if cfg.OpenAIAPIKey != "file-openai" {
		t.Fatalf("openai key %q, want file-openai", cfg.OpenAIAPIKey)
	}
	if cfg.Routing == nil {
		t.Fatal("routing config should default when no routing.yaml exists")
	}
}

func TestHasProvider(t *testing.T) {
	cfg := &Config{AnthropicAPIKey: "k"}
	if !cfg.HasProvider("anthropic") {
		t.Fatal("anthropic should be configured")
	}
	if cfg.HasProvider("openai") {
		t.Fatal("openai should not be configured")
	}
	if cfg.HasProvider("nonsense") {
		t.Fatal("unknown provider names are never configured")
	}
}
