package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRoutingConfigValidates(t *testing.T) {
	cfg := DefaultRoutingConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestDefaultWeightVectorsSumToOne(t *testing.T) {
	cfg := DefaultRoutingConfig()
	for _, state := range []string{"normal", "reduce", "pause"} {
		w, ok := cfg.Value.Weights[state]
		if !ok {
			t.Fatalf("missing weight vector for state %q", state)
		}
		if sum := w.Sum(); sum < 0.999 || sum > 1.001 {
			t.Fatalf("state %q weights sum to %.3f", state, sum)
		}
	}
}

func writeRoutingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routing.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write routing file: %v", err)
	}
	return path
}

func TestLoadRoutingConfigMergesDefaults(t *testing.T) {
	path := writeRoutingFile(t, `
breaker:
  failure_threshold: 3
retry:
  max_retries: 5
`)
	cfg, err := LoadRoutingConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Breaker.FailureThreshold != 3 {
		t.Fatalf("failure threshold %d, want 3 from file", cfg.Breaker.FailureThreshold)
	}
	if cfg.Breaker.RecoveryTimeoutMs == 0 {
		t.Fatal("recovery timeout should fall back to default")
	}
	if cfg.Retry.MaxRetries != 5 {
		t.Fatalf("max retries %d, want 5 from file", cfg.Retry.MaxRetries)
	}
	if len(cfg.Tiers) == 0 || len(cfg.Chains) == 0 {
		t.Fatal("tiers and chains should fall back to defaults")
	}
	if len(cfg.Classifier.Vocabulary.Security) == 0 {
		t.Fatal("vocabulary should fall back to defaults")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("merged config must validate: %v", err)
	}
}

func TestLoadRoutingConfigOverridesChains(t *testing.T) {
	path := writeRoutingFile(t, `
tiers:
  - id: local-small
    rank: 1
  - id: local-large
    rank: 2
chains:
  - id: local
    name: Local Only
    steps:
      - tier: local-small
        threshold: 0.5
      - tier: local-large
        threshold: 0
value:
  security_floor: local-large
`)
	cfg, err := LoadRoutingConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(cfg.Chains) != 1 || cfg.Chains[0].ID != "local" {
		t.Fatalf("expected only the declared chain, got %+v", cfg.Chains)
	}
	if cfg.Value.SecurityFloor != "local-large" {
		t.Fatalf("security floor %q, want local-large", cfg.Value.SecurityFloor)
	}
}

func TestLoadRoutingConfigMissingFile(t *testing.T) {
	if _, err := LoadRoutingConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	base := func() *RoutingConfig {
		return &RoutingConfig{
			Tiers: []TierConfig{{ID: "small", Rank: 1}, {ID: "large", Rank: 2}},
			Chains: []ChainConfig{
				{ID: "main", Steps: []StepConfig{{Tier: "small", Threshold: 0.5}}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*RoutingConfig)
	}{
		{"empty tier id", func(c *RoutingConfig) { c.Tiers[0].ID = "" }},
		{"empty chain id", func(c *RoutingConfig) { c.Chains[0].ID = "" }},
		{"duplicate chain id", func(c *RoutingConfig) { c.Chains = append(c.Chains, c.Chains[0]) }},
		{"chain without steps", func(c *RoutingConfig) { c.Chains[0].Steps = nil }},
		{"unknown step tier", func(c *RoutingConfig) { c.Chains[0].Steps[0].Tier = "missing" }},
		{"threshold above one", func(c *RoutingConfig) { c.Chains[0].Steps[0].Threshold = 1.2 }},
		{"unknown security floor", func(c *RoutingConfig) { c.Value.SecurityFloor = "missing" }},
		{"weights not summing to one", func(c *RoutingConfig) {
			c.Value.Weights = map[string]WeightVector{"normal": {Quality: 0.9, Cost: 0.9}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestResolveTierAliases(t *testing.T) {
	cfg := DefaultRoutingConfig()

	if got := cfg.ResolveTier("cheap"); got != TierHaiku {
		t.Fatalf("cheap resolved to %q, want %q", got, TierHaiku)
	}
	if got := cfg.ResolveTier("top"); got != TierOpus {
		t.Fatalf("top resolved to %q, want %q", got, TierOpus)
	}
	if got := cfg.ResolveTier(TierSonnet); got != TierSonnet {
		t.Fatalf("canonical id should pass through, got %q", got)
	}
	if got := cfg.ResolveTier("made-up"); got != "made-up" {
		t.Fatalf("unknown id should pass through, got %q", got)
	}
}

func TestDefaultChainsReferenceDeclaredTiers(t *testing.T) {
	cfg := DefaultRoutingConfig()
	tiers := make(map[string]bool)
	for _, tier := range cfg.Tiers {
		tiers[tier.ID] = true
	}
	for _, chain := range cfg.Chains {
		for _, step := range chain.Steps {
			if !tiers[step.Tier] {
				t.Fatalf("chain %s references undeclared tier %s", chain.ID, step.Tier)
			}
		}
	}
}
