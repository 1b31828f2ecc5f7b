package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoutingConfig holds everything the routing pipeline consumes as data:
// tiers, chains, breaker thresholds, classifier weight tables, value-scorer
// weight vectors, retry policy, and pricing. All of it can be tuned from a
// YAML file without code changes.
type RoutingConfig struct {
	Tiers      []TierConfig      `yaml:"tiers"`
	Chains     []ChainConfig     `yaml:"chains"`
	Breaker    BreakerConfig     `yaml:"breaker,omitempty"`
	Retry      RetryConfig       `yaml:"retry,omitempty"`
	Classifier ClassifierConfig  `yaml:"classifier,omitempty"`
	Value      ValueConfig       `yaml:"value,omitempty"`
	Budget     BudgetConfig      `yaml:"budget,omitempty"`
	Pricing    PricingConfig     `yaml:"pricing,omitempty"`
	Aliases    map[string]string `yaml:"aliases,omitempty"`
}

// TierConfig declares one model tier. Rank orders tiers by capability;
// higher is more capable. Later entries win rank ties.
type TierConfig struct {
	ID        string `yaml:"id"`
	Rank      int    `yaml:"rank"`
	Available *bool  `yaml:"available,omitempty"`
}

// ChainConfig declares one escalation chain.
type ChainConfig struct {
	ID    string       `yaml:"id"`
	Name  string       `yaml:"name"`
	Steps []StepConfig `yaml:"steps"`
}

// StepConfig is one (tier, quality threshold) step in a chain.
type StepConfig struct {
	Tier      string  `yaml:"tier"`
	Threshold float64 `yaml:"threshold"`
}

// BreakerConfig holds circuit-breaker thresholds in wire units.
type BreakerConfig struct {
	FailureThreshold  int `yaml:"failure_threshold,omitempty"`
	FailureWindowMs   int `yaml:"failure_window_ms,omitempty"`
	RecoveryTimeoutMs int `yaml:"recovery_timeout_ms,omitempty"`
	HalfOpenSuccesses int `yaml:"half_open_successes,omitempty"`
}

// RetryConfig defines per-step retry and backoff behavior.
type RetryConfig struct {
	MaxRetries    int `yaml:"max_retries,omitempty"`
	BaseBackoffMs int `yaml:"base_backoff_ms,omitempty"`
	MaxBackoffMs  int `yaml:"max_backoff_ms,omitempty"`
}

// ClassifierConfig carries the classifier's vocabulary and signal weights
// as externally tunable data.
type ClassifierConfig struct {
	Weights    SignalWeights `yaml:"weights,omitempty"`
	Vocabulary Vocabulary    `yaml:"vocabulary,omitempty"`
}

// SignalWeights weights the six classification signals in the composite.
type SignalWeights struct {
	Content    float64 `yaml:"content"`
	Structure  float64 `yaml:"structure"`
	Context    float64 `yaml:"context"`
	Metadata   float64 `yaml:"metadata"`
	Capability float64 `yaml:"capability"`
	Ambiguity  float64 `yaml:"ambiguity"`
}

// Vocabulary holds the lexical tables the classifier and value scorer
// match against.
type Vocabulary struct {
	Security     []string `yaml:"security,omitempty"`
	Architecture []string `yaml:"architecture,omitempty"`
	Technical    []string `yaml:"technical,omitempty"`
	Reasoning    []string `yaml:"reasoning,omitempty"`
	CodeGen      []string `yaml:"code_gen,omitempty"`
	Vague        []string `yaml:"vague,omitempty"`
	Uncertainty  []string `yaml:"uncertainty,omitempty"`
}

// ValueConfig tunes the value scorer.
type ValueConfig struct {
	// SecurityFloor is the minimum tier recommended for security-sensitive
	// work, regardless of score or budget state.
	SecurityFloor string `yaml:"security_floor,omitempty"`
	// Weights maps budget state ("normal", "reduce", "pause") to the
	// weight vector applied in that state. Each vector must sum to 1.0.
	Weights map[string]WeightVector `yaml:"weights,omitempty"`
}

// WeightVector blends the normalized value-score factors.
type WeightVector struct {
	Quality    float64 `yaml:"quality" json:"quality"`
	Cost       float64 `yaml:"cost" json:"cost"`
	Complexity float64 `yaml:"complexity" json:"complexity"`
	Stakes     float64 `yaml:"stakes" json:"stakes"`
	History    float64 `yaml:"history" json:"history"`
}

// Sum returns the total weight mass.
func (w WeightVector) Sum() float64 {
	return w.Quality + w.Cost + w.Complexity + w.Stakes + w.History
}

// BudgetConfig sets the spend thresholds that drive the budget state.
type BudgetConfig struct {
	SoftLimitUSD float64 `yaml:"soft_limit_usd,omitempty"`
	HardLimitUSD float64 `yaml:"hard_limit_usd,omitempty"`
}

// PricingConfig maps provider -> model -> pricing.
type PricingConfig map[string]map[string]ModelPricing

// ModelPricing defines per-1k token pricing.
type ModelPricing struct {
	PromptPer1K     float64 `yaml:"prompt_per_1k,omitempty"`
	CompletionPer1K float64 `yaml:"completion_per_1k,omitempty"`
}

// LoadRoutingConfig reads routing configuration from a YAML file.
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RoutingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyRoutingDefaults(&cfg)
	return &cfg, nil
}

// Validate checks cross-references and value ranges in the config.
func (c *RoutingConfig) Validate() error {
	tiers := make(map[string]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if t.ID == "" {
			return fmt.Errorf("tier with empty id")
		}
		tiers[t.ID] = true
	}
	seen := make(map[string]bool, len(c.Chains))
	for _, ch := range c.Chains {
		if ch.ID == "" {
			return fmt.Errorf("chain with empty id")
		}
		if seen[ch.ID] {
			return fmt.Errorf("duplicate chain id %q", ch.ID)
		}
		seen[ch.ID] = true
		if len(ch.Steps) == 0 {
			return fmt.Errorf("chain %q has no steps", ch.ID)
		}
		for _, s := range ch.Steps {
			if !tiers[s.Tier] {
				return fmt.Errorf("chain %q references unknown tier %q", ch.ID, s.Tier)
			}
			if s.Threshold < 0 || s.Threshold > 1 {
				return fmt.Errorf("chain %q step tier %q: threshold %.2f out of [0,1]", ch.ID, s.Tier, s.Threshold)
			}
		}
	}
	if c.Value.SecurityFloor != "" && !tiers[c.Value.SecurityFloor] {
		return fmt.Errorf("value security_floor references unknown tier %q", c.Value.SecurityFloor)
	}
	for state, w := range c.Value.Weights {
		if sum := w.Sum(); sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("value weights for state %q sum to %.3f, want 1.0", state, sum)
		}
	}
	return nil
}

// ResolveTier resolves a tier alias to its canonical id. Non-aliases pass
// through unchanged.
func (c *RoutingConfig) ResolveTier(idOrAlias string) string {
	if c == nil || c.Aliases == nil {
		return idOrAlias
	}
	if canonical, ok := c.Aliases[idOrAlias]; ok {
		return canonical
	}
	return idOrAlias
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg == nil {
		return
	}
	def := DefaultRoutingConfig()
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = def.Tiers
	}
	if len(cfg.Chains) == 0 {
		cfg.Chains = def.Chains
	}
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker.FailureThreshold = def.Breaker.FailureThreshold
	}
	if cfg.Breaker.FailureWindowMs == 0 {
		cfg.Breaker.FailureWindowMs = def.Breaker.FailureWindowMs
	}
	if cfg.Breaker.RecoveryTimeoutMs == 0 {
		cfg.Breaker.RecoveryTimeoutMs = def.Breaker.RecoveryTimeoutMs
	}
	if cfg.Breaker.HalfOpenSuccesses == 0 {
		cfg.Breaker.HalfOpenSuccesses = def.Breaker.HalfOpenSuccesses
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = def.Retry.MaxRetries
	}
	if cfg.Retry.BaseBackoffMs == 0 {
		cfg.Retry.BaseBackoffMs = def.Retry.BaseBackoffMs
	}
	if cfg.Retry.MaxBackoffMs == 0 {
		cfg.Retry.MaxBackoffMs = def.Retry.MaxBackoffMs
	}
	if cfg.Retry.MaxBackoffMs < cfg.Retry.BaseBackoffMs {
		cfg.Retry.MaxBackoffMs = cfg.Retry.BaseBackoffMs
	}
	if cfg.Classifier.Weights == (SignalWeights{}) {
		cfg.Classifier.Weights = def.Classifier.Weights
	}
	mergeVocabulary(&cfg.Classifier.Vocabulary, def.Classifier.Vocabulary)
	if cfg.Value.SecurityFloor == "" {
		cfg.Value.SecurityFloor = def.Value.SecurityFloor
	}
	if len(cfg.Value.Weights) == 0 {
		cfg.Value.Weights = def.Value.Weights
	}
	if cfg.Budget.SoftLimitUSD == 0 {
		cfg.Budget.SoftLimitUSD = def.Budget.SoftLimitUSD
	}
	if cfg.Budget.HardLimitUSD == 0 {
		cfg.Budget.HardLimitUSD = def.Budget.HardLimitUSD
	}
	if len(cfg.Aliases) == 0 {
		cfg.Aliases = def.Aliases
	}
}

func mergeVocabulary(dst *Vocabulary, def Vocabulary) {
	if len(dst.Security) == 0 {
		dst.Security = def.Security
	}
	if len(dst.Architecture) == 0 {
		dst.Architecture = def.Architecture
	}
	if len(dst.Technical) == 0 {
		dst.Technical = def.Technical
	}
	if len(dst.Reasoning) == 0 {
		dst.Reasoning = def.Reasoning
	}
	if len(dst.CodeGen) == 0 {
		dst.CodeGen = def.CodeGen
	}
	if len(dst.Vague) == 0 {
		dst.Vague = def.Vague
	}
	if len(dst.Uncertainty) == 0 {
		dst.Uncertainty = def.Uncertainty
	}
}
