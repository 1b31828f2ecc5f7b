package config

// Tier ids used by the default configuration. The ids are opaque to the
// router; only the ranks in the tier table give them meaning.
const (
	TierHaiku  = "claude-3-5-haiku-20241022"
	TierGemini = "gemini-2.0-pro"
	TierGPT    = "gpt-5.2-thinking"
	TierSonnet = "claude-sonnet-4-20250514"
	TierOpus   = "claude-opus-4-20250514"
)

// DefaultRoutingConfig returns the stock routing configuration. Sonnet is
// listed after the equally ranked GPT tier so the newer revision wins the
// tie during selection.
func DefaultRoutingConfig() *RoutingConfig {
	return &RoutingConfig{
		Tiers: []TierConfig{
			{ID: TierHaiku, Rank: 1},
			{ID: TierGemini, Rank: 2},
			{ID: TierGPT, Rank: 3},
			{ID: TierSonnet, Rank: 3},
			{ID: TierOpus, Rank: 4},
		},
		Chains: []ChainConfig{
			{
				ID:   "frugal",
				Name: "Frugal",
				Steps: []StepConfig{
					{Tier: TierHaiku, Threshold: 0.50},
					{Tier: TierSonnet, Threshold: 0.45},
					{Tier: TierOpus, Threshold: 0},
				},
			},
			{
				ID:   "balanced",
				Name: "Balanced",
				Steps: []StepConfig{
					{Tier: TierGemini, Threshold: 0.55},
					{Tier: TierSonnet, Threshold: 0.45},
					{Tier: TierOpus, Threshold: 0},
				},
			},
			{
				ID:   "quality",
				Name: "Quality First",
				Steps: []StepConfig{
					{Tier: TierSonnet, Threshold: 0.60},
					{Tier: TierOpus, Threshold: 0},
				},
			},
			{
				ID:   "security",
				Name: "Security Review",
				Steps: []StepConfig{
					{Tier: TierSonnet, Threshold: 0.70},
					{Tier: TierOpus, Threshold: 0},
				},
			},
			{
				ID:   "code",
				Name: "Code Generation",
				Steps: []StepConfig{
					{Tier: TierSonnet, Threshold: 0.55},
					{Tier: TierOpus, Threshold: 0},
				},
			},
		},
		Breaker: BreakerConfig{
			FailureThreshold:  5,
			FailureWindowMs:   120000,
			RecoveryTimeoutMs: 60000,
			HalfOpenSuccesses: 2,
		},
		Retry: RetryConfig{
			MaxRetries:    2,
			BaseBackoffMs: 200,
			MaxBackoffMs:  2000,
		},
		Classifier: ClassifierConfig{
			Weights: SignalWeights{
				Content:    0.25,
				Structure:  0.15,
				Context:    0.10,
				Metadata:   0.20,
				Capability: 0.20,
				Ambiguity:  0.10,
			},
			Vocabulary: Vocabulary{
				Security: []string{
					"vulnerability", "exploit", "injection", "xss", "csrf",
					"authentication", "authorization", "encryption", "credential",
					"sanitize", "privilege escalation", "cve", "security",
				},
				Architecture: []string{
					"architecture", "microservice", "distributed", "scalability",
					"system design", "migration", "infrastructure", "integration",
					"multi-tenant", "event-driven",
				},
				Technical: []string{
					"algorithm", "optimize", "complexity", "concurrency",
					"concurrent", "cache", "index", "transaction", "protocol",
					"serialization", "recursion", "big-o", "latency",
				},
				Reasoning: []string{
					"reason", "think through", "step by step", "deduce",
					"infer", "trade-off", "tradeoff", "prove", "derive", "why",
				},
				CodeGen: []string{
					"implement", "write a function", "write code", "refactor",
					"build a", "create a class", "generate code", "unit test",
				},
				Vague: []string{
					"make it work", "fix it", "do it", "handle it",
					"clean it up", "make it better", "sort it out",
				},
				Uncertainty: []string{
					"i'm not sure", "i am not sure", "it depends", "unclear",
					"cannot determine", "hard to say", "might be", "not certain",
				},
			},
		},
		Value: ValueConfig{
			SecurityFloor: TierSonnet,
			Weights: map[string]WeightVector{
				"normal": {Quality: 0.40, Cost: 0.20, Complexity: 0.15, Stakes: 0.15, History: 0.10},
				"reduce": {Quality: 0.25, Cost: 0.40, Complexity: 0.125, Stakes: 0.125, History: 0.10},
				"pause":  {Quality: 0.15, Cost: 0.50, Complexity: 0.125, Stakes: 0.125, History: 0.10},
			},
		},
		Budget: BudgetConfig{
			SoftLimitUSD: 25,
			HardLimitUSD: 50,
		},
		Pricing: PricingConfig{
			"anthropic": {
				TierHaiku:  {PromptPer1K: 0.0008, CompletionPer1K: 0.004},
				TierSonnet: {PromptPer1K: 0.003, CompletionPer1K: 0.015},
				TierOpus:   {PromptPer1K: 0.015, CompletionPer1K: 0.075},
			},
			"openai": {
				TierGPT:   {PromptPer1K: 0.0025, CompletionPer1K: 0.010},
				"default": {PromptPer1K: 0.0025, CompletionPer1K: 0.010},
			},
			"google": {
				TierGemini: {PromptPer1K: 0.00125, CompletionPer1K: 0.005},
			},
		},
		Aliases: map[string]string{
			"cheap": TierHaiku,
			"mid":   TierSonnet,
			"top":   TierOpus,
		},
	}
}
