package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zen-systems/cascade/pkg/breaker"
	"github.com/zen-systems/cascade/pkg/budget"
	"github.com/zen-systems/cascade/pkg/cascade"
	"github.com/zen-systems/cascade/pkg/classify"
	"github.com/zen-systems/cascade/pkg/config"
	"github.com/zen-systems/cascade/pkg/provider"
	"github.com/zen-systems/cascade/pkg/registry"
	"github.com/zen-systems/cascade/pkg/schema"
	"github.com/zen-systems/cascade/pkg/value"
)

var (
	configFile string
	mockFlag   bool
	verbose    bool
	logger     = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "cascade"})
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cascade",
		Short: "Cost/quality-aware LLM request router",
		Long: `Cascade routes natural-language task requests to one of several model
	tiers, trading cost against quality under a live budget constraint.
	Requests are classified, value-scored, and executed through an
	escalation chain with per-tier circuit breaking.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to routing config file")
	rootCmd.PersistentFlags().BoolVar(&mockFlag, "mock", false, "use the mock provider instead of real APIs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(chainsCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(breakersCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadWithRoutingFile(configFile)
	}
	return config.Load()
}

// buildPipeline wires the registries, breaker set, classifier, scorer,
// budget tracker, and router from the loaded config.
type pipeline struct {
	cfg        *config.Config
	models     *registry.Registry
	providers  *provider.Registry
	breakers   *breaker.Set
	classifier *classify.Classifier
	scorer     *value.Scorer
	tracker    *budget.Tracker
	router     *cascade.Router
}

func buildPipeline(cfg *config.Config) (*pipeline, error) {
	routing := cfg.Routing

	models := registry.New()
	for _, t := range routing.Tiers {
		if err := models.Register(t.ID, t.Rank); err != nil {
			return nil, err
		}
		if t.Available != nil && !*t.Available {
			if err := models.SetAvailability(t.ID, false); err != nil {
				return nil, err
			}
		}
	}

	providers, err := buildProviders(cfg, routing)
	if err != nil {
		return nil, err
	}

	breakers := breaker.NewSet(breakerConfig(routing.Breaker))
	tracker := budget.NewTracker(routing.Budget.SoftLimitUSD, routing.Budget.HardLimitUSD)

	router := cascade.NewRouter(providers, models, breakers,
		cascade.WithLogger(logger),
		cascade.WithRetry(routing.Retry),
		cascade.WithListener(tracker),
		cascade.WithListener(cascade.ListenerFuncs{
			OnStep: func(e cascade.StepEvent) {
				logger.Debug("step complete", "chain", e.ChainID, "step", e.Step, "tier", e.Tier, "quality", fmt.Sprintf("%.2f", e.Quality), "escalated", e.Escalated)
			},
			OnComplete: func(e cascade.CompleteEvent) {
				logger.Debug("cascade complete", "chain", e.ChainID, "final_tier", e.FinalTier, "steps", e.TotalSteps, "cost", fmt.Sprintf("$%.4f", e.Cost))
			},
		}),
	)
	if err := router.RegisterChainsFromConfig(routing); err != nil {
		return nil, err
	}

	return &pipeline{
		cfg:        cfg,
		models:     models,
		providers:  providers,
		breakers:   breakers,
		classifier: classify.New(routing.Classifier),
		scorer:     value.NewScorer(models, routing.Value, routing.Classifier.Vocabulary),
		tracker:    tracker,
		router:     router,
	}, nil
}

func buildProviders(cfg *config.Config, routing *config.RoutingConfig) (*provider.Registry, error) {
	reg := provider.NewRegistry(routing.Pricing)

	if mockFlag {
		var all []string
		for _, t := range routing.Tiers {
			all = append(all, t.ID)
		}
		reg.Register(provider.NewMockProvider(all...))
		return reg, nil
	}

	registered := 0
	if cfg.HasProvider("anthropic") {
		p, err := provider.NewAnthropicProvider(cfg.AnthropicAPIKey, tiersPricedBy(routing, "anthropic"))
		if err != nil {
			return nil, err
		}
		reg.Register(p)
		registered++
	}
	if cfg.HasProvider("openai") {
		p, err := provider.NewOpenAIProvider(cfg.OpenAIAPIKey, tiersPricedBy(routing, "openai"))
		if err != nil {
			return nil, err
		}
		reg.Register(p)
		registered++
	}
	if cfg.HasProvider("google") {
		p, err := provider.NewGoogleProvider(cfg.GoogleAPIKey, tiersPricedBy(routing, "google"))
		if err != nil {
			return nil, err
		}
		reg.Register(p)
		registered++
	}
	if registered == 0 {
		return nil, fmt.Errorf("no provider API keys configured; set ANTHROPIC_API_KEY, OPENAI_API_KEY, or GOOGLE_API_KEY, or pass --mock")
	}
	return reg, nil
}

// tiersPricedBy lists the tier ids a provider serves, taken from the
// pricing table keys.
func tiersPricedBy(routing *config.RoutingConfig, providerName string) []string {
	var out []string
	for model := range routing.Pricing[providerName] {
		if model != "default" {
			out = append(out, model)
		}
	}
	return out
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func breakerConfig(bc config.BreakerConfig) breaker.Config {
	return breaker.Config{
		FailureThreshold:  bc.FailureThreshold,
		FailureWindow:     msToDuration(bc.FailureWindowMs),
		RecoveryTimeout:   msToDuration(bc.RecoveryTimeoutMs),
		HalfOpenSuccesses: bc.HalfOpenSuccesses,
	}
}

func askCmd() *cobra.Command {
	var chainFlag string
	var categoryFlag string
	var securityFlag bool
	var stakesFlag float64
	var maxTokensFlag int

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Classify, score, and execute a request through a chain",
		Long: `Classifies the prompt, computes its value score under the current
	budget state, selects an escalation chain, and executes the request
	through it. Use --chain to bypass chain selection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			p, err := buildPipeline(cfg)
			if err != nil {
				return err
			}

			req := schema.NewRequest(args[0])
			req.Category = schema.Category(categoryFlag)
			req.SecuritySensitive = securityFlag
			req.MaxTokens = maxTokensFlag

			cls := p.classifier.Classify(req)
			logger.Debug("classified", "complexity", cls.Complexity, "score", fmt.Sprintf("%.2f", cls.Score), "category", cls.Category, "chain", cls.ChainID)

			state := p.tracker.State()
			scored := p.scorer.Score(value.Input{
				Complexity:        cls.Complexity,
				Category:          cls.Category,
				Stakes:            stakesFlag,
				QualityPriority:   5,
				BudgetPressure:    5,
				HistoricalPerf:    5,
				SecuritySensitive: req.SecuritySensitive,
			}, state)
			logger.Debug("scored", "value", fmt.Sprintf("%.1f", scored.Score), "tier", scored.Tier, "budget_state", state)

			chainID := chainFlag
			if chainID == "" {
				chainID = cls.ChainID
			}

			chain, err := p.router.Chain(chainID)
			if err != nil {
				return err
			}
			refined := chain.WithFloor(p.models, scored.Tier)
			if skipped := len(chain.Steps) - len(refined.Steps); skipped > 0 {
				logger.Debug("tier floor applied", "chain", chainID, "floor", scored.Tier, "skipped_steps", skipped)
			}

			result, err := p.router.ExecuteChain(context.Background(), req, refined)
			if err != nil {
				return err
			}

			fmt.Println(result.Completion.Content)
			fmt.Fprintf(os.Stderr, "\n[%s via %s, %d step(s), $%.4f]\n",
				chainID, result.Completion.Tier, result.Trace.TotalAttempts, result.Completion.Cost)
			return nil
		},
	}

	cmd.Flags().StringVar(&chainFlag, "chain", "", "override chain selection")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "request category hint")
	cmd.Flags().BoolVar(&securityFlag, "security", false, "mark the request security-sensitive")
	cmd.Flags().Float64Var(&stakesFlag, "stakes", 5, "stakes of the request (0-10)")
	cmd.Flags().IntVar(&maxTokensFlag, "max-tokens", 0, "max completion tokens")

	return cmd
}

func classifyCmd() *cobra.Command {
	var securityFlag bool
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "classify [prompt]",
		Short: "Show the classification for a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			req := schema.NewRequest(args[0])
			req.Category = schema.Category(categoryFlag)
			req.SecuritySensitive = securityFlag

			result := classify.New(cfg.Routing.Classifier).Classify(req)
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&securityFlag, "security", false, "mark the request security-sensitive")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "request category hint")

	return cmd
}

func scoreCmd() *cobra.Command {
	var stakesFlag, qualityFlag, pressureFlag, historyFlag float64
	var stateFlag string
	var securityFlag bool
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "score [prompt]",
		Short: "Show the value score and tier recommendation for a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			p, err := buildPipelineOffline(cfg)
			if err != nil {
				return err
			}

			category := schema.Category(categoryFlag)
			complexity := p.scorer.ClassifyComplexity(args[0], category)
			result := p.scorer.Score(value.Input{
				Complexity:        complexity,
				Category:          category,
				Stakes:            stakesFlag,
				QualityPriority:   qualityFlag,
				BudgetPressure:    pressureFlag,
				HistoricalPerf:    historyFlag,
				SecuritySensitive: securityFlag,
			}, schema.BudgetState(stateFlag))

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().Float64Var(&stakesFlag, "stakes", 5, "stakes (0-10)")
	cmd.Flags().Float64Var(&qualityFlag, "quality", 5, "quality priority (0-10)")
	cmd.Flags().Float64Var(&pressureFlag, "pressure", 5, "budget pressure (0-10)")
	cmd.Flags().Float64Var(&historyFlag, "history", 5, "historical performance (0-10)")
	cmd.Flags().StringVar(&stateFlag, "state", "normal", "budget state (normal, reduce, pause)")
	cmd.Flags().BoolVar(&securityFlag, "security", false, "mark the request security-sensitive")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "request category hint")

	return cmd
}

// buildPipelineOffline builds only the offline parts: registry, scorer,
// classifier. No provider keys required.
func buildPipelineOffline(cfg *config.Config) (*pipeline, error) {
	routing := cfg.Routing
	models := registry.New()
	for _, t := range routing.Tiers {
		if err := models.Register(t.ID, t.Rank); err != nil {
			return nil, err
		}
		if t.Available != nil && !*t.Available {
			if err := models.SetAvailability(t.ID, false); err != nil {
				return nil, err
			}
		}
	}
	return &pipeline{
		cfg:        cfg,
		models:     models,
		classifier: classify.New(routing.Classifier),
		scorer:     value.NewScorer(models, routing.Value, routing.Classifier.Vocabulary),
	}, nil
}

func chainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "Show the registered escalation chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CHAIN\tNAME\tSTEPS")
			for _, ch := range cfg.Routing.Chains {
				steps := ""
				for i, s := range ch.Steps {
					if i > 0 {
						steps += " -> "
					}
					steps += fmt.Sprintf("%s@%.2f", s.Tier, s.Threshold)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ch.ID, ch.Name, steps)
			}
			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List model tiers by capability rank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			p, err := buildPipelineOffline(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIER\tRANK\tAVAILABLE")
			for _, t := range p.models.ListAll() {
				fmt.Fprintf(w, "%s\t%d\t%v\n", t.ID, t.Rank, t.Available)
			}
			return w.Flush()
		},
	}
}

func breakersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "breakers",
		Short: "Show per-tier circuit breaker state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			set := breaker.NewSet(breakerConfig(cfg.Routing.Breaker))
			for _, t := range cfg.Routing.Tiers {
				set.For(t.ID)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIER\tSTATE\tFAILURES")
			for _, t := range cfg.Routing.Tiers {
				snap := set.For(t.ID).Snapshot()
				fmt.Fprintf(w, "%s\t%s\t%d\n", t.ID, snap.State, snap.Failures)
			}
			return w.Flush()
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the routing config for integrity problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Routing.Validate(); err != nil {
				return fmt.Errorf("config invalid: %w", err)
			}
			fmt.Printf("OK: %d tiers, %d chains\n", len(cfg.Routing.Tiers), len(cfg.Routing.Chains))
			return nil
		},
	}
}
