// Package cascade owns named escalation chains and executes requests
// through them: each step consults the tier registry and circuit breaker,
// calls the provider serving the tier, and accepts the first response
// whose quality clears the step's threshold.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/zen-systems/cascade/pkg/breaker"
	"github.com/zen-systems/cascade/pkg/config"
	"github.com/zen-systems/cascade/pkg/provider"
	"github.com/zen-systems/cascade/pkg/registry"
	"github.com/zen-systems/cascade/pkg/schema"
)

// ErrUnknownChain indicates an Execute call named a chain that was never
// registered. This is a usage error, never retried.
var ErrUnknownChain = errors.New("unknown chain")

// StepOutcome records what happened at one chain step during an Execute
// call.
type StepOutcome struct {
	Tier       string  `json:"tier"`
	Skipped    bool    `json:"skipped"`
	SkipReason string  `json:"skip_reason,omitempty"`
	Quality    float64 `json:"quality,omitempty"`
	Escalated  bool    `json:"escalated"`
	Error      string  `json:"error,omitempty"`
}

// Trace is the ephemeral record of one Execute call.
type Trace struct {
	ChainID       string        `json:"chain_id"`
	RequestID     string        `json:"request_id"`
	Steps         []StepOutcome `json:"steps"`
	FinalTier     string        `json:"final_tier"`
	TotalAttempts int           `json:"total_attempts"`
}

// Result pairs the accepted completion with the execution trace.
type Result struct {
	Completion *provider.Completion `json:"completion"`
	Trace      *Trace               `json:"trace"`
}

// Router executes requests through registered chains.
type Router struct {
	mu     sync.RWMutex
	chains map[string]Chain
	order  []string

	providers *provider.Registry
	models    *registry.Registry
	breakers  *breaker.Set
	listeners []Listener
	logger    *charmlog.Logger
	quality   QualityFunc
	retry     config.RetryConfig
}

// Option configures a Router.
type Option func(*Router)

// WithListener registers a synchronous execution listener.
func WithListener(l Listener) Option {
	return func(r *Router) {
		r.listeners = append(r.listeners, l)
	}
}

// WithLogger sets the router's logger.
func WithLogger(logger *charmlog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithQuality overrides the response-quality heuristic.
func WithQuality(fn QualityFunc) Option {
	return func(r *Router) {
		r.quality = fn
	}
}

// WithRetry sets the per-step retry policy for transient provider errors.
func WithRetry(retry config.RetryConfig) Option {
	return func(r *Router) {
		r.retry = retry
	}
}

// NewRouter creates a router over the given registries and breaker set.
func NewRouter(providers *provider.Registry, models *registry.Registry, breakers *breaker.Set, opts ...Option) *Router {
	r := &Router{
		chains:    make(map[string]Chain),
		providers: providers,
		models:    models,
		breakers:  breakers,
		quality:   DefaultQuality,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterChain adds a chain. Ids must be unique.
func (r *Router) RegisterChain(c Chain) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.chains[c.ID]; exists {
		return fmt.Errorf("chain %q already registered", c.ID)
	}
	r.chains[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

// RegisterChainsFromConfig registers every chain in the config.
func (r *Router) RegisterChainsFromConfig(cfg *config.RoutingConfig) error {
	for _, cc := range cfg.Chains {
		if err := r.RegisterChain(ChainFromConfig(cc)); err != nil {
			return err
		}
	}
	return nil
}

// Chain returns a chain by id. Unknown ids are a hard error.
func (r *Router) Chain(id string) (Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chains[id]
	if !ok {
		return Chain{}, fmt.Errorf("%w: %s", ErrUnknownChain, id)
	}
	return c, nil
}

// ListChains returns all chains in registration order.
func (r *Router) ListChains() []Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Chain, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.chains[id])
	}
	return out
}

// Execute walks the chain's steps in order, skipping unavailable and
// circuit-open tiers, and returns the first response whose quality clears
// the step threshold. The last executable step is always accepted. Steps
// run strictly sequentially: each escalation decision depends on the
// previous step's outcome.
func (r *Router) Execute(ctx context.Context, req *schema.Request, chainID string) (*Result, error) {
	chain, err := r.Chain(chainID)
	if err != nil {
		return nil, err
	}
	return r.ExecuteChain(ctx, req, chain)
}

// ExecuteChain runs a chain value directly, for callers that refine a
// registered chain (for example with a tier floor) before execution.
func (r *Router) ExecuteChain(ctx context.Context, req *schema.Request, chain Chain) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := chain.Validate(); err != nil {
		return nil, err
	}

	trace := &Trace{ChainID: chain.ID, RequestID: req.ID}
	messages := messagesFor(req)

	var lastErr error
	var fallback *provider.Completion
	var fallbackQuality float64

	for i, step := range chain.Steps {
		if err := ctx.Err(); err != nil {
			// Caller aborted mid-cascade: stop further attempts, keep the
			// breaker and cost effects of completed steps.
			return nil, err
		}

		if !r.models.IsAvailable(step.Tier) {
			trace.Steps = append(trace.Steps, StepOutcome{Tier: step.Tier, Skipped: true, SkipReason: "unavailable"})
			r.debugf("tier skipped", "tier", step.Tier, "reason", "unavailable")
			continue
		}
		br := r.breakers.For(step.Tier)
		if !br.Allow() {
			trace.Steps = append(trace.Steps, StepOutcome{Tier: step.Tier, Skipped: true, SkipReason: "circuit_open"})
			r.debugf("tier skipped", "tier", step.Tier, "reason", "circuit_open")
			continue
		}

		trace.TotalAttempts++
		comp, err := r.completeWithRetry(ctx, step.Tier, messages, req.MaxTokens)
		if err != nil {
			br.RecordFailure()
			lastErr = err
			trace.Steps = append(trace.Steps, StepOutcome{Tier: step.Tier, Escalated: true, Error: err.Error()})
			r.emitStep(StepEvent{RequestID: req.ID, ChainID: chain.ID, Step: i, Tier: step.Tier, Escalated: true})
			r.debugf("step failed", "tier", step.Tier, "err", err)
			continue
		}
		br.RecordSuccess()

		q := r.quality(req, comp.Content)
		last := i == len(chain.Steps)-1
		accepted := q >= step.Threshold || last

		trace.Steps = append(trace.Steps, StepOutcome{Tier: step.Tier, Quality: q, Escalated: !accepted})
		r.emitStep(StepEvent{RequestID: req.ID, ChainID: chain.ID, Step: i, Tier: step.Tier, Quality: q, Escalated: !accepted})

		if accepted {
			trace.FinalTier = step.Tier
			r.emitComplete(CompleteEvent{
				RequestID:  req.ID,
				ChainID:    chain.ID,
				FinalTier:  step.Tier,
				TotalSteps: trace.TotalAttempts,
				Cost:       comp.Cost,
			})
			return &Result{Completion: comp, Trace: trace}, nil
		}

		// Keep the rejected response: if every later step is skipped or
		// fails, the chain must still return something.
		if fallback == nil || q >= fallbackQuality {
			fallback = comp
			fallbackQuality = q
		}
	}

	if fallback != nil {
		trace.FinalTier = fallback.Tier
		r.emitComplete(CompleteEvent{
			RequestID:  req.ID,
			ChainID:    chain.ID,
			FinalTier:  fallback.Tier,
			TotalSteps: trace.TotalAttempts,
			Cost:       fallback.Cost,
		})
		return &Result{Completion: fallback, Trace: trace}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("chain %s exhausted: %w", chain.ID, lastErr)
	}
	return nil, fmt.Errorf("chain %s has no executable steps", chain.ID)
}

// completeWithRetry calls the provider registry for a tier, retrying
// transient errors with exponential backoff before giving up.
func (r *Router) completeWithRetry(ctx context.Context, tier string, messages []provider.Message, maxTokens int) (*provider.Completion, error) {
	maxRetries := r.retry.MaxRetries
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		comp, err := r.providers.Complete(ctx, tier, messages, maxTokens)
		if err == nil {
			return comp, nil
		}
		lastErr = err
		if !provider.IsTransient(err) || attempt == maxRetries {
			break
		}
		if err := sleepWithContext(ctx, computeBackoff(r.retry.BaseBackoffMs, r.retry.MaxBackoffMs, attempt)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *Router) emitStep(e StepEvent) {
	for _, l := range r.listeners {
		l.StepCompleted(e)
	}
}

func (r *Router) emitComplete(e CompleteEvent) {
	for _, l := range r.listeners {
		l.CascadeCompleted(e)
	}
}

func (r *Router) debugf(msg string, keyvals ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, keyvals...)
	}
}

// messagesFor builds the provider message list from prior turns plus the
// request content.
func messagesFor(req *schema.Request) []provider.Message {
	msgs := make([]provider.Message, 0, len(req.Turns)+1)
	for _, t := range req.Turns {
		role := t.Role
		if role != "assistant" {
			role = "user"
		}
		msgs = append(msgs, provider.Message{Role: role, Content: t.Content})
	}
	msgs = append(msgs, provider.Message{Role: "user", Content: req.Content})
	return msgs
}

func computeBackoff(baseMs, maxMs, attempt int) time.Duration {
	if baseMs <= 0 {
		return 0
	}
	backoff := time.Duration(baseMs) * time.Millisecond
	limit := time.Duration(maxMs) * time.Millisecond
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if maxMs > 0 && backoff >= limit {
			return limit
		}
	}
	if maxMs > 0 && backoff > limit {
		return limit
	}
	return backoff
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
