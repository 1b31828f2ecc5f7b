package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zen-systems/cascade/pkg/config"
)

// ErrNoProvider indicates no registered provider serves the requested tier.
var ErrNoProvider = errors.New("no provider for model")

// Registry maps model tiers to the provider serving them and stamps cost
// and duration onto completions.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider // by provider name
	byModel   map[string]Provider
	pricing   config.PricingConfig
}

// NewRegistry creates a provider registry with the given pricing tables.
func NewRegistry(pricing config.PricingConfig) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		byModel:   make(map[string]Provider),
		pricing:   pricing,
	}
}

// Register adds a provider and claims every model it serves. A later
// registration takes over models already claimed.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	for _, m := range p.Models() {
		r.byModel[m] = p
	}
}

// Provider returns a provider by name.
func (r *Registry) Provider(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// ProviderForModel returns the provider serving a model tier, failing
// when no provider serves it.
func (r *Registry) ProviderForModel(model string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byModel[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, model)
	}
	return p, nil
}

// Complete routes a completion to the provider serving the model and
// stamps cost and duration on the result.
func (r *Registry) Complete(ctx context.Context, model string, messages []Message, maxTokens int) (*Completion, error) {
	p, err := r.ProviderForModel(model)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	comp, err := p.Complete(ctx, model, messages, maxTokens)
	if err != nil {
		return nil, err
	}
	comp.Tier = model
	comp.Provider = p.Name()
	comp.Duration = time.Since(start)
	comp.Cost = r.estimateCost(p.Name(), model, comp.InputTokens, comp.OutputTokens)
	return comp, nil
}

func (r *Registry) estimateCost(providerName, model string, inTokens, outTokens int) float64 {
	entry, ok := pricingFor(r.pricing, providerName, model)
	if !ok {
		return 0
	}
	promptCost := (float64(inTokens) / 1000.0) * entry.PromptPer1K
	completionCost := (float64(outTokens) / 1000.0) * entry.CompletionPer1K
	return promptCost + completionCost
}

func pricingFor(pricing config.PricingConfig, providerName, model string) (config.ModelPricing, bool) {
	if pricing == nil {
		return config.ModelPricing{}, false
	}
	if providerPricing, ok := pricing[providerName]; ok {
		if entry, ok := providerPricing[model]; ok {
			return entry, true
		}
		if entry, ok := providerPricing["default"]; ok {
			return entry, true
		}
	}
	return config.ModelPricing{}, false
}
