package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider returns scripted responses for local runs and tests. Each
// model can be given a fixed response or a sequence of outcomes.
type MockProvider struct {
	mu              sync.Mutex
	name            string
	models          []string
	responses       map[string]string // by model
	errors          map[string]error  // by model; returned on every call
	defaultResponse string
	calls           map[string]int
	tokens          int
}

// NewMockProvider creates a mock provider serving the given models.
func NewMockProvider(models ...string) *MockProvider {
	return &MockProvider{
		name:            "mock",
		models:          models,
		responses:       make(map[string]string),
		errors:          make(map[string]error),
		defaultResponse: "mock response",
		calls:           make(map[string]int),
		tokens:          10,
	}
}

// WithResponse scripts a fixed response for a model.
func (p *MockProvider) WithResponse(model, response string) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[model] = response
	return p
}

// WithError makes every call for a model fail with err.
func (p *MockProvider) WithError(model string, err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors[model] = err
	return p
}

// ClearError removes a scripted error for a model.
func (p *MockProvider) ClearError(model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.errors, model)
}

// Calls returns how many times a model was invoked.
func (p *MockProvider) Calls(model string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[model]
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string {
	return p.name
}

// Models returns the list of served mock tiers.
func (p *MockProvider) Models() []string {
	return p.models
}

// Complete returns the scripted response or error for the model.
func (p *MockProvider) Complete(_ context.Context, model string, messages []Message, _ int) (*Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[model]++
	if err, ok := p.errors[model]; ok {
		return nil, err
	}
	content, ok := p.responses[model]
	if !ok {
		prompt := ""
		if len(messages) > 0 {
			prompt = messages[len(messages)-1].Content
		}
		content = fmt.Sprintf("%s: %s", p.defaultResponse, prompt)
	}
	return &Completion{
		Content:      content,
		InputTokens:  p.tokens,
		OutputTokens: p.tokens,
		FinishReason: "stop",
	}, nil
}
