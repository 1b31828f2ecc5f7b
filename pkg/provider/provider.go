// Package provider abstracts the upstream LLM transports behind a single
// completion contract and a registry that maps model tiers to the
// provider serving them.
package provider

import (
	"context"
	"time"
)

// Message is one conversational turn sent to a provider.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Completion is the normalized result of one provider call.
type Completion struct {
	Content      string        `json:"content"`
	Tier         string        `json:"tier"`
	Provider     string        `json:"provider"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Cost         float64       `json:"cost"`
	Duration     time.Duration `json:"duration"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

// Provider defines the interface for LLM transports.
type Provider interface {
	// Complete sends the messages to the given model and returns the
	// normalized completion. Token counts are filled by the provider;
	// cost and duration are stamped by the registry.
	Complete(ctx context.Context, model string, messages []Message, maxTokens int) (*Completion, error)

	// Name returns the provider's identifier.
	Name() string

	// Models returns the list of model tiers this provider serves.
	Models() []string
}

const defaultMaxTokens = 4096

func effectiveMaxTokens(maxTokens int) int {
	if maxTokens <= 0 {
		return defaultMaxTokens
	}
	return maxTokens
}
