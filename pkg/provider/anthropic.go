package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicProvider serves Claude model tiers.
type AnthropicProvider struct {
	client anthropic.Client
	models []string
}

// NewAnthropicProvider creates a new Anthropic provider serving the given
// model tiers.
func NewAnthropicProvider(apiKey string, models []string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient()
	return &AnthropicProvider{client: client, models: models}, nil
}

// Name returns the provider identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Models returns the list of served Claude tiers.
func (p *AnthropicProvider) Models() []string {
	return p.models
}

// Complete sends the conversation to Claude and returns the normalized
// completion.
func (p *AnthropicProvider) Complete(ctx context.Context, model string, messages []Message, maxTokens int) (*Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(effectiveMaxTokens(maxTokens)),
	}
	for _, m := range messages {
		if m.Role == "assistant" {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &Completion{
		Content:      content,
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		FinishReason: string(resp.StopReason),
	}, nil
}
