package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// OpenAIProvider serves GPT model tiers.
type OpenAIProvider struct {
	client openai.Client
	models []string
}

// NewOpenAIProvider creates a new OpenAI provider serving the given model
// tiers.
func NewOpenAIProvider(apiKey string, models []string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient()
	return &OpenAIProvider{client: client, models: models}, nil
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Models returns the list of served GPT tiers.
func (p *OpenAIProvider) Models() []string {
	return p.models
}

// Complete sends the conversation to OpenAI and returns the normalized
// completion.
func (p *OpenAIProvider) Complete(ctx context.Context, model string, messages []Message, maxTokens int) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		MaxCompletionTokens: openai.Int(int64(effectiveMaxTokens(maxTokens))),
	}
	for _, m := range messages {
		if m.Role == "assistant" {
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		} else {
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &Completion{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}
