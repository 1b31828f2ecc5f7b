package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GoogleProvider serves Gemini model tiers.
type GoogleProvider struct {
	client *genai.Client
	models []string
}

// NewGoogleProvider creates a new Google Gemini provider serving the
// given model tiers.
func NewGoogleProvider(apiKey string, models []string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleProvider{client: client, models: models}, nil
}

// Name returns the provider identifier.
func (p *GoogleProvider) Name() string {
	return "google"
}

// Models returns the list of served Gemini tiers.
func (p *GoogleProvider) Models() []string {
	return p.models
}

// Complete sends the conversation to Gemini and returns the normalized
// completion. Gemini takes a flat prompt, so prior turns are folded in
// with role markers.
func (p *GoogleProvider) Complete(ctx context.Context, model string, messages []Message, maxTokens int) (*Completion, error) {
	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(flattenMessages(messages)), nil)
	if err != nil {
		return nil, fmt.Errorf("google API error: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("google returned no candidates")
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
		}
	}

	comp := &Completion{
		Content:      content,
		FinishReason: string(resp.Candidates[0].FinishReason),
	}
	if resp.UsageMetadata != nil {
		comp.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		comp.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return comp, nil
}

func flattenMessages(messages []Message) string {
	if len(messages) == 1 {
		return messages[0].Content
	}
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
