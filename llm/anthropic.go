package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// Anthropic is a Client backed by the Anthropic Messages API.
type Anthropic struct {
	client      *anthropic.Client
	model       string
	temperature float64
	tokenBuffer float64
}

// NewAnthropic creates an Anthropic client. Temperature 0 keeps output
// deterministic, which the cache workflow assumes.
func NewAnthropic(apiKey, model string, temperature, tokenBuffer float64) *Anthropic {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		temperature: temperature,
		tokenBuffer: tokenBuffer,
	}
}

// Provider implements Client.
func (a *Anthropic) Provider() string { return "anthropic" }

// Model implements Client.
func (a *Anthropic) Model() string { return a.model }

// ChatCompletion implements Client.
func (a *Anthropic) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.F(anthropic.Model(a.model)),
		MaxTokens:   anthropic.F(completionBudget(system, user, a.tokenBuffer)),
		Temperature: anthropic.F(a.temperature),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(system),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in anthropic response")
}
