package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-pro"

// Gemini is a Client backed by the Gemini generative API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float64
	tokenBuffer float64
}

// NewGemini creates a Gemini client.
func NewGemini(ctx context.Context, apiKey, model string, temperature, tokenBuffer float64) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{
		client:      client,
		model:       model,
		temperature: temperature,
		tokenBuffer: tokenBuffer,
	}, nil
}

// Provider implements Client.
func (g *Gemini) Provider() string { return "gemini" }

// Model implements Client.
func (g *Gemini) Model() string { return g.model }

// Close releases the underlying API connection.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// ChatCompletion implements Client.
func (g *Gemini) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(float32(g.temperature))
	model.SetMaxOutputTokens(int32(completionBudget(system, user, g.tokenBuffer)))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in gemini response")
	}
	return sb.String(), nil
}
