// Package llm provides the model client abstraction and its concrete
// Anthropic and Gemini implementations.
package llm

import "context"

// Client is a chat-completion model client. Implementations size their
// output budget from an approximate token estimate of the prompts and
// keep sampling deterministic unless configured otherwise.
type Client interface {
	// ChatCompletion sends a system and user prompt and returns the raw
	// model text.
	ChatCompletion(ctx context.Context, system, user string) (string, error)
	// Provider identifies the client implementation, e.g. "anthropic".
	Provider() string
	// Model returns the configured model name.
	Model() string
}

// DefaultTokenBuffer is the multiplier applied to the prompt token
// estimate when sizing the completion budget.
const DefaultTokenBuffer = 1.1

// minCompletionTokens floors the completion budget so short prompts
// still leave room for a full structured summary.
const minCompletionTokens = 4096

// EstimateTokens approximates the token count of a prompt. Four bytes
// per token is a rough average for English prose and code; exact counts
// are tokenizer-specific and not worth a tokenizer dependency here.
func EstimateTokens(text string) int {
	return len(text)/4 + 1
}

// completionBudget derives the completion token budget from the prompt
// size and the configured buffer factor.
func completionBudget(system, user string, buffer float64) int64 {
	if buffer <= 0 {
		buffer = DefaultTokenBuffer
	}
	budget := int64(float64(EstimateTokens(system+user)) * buffer)
	if budget < minCompletionTokens {
		budget = minCompletionTokens
	}
	return budget
}
