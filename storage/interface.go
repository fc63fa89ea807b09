// Package storage defines the summary store interface for prdigest.
package storage

import "context"

// SummaryRecord is one appended row of the summary store: metadata
// columns plus the serialized summary. The store is an append log, not
// a keyed table; multiple rows may exist for the same pull request
// across time or across model/provider changes.
type SummaryRecord struct {
	Repo        string `json:"repo"`
	Author      string `json:"author"`
	PRNumber    int    `json:"pr_number"`
	LLMProvider string `json:"llm_provider"`
	ModelName   string `json:"model_name"`
	PRCreatedAt string `json:"pr_created_at"`
	PRMergedAt  string `json:"pr_merged_at,omitempty"`
	CreatedAt   string `json:"created_at"`
	// Summary is the PRSummary serialized as JSON.
	Summary string `json:"summary"`
}

// Store is a summary store backend. Rows are never mutated once
// written; concurrent writers may interleave appends.
type Store interface {
	Save(ctx context.Context, rec SummaryRecord) error
	Load(ctx context.Context) ([]SummaryRecord, error)
	Close() error
}
