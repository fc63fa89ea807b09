// Package summary implements the cache-backed PR summarization workflow
// and the weekly roll-up on top of it.
package summary

import (
	"encoding/json"
	"fmt"
)

// PR type labels the model may assign. The label member values are part
// of the prompt contract ("Bug fix", not "bug_fix").
const (
	TypeBugFix        = "Bug fix"
	TypeTests         = "Tests"
	TypeEnhancement   = "Enhancement"
	TypeDocumentation = "Documentation"
	TypeOther         = "Other"
)

var validTypes = map[string]bool{
	TypeBugFix:        true,
	TypeTests:         true,
	TypeEnhancement:   true,
	TypeDocumentation: true,
	TypeOther:         true,
}

// Limits on summary list fields, enforced after parsing.
const (
	MaxFiles          = 15
	MaxCommentThreads = 100
)

// TimeLayout is the metadata timestamp format: UTC, second precision.
const TimeLayout = "2006-01-02T15:04:05Z"

// FileDescription summarizes the changes in one file of the PR.
type FileDescription struct {
	Filename       string `json:"filename"`
	Language       string `json:"language"`
	ChangesSummary string `json:"changes_summary"`
	ChangesTitle   string `json:"changes_title"`
	Label          string `json:"label"`
}

// ThreadDescription summarizes one comment thread of the PR.
type ThreadDescription struct {
	ParentThreadID   int64    `json:"parent_thread_id"`
	ChildThreadIDs   []int64  `json:"child_thread_ids"`
	Users            []string `json:"users"`
	URL              string   `json:"url"`
	Summary          string   `json:"summary"`
	Details          string   `json:"details"`
	EvalAspect       []string `json:"eval_aspect"`
	LeadToAction     string   `json:"lead_to_action"`
	LeadToActionDesc string   `json:"lead_to_action_desc"`
}

// PRSummary is the structured summary the model produces. The type
// doubles as the prompt schema contract, so metadata never goes here.
type PRSummary struct {
	Types          []string            `json:"types"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Files          []FileDescription   `json:"files"`
	CommentThreads []ThreadDescription `json:"comment_threads"`
}

// Validate checks the summary against the schema contract.
func (s *PRSummary) Validate() error {
	if len(s.Types) == 0 {
		return fmt.Errorf("types must not be empty")
	}
	for _, t := range s.Types {
		if !validTypes[t] {
			return fmt.Errorf("unknown PR type %q", t)
		}
	}
	if len(s.Files) > MaxFiles {
		return fmt.Errorf("files has %d entries, maximum is %d", len(s.Files), MaxFiles)
	}
	if len(s.CommentThreads) > MaxCommentThreads {
		return fmt.Errorf("comment_threads has %d entries, maximum is %d", len(s.CommentThreads), MaxCommentThreads)
	}
	return nil
}

// ParseSummary parses curated model output into a PRSummary. Output
// that does not conform to the schema fails with
// *SchemaValidationError and is never persisted.
func ParseSummary(curated string) (*PRSummary, error) {
	var s PRSummary
	if err := json.Unmarshal([]byte(curated), &s); err != nil {
		return nil, &SchemaValidationError{Err: err, Raw: curated}
	}
	if err := s.Validate(); err != nil {
		return nil, &SchemaValidationError{Err: err, Raw: curated}
	}
	return &s, nil
}

// PRSummaryMetadata records where a summary came from. It is kept apart
// from PRSummary so provenance fields never leak into the schema handed
// to the model.
type PRSummaryMetadata struct {
	Repo        string `json:"repo"`
	Author      string `json:"author"`
	PRNumber    int    `json:"pr_number"`
	LLMProvider string `json:"llm_provider"`
	ModelName   string `json:"model_name"`
	PRCreatedAt string `json:"pr_created_at"`
	PRMergedAt  string `json:"pr_merged_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}
