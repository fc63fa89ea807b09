package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prdigest/prdigest/github"
	"github.com/prdigest/prdigest/llm"
	"github.com/prdigest/prdigest/storage"
)

// GitProvider is the slice of the GitHub client the summarizer needs.
type GitProvider interface {
	BuildPullRequest(ctx context.Context, repo string, number int) (*github.PullRequest, error)
	CollectPRNumbers(ctx context.Context, repo string, start, end time.Time, authors map[string]struct{}, closedOnly bool) ([]int, error)
	FetchDiff(ctx context.Context, diffURL string) (string, error)
}

// Summarizer runs the cache-backed summarization workflow: look up the
// store first, call the model only on a miss, and append the result.
type Summarizer struct {
	git              GitProvider
	llm              llm.Client
	store            storage.Store
	templates        Templates
	strictModelMatch bool
	logger           *slog.Logger
	now              func() time.Time
}

// NewSummarizer wires a summarizer with the default prompt templates.
func NewSummarizer(git GitProvider, model llm.Client, store storage.Store, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		git:       git,
		llm:       model,
		store:     store,
		templates: DefaultPRTemplates(),
		logger:    logger,
		now:       time.Now,
	}
}

// SetTemplates overrides the prompt templates.
func (s *Summarizer) SetTemplates(t Templates) {
	s.templates = t
}

// SetStrictModelMatch restricts cache hits to records produced by the
// currently configured provider and model.
func (s *Summarizer) SetStrictModelMatch(strict bool) {
	s.strictModelMatch = strict
}

// Summarize returns the summary for one pull request, from the store
// when a matching record exists, otherwise from a fresh model call. A
// cache hit never contacts GitHub or the model.
func (s *Summarizer) Summarize(ctx context.Context, repo string, prNumber int) (*PRSummary, *PRSummaryMetadata, error) {
	cached, meta, err := s.lookup(ctx, repo, prNumber)
	if err != nil {
		return nil, nil, err
	}
	if cached != nil {
		s.logger.Info("cache hit",
			"repo", repo,
			"pr_number", prNumber,
			"model", meta.ModelName,
			"created_at", meta.CreatedAt)
		return cached, meta, nil
	}

	s.logger.Info("cache miss, summarizing", "repo", repo, "pr_number", prNumber)
	return s.summarizeFresh(ctx, repo, prNumber)
}

// lookup scans the store for the most recent record matching the pull
// request. Records are matched on repo and PR number; with strict model
// matching on, provider and model must match as well. Ties on CreatedAt
// resolve to the later row.
func (s *Summarizer) lookup(ctx context.Context, repo string, prNumber int) (*PRSummary, *PRSummaryMetadata, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading summary store: %w", err)
	}

	var best *storage.SummaryRecord
	for i := range records {
		rec := &records[i]
		if rec.Repo != repo || rec.PRNumber != prNumber {
			continue
		}
		if s.strictModelMatch && (rec.LLMProvider != s.llm.Provider() || rec.ModelName != s.llm.Model()) {
			continue
		}
		// CreatedAt is a fixed-width UTC timestamp, so string order is
		// chronological order.
		if best == nil || rec.CreatedAt >= best.CreatedAt {
			best = rec
		}
	}
	if best == nil {
		return nil, nil, nil
	}

	var parsed PRSummary
	if err := json.Unmarshal([]byte(best.Summary), &parsed); err != nil {
		return nil, nil, fmt.Errorf("decoding cached summary for %s#%d: %w", repo, prNumber, err)
	}
	meta := &PRSummaryMetadata{
		Repo:        best.Repo,
		Author:      best.Author,
		PRNumber:    best.PRNumber,
		LLMProvider: best.LLMProvider,
		ModelName:   best.ModelName,
		PRCreatedAt: best.PRCreatedAt,
		PRMergedAt:  best.PRMergedAt,
		CreatedAt:   best.CreatedAt,
	}
	return &parsed, meta, nil
}

// summarizeFresh fetches the pull request, runs the model, validates
// the output, and appends the record to the store. Nothing is persisted
// unless the output passed schema validation.
func (s *Summarizer) summarizeFresh(ctx context.Context, repo string, prNumber int) (*PRSummary, *PRSummaryMetadata, error) {
	pr, err := s.git.BuildPullRequest(ctx, repo, prNumber)
	if err != nil {
		return nil, nil, err
	}
	diff, err := s.git.FetchDiff(ctx, pr.DiffURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching diff for %s#%d: %w", repo, prNumber, err)
	}
	threads, err := github.ThreadComments(pr.Comments)
	if err != nil {
		return nil, nil, err
	}
	threadJSON, err := github.ThreadsToJSON(threads)
	if err != nil {
		return nil, nil, err
	}

	system, user, err := s.templates.Render(map[string]any{
		"author":      pr.Author,
		"title":       pr.Title,
		"description": pr.Description,
		"code":        diff,
		"comments":    threadJSON,
		"schema":      Schema(),
	})
	if err != nil {
		return nil, nil, err
	}

	raw, err := s.llm.ChatCompletion(ctx, system, user)
	if err != nil {
		return nil, nil, fmt.Errorf("model call for %s#%d: %w", repo, prNumber, err)
	}
	parsed, err := ParseSummary(CurateModelOutput(raw))
	if err != nil {
		return nil, nil, err
	}

	meta := &PRSummaryMetadata{
		Repo:        repo,
		Author:      pr.Author,
		PRNumber:    pr.Number,
		LLMProvider: s.llm.Provider(),
		ModelName:   s.llm.Model(),
		PRCreatedAt: pr.CreatedAt,
		PRMergedAt:  pr.MergedAt,
		CreatedAt:   s.now().UTC().Format(TimeLayout),
	}

	encoded, err := json.Marshal(parsed)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding summary for %s#%d: %w", repo, prNumber, err)
	}
	rec := storage.SummaryRecord{
		Repo:        meta.Repo,
		Author:      meta.Author,
		PRNumber:    meta.PRNumber,
		LLMProvider: meta.LLMProvider,
		ModelName:   meta.ModelName,
		PRCreatedAt: meta.PRCreatedAt,
		PRMergedAt:  meta.PRMergedAt,
		CreatedAt:   meta.CreatedAt,
		Summary:     string(encoded),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, nil, fmt.Errorf("saving summary for %s#%d: %w", repo, prNumber, err)
	}

	s.logger.Info("summary stored",
		"repo", repo,
		"pr_number", prNumber,
		"provider", meta.LLMProvider,
		"model", meta.ModelName)
	return parsed, meta, nil
}
