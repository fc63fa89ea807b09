package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// maxConcurrentSummaries bounds the per-PR fan-out during a weekly run.
const maxConcurrentSummaries = 5

// WeekWindow resolves a week start date into an inclusive [start, end]
// window. The date must be a Sunday or Monday in "2006-01-02" form; the
// window always spans exactly seven days.
func WeekWindow(startOfWeek string) (start, end time.Time, err error) {
	start, parseErr := time.Parse("2006-01-02", startOfWeek)
	if parseErr != nil {
		return time.Time{}, time.Time{}, &InvalidWindowError{Value: startOfWeek, Reason: "not a YYYY-MM-DD date"}
	}
	if wd := start.Weekday(); wd != time.Sunday && wd != time.Monday {
		return time.Time{}, time.Time{}, &InvalidWindowError{Value: startOfWeek, Reason: fmt.Sprintf("falls on a %s, must be a Sunday or Monday", wd)}
	}
	return start, start.AddDate(0, 0, 6), nil
}

// WeeklySummarizer rolls one week of merged pull requests into a single
// report. Per-PR summaries reuse the cache-backed Summarizer, so a
// weekly run pays only for summaries not already in the store.
type WeeklySummarizer struct {
	git        GitProvider
	summarizer *Summarizer
	llm        llmCaller
	templates  Templates
	logger     *slog.Logger
}

// llmCaller is the part of llm.Client the weekly roll-up uses directly.
type llmCaller interface {
	ChatCompletion(ctx context.Context, system, user string) (string, error)
}

// NewWeeklySummarizer builds a weekly roll-up over an existing
// per-PR summarizer.
func NewWeeklySummarizer(git GitProvider, summarizer *Summarizer, model llmCaller, logger *slog.Logger) *WeeklySummarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeeklySummarizer{
		git:        git,
		summarizer: summarizer,
		llm:        model,
		templates:  DefaultWeeklyTemplates(),
		logger:     logger,
	}
}

// SetTemplates overrides the weekly prompt templates.
func (w *WeeklySummarizer) SetTemplates(t Templates) {
	w.templates = t
}

type prResult struct {
	prNumber int
	summary  *PRSummary
	err      error
}

// Run summarizes every closed pull request the given users authored in
// the week starting at startOfWeek and rolls the summaries into one
// report. Individual PR failures are logged and skipped; the roll-up
// proceeds with whatever survived.
func (w *WeeklySummarizer) Run(ctx context.Context, users []string, repo, startOfWeek string) (string, error) {
	start, end, err := WeekWindow(startOfWeek)
	if err != nil {
		return "", err
	}

	authors := make(map[string]struct{}, len(users))
	for _, u := range users {
		authors[u] = struct{}{}
	}

	numbers, err := w.git.CollectPRNumbers(ctx, repo, start, end, authors, true)
	if err != nil {
		return "", err
	}
	w.logger.Info("collected pull requests for weekly report",
		"repo", repo,
		"week_start", startOfWeek,
		"count", len(numbers))

	results := make([]prResult, len(numbers))
	sem := semaphore.NewWeighted(maxConcurrentSummaries)
	g, gctx := errgroup.WithContext(ctx)
	for i, number := range numbers {
		i, number := i, number
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i] = prResult{prNumber: number, err: err}
				return nil
			}
			defer sem.Release(1)

			// Failures land in the result slot instead of the group error:
			// one broken PR must not cancel the rest of the fan-out.
			summary, _, err := w.summarizer.Summarize(gctx, repo, number)
			results[i] = prResult{prNumber: number, summary: summary, err: err}
			return nil
		})
	}
	// Goroutines never return errors, so Wait only joins.
	_ = g.Wait()

	summaries := make([]*PRSummary, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			w.logger.Warn("skipping pull request in weekly report",
				"repo", repo,
				"pr_number", res.prNumber,
				"error", res.err)
			continue
		}
		summaries = append(summaries, res.summary)
	}
	if len(summaries) == 0 {
		return "", fmt.Errorf("no pull request summaries available for %s in week of %s", repo, startOfWeek)
	}

	encoded, err := json.Marshal(summaries)
	if err != nil {
		return "", fmt.Errorf("encoding weekly summaries: %w", err)
	}
	system, user, err := w.templates.Render(map[string]any{
		"schema":    Schema(),
		"summaries": string(encoded),
	})
	if err != nil {
		return "", err
	}
	raw, err := w.llm.ChatCompletion(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("weekly roll-up model call: %w", err)
	}
	return CurateModelOutput(raw), nil
}
