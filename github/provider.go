package github

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// listPageSize is the fixed page size for the pull request listing.
	listPageSize = 100

	// maxListPages bounds the pagination loop. The early-stop rule relies
	// on the API returning pages sorted descending by creation time; if
	// that ever breaks, the cap keeps the walk from running away.
	maxListPages = 100
)

// ListPRComments fetches both comment kinds for a pull request, merged
// and sorted ascending by creation time.
func (c *Client) ListPRComments(ctx context.Context, repo string, number int) ([]Comment, error) {
	issueComments, err := c.listComments(ctx, repo, number, KindIssueComment)
	if err != nil {
		return nil, err
	}
	reviewComments, err := c.listComments(ctx, repo, number, KindReviewComment)
	if err != nil {
		return nil, err
	}

	comments := append(issueComments, reviewComments...)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt < comments[j].CreatedAt
	})
	return comments, nil
}

// BuildPullRequest assembles a denormalized PullRequest from the raw
// header, commit list, review list, and both comment kinds. The fetches
// after the header run in parallel; if any of them fails the whole
// aggregation fails, since a summary built on partial context is worse
// than no summary.
func (c *Client) BuildPullRequest(ctx context.Context, repo string, number int) (*PullRequest, error) {
	pr, err := c.getPullRequest(ctx, repo, number)
	if err != nil {
		return nil, err
	}

	var (
		commits  []commitRecord
		reviews  []reviewRecord
		comments []Comment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		commits, err = c.listCommits(gctx, repo, number)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = c.listReviews(gctx, repo, number)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = c.ListPRComments(gctx, repo, number)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var firstCommittedAt string
	if len(commits) > 0 {
		firstCommittedAt = commits[0].Commit.Author.Date
	}

	author := ""
	if pr.User != nil {
		author = pr.User.Login
	}

	// Reviewer attribution excludes self-reviews and bot accounts.
	seen := make(map[string]bool)
	var reviewers []string
	for _, review := range reviews {
		if review.User == nil {
			continue
		}
		if review.User.Login == author || review.User.Type == "Bot" {
			continue
		}
		if !seen[review.User.Login] {
			seen[review.User.Login] = true
			reviewers = append(reviewers, review.User.Login)
		}
	}
	sort.Strings(reviewers)

	// Some API payloads report the literal string "null" for merged_at.
	mergedAt := pr.MergedAt
	if mergedAt == "null" {
		mergedAt = ""
	}

	return &PullRequest{
		Number:           pr.Number,
		Title:            pr.Title,
		State:            pr.State,
		Author:           author,
		Reviewers:        reviewers,
		CreatedAt:        pr.CreatedAt,
		FirstCommittedAt: firstCommittedAt,
		Description:      pr.Body,
		HTMLURL:          pr.HTMLURL,
		DiffURL:          pr.DiffURL,
		Comments:         comments,
		DiffLines:        fmt.Sprintf("+%d -%d", pr.Additions, pr.Deletions),
		MergedAt:         mergedAt,
	}, nil
}

// CollectPRNumbers walks the reverse-chronological pull request listing
// and returns the numbers of PRs created within [start, end], most
// recent first. When authors is non-empty, only PRs by those authors
// are kept.
//
// The walk stops early once the oldest item on a page predates start:
// every later page is strictly older and cannot contain in-window items.
func (c *Client) CollectPRNumbers(ctx context.Context, repo string, start, end time.Time, authors map[string]struct{}, closedOnly bool) ([]int, error) {
	state := "all"
	if closedOnly {
		state = "closed"
	}

	var numbers []int
	for page := 1; ; page++ {
		if page > maxListPages {
			return numbers, fmt.Errorf("pull request listing for %s/%s exceeded %d pages", c.owner, repo, maxListPages)
		}

		prs, err := c.listPullRequests(ctx, repo, state, page, listPageSize)
		if err != nil {
			return nil, err
		}
		if len(prs) == 0 {
			break
		}

		for _, pr := range prs {
			createdAt, err := time.Parse(time.RFC3339, pr.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at %q for PR #%d: %w", pr.CreatedAt, pr.Number, err)
			}
			if createdAt.Before(start) || createdAt.After(end) {
				continue
			}
			if len(authors) > 0 {
				if pr.User == nil {
					continue
				}
				if _, ok := authors[pr.User.Login]; !ok {
					continue
				}
			}
			numbers = append(numbers, pr.Number)
		}

		// Oldest item on this page, since the listing is descending.
		oldest, err := time.Parse(time.RFC3339, prs[len(prs)-1].CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", prs[len(prs)-1].CreatedAt, err)
		}
		if oldest.Before(start) {
			break
		}
	}
	return numbers, nil
}
