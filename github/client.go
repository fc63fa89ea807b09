package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
)

const defaultBaseURL = "https://api.github.com"

// Client provides methods to interact with the GitHub API for a single
// repository owner.
type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	token      string
}

// NewClient creates a client authenticated with a personal access token.
func NewClient(owner, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		owner:      owner,
		token:      token,
	}
}

// NewAppClient creates a client authenticated as a GitHub App
// installation. The privateKey should be the PEM-encoded private key of
// the app.
func NewAppClient(owner string, appID, installationID int64, privateKey []byte) (*Client, error) {
	transport, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport: %w", err)
	}
	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		owner:      owner,
	}, nil
}

// SetBaseURL overrides the API base URL, e.g. for GitHub Enterprise.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// Owner returns the repository owner this client is bound to.
func (c *Client) Owner() string {
	return c.owner
}

// getJSON performs a GET request against the API and decodes the JSON
// response into v. A 404 response is reported as *NotFoundError.
func (c *Client) getJSON(ctx context.Context, repo string, number int, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Owner: c.owner, Repo: repo, Number: number}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetPullRequest fetches the raw header of a pull request.
func (c *Client) getPullRequest(ctx context.Context, repo string, number int) (*prRecord, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, c.owner, repo, number)
	var pr prRecord
	if err := c.getJSON(ctx, repo, number, url, &pr); err != nil {
		return nil, fmt.Errorf("failed to fetch pull request: %w", err)
	}
	return &pr, nil
}

// listCommits fetches the commits of a pull request.
func (c *Client) listCommits(ctx context.Context, repo string, number int) ([]commitRecord, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/commits", c.baseURL, c.owner, repo, number)
	var commits []commitRecord
	if err := c.getJSON(ctx, repo, number, url, &commits); err != nil {
		return nil, fmt.Errorf("failed to fetch commits: %w", err)
	}
	return commits, nil
}

// listReviews fetches the reviews of a pull request.
func (c *Client) listReviews(ctx context.Context, repo string, number int) ([]reviewRecord, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.baseURL, c.owner, repo, number)
	var reviews []reviewRecord
	if err := c.getJSON(ctx, repo, number, url, &reviews); err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return reviews, nil
}

// listComments fetches one kind of pull request comment and maps the
// raw records to Comments.
func (c *Client) listComments(ctx context.Context, repo string, number int, kind CommentKind) ([]Comment, error) {
	var url string
	if kind == KindIssueComment {
		url = fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.baseURL, c.owner, repo, number)
	} else {
		url = fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments", c.baseURL, c.owner, repo, number)
	}

	var records []commentRecord
	if err := c.getJSON(ctx, repo, number, url, &records); err != nil {
		return nil, fmt.Errorf("failed to fetch %s comments: %w", kind, err)
	}

	comments := make([]Comment, 0, len(records))
	for _, rec := range records {
		comment := Comment{
			ID:          rec.ID,
			Kind:        kind,
			DiffHunk:    rec.DiffHunk,
			Body:        rec.Body,
			CreatedAt:   rec.CreatedAt,
			InReplyToID: rec.InReplyToID,
			HTMLURL:     rec.HTMLURL,
		}
		if rec.User != nil {
			comment.User = rec.User.Login
			comment.UserType = rec.User.Type
		}
		// A review comment with a null diff position lost its anchor:
		// the code it commented on has since changed.
		if kind == KindReviewComment {
			comment.CodeChange = rec.Position == nil
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

// listPullRequests fetches one page of the repository's pull request
// listing, sorted by creation time descending.
func (c *Client) listPullRequests(ctx context.Context, repo, state string, page, pageSize int) ([]prRecord, error) {
	params := url.Values{}
	params.Set("state", state)
	params.Set("sort", "created")
	params.Set("direction", "desc")
	params.Set("per_page", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))

	url := fmt.Sprintf("%s/repos/%s/%s/pulls?%s", c.baseURL, c.owner, repo, params.Encode())
	var prs []prRecord
	if err := c.getJSON(ctx, repo, 0, url, &prs); err != nil {
		return nil, fmt.Errorf("failed to list pull requests page %d: %w", page, err)
	}
	return prs, nil
}

// FetchDiff fetches the raw unified diff text of a pull request via its
// diff URL.
func (c *Client) FetchDiff(ctx context.Context, diffURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", diffURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.diff")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch diff: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to fetch diff: status %d, body: %s", resp.StatusCode, string(body))
	}

	diff, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read diff: %w", err)
	}
	return string(diff), nil
}
