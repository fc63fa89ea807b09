// Package github provides the GitHub API client and pull request
// aggregation for prdigest.
package github

// CommentKind distinguishes conversation-level comments from inline
// review comments.
type CommentKind string

const (
	KindIssueComment  CommentKind = "issue_comment"
	KindReviewComment CommentKind = "review_comment"
)

// Comment is a single pull request discussion comment. Comments are
// read-only snapshots and are never mutated after fetching.
type Comment struct {
	ID          int64       `json:"id"`
	Kind        CommentKind `json:"type"`
	User        string      `json:"user"`
	UserType    string      `json:"user_type"`
	DiffHunk    string      `json:"diff_hunk"`
	Body        string      `json:"body"`
	CreatedAt   string      `json:"created_at"`
	InReplyToID int64       `json:"in_reply_to_id"`
	HTMLURL     string      `json:"html_url"`
	// CodeChange is true when the comment's original diff anchor is gone,
	// meaning the code it pointed at has since changed.
	CodeChange bool `json:"code_change"`
}

// PullRequest is the denormalized record the summarizer works from.
// Comments are sorted ascending by creation time.
type PullRequest struct {
	Number           int       `json:"number"`
	Title            string    `json:"title"`
	State            string    `json:"state"`
	Author           string    `json:"author"`
	Reviewers        []string  `json:"reviewers"`
	CreatedAt        string    `json:"created_at"`
	FirstCommittedAt string    `json:"first_committed_at"`
	Description      string    `json:"description"`
	HTMLURL          string    `json:"html_url"`
	DiffURL          string    `json:"diff_url"`
	Comments         []Comment `json:"comments"`
	// DiffLines is the literal "+N -M" additions/deletions string.
	DiffLines string `json:"diff_lines"`
	MergedAt  string `json:"merged_at,omitempty"`
}

// User represents a GitHub user or organization.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Type  string `json:"type"`
}

// prRecord is the raw pull request representation from the REST API.
type prRecord struct {
	Number    int    `json:"number"`
	State     string `json:"state"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	User      *User  `json:"user"`
	HTMLURL   string `json:"html_url"`
	DiffURL   string `json:"diff_url"`
	CreatedAt string `json:"created_at"`
	MergedAt  string `json:"merged_at"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// reviewRecord is the raw review representation from the REST API.
type reviewRecord struct {
	ID          int64  `json:"id"`
	User        *User  `json:"user"`
	State       string `json:"state"`
	SubmittedAt string `json:"submitted_at"`
}

// commitRecord is the raw commit representation from the REST API.
type commitRecord struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Date  string `json:"date"`
		} `json:"author"`
		Message string `json:"message"`
	} `json:"commit"`
}

// commentRecord is the raw comment representation shared by the issue
// comment and review comment endpoints. Position is a pointer because
// the API reports null for review comments whose diff anchor is gone.
type commentRecord struct {
	ID          int64  `json:"id"`
	User        *User  `json:"user"`
	DiffHunk    string `json:"diff_hunk"`
	Body        string `json:"body"`
	CreatedAt   string `json:"created_at"`
	InReplyToID int64  `json:"in_reply_to_id"`
	HTMLURL     string `json:"html_url"`
	Position    *int   `json:"position"`
}
