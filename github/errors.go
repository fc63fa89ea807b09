package github

import "fmt"

// NotFoundError indicates the requested repository or pull request does
// not exist upstream. It is surfaced to the caller and never retried.
type NotFoundError struct {
	Owner  string
	Repo   string
	Number int
}

func (e *NotFoundError) Error() string {
	if e.Number > 0 {
		return fmt.Sprintf("pull request %s/%s#%d not found", e.Owner, e.Repo, e.Number)
	}
	return fmt.Sprintf("repository %s/%s not found", e.Owner, e.Repo)
}

// MissingThreadRootError indicates malformed comment data: a reply
// references a root comment that never appeared in the input.
type MissingThreadRootError struct {
	CommentID   int64
	InReplyToID int64
}

func (e *MissingThreadRootError) Error() string {
	return fmt.Sprintf("comment %d replies to %d, which is not a known thread root", e.CommentID, e.InReplyToID)
}
