package github

import (
	"encoding/json"
	"fmt"
)

// ThreadPost is one post inside a comment thread. Posts keep the
// relative order in which comments were encountered, not timestamp
// order.
type ThreadPost struct {
	User      string `json:"user"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// CommentThread is a root comment plus everything that replied to it,
// flattened one level deep. The JSON field names are part of the prompt
// contract: rendered threads are fed verbatim to the model.
type CommentThread struct {
	ParentThreadID int64        `json:"parent_thread_id"`
	ChildThreadIDs []int64      `json:"child_thread_ids"`
	DiffHunk       string       `json:"diff_hunk"`
	HTMLURL        string       `json:"html_url"`
	Content        []ThreadPost `json:"content"`
	CodeChange     bool         `json:"code_change"`
}

// ThreadComments groups a flat comment list into reply threads in one
// pass. Threads come out in the order their root comment was first seen.
// A reply whose root never appears in the input fails with
// *MissingThreadRootError.
func ThreadComments(comments []Comment) ([]CommentThread, error) {
	// Insertion-ordered map: Go maps have no iteration order guarantee,
	// so root order is tracked separately.
	byRoot := make(map[int64]*CommentThread, len(comments))
	var order []int64

	for _, comment := range comments {
		post := ThreadPost{
			User:      comment.User,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt,
		}

		if comment.InReplyToID == 0 {
			byRoot[comment.ID] = &CommentThread{
				ParentThreadID: comment.ID,
				ChildThreadIDs: []int64{},
				DiffHunk:       comment.DiffHunk,
				HTMLURL:        comment.HTMLURL,
				Content:        []ThreadPost{post},
				CodeChange:     comment.CodeChange,
			}
			order = append(order, comment.ID)
			continue
		}

		root, ok := byRoot[comment.InReplyToID]
		if !ok {
			return nil, &MissingThreadRootError{CommentID: comment.ID, InReplyToID: comment.InReplyToID}
		}
		root.ChildThreadIDs = append(root.ChildThreadIDs, comment.ID)
		root.Content = append(root.Content, post)
	}

	threads := make([]CommentThread, 0, len(order))
	for _, id := range order {
		threads = append(threads, *byRoot[id])
	}
	return threads, nil
}

// ThreadsToJSON renders comment threads as the JSON array embedded in
// summarization prompts.
func ThreadsToJSON(threads []CommentThread) (string, error) {
	if threads == nil {
		threads = []CommentThread{}
	}
	b, err := json.Marshal(threads)
	if err != nil {
		return "", fmt.Errorf("failed to marshal comment threads: %w", err)
	}
	return string(b), nil
}
