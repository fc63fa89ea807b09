package github

import (
	"errors"
	"testing"
)

func TestThreadComments(t *testing.T) {
	comments := []Comment{
		{ID: 1, Kind: KindReviewComment, User: "alice", Body: "root one", CreatedAt: "2024-10-10T10:00:00Z", DiffHunk: "@@ -1 +1 @@", HTMLURL: "https://example.com/1"},
		{ID: 2, Kind: KindReviewComment, User: "bob", Body: "reply to one", CreatedAt: "2024-10-10T11:00:00Z", InReplyToID: 1},
		{ID: 3, Kind: KindIssueComment, User: "carol", Body: "root two", CreatedAt: "2024-10-10T12:00:00Z", HTMLURL: "https://example.com/3"},
	}

	threads, err := ThreadComments(comments)
	if err != nil {
		t.Fatalf("ThreadComments() error = %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("got %d threads, want 2", len(threads))
	}

	first := threads[0]
	if first.ParentThreadID != 1 {
		t.Errorf("first thread root = %d, want 1", first.ParentThreadID)
	}
	if len(first.ChildThreadIDs) != 1 || first.ChildThreadIDs[0] != 2 {
		t.Errorf("first thread children = %v, want [2]", first.ChildThreadIDs)
	}
	if len(first.Content) != 2 {
		t.Fatalf("first thread has %d posts, want 2", len(first.Content))
	}
	if first.Content[0].User != "alice" || first.Content[1].User != "bob" {
		t.Errorf("first thread posts out of order: %+v", first.Content)
	}
	if first.DiffHunk != "@@ -1 +1 @@" {
		t.Errorf("first thread diff hunk = %q", first.DiffHunk)
	}

	second := threads[1]
	if second.ParentThreadID != 3 {
		t.Errorf("second thread root = %d, want 3", second.ParentThreadID)
	}
	if len(second.ChildThreadIDs) != 0 {
		t.Errorf("second thread children = %v, want empty", second.ChildThreadIDs)
	}
	if second.ChildThreadIDs == nil {
		t.Error("second thread children is nil, want empty slice")
	}
	if len(second.Content) != 1 {
		t.Errorf("second thread has %d posts, want 1", len(second.Content))
	}
}

func TestThreadCommentsMissingRoot(t *testing.T) {
	comments := []Comment{
		{ID: 5, User: "alice", Body: "orphan reply", InReplyToID: 99},
	}

	_, err := ThreadComments(comments)
	if err == nil {
		t.Fatal("ThreadComments() expected error for orphan reply")
	}

	var missing *MissingThreadRootError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %T, want *MissingThreadRootError", err)
	}
	if missing.CommentID != 5 || missing.InReplyToID != 99 {
		t.Errorf("error fields = %+v, want CommentID 5, InReplyToID 99", missing)
	}
}

func TestThreadCommentsRootOrderIsFirstSeen(t *testing.T) {
	// A reply arriving between two roots must not reorder the roots.
	comments := []Comment{
		{ID: 10, User: "a", Body: "first root"},
		{ID: 20, User: "b", Body: "second root"},
		{ID: 11, User: "c", Body: "late reply to first", InReplyToID: 10},
	}

	threads, err := ThreadComments(comments)
	if err != nil {
		t.Fatalf("ThreadComments() error = %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("got %d threads, want 2", len(threads))
	}
	if threads[0].ParentThreadID != 10 || threads[1].ParentThreadID != 20 {
		t.Errorf("thread order = [%d, %d], want [10, 20]", threads[0].ParentThreadID, threads[1].ParentThreadID)
	}
	if len(threads[0].Content) != 2 {
		t.Errorf("first thread has %d posts, want 2", len(threads[0].Content))
	}
}

func TestThreadsToJSONEmpty(t *testing.T) {
	out, err := ThreadsToJSON(nil)
	if err != nil {
		t.Fatalf("ThreadsToJSON() error = %v", err)
	}
	if out != "[]" {
		t.Errorf("ThreadsToJSON(nil) = %q, want %q", out, "[]")
	}
}
