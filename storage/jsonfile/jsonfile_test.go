package jsonfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prdigest/prdigest/storage"
)

func testRecord(prNumber int, createdAt string) storage.SummaryRecord {
	return storage.SummaryRecord{
		Repo:        "widgets",
		Author:      "alice",
		PRNumber:    prNumber,
		LLMProvider: "anthropic",
		ModelName:   "test-model",
		PRCreatedAt: "2024-10-10T09:00:00Z",
		CreatedAt:   createdAt,
		Summary:     `{"types":["Other"],"title":"t","description":"d","files":[],"comment_threads":[]}`,
	}
}

func TestAppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "summaries.jsonl")
	store, err := New(path, false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	first := testRecord(1, "2024-10-20T10:00:00Z")
	second := testRecord(2, "2024-10-20T11:00:00Z")
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	records, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0] != first {
		t.Errorf("records[0] = %+v, want %+v", records[0], first)
	}
	if records[1] != second {
		t.Errorf("records[1] = %+v, want %+v", records[1], second)
	}
}

func TestAppendSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.jsonl")
	ctx := context.Background()

	store, err := New(path, false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Save(ctx, testRecord(1, "2024-10-20T10:00:00Z")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	store.Close()

	reopened, err := New(path, false)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	if err := reopened.Save(ctx, testRecord(2, "2024-10-20T11:00:00Z")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	records, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records after reopen, want 2", len(records))
	}
}

func TestOverwriteMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.jsonl")
	store, err := New(path, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := store.Save(ctx, testRecord(1, "2024-10-20T10:00:00Z")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	last := testRecord(2, "2024-10-20T11:00:00Z")
	if err := store.Save(ctx, last); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	records, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records in overwrite mode, want 1", len(records))
	}
	if records[0] != last {
		t.Errorf("records[0] = %+v, want %+v", records[0], last)
	}
}

func TestLoadEmpty(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "summaries.jsonl"), false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	records, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from empty file, want 0", len(records))
	}
}
