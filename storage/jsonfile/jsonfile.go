// Package jsonfile provides a local, append-only JSON-lines
// implementation of the summary store for single-user setups.
package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prdigest/prdigest/storage"
)

// JSONFile stores one summary record per line as JSON.
type JSONFile struct {
	path      string
	overwrite bool
	mu        sync.Mutex
}

// New creates the file (and parent directories) if it does not exist.
// When overwrite is true each Save replaces the file contents instead
// of appending.
func New(path string, overwrite bool) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &JSONFile{path: path, overwrite: overwrite}, nil
}

// Close implements Store. The file is opened per operation, so there is
// nothing to release.
func (j *JSONFile) Close() error { return nil }

// Save appends one record as a JSON line, or replaces the file in
// overwrite mode. The lock only serializes writers within this process;
// the append-only row model makes cross-process interleaving harmless.
func (j *JSONFile) Save(ctx context.Context, rec storage.SummaryRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal summary record: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if j.overwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open storage file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write summary record: %w", err)
	}
	return nil
}

// Load reads all persisted records in file order.
func (j *JSONFile) Load(ctx context.Context) ([]storage.SummaryRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file: %w", err)
	}
	defer f.Close()

	var records []storage.SummaryRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec storage.SummaryRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse summary record: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	return records, nil
}

// Verify JSONFile implements Store at compile time.
var _ storage.Store = (*JSONFile)(nil)
