package summary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prdigest/prdigest/github"
)

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantEnd string
		wantErr bool
	}{
		{name: "monday", input: "2024-10-21", wantEnd: "2024-10-27"},
		{name: "sunday", input: "2024-10-20", wantEnd: "2024-10-26"},
		{name: "tuesday", input: "2024-10-22", wantErr: true},
		{name: "saturday", input: "2024-10-26", wantErr: true},
		{name: "not a date", input: "next monday", wantErr: true},
		{name: "wrong layout", input: "10/21/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := WeekWindow(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorAs(t, err, new(*InvalidWindowError))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, start.Format("2006-01-02"))
			assert.Equal(t, tt.wantEnd, end.Format("2006-01-02"))
			assert.Equal(t, 6*24*time.Hour, end.Sub(start))
		})
	}
}

// weeklyGit serves canned PR numbers and fails aggregation for chosen
// numbers.
type weeklyGit struct {
	numbers []int
	fail    map[int]error
}

func (w *weeklyGit) BuildPullRequest(ctx context.Context, repo string, number int) (*github.PullRequest, error) {
	if err := w.fail[number]; err != nil {
		return nil, err
	}
	pr := testPR()
	pr.Number = number
	return pr, nil
}

func (w *weeklyGit) CollectPRNumbers(ctx context.Context, repo string, start, end time.Time, authors map[string]struct{}, closedOnly bool) ([]int, error) {
	return w.numbers, nil
}

func (w *weeklyGit) FetchDiff(ctx context.Context, diffURL string) (string, error) {
	return "diff --git a/x b/x\n+x\n", nil
}

func newTestWeekly(git GitProvider, prModel *fakeLLM, rollup *fakeLLM) (*WeeklySummarizer, *memStore) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &memStore{}
	s := NewSummarizer(git, prModel, store, logger)
	s.now = func() time.Time { return time.Date(2024, 10, 28, 0, 0, 0, 0, time.UTC) }
	return NewWeeklySummarizer(git, s, rollup, logger), store
}

func TestWeeklyRun(t *testing.T) {
	git := &weeklyGit{numbers: []int{1, 2, 3}}
	prModel := &fakeLLM{output: validModelOutput}
	rollup := &fakeLLM{output: "Shipped the retry fix and two cleanups.\n"}
	weekly, store := newTestWeekly(git, prModel, rollup)

	report, err := weekly.Run(context.Background(), []string{"alice"}, "widgets", "2024-10-21")
	require.NoError(t, err)

	assert.Equal(t, "Shipped the retry fix and two cleanups.", report)
	assert.Equal(t, int64(3), prModel.calls.Load())
	assert.Equal(t, int64(1), rollup.calls.Load())
	assert.Len(t, store.records, 3)
}

func TestWeeklyRunCuratesReport(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "fenced report",
			output: "```json\nShipped the retry fix.\n```",
			want:   "Shipped the retry fix.",
		},
		{
			name:   "trailing newline",
			output: "Shipped the retry fix.\n",
			want:   "Shipped the retry fix.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			git := &weeklyGit{numbers: []int{1}}
			rollup := &fakeLLM{output: tt.output}
			weekly, _ := newTestWeekly(git, &fakeLLM{output: validModelOutput}, rollup)

			report, err := weekly.Run(context.Background(), []string{"alice"}, "widgets", "2024-10-21")
			require.NoError(t, err)
			assert.Equal(t, tt.want, report)
		})
	}
}

func TestWeeklyRunToleratesPartialFailure(t *testing.T) {
	git := &weeklyGit{
		numbers: []int{1, 2, 3},
		fail:    map[int]error{2: errors.New("api timeout")},
	}
	prModel := &fakeLLM{output: validModelOutput}
	rollup := &fakeLLM{output: "report"}
	weekly, store := newTestWeekly(git, prModel, rollup)

	report, err := weekly.Run(context.Background(), []string{"alice"}, "widgets", "2024-10-21")
	require.NoError(t, err, "one failing PR must not fail the roll-up")

	assert.Equal(t, "report", report)
	assert.Equal(t, int64(2), prModel.calls.Load())
	assert.Len(t, store.records, 2)
}

func TestWeeklyRunAllFailed(t *testing.T) {
	git := &weeklyGit{
		numbers: []int{1},
		fail:    map[int]error{1: errors.New("api timeout")},
	}
	rollup := &fakeLLM{output: "report"}
	weekly, _ := newTestWeekly(git, &fakeLLM{output: validModelOutput}, rollup)

	_, err := weekly.Run(context.Background(), []string{"alice"}, "widgets", "2024-10-21")
	require.Error(t, err)
	assert.Equal(t, int64(0), rollup.calls.Load())
}

func TestWeeklyRunInvalidWindow(t *testing.T) {
	weekly, _ := newTestWeekly(&weeklyGit{}, &fakeLLM{}, &fakeLLM{})

	_, err := weekly.Run(context.Background(), []string{"alice"}, "widgets", "2024-10-23")
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*InvalidWindowError))
}
