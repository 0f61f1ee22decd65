package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/tailzero/internal/config"
	"github.com/steveyegge/tailzero/internal/types"
)

func seedRuns(t *testing.T, now time.Time) []*types.SearchRun {
	t.Helper()
	testStore := useTestStore(t)

	runs := []*types.SearchRun{
		{
			ID: "run-old", ZeroCount: 2, Quota: 1, Algorithm: "sha256",
			StepSize: 1000, Workers: 1, Mode: "sequential", Windows: 1, Candidates: 403,
			Matches:   []types.Match{{Candidate: 403, Digest: "d26eae87829adde551bf4b852f9da6b8c3c2db9b65b8b68870632a2db5f53e00"}},
			StartedAt: now.Add(-72 * time.Hour), FinishedAt: now.Add(-72 * time.Hour),
		},
		{
			ID: "run-new", ZeroCount: 9, Quota: 4, Algorithm: "blake2b",
			StepSize: 500, Workers: 8, Mode: "unordered", Cancelled: true, Windows: 40, Candidates: 20000,
			StartedAt: now.Add(-5 * time.Minute), FinishedAt: now.Add(-4 * time.Minute),
		},
	}
	for _, r := range runs {
		require.NoError(t, testStore.RecordRun(context.Background(), r))
	}
	return runs
}

func TestRunHistoryList(t *testing.T) {
	now := time.Now()
	seedRuns(t, now)

	var out bytes.Buffer
	require.NoError(t, runHistoryList(context.Background(), &out, store, 0, now))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "run-new")
	assert.Contains(t, lines[0], "0/4 matches")
	assert.Contains(t, lines[0], "cancelled")
	assert.Contains(t, lines[0], "5m ago")
	assert.Contains(t, lines[1], "run-old")
	assert.Contains(t, lines[1], "1/1 matches")
	assert.Contains(t, lines[1], "complete")
	assert.Contains(t, lines[1], "3d ago")

	out.Reset()
	require.NoError(t, runHistoryList(context.Background(), &out, store, 1, now))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestRunHistoryList_Empty(t *testing.T) {
	useTestStore(t)

	var out bytes.Buffer
	require.NoError(t, runHistoryList(context.Background(), &out, store, 20, time.Now()))
	assert.Contains(t, out.String(), "No recorded runs")
}

func TestRunHistoryShow(t *testing.T) {
	seedRuns(t, time.Now())

	var out bytes.Buffer
	require.NoError(t, runHistoryShow(context.Background(), &out, store, "run-old", outputText))
	assert.Contains(t, out.String(), "Run run-old")
	assert.Contains(t, out.String(), "1 matches with 2 zeros")
	assert.Contains(t, out.String(), "sequential, 1 worker(s), step 1000")
	assert.True(t, strings.HasSuffix(out.String(),
		"\n403, d26eae87829adde551bf4b852f9da6b8c3c2db9b65b8b68870632a2db5f53e00\n"))
}

func TestRunHistoryShow_YAML(t *testing.T) {
	seedRuns(t, time.Now())

	var out bytes.Buffer
	require.NoError(t, runHistoryShow(context.Background(), &out, store, "run-old", outputYAML))
	assert.Contains(t, out.String(), "id: run-old")
	assert.Contains(t, out.String(), "candidate: 403")
}

func TestRunHistoryShow_NotFound(t *testing.T) {
	useTestStore(t)

	err := runHistoryShow(context.Background(), &bytes.Buffer{}, store, "nope", outputText)
	assert.ErrorIs(t, err, types.ErrRunNotFound)
}

func TestRunHistoryPrune(t *testing.T) {
	tests := []struct {
		name        string
		retention   config.HistoryRetentionConfig
		wantIDs     []string
		wantMessage string
	}{
		{
			name:        "zero max age never prunes by age",
			retention:   config.HistoryRetentionConfig{MaxAgeHours: 0, Keep: 0},
			wantIDs:     []string{"run-new", "run-old"},
			wantMessage: "Age pruning disabled",
		},
		{
			name:        "runs older than max age deleted",
			retention:   config.HistoryRetentionConfig{MaxAgeHours: 24, Keep: 0},
			wantIDs:     []string{"run-new"},
			wantMessage: "Deleted 1 run(s)",
		},
		{
			name:        "keep protects old runs",
			retention:   config.HistoryRetentionConfig{MaxAgeHours: 24, Keep: 2},
			wantIDs:     []string{"run-new", "run-old"},
			wantMessage: "Deleted 0 run(s)",
		},
		{
			name:        "short max age keeps only recent runs",
			retention:   config.HistoryRetentionConfig{MaxAgeHours: 1, Keep: 0},
			wantIDs:     []string{"run-new"},
			wantMessage: "Deleted 1 run(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Now()
			seedRuns(t, now)
			ctx := context.Background()

			var out bytes.Buffer
			require.NoError(t, runHistoryPrune(ctx, &out, store, tt.retention, now))
			assert.Contains(t, out.String(), tt.wantMessage)

			runs, err := store.ListRuns(ctx, 0)
			require.NoError(t, err)
			var ids []string
			for _, r := range runs {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
