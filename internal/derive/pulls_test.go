package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestComputePullMetricsTotalsAndMergeTimes(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	mergedAt := now.Add(-12 * time.Hour)
	pulls := []warehouse.PullRequest{
		{ID: 1, State: "open", Draft: true, CreatedAt: now.Add(-time.Hour), AuthorLogin: "alice", BaseRef: "main"},
		{ID: 2, State: "closed", Merged: true, CreatedAt: now.Add(-24 * time.Hour), MergedAt: &mergedAt, AuthorLogin: "bob", BaseRef: "main", Additions: 5, Deletions: 2},
	}

	metrics := ComputePullMetrics(pulls, PullMetricsOptions{}, now)
	assert.Equal(t, 2, metrics.Total)
	assert.Equal(t, 1, metrics.Open)
	assert.Equal(t, 1, metrics.Draft)
	assert.Equal(t, 1, metrics.Merged)
	if assert.NotNil(t, metrics.MeanHoursToMerge) {
		assert.InDelta(t, 12, *metrics.MeanHoursToMerge, 0.01)
	}
	assert.Equal(t, 1, metrics.ByAuthor["bob"])
}

func TestComputePullMetricsMergedStateFilter(t *testing.T) {
	now := time.Now()
	mergedAt := now.Add(-time.Hour)
	pulls := []warehouse.PullRequest{
		{ID: 1, State: "closed", Merged: true, CreatedAt: now.Add(-2 * time.Hour), MergedAt: &mergedAt},
		{ID: 2, State: "closed", Merged: false, CreatedAt: now.Add(-2 * time.Hour)},
	}

	metrics := ComputePullMetrics(pulls, PullMetricsOptions{State: "merged"}, now)
	assert.Equal(t, 1, metrics.Total)
}

func TestComputePullMetricsSizeBins(t *testing.T) {
	now := time.Now()
	pulls := []warehouse.PullRequest{
		{ID: 1, State: "open", CreatedAt: now, Additions: 3, Deletions: 1},   // XS
		{ID: 2, State: "open", CreatedAt: now, Additions: 600, Deletions: 0}, // L
	}

	metrics := ComputePullMetrics(pulls, PullMetricsOptions{}, now)
	require.Equal(t, 1, metrics.BySizeBin[SizeXS])
	require.Equal(t, 1, metrics.BySizeBin[SizeL])
}
