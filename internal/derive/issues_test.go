package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestComputeIssueMetricsTotalsAndClosedTimes(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	closedAt := now.Add(-24 * time.Hour)
	issues := []warehouse.Issue{
		{ID: 1, State: "open", CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-48 * time.Hour), Labels: []string{"bug"}},
		{ID: 2, State: "closed", CreatedAt: now.Add(-72 * time.Hour), ClosedAt: &closedAt, Labels: []string{"bug"}},
	}

	metrics := ComputeIssueMetrics(issues, nil, IssueMetricsOptions{}, now, StaleThresholdDefault)

	assert.Equal(t, 2, metrics.Total)
	assert.Equal(t, 1, metrics.Open)
	assert.Equal(t, 1, metrics.Closed)
	assert.Equal(t, 2, metrics.ByLabel["bug"])
	if assert.NotNil(t, metrics.MeanHoursToClose) {
		assert.InDelta(t, 48, *metrics.MeanHoursToClose, 0.01)
	}
}

func TestComputeIssueMetricsStateFilter(t *testing.T) {
	now := time.Now()
	issues := []warehouse.Issue{
		{ID: 1, State: "open", CreatedAt: now},
		{ID: 2, State: "closed", CreatedAt: now},
	}

	metrics := ComputeIssueMetrics(issues, nil, IssueMetricsOptions{State: "open"}, now, StaleThresholdDefault)
	assert.Equal(t, 1, metrics.Total)
	assert.Equal(t, 1, metrics.Open)
	assert.Equal(t, 0, metrics.Closed)
}

func TestComputeIssueMetricsStaleCount(t *testing.T) {
	now := time.Now()
	stale := warehouse.Issue{ID: 1, State: "open", CreatedAt: now.Add(-60 * 24 * time.Hour), UpdatedAt: now.Add(-45 * 24 * time.Hour)}
	fresh := warehouse.Issue{ID: 2, State: "open", CreatedAt: now.Add(-60 * 24 * time.Hour), UpdatedAt: now.Add(-1 * time.Hour)}

	metrics := ComputeIssueMetrics([]warehouse.Issue{stale, fresh}, nil, IssueMetricsOptions{}, now, StaleThresholdDefault)
	assert.Equal(t, 1, metrics.StaleCount)
}

func TestComputeIssueMetricsAgeDistributionBuckets(t *testing.T) {
	now := time.Now()
	issues := []warehouse.Issue{
		{ID: 1, State: "open", CreatedAt: now.Add(-12 * time.Hour)},  // <1d
		{ID: 2, State: "open", CreatedAt: now.Add(-5 * 24 * time.Hour)}, // 1-7d
		{ID: 3, State: "open", CreatedAt: now.Add(-100 * 24 * time.Hour)}, // 90d+
	}

	metrics := ComputeIssueMetrics(issues, nil, IssueMetricsOptions{}, now, StaleThresholdDefault)
	byLabel := map[string]int{}
	for _, b := range metrics.AgeDistribution {
		byLabel[b.Label] = b.Count
	}
	assert.Equal(t, 1, byLabel["<1d"])
	assert.Equal(t, 1, byLabel["1-7d"])
	assert.Equal(t, 1, byLabel["90d+"])
}
