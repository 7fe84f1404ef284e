package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestComputeBurndownPointsSpanMilestoneWindow(t *testing.T) {
	now := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)
	milestone := warehouse.Milestone{Title: "v1.0", CreatedAt: start, DueOn: &due}

	closedAt := time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)
	issues := []warehouse.Issue{
		{ID: 1, CreatedAt: start, ClosedAt: &closedAt},
		{ID: 2, CreatedAt: start},
	}

	report := ComputeBurndown(milestone, issues, now, DefaultBurndownOptions())
	require.Len(t, report.Points, 5) // Jul 1 - Jul 5 inclusive
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Points[0].Remaining)
	// after Jul 3, issue 1 is closed
	assert.Equal(t, 1, report.Points[3].Remaining)
}

func TestComputeBurndownProjectedCompletionNilWhenSlopeNonNegative(t *testing.T) {
	now := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	milestone := warehouse.Milestone{Title: "v1.0", CreatedAt: start, DueOn: &due}

	// no issues ever close, remaining stays flat -> slope 0 -> nil projection
	issues := []warehouse.Issue{{ID: 1, CreatedAt: start}}

	report := ComputeBurndown(milestone, issues, now, DefaultBurndownOptions())
	assert.Nil(t, report.ProjectedCompletion)
}

func TestComputeBurndownProjectsCompletionFromDecreasingTrend(t *testing.T) {
	now := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	milestone := warehouse.Milestone{Title: "v1.0", CreatedAt: start, DueOn: &due}

	var issues []warehouse.Issue
	for i := 0; i < 10; i++ {
		closedAt := start.AddDate(0, 0, i)
		issues = append(issues, warehouse.Issue{ID: int64(i + 1), CreatedAt: start, ClosedAt: &closedAt})
	}

	report := ComputeBurndown(milestone, issues, now, DefaultBurndownOptions())
	assert.NotNil(t, report.ProjectedCompletion)
}
