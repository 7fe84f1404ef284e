package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestComputeReleasePlanClassifiesOverdueMilestone(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	due := now.Add(-48 * time.Hour)
	milestone := warehouse.Milestone{ID: 1, Title: "v1.0", State: "open", DueOn: &due, OpenIssues: 2, ClosedIssues: 8}

	plan := ComputeReleasePlan([]warehouse.Milestone{milestone}, nil, nil, now, DefaultReleasePlanOptions())
	require.Len(t, plan.Upcoming, 1)
	assert.Equal(t, StatusOverdue, plan.Upcoming[0].Status)
}

func TestComputeReleasePlanAtRiskFromBlockers(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 30)
	milestone := warehouse.Milestone{ID: 1, Title: "v1.0", State: "open", DueOn: &due, OpenIssues: 1, ClosedIssues: 9}
	issuesByMilestone := map[int64][]warehouse.Issue{
		1: {{ID: 1, State: "open", Labels: []string{"blocker"}}},
	}

	plan := ComputeReleasePlan([]warehouse.Milestone{milestone}, issuesByMilestone, nil, now, DefaultReleasePlanOptions())
	require.Len(t, plan.Upcoming, 1)
	assert.Equal(t, StatusAtRisk, plan.Upcoming[0].Status)
	assert.Equal(t, 1, plan.Upcoming[0].BlockerCount)
}

func TestComputeReleasePlanOnTrack(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 30)
	milestone := warehouse.Milestone{ID: 1, Title: "v1.0", State: "open", DueOn: &due, OpenIssues: 1, ClosedIssues: 9}

	plan := ComputeReleasePlan([]warehouse.Milestone{milestone}, nil, nil, now, DefaultReleasePlanOptions())
	require.Len(t, plan.Upcoming, 1)
	assert.Equal(t, StatusOnTrack, plan.Upcoming[0].Status)
}

func TestComputeReleasePlanRecentReleasesWithinMonthsBack(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -10)
	old := now.AddDate(0, -6, 0)
	releases := []warehouse.Release{
		{Tag: "v1.1", Name: "v1.1", PublishedAt: &recent, Prerelease: true},
		{Tag: "v1.0", Name: "v1.0", PublishedAt: &old},
	}

	plan := ComputeReleasePlan(nil, nil, releases, now, DefaultReleasePlanOptions())
	require.Len(t, plan.Recent, 1)
	assert.Equal(t, "v1.1", plan.Recent[0].Tag)
	assert.Equal(t, ReleasePrerelease, plan.Recent[0].Stage)
}

func TestComputeReleasePlanTimelineSortedByDate(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	dueLater := now.AddDate(0, 0, 20)
	published := now.AddDate(0, 0, -5)
	milestone := warehouse.Milestone{ID: 1, Title: "v1.0", State: "open", DueOn: &dueLater}
	release := warehouse.Release{Tag: "v0.9", Name: "v0.9", PublishedAt: &published}

	plan := ComputeReleasePlan([]warehouse.Milestone{milestone}, nil, []warehouse.Release{release}, now, DefaultReleasePlanOptions())
	require.Len(t, plan.Timeline, 2)
	assert.Equal(t, "release", plan.Timeline[0].Kind)
	assert.Equal(t, "milestone", plan.Timeline[1].Kind)
}
