package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/derive"
)

func TestAggregateIssueMetricsSumsAndRecomputesMean(t *testing.T) {
	perRepo := []RepoIssueMetrics{
		{Repository: "acme/a", Metrics: derive.IssueMetrics{
			Total: 10, Open: 4, Closed: 6, SumHoursToClose: 60, ClosedSampleCount: 6,
			ByLabel: map[string]int{"bug": 3}, ByAssignee: map[string]int{}, ByMilestone: map[string]int{},
		}},
		{Repository: "acme/b", Metrics: derive.IssueMetrics{
			Total: 5, Open: 1, Closed: 4, SumHoursToClose: 160, ClosedSampleCount: 4,
			ByLabel: map[string]int{"bug": 2, "feature": 1}, ByAssignee: map[string]int{}, ByMilestone: map[string]int{},
		}},
	}

	agg, breakdown := AggregateIssueMetrics(perRepo)
	assert.Equal(t, 15, agg.Total)
	assert.Equal(t, 5, agg.Open)
	assert.Equal(t, 10, agg.Closed)
	assert.Equal(t, 5, agg.ByLabel["bug"])
	assert.Equal(t, 1, agg.ByLabel["feature"])
	require.NotNil(t, agg.MeanHoursToClose)
	// (60+160)/(6+4) = 22, not mean(10, 40) = 25, confirming sum/n not mean-of-means
	assert.InDelta(t, 22, *agg.MeanHoursToClose, 0.001)
	assert.Len(t, breakdown, 2)
}

func TestAggregateIssueMetricsSumsAgeBuckets(t *testing.T) {
	maxDays := 7.0
	perRepo := []RepoIssueMetrics{
		{Repository: "acme/a", Metrics: derive.IssueMetrics{
			AgeDistribution: []derive.AgeBucket{{Label: "<1d", MinDays: 0, MaxDays: &maxDays, Count: 2}},
			ByLabel: map[string]int{}, ByAssignee: map[string]int{}, ByMilestone: map[string]int{},
		}},
		{Repository: "acme/b", Metrics: derive.IssueMetrics{
			AgeDistribution: []derive.AgeBucket{{Label: "<1d", MinDays: 0, MaxDays: &maxDays, Count: 3}},
			ByLabel: map[string]int{}, ByAssignee: map[string]int{}, ByMilestone: map[string]int{},
		}},
	}

	agg, _ := AggregateIssueMetrics(perRepo)
	require.Len(t, agg.AgeDistribution, 1)
	assert.Equal(t, 5, agg.AgeDistribution[0].Count)
}

func TestAggregatePullMetricsRecomputesMeanFromSums(t *testing.T) {
	perRepo := []RepoPullMetrics{
		{Repository: "acme/a", Metrics: derive.PullMetrics{
			Total: 3, Merged: 2, SumHoursToMerge: 20, MergedSampleCount: 2,
			BySizeBin: map[derive.SizeBin]int{derive.SizeXS: 3}, ByAuthor: map[string]int{"alice": 3}, ByBaseBranch: map[string]int{"main": 3},
		}},
		{Repository: "acme/b", Metrics: derive.PullMetrics{
			Total: 1, Merged: 1, SumHoursToMerge: 5, MergedSampleCount: 1,
			BySizeBin: map[derive.SizeBin]int{derive.SizeXS: 1}, ByAuthor: map[string]int{"bob": 1}, ByBaseBranch: map[string]int{"main": 1},
		}},
	}

	agg, _ := AggregatePullMetrics(perRepo)
	assert.Equal(t, 4, agg.Total)
	assert.Equal(t, 3, agg.Merged)
	require.NotNil(t, agg.MeanHoursToMerge)
	assert.InDelta(t, 25.0/3.0, *agg.MeanHoursToMerge, 0.001)
	assert.Equal(t, 4, agg.BySizeBin[derive.SizeXS])
	assert.Equal(t, 4, agg.ByBaseBranch["main"])
}

func TestAggregateVelocityRecomputesTrendFromSummedBuckets(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	mkBuckets := func(opened []int) []derive.VelocityBucket {
		var bs []derive.VelocityBucket
		for i, o := range opened {
			bs = append(bs, derive.VelocityBucket{BucketStart: now.AddDate(0, 0, i), Opened: o})
		}
		return bs
	}

	perRepo := []RepoVelocity{
		{Repository: "acme/a", Metrics: derive.VelocityMetrics{Period: derive.PeriodDay, Buckets: mkBuckets([]int{1, 1, 1, 5, 5, 5})}},
		{Repository: "acme/b", Metrics: derive.VelocityMetrics{Period: derive.PeriodDay, Buckets: mkBuckets([]int{0, 0, 0, 5, 5, 5})}},
	}

	agg, breakdown := AggregateVelocity(perRepo)
	require.Len(t, agg.Buckets, 6)
	assert.Equal(t, 1, agg.Buckets[0].Opened)
	assert.Equal(t, 10, agg.Buckets[5].Opened)
	assert.Equal(t, derive.TrendIncreasing, agg.Trend)
	assert.Len(t, breakdown, 2)
}

func TestAggregateContributorsCollapsesByLoginAcrossRepos(t *testing.T) {
	perRepo := map[string][]derive.ContributorStats{
		"acme/a": {{Login: "alice", IssuesCreated: 2, PRsCreated: 1, PRsMerged: 1}},
		"acme/b": {{Login: "alice", IssuesCreated: 3, PRsCreated: 0, PRsMerged: 0}, {Login: "bob", IssuesCreated: 1}},
	}

	out := AggregateContributors(perRepo, derive.SortByIssues, 0)
	require.Len(t, out, 2)
	assert.Equal(t, "alice", out[0].Login)
	assert.Equal(t, 5, out[0].IssuesCreated)
	assert.Equal(t, 1, out[0].PRsMerged)
	assert.ElementsMatch(t, []string{"acme/a", "acme/b"}, out[0].Repositories)
}

func TestAggregateContributorsRespectsLimit(t *testing.T) {
	perRepo := map[string][]derive.ContributorStats{
		"acme/a": {{Login: "alice", IssuesCreated: 5}, {Login: "bob", IssuesCreated: 3}, {Login: "carol", IssuesCreated: 1}},
	}

	out := AggregateContributors(perRepo, derive.SortByIssues, 2)
	assert.Len(t, out, 2)
}
