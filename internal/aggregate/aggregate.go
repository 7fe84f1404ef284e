// Package aggregate composes per-repository derivations (internal/derive)
// into cross-repository totals, implementing §4.6's composition contracts:
// sum-like fields add elementwise, mean-like fields are recomputed from the
// underlying sum/count populations rather than averaged per-repo means,
// distribution fields add bucket-for-bucket, and contributor/velocity
// rollups are recomputed from the union, not from per-repo summaries.
package aggregate

import (
	"sort"

	"github.com/prabasiva/greport/internal/derive"
)

// RepoIssueMetrics pairs one repository's issue metrics with its identity,
// preserving the per-repo breakdown the aggregate response carries
// alongside the cross-repo totals (§4.6).
type RepoIssueMetrics struct {
	Repository string              `json:"repository"`
	Metrics    derive.IssueMetrics `json:"metrics"`
}

// AggregateIssueMetrics implements §4.6 for Issue metrics (§4.5): totals
// and grouped counts add elementwise, mean_hours_to_close is recomputed
// from the summed sum_hours/n populations.
func AggregateIssueMetrics(perRepo []RepoIssueMetrics) (derive.IssueMetrics, []RepoIssueMetrics) {
	var out derive.IssueMetrics
	out.ByLabel = map[string]int{}
	out.ByAssignee = map[string]int{}
	out.ByMilestone = map[string]int{}
	ageBuckets := map[string]derive.AgeBucket{}
	var ageOrder []string

	for _, r := range perRepo {
		m := r.Metrics
		out.Total += m.Total
		out.Open += m.Open
		out.Closed += m.Closed
		out.StaleCount += m.StaleCount
		out.SumHoursToClose += m.SumHoursToClose
		out.ClosedSampleCount += m.ClosedSampleCount
		sumMapInto(out.ByLabel, m.ByLabel)
		sumMapInto(out.ByAssignee, m.ByAssignee)
		sumMapInto(out.ByMilestone, m.ByMilestone)

		for _, b := range m.AgeDistribution {
			existing, ok := ageBuckets[b.Label]
			if !ok {
				ageOrder = append(ageOrder, b.Label)
				existing = derive.AgeBucket{Label: b.Label, MinDays: b.MinDays, MaxDays: b.MaxDays}
			}
			existing.Count += b.Count
			ageBuckets[b.Label] = existing
		}
	}

	for _, label := range ageOrder {
		out.AgeDistribution = append(out.AgeDistribution, ageBuckets[label])
	}

	if out.ClosedSampleCount > 0 {
		meanVal := out.SumHoursToClose / float64(out.ClosedSampleCount)
		out.MeanHoursToClose = &meanVal
	}
	// Median cannot be recomputed from per-repo sum/n alone (it is not a
	// sum-like statistic); the aggregate leaves it unset rather than
	// approximate it from per-repo medians, which §4.6 explicitly forbids
	// for means and which would be even less defensible for medians.

	return out, perRepo
}

// RepoPullMetrics pairs one repository's pull metrics with its identity.
type RepoPullMetrics struct {
	Repository string             `json:"repository"`
	Metrics    derive.PullMetrics `json:"metrics"`
}

// AggregatePullMetrics implements §4.6 for Pull metrics (§4.5).
func AggregatePullMetrics(perRepo []RepoPullMetrics) (derive.PullMetrics, []RepoPullMetrics) {
	var out derive.PullMetrics
	out.BySizeBin = map[derive.SizeBin]int{}
	out.ByAuthor = map[string]int{}
	out.ByBaseBranch = map[string]int{}

	for _, r := range perRepo {
		m := r.Metrics
		out.Total += m.Total
		out.Open += m.Open
		out.Closed += m.Closed
		out.Merged += m.Merged
		out.Draft += m.Draft
		out.SumHoursToMerge += m.SumHoursToMerge
		out.MergedSampleCount += m.MergedSampleCount
		for bin, count := range m.BySizeBin {
			out.BySizeBin[bin] += count
		}
		sumMapInto(out.ByAuthor, m.ByAuthor)
		sumMapInto(out.ByBaseBranch, m.ByBaseBranch)
	}

	if out.MergedSampleCount > 0 {
		meanVal := out.SumHoursToMerge / float64(out.MergedSampleCount)
		out.MeanHoursToMerge = &meanVal
	}

	return out, perRepo
}

// RepoVelocity pairs one repository's velocity series with its identity.
type RepoVelocity struct {
	Repository string               `json:"repository"`
	Metrics    derive.VelocityMetrics `json:"metrics"`
}

// AggregateVelocity implements §4.6's trend rule directly: the aggregate
// trend is recomputed from the summed per-bucket opened/closed counts,
// never from a vote or average of per-repo trends. Per-repo bucket series
// must share the same period and bucket count; callers are expected to
// have invoked derive.ComputeVelocity with identical period/last across
// repos, matching how the HTTP surface drives this (§6.1 shared query
// parameters for one aggregate request).
func AggregateVelocity(perRepo []RepoVelocity) (derive.VelocityMetrics, []RepoVelocity) {
	var out derive.VelocityMetrics
	if len(perRepo) == 0 {
		return out, perRepo
	}

	n := len(perRepo[0].Metrics.Buckets)
	out.Period = perRepo[0].Metrics.Period
	out.Buckets = make([]derive.VelocityBucket, n)
	for i := 0; i < n; i++ {
		out.Buckets[i].BucketStart = perRepo[0].Metrics.Buckets[i].BucketStart
	}

	for _, r := range perRepo {
		for i, b := range r.Metrics.Buckets {
			if i >= n {
				break
			}
			out.Buckets[i].Opened += b.Opened
			out.Buckets[i].Closed += b.Closed
			out.Buckets[i].CumulativeOpen += b.CumulativeOpen
		}
	}

	var sumOpened, sumClosed float64
	for i := range out.Buckets {
		out.Buckets[i].NetChange = out.Buckets[i].Opened - out.Buckets[i].Closed
		sumOpened += float64(out.Buckets[i].Opened)
		sumClosed += float64(out.Buckets[i].Closed)
	}
	if n > 0 {
		out.AvgOpened = sumOpened / float64(n)
		out.AvgClosed = sumClosed / float64(n)
	}
	out.Trend = derive.ClassifyTrend(out.Buckets)

	return out, perRepo
}

// AggregateContributors implements §4.6's cross-repo contributor rollup:
// collapse by login, summing counts and unioning the repository set each
// login is seen in.
type ContributorAcrossRepos struct {
	Login         string   `json:"login"`
	IssuesCreated int      `json:"issues_created"`
	PRsCreated    int      `json:"prs_created"`
	PRsMerged     int      `json:"prs_merged"`
	Repositories  []string `json:"repositories"`
}

func AggregateContributors(perRepo map[string][]derive.ContributorStats, sortBy derive.ContributorSortBy, limit int) []ContributorAcrossRepos {
	byLogin := map[string]*ContributorAcrossRepos{}
	reposSeen := map[string]map[string]bool{}
	var order []string

	for repo, stats := range perRepo {
		for _, s := range stats {
			c, ok := byLogin[s.Login]
			if !ok {
				c = &ContributorAcrossRepos{Login: s.Login}
				byLogin[s.Login] = c
				reposSeen[s.Login] = map[string]bool{}
				order = append(order, s.Login)
			}
			c.IssuesCreated += s.IssuesCreated
			c.PRsCreated += s.PRsCreated
			c.PRsMerged += s.PRsMerged
			if !reposSeen[s.Login][repo] {
				reposSeen[s.Login][repo] = true
				c.Repositories = append(c.Repositories, repo)
			}
		}
	}

	out := make([]ContributorAcrossRepos, 0, len(order))
	for _, login := range order {
		c := *byLogin[login]
		sort.Strings(c.Repositories)
		out = append(out, c)
	}

	switch sortBy {
	case derive.SortByPRs:
		sort.Slice(out, func(i, j int) bool {
			if out[i].PRsMerged != out[j].PRsMerged {
				return out[i].PRsMerged > out[j].PRsMerged
			}
			return out[i].Login < out[j].Login
		})
	default:
		sort.Slice(out, func(i, j int) bool {
			if out[i].IssuesCreated != out[j].IssuesCreated {
				return out[i].IssuesCreated > out[j].IssuesCreated
			}
			return out[i].Login < out[j].Login
		})
	}

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func sumMapInto(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}
