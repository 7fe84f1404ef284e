package derive

import (
	"time"

	"github.com/prabasiva/greport/internal/warehouse"
)

// IssueMetricsOptions narrows IssueMetrics to the HTTP surface's `state`
// and `days` query parameters (§6.1).
type IssueMetricsOptions struct {
	State     string // "", "open", "closed", "all"
	MaxAgeDays int   // 0 means unfiltered; else created_at must be within this many days of now
}

// IssueMetrics is the §4.5 Issue metrics result.
type IssueMetrics struct {
	Total             int             `json:"total"`
	Open              int             `json:"open"`
	Closed            int             `json:"closed"`
	MeanHoursToClose  *float64        `json:"mean_hours_to_close"`
	MedianHoursToClose *float64       `json:"median_hours_to_close"`
	SumHoursToClose   float64         `json:"sum_hours_to_close"`
	ClosedSampleCount int             `json:"closed_sample_count"`
	ByLabel           map[string]int  `json:"by_label"`
	ByAssignee        map[string]int  `json:"by_assignee"`
	ByMilestone       map[string]int  `json:"by_milestone"`
	AgeDistribution   []AgeBucket     `json:"age_distribution"`
	StaleCount        int             `json:"stale_count"`
}

// ComputeIssueMetrics implements §4.5 Issue metrics over issues, which the
// caller has already loaded for one repository (optionally pre-filtered by
// state at the storage layer; opts.State is reapplied here so this stays
// the single source of truth regardless of caller filtering).
func ComputeIssueMetrics(issues []warehouse.Issue, milestoneTitles map[int64]string, opts IssueMetricsOptions, now time.Time, staleThreshold time.Duration) IssueMetrics {
	m := IssueMetrics{
		ByLabel:     map[string]int{},
		ByAssignee:  map[string]int{},
		ByMilestone: map[string]int{},
	}

	var closedHours []float64
	var openAges []float64
	for _, issue := range issues {
		if opts.State != "" && opts.State != "all" && issue.State != opts.State {
			continue
		}
		if opts.MaxAgeDays > 0 && now.Sub(issue.CreatedAt) > time.Duration(opts.MaxAgeDays)*24*time.Hour {
			continue
		}

		m.Total++
		switch issue.State {
		case "open":
			m.Open++
			openAges = append(openAges, ageHours(issue.CreatedAt, now))
			if IsStale(issue, now, staleThreshold) {
				m.StaleCount++
			}
		case "closed":
			m.Closed++
			if issue.ClosedAt != nil {
				hours := issue.ClosedAt.Sub(issue.CreatedAt).Hours()
				if hours < 0 {
					hours = 0
				}
				closedHours = append(closedHours, hours)
			}
		}

		for _, label := range issue.Labels {
			m.ByLabel[label]++
		}
		for _, assignee := range issue.Assignees {
			m.ByAssignee[assignee]++
		}
		if issue.MilestoneID != nil {
			title := milestoneTitles[*issue.MilestoneID]
			if title == "" {
				title = "(unknown)"
			}
			m.ByMilestone[title]++
		}
	}

	m.ClosedSampleCount = len(closedHours)
	for _, h := range closedHours {
		m.SumHoursToClose += h
	}
	if len(closedHours) > 0 {
		meanVal := mean(closedHours)
		medianVal := median(append([]float64(nil), closedHours...))
		m.MeanHoursToClose = &meanVal
		m.MedianHoursToClose = &medianVal
	}

	m.AgeDistribution = ageDistribution(openAges)

	return m
}
