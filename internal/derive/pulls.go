package derive

import (
	"time"

	"github.com/prabasiva/greport/internal/warehouse"
)

// PullMetricsOptions narrows PullMetrics (§6.1 `state`, `days`).
type PullMetricsOptions struct {
	State      string // "", "open", "closed", "all", "merged"
	MaxAgeDays int
}

// PullMetrics is the §4.5 Pull metrics result, symmetric to IssueMetrics
// except time-to-merge is computed only over merged rows.
type PullMetrics struct {
	Total              int            `json:"total"`
	Open               int            `json:"open"`
	Closed             int            `json:"closed"`
	Merged             int            `json:"merged"`
	Draft              int            `json:"draft"`
	MeanHoursToMerge   *float64       `json:"mean_hours_to_merge"`
	MedianHoursToMerge *float64       `json:"median_hours_to_merge"`
	SumHoursToMerge    float64        `json:"sum_hours_to_merge"`
	MergedSampleCount  int            `json:"merged_sample_count"`
	BySizeBin          map[SizeBin]int `json:"by_size_bin"`
	ByAuthor           map[string]int `json:"by_author"`
	ByBaseBranch       map[string]int `json:"by_base_branch"`
}

// ComputePullMetrics implements §4.5 Pull metrics.
func ComputePullMetrics(pulls []warehouse.PullRequest, opts PullMetricsOptions, now time.Time) PullMetrics {
	m := PullMetrics{
		BySizeBin:    map[SizeBin]int{},
		ByAuthor:     map[string]int{},
		ByBaseBranch: map[string]int{},
	}

	var mergedHours []float64
	for _, pr := range pulls {
		switch opts.State {
		case "", "all":
		case "merged":
			if !pr.Merged {
				continue
			}
		default:
			if pr.State != opts.State {
				continue
			}
		}
		if opts.MaxAgeDays > 0 && now.Sub(pr.CreatedAt) > time.Duration(opts.MaxAgeDays)*24*time.Hour {
			continue
		}

		m.Total++
		switch pr.State {
		case "open":
			m.Open++
			if pr.Draft {
				m.Draft++
			}
		case "closed":
			m.Closed++
		}
		if pr.Merged {
			m.Merged++
			if pr.MergedAt != nil {
				hours := pr.MergedAt.Sub(pr.CreatedAt).Hours()
				if hours < 0 {
					hours = 0
				}
				mergedHours = append(mergedHours, hours)
			}
		}

		m.BySizeBin[sizeBin(pr.Size())]++
		m.ByAuthor[pr.AuthorLogin]++
		m.ByBaseBranch[pr.BaseRef]++
	}

	m.MergedSampleCount = len(mergedHours)
	for _, h := range mergedHours {
		m.SumHoursToMerge += h
	}
	if len(mergedHours) > 0 {
		meanVal := mean(mergedHours)
		medianVal := median(append([]float64(nil), mergedHours...))
		m.MeanHoursToMerge = &meanVal
		m.MedianHoursToMerge = &medianVal
	}

	return m
}
