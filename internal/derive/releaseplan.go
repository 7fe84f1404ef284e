package derive

import (
	"sort"
	"time"

	"github.com/prabasiva/greport/internal/warehouse"
)

// ReleasePlanOptions carries §9 Open Question 3's resolved defaults as
// overridable constructor parameters.
type ReleasePlanOptions struct {
	MonthsBack    int
	BlockerLabels map[string]bool
}

// DefaultReleasePlanOptions matches §4.5's stated defaults (3 months back,
// blocker|blocked labels).
func DefaultReleasePlanOptions() ReleasePlanOptions {
	return ReleasePlanOptions{
		MonthsBack:    3,
		BlockerLabels: map[string]bool{"blocker": true, "blocked": true},
	}
}

// MilestoneStatus is the §4.5 Release plan status for an upcoming milestone.
type MilestoneStatus string

const (
	StatusOnTrack MilestoneStatus = "on_track"
	StatusAtRisk  MilestoneStatus = "at_risk"
	StatusOverdue MilestoneStatus = "overdue"
)

// UpcomingMilestone is one row of the §4.5 Release plan's upcoming list.
type UpcomingMilestone struct {
	Title           string          `json:"title"`
	DueOn           time.Time       `json:"due_on"`
	ProgressPercent float64         `json:"progress_percent"`
	DaysRemaining   int             `json:"days_remaining"`
	BlockerCount    int             `json:"blocker_count"`
	Status          MilestoneStatus `json:"status"`
}

// ReleaseStage classifies a recent release (§4.5).
type ReleaseStage string

const (
	ReleaseDraft      ReleaseStage = "draft"
	ReleasePrerelease ReleaseStage = "prerelease"
	ReleaseStable     ReleaseStage = "stable"
)

// RecentRelease is one row of the §4.5 Release plan's recent-releases list.
type RecentRelease struct {
	Tag         string       `json:"tag"`
	Name        string       `json:"name"`
	PublishedAt time.Time    `json:"published_at"`
	Stage       ReleaseStage `json:"stage"`
}

// TimelineEntry is one row of the §4.5 Release plan's unified timeline.
type TimelineEntry struct {
	Kind     string    `json:"kind"` // "milestone" | "release"
	Label    string    `json:"label"`
	Date     time.Time `json:"date"`
	IsFuture bool      `json:"is_future"`
}

// ReleasePlan is the §4.5 Release plan result.
type ReleasePlan struct {
	Upcoming []UpcomingMilestone `json:"upcoming"`
	Recent   []RecentRelease     `json:"recent_releases"`
	Timeline []TimelineEntry     `json:"timeline"`
}

// ComputeReleasePlan implements §4.5 Release plan. issuesByMilestone maps
// a milestone's ID to its linked issues, used for blocker_count.
func ComputeReleasePlan(milestones []warehouse.Milestone, issuesByMilestone map[int64][]warehouse.Issue, releases []warehouse.Release, now time.Time, opts ReleasePlanOptions) ReleasePlan {
	if opts.MonthsBack <= 0 {
		opts.MonthsBack = 3
	}
	if opts.BlockerLabels == nil {
		opts.BlockerLabels = map[string]bool{"blocker": true, "blocked": true}
	}

	var plan ReleasePlan

	for _, m := range milestones {
		if m.DueOn == nil || m.State != "open" {
			continue
		}
		denom := m.OpenIssues + m.ClosedIssues
		progress := 0.0
		if denom > 0 {
			progress = float64(m.ClosedIssues) / float64(denom) * 100
		}
		daysRemaining := daysBetween(now, *m.DueOn)

		blockerCount := 0
		for _, issue := range issuesByMilestone[m.ID] {
			if issue.State != "open" {
				continue
			}
			for _, label := range issue.Labels {
				if opts.BlockerLabels[label] {
					blockerCount++
					break
				}
			}
		}

		status := StatusOnTrack
		switch {
		case daysRemaining < 0:
			status = StatusOverdue
		case daysRemaining < 7 && progress < 75:
			status = StatusAtRisk
		case blockerCount > 0:
			status = StatusAtRisk
		}

		plan.Upcoming = append(plan.Upcoming, UpcomingMilestone{
			Title: m.Title, DueOn: *m.DueOn, ProgressPercent: progress,
			DaysRemaining: daysRemaining, BlockerCount: blockerCount, Status: status,
		})
		plan.Timeline = append(plan.Timeline, TimelineEntry{
			Kind: "milestone", Label: m.Title, Date: *m.DueOn, IsFuture: m.DueOn.After(now),
		})
	}

	cutoff := now.AddDate(0, -opts.MonthsBack, 0)
	for _, r := range releases {
		if r.PublishedAt == nil || r.PublishedAt.Before(cutoff) {
			continue
		}
		stage := ReleaseStable
		switch {
		case r.Draft:
			stage = ReleaseDraft
		case r.Prerelease:
			stage = ReleasePrerelease
		}
		plan.Recent = append(plan.Recent, RecentRelease{Tag: r.Tag, Name: r.Name, PublishedAt: *r.PublishedAt, Stage: stage})
		plan.Timeline = append(plan.Timeline, TimelineEntry{
			Kind: "release", Label: r.Tag, Date: *r.PublishedAt, IsFuture: r.PublishedAt.After(now),
		})
	}

	sort.Slice(plan.Timeline, func(i, j int) bool { return plan.Timeline[i].Date.Before(plan.Timeline[j].Date) })

	return plan
}
