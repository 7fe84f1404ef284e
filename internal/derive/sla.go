package derive

import (
	"math"
	"sort"
	"time"

	"github.com/prabasiva/greport/internal/warehouse"
)

// SLAConfig supplies the default and per-priority-label response/resolution
// windows (§4.5 SLA, §6.2 `sla.priority.<label>`).
type SLAConfig struct {
	ResponseTimeHours   float64
	ResolutionTimeHours float64
	PriorityOverrides   map[string]PriorityWindow // keyed by label
}

// PriorityWindow overrides the default windows for issues carrying a
// matching priority label.
type PriorityWindow struct {
	ResponseTimeHours   float64
	ResolutionTimeHours float64
}

// DefaultSLAConfig matches §4.5's stated defaults (24h response, 168h
// resolution).
func DefaultSLAConfig() SLAConfig {
	return SLAConfig{ResponseTimeHours: 24, ResolutionTimeHours: 168}
}

// windowsFor resolves the response/resolution windows for an issue,
// applying the first matching priority label override, if any.
func (c SLAConfig) windowsFor(issue warehouse.Issue) (response, resolution float64) {
	response, resolution = c.ResponseTimeHours, c.ResolutionTimeHours
	for _, label := range issue.Labels {
		if override, ok := c.PriorityOverrides[label]; ok {
			return override.ResponseTimeHours, override.ResolutionTimeHours
		}
	}
	return response, resolution
}

// SLAStatusKind is the classification an open issue falls into (§4.5 SLA).
type SLAStatusKind string

const (
	SLAOk                 SLAStatusKind = "ok"
	SLAAtRisk             SLAStatusKind = "at_risk"
	SLAResponseBreached   SLAStatusKind = "response_breached"
	SLAResolutionBreached SLAStatusKind = "resolution_breached"
)

// SLAIssueStatus is one open issue's SLA classification.
type SLAIssueStatus struct {
	Issue          warehouse.Issue `json:"-"`
	IssueNumber    int             `json:"issue_number"`
	AgeHours       float64         `json:"age_hours"`
	Status         SLAStatusKind   `json:"status"`
	HoursOverdue   *float64        `json:"hours_overdue,omitempty"`
	PercentElapsed *float64        `json:"percent_elapsed,omitempty"`
	ResponseMet    bool            `json:"response_met"`
}

// SLAReport is the §4.5 SLA summary for a repository's open issues.
type SLAReport struct {
	TotalOpen      int              `json:"total_open"`
	WithinSLA      int              `json:"within_sla"`
	ComplianceRate float64          `json:"compliance_rate"`
	Breaching      []SLAIssueStatus `json:"breaching"`
	AtRisk         []SLAIssueStatus `json:"at_risk"`
}

// hasResponse implements §9 Open Question 1's resolution of "response":
// the first issue event of type commented|assigned|labeled authored by
// someone other than the issue author.
func hasResponse(issue warehouse.Issue, events []warehouse.IssueEvent) bool {
	for _, e := range events {
		switch e.EventType {
		case "commented", "assigned", "labeled":
			if e.ActorLogin != "" && e.ActorLogin != issue.AuthorLogin {
				return true
			}
		}
	}
	return false
}

// ComputeSLA implements §4.5 SLA. eventsByIssue maps issue ID to its
// timeline (oldest first), used to resolve the response event.
func ComputeSLA(issues []warehouse.Issue, eventsByIssue map[int64][]warehouse.IssueEvent, cfg SLAConfig, now time.Time) SLAReport {
	var report SLAReport

	for _, issue := range issues {
		if issue.State != "open" {
			continue
		}
		report.TotalOpen++

		responseWindow, resolutionWindow := cfg.windowsFor(issue)
		ageH := ageHours(issue.CreatedAt, now)
		responseMet := hasResponse(issue, eventsByIssue[issue.ID])

		status := SLAIssueStatus{
			Issue:       issue,
			IssueNumber: issue.Number,
			AgeHours:    ageH,
			ResponseMet: responseMet,
		}

		switch {
		case ageH > resolutionWindow:
			overdue := ageH - resolutionWindow
			status.Status = SLAResolutionBreached
			status.HoursOverdue = &overdue
			report.Breaching = append(report.Breaching, status)
		case !responseMet && ageH > responseWindow:
			overdue := ageH - responseWindow
			status.Status = SLAResponseBreached
			status.HoursOverdue = &overdue
			report.Breaching = append(report.Breaching, status)
		case resolutionWindow > 0 && ageH/resolutionWindow >= 0.8:
			percent := math.Round((ageH/resolutionWindow*100)*10) / 10
			status.Status = SLAAtRisk
			status.PercentElapsed = &percent
			report.AtRisk = append(report.AtRisk, status)
		default:
			status.Status = SLAOk
			report.WithinSLA++
		}
	}

	if report.TotalOpen > 0 {
		report.ComplianceRate = float64(report.WithinSLA) / float64(report.TotalOpen) * 100
	}

	sort.Slice(report.Breaching, func(i, j int) bool { return report.Breaching[i].AgeHours > report.Breaching[j].AgeHours })
	sort.Slice(report.AtRisk, func(i, j int) bool { return report.AtRisk[i].AgeHours > report.AtRisk[j].AgeHours })

	return report
}
