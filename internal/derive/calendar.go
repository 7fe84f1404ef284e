package derive

import (
	"sort"
	"strconv"
	"time"

	"github.com/prabasiva/greport/internal/warehouse"
)

// CalendarEventType names one of the §4.5 Calendar event kinds.
type CalendarEventType string

const (
	EventIssueCreated    CalendarEventType = "issue_created"
	EventIssueClosed     CalendarEventType = "issue_closed"
	EventPRMerged        CalendarEventType = "pr_merged"
	EventReleasePublished CalendarEventType = "release_published"
	EventMilestoneDue    CalendarEventType = "milestone_due"
	EventMilestoneClosed CalendarEventType = "milestone_closed"
)

// CalendarEvent is one row of the §4.5 Calendar result.
type CalendarEvent struct {
	ID         string            `json:"id"`
	EventType  CalendarEventType `json:"event_type"`
	Title      string            `json:"title"`
	Date       time.Time         `json:"date"`
	Number     *int              `json:"number,omitempty"`
	State      string            `json:"state,omitempty"`
	Repository string            `json:"repository"`
	Labels     []string          `json:"labels,omitempty"`
	Milestone  string            `json:"milestone,omitempty"`
	URL        string            `json:"url,omitempty"`
}

// CalendarData is the §4.5 Calendar result for a date window.
type CalendarData struct {
	Events  []CalendarEvent         `json:"events"`
	Total   int                     `json:"total"`
	ByType  map[CalendarEventType]int `json:"by_type"`
}

// CalendarInput bundles the rows ComputeCalendar draws events from.
type CalendarInput struct {
	RepositoryFullName string
	Issues             []warehouse.Issue
	Pulls              []warehouse.PullRequest
	Releases           []warehouse.Release
	Milestones         []warehouse.Milestone
}

// ComputeCalendar implements §4.5 Calendar: every event of the requested
// types whose date falls in [start, end], inclusive.
func ComputeCalendar(in CalendarInput, start, end time.Time, types map[CalendarEventType]bool) CalendarData {
	windowEnd := endOfDay(end)
	inWindow := func(t time.Time) bool { return !t.Before(start) && !t.After(windowEnd) }
	wantType := func(t CalendarEventType) bool { return len(types) == 0 || types[t] }

	var events []CalendarEvent

	if wantType(EventIssueCreated) {
		for _, issue := range in.Issues {
			if inWindow(issue.CreatedAt) {
				n := issue.Number
				events = append(events, CalendarEvent{
					ID: "issue_created:" + in.RepositoryFullName + "#" + strconv.Itoa(issue.Number), EventType: EventIssueCreated,
					Title: issue.Title, Date: issue.CreatedAt, Number: &n, State: issue.State,
					Repository: in.RepositoryFullName, Labels: issue.Labels,
				})
			}
		}
	}
	if wantType(EventIssueClosed) {
		for _, issue := range in.Issues {
			if issue.ClosedAt != nil && inWindow(*issue.ClosedAt) {
				n := issue.Number
				events = append(events, CalendarEvent{
					ID: "issue_closed:" + in.RepositoryFullName + "#" + strconv.Itoa(issue.Number), EventType: EventIssueClosed,
					Title: issue.Title, Date: *issue.ClosedAt, Number: &n, State: issue.State,
					Repository: in.RepositoryFullName, Labels: issue.Labels,
				})
			}
		}
	}
	if wantType(EventPRMerged) {
		for _, pr := range in.Pulls {
			if pr.Merged && pr.MergedAt != nil && inWindow(*pr.MergedAt) {
				n := pr.Number
				events = append(events, CalendarEvent{
					ID: "pr_merged:" + in.RepositoryFullName + "#" + strconv.Itoa(pr.Number), EventType: EventPRMerged,
					Title: pr.Title, Date: *pr.MergedAt, Number: &n, State: pr.State,
					Repository: in.RepositoryFullName, Labels: pr.Labels,
				})
			}
		}
	}
	if wantType(EventReleasePublished) {
		for _, r := range in.Releases {
			if r.PublishedAt != nil && inWindow(*r.PublishedAt) {
				events = append(events, CalendarEvent{
					ID: "release_published:" + in.RepositoryFullName + ":" + r.Tag, EventType: EventReleasePublished,
					Title: r.Name, Date: *r.PublishedAt, Repository: in.RepositoryFullName,
				})
			}
		}
	}
	if wantType(EventMilestoneDue) {
		for _, m := range in.Milestones {
			if m.DueOn != nil && inWindow(*m.DueOn) {
				events = append(events, CalendarEvent{
					ID: "milestone_due:" + in.RepositoryFullName + ":" + m.Title, EventType: EventMilestoneDue,
					Title: m.Title, Date: *m.DueOn, State: m.State, Repository: in.RepositoryFullName,
				})
			}
		}
	}
	if wantType(EventMilestoneClosed) {
		for _, m := range in.Milestones {
			if m.ClosedAt != nil && inWindow(*m.ClosedAt) {
				events = append(events, CalendarEvent{
					ID: "milestone_closed:" + in.RepositoryFullName + ":" + m.Title, EventType: EventMilestoneClosed,
					Title: m.Title, Date: *m.ClosedAt, State: m.State, Repository: in.RepositoryFullName,
				})
			}
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })

	byType := map[CalendarEventType]int{}
	for _, e := range events {
		byType[e.EventType]++
	}

	return CalendarData{Events: events, Total: len(events), ByType: byType}
}
