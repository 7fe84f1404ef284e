package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/prabasiva/greport/internal/derive"
	"github.com/prabasiva/greport/internal/warehouse"
)

// contributors implements
// `GET .../contributors?sort_by=…&limit=…` (§6.1).
func (s *server) contributors(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	issues, pulls, err := s.issuesAndPulls(r.Context(), repo.ID)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	sortBy := querySortBy(r)
	limit := queryInt(r, "limit", 0)
	writeData(w, http.StatusOK, derive.ComputeContributors(issues, pulls, sortBy, limit))
}

func (s *server) issuesAndPulls(ctx context.Context, repositoryID int64) ([]warehouse.Issue, []warehouse.PullRequest, error) {
	issues, err := s.deps.Store.ListIssues(ctx, repositoryID, warehouse.IssueFilter{})
	if err != nil {
		return nil, nil, err
	}
	pulls, err := s.deps.Store.ListPullRequests(ctx, repositoryID, warehouse.PullFilter{})
	if err != nil {
		return nil, nil, err
	}
	return issues, pulls, nil
}

// sla implements
// `GET .../sla?response_hours=…&resolution_hours=…` (§6.1).
func (s *server) sla(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	cfg := s.deps.SLADefaults
	if v := queryFloat(r, "response_hours", -1); v >= 0 {
		cfg.ResponseTimeHours = v
	}
	if v := queryFloat(r, "resolution_hours", -1); v >= 0 {
		cfg.ResolutionTimeHours = v
	}

	issues, err := s.deps.Store.ListIssues(r.Context(), repo.ID, warehouse.IssueFilter{State: "open"})
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	events, err := s.deps.Store.ListIssueEventsForRepo(r.Context(), repo.ID, time.Time{})
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	eventsByIssue := map[int64][]warehouse.IssueEvent{}
	for _, e := range events {
		eventsByIssue[e.IssueID] = append(eventsByIssue[e.IssueID], e)
	}
	writeData(w, http.StatusOK, derive.ComputeSLA(issues, eventsByIssue, cfg, s.deps.Now()))
}

// calendar implements
// `GET .../calendar?start_date=…&end_date=…&types=…` (§6.1).
func (s *server) calendar(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	now := s.deps.Now()
	start, err := queryDate(r, "start_date", now.AddDate(0, -1, 0))
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	end, err := queryDate(r, "end_date", now)
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	types, err := queryCalendarTypes(r)
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}

	in, err := s.calendarInput(r.Context(), repo)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	writeData(w, http.StatusOK, derive.ComputeCalendar(in, start, end, types))
}

func (s *server) calendarInput(ctx context.Context, repo warehouse.Repository) (derive.CalendarInput, error) {
	issues, pulls, err := s.issuesAndPulls(ctx, repo.ID)
	if err != nil {
		return derive.CalendarInput{}, err
	}
	releases, err := s.deps.Store.ListReleases(ctx, repo.ID)
	if err != nil {
		return derive.CalendarInput{}, err
	}
	milestones, err := s.deps.Store.ListMilestones(ctx, repo.ID)
	if err != nil {
		return derive.CalendarInput{}, err
	}
	return derive.CalendarInput{
		RepositoryFullName: repo.FullName,
		Issues:             issues,
		Pulls:              pulls,
		Releases:           releases,
		Milestones:         milestones,
	}, nil
}

// releasePlan implements
// `GET .../release-plan?months_back=…&months_forward=…` (§6.1). The
// Derivation Layer's opts only carry months_back (§4.5 ReleasePlanOptions);
// months_forward drops upcoming milestones due further out than that many
// months from now (overdue milestones are kept), applied here since it is a
// query-shaping concern, not a derivation one.
func (s *server) releasePlan(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	opts := derive.DefaultReleasePlanOptions()
	if months := queryInt(r, "months_back", 0); months > 0 {
		opts.MonthsBack = months
	}

	milestones, err := s.deps.Store.ListMilestones(r.Context(), repo.ID)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	releases, err := s.deps.Store.ListReleases(r.Context(), repo.ID)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	issuesByMilestone := map[int64][]warehouse.Issue{}
	for _, m := range milestones {
		issues, err := s.milestoneIssues(r.Context(), repo.ID, m.ID)
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		issuesByMilestone[m.ID] = issues
	}
	plan := derive.ComputeReleasePlan(milestones, issuesByMilestone, releases, s.deps.Now(), opts)
	if months := queryInt(r, "months_forward", 0); months > 0 {
		plan = filterUpcomingWithinMonths(plan, s.deps.Now(), months)
	}
	writeData(w, http.StatusOK, plan)
}

// filterUpcomingWithinMonths applies months_forward (§6.1), dropping
// upcoming milestones (and their timeline entries) due further out than the
// requested horizon. ComputeReleasePlan itself has no forward cutoff — every
// open milestone with a due date is "upcoming" — so this narrows the result
// after the fact, the same query-shaping-not-derivation split months_back's
// comment above already documents.
func filterUpcomingWithinMonths(plan derive.ReleasePlan, now time.Time, months int) derive.ReleasePlan {
	cutoff := now.AddDate(0, months, 0)

	kept := plan.Upcoming[:0:0]
	for _, m := range plan.Upcoming {
		if !m.DueOn.After(cutoff) {
			kept = append(kept, m)
		}
	}
	plan.Upcoming = kept

	timeline := plan.Timeline[:0:0]
	for _, t := range plan.Timeline {
		if t.Kind == "milestone" && t.Date.After(cutoff) {
			continue
		}
		timeline = append(timeline, t)
	}
	plan.Timeline = timeline

	return plan
}
