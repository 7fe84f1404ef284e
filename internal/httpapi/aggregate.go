package httpapi

import (
	"context"
	"net/http"
	"sort"

	"github.com/prabasiva/greport/internal/aggregate"
	"github.com/prabasiva/greport/internal/derive"
	"github.com/prabasiva/greport/internal/warehouse"
)

// trackedRepos is the shared "every tracked repository" load every
// `/api/v1/aggregate/*` handler starts from (§4.6: the Aggregator composes
// over "every tracked repository", not a caller-chosen subset).
func (s *server) trackedRepos(ctx context.Context) ([]warehouse.Repository, error) {
	return s.deps.Store.ListRepositories(ctx)
}

// aggregateIssues implements `GET /api/v1/aggregate/issues` (§6.1): every
// tracked repository's issues, concatenated and paginated.
func (s *server) aggregateIssues(w http.ResponseWriter, r *http.Request) {
	repos, err := s.trackedRepos(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	state, err := queryState(r, "")
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	var all []warehouse.Issue
	for _, repo := range repos {
		issues, err := s.deps.Store.ListIssues(r.Context(), repo.ID, warehouse.IssueFilter{State: state})
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		all = append(all, issues...)
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(all, page, perPage)
	writeList(w, items, meta)
}

// aggregatePulls implements `GET /api/v1/aggregate/pulls` (§6.1), symmetric
// to aggregateIssues.
func (s *server) aggregatePulls(w http.ResponseWriter, r *http.Request) {
	repos, err := s.trackedRepos(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	state, err := queryState(r, "")
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	var all []warehouse.PullRequest
	for _, repo := range repos {
		pulls, err := s.deps.Store.ListPullRequests(r.Context(), repo.ID, warehouse.PullFilter{State: state})
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		all = append(all, pulls...)
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(all, page, perPage)
	writeList(w, items, meta)
}

// aggregateIssueMetrics implements `GET .../aggregate/issues/metrics`
// (§6.1): per-repo IssueMetrics composed per §4.6's sum/recompute rules.
func (s *server) aggregateIssueMetrics(w http.ResponseWriter, r *http.Request) {
	repos, err := s.trackedRepos(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	opts := derive.IssueMetricsOptions{MaxAgeDays: queryInt(r, "days", 0)}
	now := s.deps.Now()

	var perRepo []aggregate.RepoIssueMetrics
	for _, repo := range repos {
		issues, err := s.deps.Store.ListIssues(r.Context(), repo.ID, warehouse.IssueFilter{})
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		titles, err := s.milestoneTitles(r.Context(), repo.ID)
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		metrics := derive.ComputeIssueMetrics(issues, titles, opts, now, s.deps.StaleThreshold)
		perRepo = append(perRepo, aggregate.RepoIssueMetrics{Repository: repo.FullName, Metrics: metrics})
	}

	totals, byRepo := aggregate.AggregateIssueMetrics(perRepo)
	writeData(w, http.StatusOK, map[string]any{"totals": totals, "by_repository": byRepo})
}

// aggregatePullMetrics implements `GET .../aggregate/pulls/metrics` (§6.1).
func (s *server) aggregatePullMetrics(w http.ResponseWriter, r *http.Request) {
	repos, err := s.trackedRepos(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	opts := derive.PullMetricsOptions{MaxAgeDays: queryInt(r, "days", 0)}
	now := s.deps.Now()

	var perRepo []aggregate.RepoPullMetrics
	for _, repo := range repos {
		pulls, err := s.deps.Store.ListPullRequests(r.Context(), repo.ID, warehouse.PullFilter{})
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		metrics := derive.ComputePullMetrics(pulls, opts, now)
		perRepo = append(perRepo, aggregate.RepoPullMetrics{Repository: repo.FullName, Metrics: metrics})
	}

	totals, byRepo := aggregate.AggregatePullMetrics(perRepo)
	writeData(w, http.StatusOK, map[string]any{"totals": totals, "by_repository": byRepo})
}

// aggregateContributors implements `GET .../aggregate/contributors` (§6.1):
// cross-repo contributor rollup, collapsed by login (§4.6).
func (s *server) aggregateContributors(w http.ResponseWriter, r *http.Request) {
	repos, err := s.trackedRepos(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	perRepo := map[string][]derive.ContributorStats{}
	for _, repo := range repos {
		issues, pulls, err := s.issuesAndPulls(r.Context(), repo.ID)
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		perRepo[repo.FullName] = derive.ComputeContributors(issues, pulls, derive.SortByIssues, 0)
	}
	sortBy := querySortBy(r)
	limit := queryInt(r, "limit", 0)
	writeData(w, http.StatusOK, aggregate.AggregateContributors(perRepo, sortBy, limit))
}

// aggregateVelocity implements `GET .../aggregate/velocity` (§6.1): every
// repository's velocity series, computed over the same period/last window
// (§4.6 requires identical bucketing across repos before summing), then
// recomposed per §4.6's trend rule.
func (s *server) aggregateVelocity(w http.ResponseWriter, r *http.Request) {
	repos, err := s.trackedRepos(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	last := queryInt(r, "last", 12)
	now := s.deps.Now()

	var perRepo []aggregate.RepoVelocity
	for _, repo := range repos {
		issues, err := s.deps.Store.ListIssues(r.Context(), repo.ID, warehouse.IssueFilter{})
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		metrics := derive.ComputeVelocity(issues, period, last, now)
		perRepo = append(perRepo, aggregate.RepoVelocity{Repository: repo.FullName, Metrics: metrics})
	}

	totals, byRepo := aggregate.AggregateVelocity(perRepo)
	writeData(w, http.StatusOK, map[string]any{"totals": totals, "by_repository": byRepo})
}

// aggregateCalendar implements `GET .../aggregate/calendar` (§6.1): every
// repository's calendar events in the window, unioned. Unlike the
// metrics/velocity/contributors endpoints, a calendar has no sum-like or
// mean-like field to recompute — the cross-repo result is a plain union of
// per-repo event lists, so no internal/aggregate helper is needed here.
func (s *server) aggregateCalendar(w http.ResponseWriter, r *http.Request) {
	repos, err := s.trackedRepos(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
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

	result := derive.CalendarData{ByType: map[derive.CalendarEventType]int{}}
	for _, repo := range repos {
		in, err := s.calendarInput(r.Context(), repo)
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		data := derive.ComputeCalendar(in, start, end, types)
		result.Events = append(result.Events, data.Events...)
		result.Total += data.Total
		for t, n := range data.ByType {
			result.ByType[t] += n
		}
	}
	sort.Slice(result.Events, func(i, j int) bool { return result.Events[i].Date.Before(result.Events[j].Date) })
	writeData(w, http.StatusOK, result)
}

// aggregateReleasePlan implements `GET .../aggregate/release-plan` (§6.1):
// every repository's release plan, unioned the same way aggregateCalendar
// is — release plans carry lists, not sums, to recompute.
func (s *server) aggregateReleasePlan(w http.ResponseWriter, r *http.Request) {
	repos, err := s.trackedRepos(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	opts := derive.DefaultReleasePlanOptions()
	if months := queryInt(r, "months_back", 0); months > 0 {
		opts.MonthsBack = months
	}
	now := s.deps.Now()

	var plan derive.ReleasePlan
	for _, repo := range repos {
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
		repoPlan := derive.ComputeReleasePlan(milestones, issuesByMilestone, releases, now, opts)
		plan.Upcoming = append(plan.Upcoming, repoPlan.Upcoming...)
		plan.Recent = append(plan.Recent, repoPlan.Recent...)
		plan.Timeline = append(plan.Timeline, repoPlan.Timeline...)
	}
	sort.Slice(plan.Timeline, func(i, j int) bool { return plan.Timeline[i].Date.Before(plan.Timeline[j].Date) })
	if months := queryInt(r, "months_forward", 0); months > 0 {
		plan = filterUpcomingWithinMonths(plan, now, months)
	}
	writeData(w, http.StatusOK, plan)
}

// aggregateProjects implements `GET .../aggregate/projects` (§6.1): every
// organization's project boards, across the whole warehouse.
func (s *server) aggregateProjects(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.deps.Store.ListOrganizations(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	var all []warehouse.Project
	for _, org := range orgs {
		projects, err := s.deps.Store.ListProjects(r.Context(), org.Name)
		if err != nil {
			writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
			return
		}
		all = append(all, projects...)
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(all, page, perPage)
	writeList(w, items, meta)
}
