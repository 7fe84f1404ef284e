package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/prabasiva/greport/internal/derive"
	"github.com/prabasiva/greport/internal/warehouse"
)

// milestoneTitles loads a repository's milestones into the id->title map
// ComputeIssueMetrics needs for its by_milestone breakdown (§4.5).
func (s *server) milestoneTitles(ctx context.Context, repositoryID int64) (map[int64]string, error) {
	milestones, err := s.deps.Store.ListMilestones(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(milestones))
	for _, m := range milestones {
		out[m.ID] = m.Title
	}
	return out, nil
}

// listIssues implements `GET /api/v1/repos/{owner}/{repo}/issues` (§6.1):
// paginated issues, optionally filtered by state.
func (s *server) listIssues(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	state, err := queryState(r, "")
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	issues, err := s.deps.Store.ListIssues(r.Context(), repo.ID, warehouse.IssueFilter{State: state})
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(issues, page, perPage)
	writeList(w, items, meta)
}

// issueMetrics implements `GET .../issues/metrics` (§6.1).
func (s *server) issueMetrics(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	state, err := queryState(r, "all")
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
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
	opts := derive.IssueMetricsOptions{State: state, MaxAgeDays: queryInt(r, "days", 0)}
	metrics := derive.ComputeIssueMetrics(issues, titles, opts, s.deps.Now(), s.deps.StaleThreshold)
	writeData(w, http.StatusOK, metrics)
}

// issueVelocity implements `GET .../issues/velocity` (§6.1).
func (s *server) issueVelocity(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	last := queryInt(r, "last", 12)
	issues, err := s.deps.Store.ListIssues(r.Context(), repo.ID, warehouse.IssueFilter{})
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	writeData(w, http.StatusOK, derive.ComputeVelocity(issues, period, last, s.deps.Now()))
}

// issueBurndown implements `GET .../issues/burndown?milestone=…` (§6.1):
// 400 if milestone is missing.
func (s *server) issueBurndown(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	title, err := queryRequiredString(r, "milestone")
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	milestone, err := s.deps.Store.GetMilestoneByTitle(r.Context(), repo.ID, title)
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	issues, err := s.milestoneIssues(r.Context(), repo.ID, milestone.ID)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	writeData(w, http.StatusOK, derive.ComputeBurndown(milestone, issues, s.deps.Now(), derive.DefaultBurndownOptions()))
}

// milestoneIssues filters a repository's issues down to those linked to
// one milestone. The Warehouse has no milestone-scoped issue query (§4.3
// keeps ListIssues's filter surface to the HTTP list endpoint's own
// parameters), so the Derivation Layer's callers narrow it here instead.
func (s *server) milestoneIssues(ctx context.Context, repositoryID, milestoneID int64) ([]warehouse.Issue, error) {
	all, err := s.deps.Store.ListIssues(ctx, repositoryID, warehouse.IssueFilter{})
	if err != nil {
		return nil, err
	}
	var out []warehouse.Issue
	for _, issue := range all {
		if issue.MilestoneID != nil && *issue.MilestoneID == milestoneID {
			out = append(out, issue)
		}
	}
	return out, nil
}

// issueStale implements `GET .../issues/stale?days=…` (§6.1): open issues
// whose last update predates the cutoff.
func (s *server) issueStale(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	threshold := s.deps.StaleThreshold
	if days := queryInt(r, "days", 0); days > 0 {
		threshold = time.Duration(days) * 24 * time.Hour
	}
	issues, err := s.deps.Store.ListIssues(r.Context(), repo.ID, warehouse.IssueFilter{State: "open"})
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	now := s.deps.Now()
	var stale []warehouse.Issue
	for _, issue := range issues {
		if derive.IsStale(issue, now, threshold) {
			stale = append(stale, issue)
		}
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(stale, page, perPage)
	writeList(w, items, meta)
}
