package httpapi

import (
	"net/http"

	"github.com/prabasiva/greport/internal/derive"
	"github.com/prabasiva/greport/internal/warehouse"
)

// listPulls implements `GET /api/v1/repos/{owner}/{repo}/pulls` (§6.1),
// symmetric to listIssues.
func (s *server) listPulls(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	state, err := queryState(r, "")
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	pulls, err := s.deps.Store.ListPullRequests(r.Context(), repo.ID, warehouse.PullFilter{State: state})
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(pulls, page, perPage)
	writeList(w, items, meta)
}

// pullMetrics implements `GET .../pulls/metrics` (§6.1).
func (s *server) pullMetrics(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	state, err := queryState(r, "all")
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	pulls, err := s.deps.Store.ListPullRequests(r.Context(), repo.ID, warehouse.PullFilter{})
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	opts := derive.PullMetricsOptions{State: state, MaxAgeDays: queryInt(r, "days", 0)}
	writeData(w, http.StatusOK, derive.ComputePullMetrics(pulls, opts, s.deps.Now()))
}
