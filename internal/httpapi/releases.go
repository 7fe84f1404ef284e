package httpapi

import (
	"net/http"

	"github.com/prabasiva/greport/internal/derive"
)

// listReleases implements `GET /api/v1/repos/{owner}/{repo}/releases`
// (§6.1).
func (s *server) listReleases(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	releases, err := s.deps.Store.ListReleases(r.Context(), repo.ID)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(releases, page, perPage)
	writeList(w, items, meta)
}

// releaseNotes implements `GET .../releases/notes?milestone=…` (§6.1).
func (s *server) releaseNotes(w http.ResponseWriter, r *http.Request) {
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
	writeData(w, http.StatusOK, derive.GenerateReleaseNotes(milestone, issues))
}
