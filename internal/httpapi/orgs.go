package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/prabasiva/greport/internal/derive"
)

// listOrgs implements `GET /api/v1/orgs` (§6.1).
func (s *server) listOrgs(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.deps.Store.ListOrganizations(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(orgs, page, perPage)
	writeList(w, items, meta)
}

// listProjects implements `GET /api/v1/orgs/{org}/projects` (§6.1).
func (s *server) listProjects(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]
	projects, err := s.deps.Store.ListProjects(r.Context(), org)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(projects, page, perPage)
	writeList(w, items, meta)
}

// projectFromPath resolves {org}/{number} to a tracked Project, validating
// the numeric path segment before the lookup.
func (s *server) projectFromPath(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	vars := mux.Vars(r)
	number, err := strconv.Atoi(vars["number"])
	if err != nil {
		writeError(w, r, s.deps.Logger, validationErr("project number must be an integer"))
		return "", 0, false
	}
	return vars["org"], number, true
}

// getProject implements `GET /api/v1/orgs/{org}/projects/{number}` (§6.1).
func (s *server) getProject(w http.ResponseWriter, r *http.Request) {
	org, number, ok := s.projectFromPath(w, r)
	if !ok {
		return
	}
	project, err := s.deps.Store.GetProject(r.Context(), org, number)
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	writeData(w, http.StatusOK, project)
}

// projectItems implements `GET .../projects/{number}/items` (§6.1),
// flattening each card's opaque field-values blob (§4.5, §9) for display.
func (s *server) projectItems(w http.ResponseWriter, r *http.Request) {
	org, number, ok := s.projectFromPath(w, r)
	if !ok {
		return
	}
	project, err := s.deps.Store.GetProject(r.Context(), org, number)
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	items, err := s.deps.Store.ListProjectItems(r.Context(), project.NodeID)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	views := make([]derive.ProjectItemView, 0, len(items))
	for _, item := range items {
		views = append(views, derive.FlattenProjectItem(item))
	}
	page, perPage := pagination(r)
	paged, meta := paginateSlice(views, page, perPage)
	writeList(w, paged, meta)
}

// projectMetrics implements `GET .../projects/{number}/metrics` (§6.1).
func (s *server) projectMetrics(w http.ResponseWriter, r *http.Request) {
	org, number, ok := s.projectFromPath(w, r)
	if !ok {
		return
	}
	project, err := s.deps.Store.GetProject(r.Context(), org, number)
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	items, err := s.deps.Store.ListProjectItems(r.Context(), project.NodeID)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	writeData(w, http.StatusOK, derive.ComputeProjectMetrics(items))
}
