package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/prabasiva/greport/internal/sync"
	"github.com/prabasiva/greport/internal/warehouse"
)

// listRepos implements `GET /api/v1/repos` (§6.1): the full tracked-repo
// list, paginated.
func (s *server) listRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := s.deps.Store.ListRepositories(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	page, perPage := pagination(r)
	items, meta := paginateSlice(repos, page, perPage)
	writeList(w, items, meta)
}

type createRepoRequest struct {
	FullName string `json:"full_name"`
}

// createRepo implements `POST /api/v1/repos` (§6.1): validates the
// `owner/name` format before tracking, per §6.1's explicit call-out.
func (s *server) createRepo(w http.ResponseWriter, r *http.Request) {
	var body createRepoRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}

	owner, name, err := splitFullName(body.FullName)
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}

	repo := warehouse.Repository{Owner: owner, Name: name, FullName: body.FullName}
	tracked, err := s.deps.Store.TrackRepository(r.Context(), repo)
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}
	writeData(w, http.StatusCreated, tracked)
}

// splitFullName validates the `owner/name` shape §6.1 requires of
// POST /api/v1/repos's full_name field.
func splitFullName(fullName string) (owner, name string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", validationErr("full_name must be in owner/name format")
	}
	return parts[0], parts[1], nil
}

// deleteRepo implements `DELETE /api/v1/repos/{owner}/{repo}` (§6.1):
// untracks, cascading to every owned warehouse row.
func (s *server) deleteRepo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.deps.Store.UntrackRepository(r.Context(), vars["owner"], vars["repo"]); err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// syncResultView is the JSON shape `POST .../sync` returns, deriving the
// success boolean §7 requires ("per-repo results carry success: bool and
// an error string when false") from the Coordinator's returned error alone,
// since sync.Result itself only carries the surface-level detail; surface
// warnings are reported alongside and do not clear success.
type syncResultView struct {
	Owner      string               `json:"owner"`
	Name       string               `json:"name"`
	Success    bool                 `json:"success"`
	Error      string               `json:"error,omitempty"`
	Surfaces   []sync.SurfaceResult `json:"surfaces"`
	Warnings   []string             `json:"warnings,omitempty"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

func toSyncResultView(owner, name string, result sync.Result, runErr error) syncResultView {
	view := syncResultView{
		Owner:      owner,
		Name:       name,
		Success:    runErr == nil,
		Surfaces:   result.Surfaces,
		Warnings:   result.Warnings(),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}
	if runErr != nil {
		view.Error = runErr.Error()
	}
	return view
}

// syncRepo implements `POST /api/v1/repos/{owner}/{repo}/sync` (§6.1): runs
// one sync and returns its per-surface result regardless of outcome — a
// sync failure is reported in the body, not as an HTTP error status,
// matching §7's "per-repo results carry success: bool".
func (s *server) syncRepo(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repoFromPath(w, r)
	if !ok {
		return
	}
	result, err := s.deps.Sync(r.Context(), repo.Owner, repo.Name, sync.Options{})
	writeData(w, http.StatusOK, toSyncResultView(repo.Owner, repo.Name, result, err))
}

// batchSyncResult is `POST /api/v1/sync`'s response (§6.1 BatchSyncResult):
// one syncResultView per tracked repository plus an overall tally.
type batchSyncResult struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []syncResultView  `json:"results"`
}

// batchSync implements `POST /api/v1/sync` (§6.1): syncs every tracked
// repository, never aborting the batch on a single repo's failure (§7
// Propagation policy). Runs through sync.RunBatch so distinct-credential
// groups sync concurrently while repositories sharing a credential stay
// serialized against that credential's rate budget (spec.md lines 101,
// 176: "organizations with distinct credentials may run in parallel with a
// bounded worker pool"; "sync runs are serialized per credential").
func (s *server) batchSync(w http.ResponseWriter, r *http.Request) {
	repos, err := s.deps.Store.ListRepositories(r.Context())
	if err != nil {
		writeError(w, r, s.deps.Logger, warehouseErr(err.Error()))
		return
	}

	refs := make([]sync.RepoRef, len(repos))
	for i, repo := range repos {
		refs[i] = sync.RepoRef{Owner: repo.Owner, Name: repo.Name}
	}
	batch := sync.RunBatch(r.Context(), refs, s.deps.CoordinatorFor, sync.BatchOptions{})

	out := batchSyncResult{Total: len(repos)}
	for _, outcome := range batch.Outcomes {
		view := toSyncResultView(outcome.Repo.Owner, outcome.Repo.Name, outcome.Result, outcome.Err)
		out.Results = append(out.Results, view)
		if view.Success {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	writeData(w, http.StatusOK, out)
}
