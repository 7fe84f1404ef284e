package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/prabasiva/greport/internal/derive"
	"github.com/prabasiva/greport/internal/sync"
	"github.com/prabasiva/greport/internal/warehouse"
	"github.com/prabasiva/greport/pkg/logger"
)

// defaultRequestTimeout is §5's default request deadline.
const defaultRequestTimeout = 30 * time.Second

// SyncFunc runs one repository's sync against whatever credential the
// caller's registry resolves for owner, keeping the HTTP surface ignorant
// of credential resolution and Host Client construction (§4.1, §4.2) —
// cmd/ wires the concrete closure at startup.
type SyncFunc func(ctx context.Context, owner, name string, opts sync.Options) (sync.Result, error)

// Deps is everything NewRouter needs to build the HTTP Surface. A zero
// RequestTimeout, StaleThreshold, Now, AccessLog, Metrics or SLADefaults
// gets a default in NewRouter so tests can supply only what they exercise;
// Store, Sync, CoordinatorFor and Logger get no default.
type Deps struct {
	Store          *warehouse.Store
	Sync           SyncFunc
	CoordinatorFor sync.CoordinatorFor
	SLADefaults    derive.SLAConfig
	StaleThreshold time.Duration
	RequestTimeout time.Duration
	Now            func() time.Time
	Logger         *logger.Logger
	AccessLog      *zap.Logger
	Metrics        *Metrics
}

// server holds the resolved Deps every handler method closes over.
type server struct {
	deps Deps
}

// NewRouter builds the complete §6.1 route table behind the §5 deadline,
// §4.7 access-log/request-ID/metrics middleware stack.
func NewRouter(deps Deps) *mux.Router {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}
	if deps.StaleThreshold <= 0 {
		deps.StaleThreshold = derive.StaleThresholdDefault
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.AccessLog == nil {
		deps.AccessLog = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	if deps.SLADefaults.ResponseTimeHours == 0 && deps.SLADefaults.ResolutionTimeHours == 0 {
		deps.SLADefaults = derive.DefaultSLAConfig()
	}

	s := &server{deps: deps}

	r := mux.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(RecoverMiddleware)
	r.Use(deps.Metrics.Middleware)
	r.Use(AccessLogMiddleware(deps.AccessLog))
	r.Use(DeadlineMiddleware(deps.RequestTimeout))

	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/repos", s.listRepos).Methods(http.MethodGet)
	api.HandleFunc("/repos", s.createRepo).Methods(http.MethodPost)
	api.HandleFunc("/repos/{owner}/{repo}", s.deleteRepo).Methods(http.MethodDelete)
	api.HandleFunc("/repos/{owner}/{repo}/sync", s.syncRepo).Methods(http.MethodPost)
	api.HandleFunc("/sync", s.batchSync).Methods(http.MethodPost)

	api.HandleFunc("/repos/{owner}/{repo}/issues", s.listIssues).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/issues/metrics", s.issueMetrics).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/issues/velocity", s.issueVelocity).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/issues/burndown", s.issueBurndown).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/issues/stale", s.issueStale).Methods(http.MethodGet)

	api.HandleFunc("/repos/{owner}/{repo}/pulls", s.listPulls).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/pulls/metrics", s.pullMetrics).Methods(http.MethodGet)

	api.HandleFunc("/repos/{owner}/{repo}/releases", s.listReleases).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/releases/notes", s.releaseNotes).Methods(http.MethodGet)

	api.HandleFunc("/repos/{owner}/{repo}/contributors", s.contributors).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/sla", s.sla).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/calendar", s.calendar).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/release-plan", s.releasePlan).Methods(http.MethodGet)

	api.HandleFunc("/orgs", s.listOrgs).Methods(http.MethodGet)
	api.HandleFunc("/orgs/{org}/projects", s.listProjects).Methods(http.MethodGet)
	api.HandleFunc("/orgs/{org}/projects/{number}", s.getProject).Methods(http.MethodGet)
	api.HandleFunc("/orgs/{org}/projects/{number}/items", s.projectItems).Methods(http.MethodGet)
	api.HandleFunc("/orgs/{org}/projects/{number}/metrics", s.projectMetrics).Methods(http.MethodGet)

	api.HandleFunc("/aggregate/issues", s.aggregateIssues).Methods(http.MethodGet)
	api.HandleFunc("/aggregate/pulls", s.aggregatePulls).Methods(http.MethodGet)
	api.HandleFunc("/aggregate/issues/metrics", s.aggregateIssueMetrics).Methods(http.MethodGet)
	api.HandleFunc("/aggregate/pulls/metrics", s.aggregatePullMetrics).Methods(http.MethodGet)
	api.HandleFunc("/aggregate/contributors", s.aggregateContributors).Methods(http.MethodGet)
	api.HandleFunc("/aggregate/velocity", s.aggregateVelocity).Methods(http.MethodGet)
	api.HandleFunc("/aggregate/calendar", s.aggregateCalendar).Methods(http.MethodGet)
	api.HandleFunc("/aggregate/release-plan", s.aggregateReleasePlan).Methods(http.MethodGet)
	api.HandleFunc("/aggregate/projects", s.aggregateProjects).Methods(http.MethodGet)

	return r
}

// respond writes the singleton envelope on success or the error envelope
// on failure, the shape nearly every handler's tail call reduces to.
func (s *server) respond(w http.ResponseWriter, r *http.Request, status int, data any, err error) {
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return
	}
	writeData(w, status, data)
}

// repoFromPath resolves the {owner}/{repo} path variables to a tracked
// Repository, writing the §7 not_found envelope itself when the lookup
// misses so every per-repo handler can share one line of boilerplate.
func (s *server) repoFromPath(w http.ResponseWriter, r *http.Request) (warehouse.Repository, bool) {
	vars := mux.Vars(r)
	repo, err := s.deps.Store.GetRepository(r.Context(), vars["owner"], vars["repo"])
	if err != nil {
		writeError(w, r, s.deps.Logger, err)
		return warehouse.Repository{}, false
	}
	return repo, true
}
