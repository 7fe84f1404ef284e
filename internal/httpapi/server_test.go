package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/sync"
	"github.com/prabasiva/greport/internal/warehouse"
)

func newMockRouter(t *testing.T, syncFn SyncFunc) (*mockRouter, sqlmock.Sqlmock) {
	t.Helper()
	return newMockRouterWithDeps(t, func(db *sqlx.DB) Deps {
		return Deps{Store: warehouse.New(db), Sync: syncFn}
	})
}

func newMockRouterWithDeps(t *testing.T, build func(db *sqlx.DB) Deps) (*mockRouter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	router := NewRouter(build(sqlx.NewDb(db, "postgres")))
	return &mockRouter{t: t, router: router}, mock
}

type mockRouter struct {
	t      *testing.T
	router http.Handler
}

func (m *mockRouter) do(method, path string, body []byte) *httptest.ResponseRecorder {
	m.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	m.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := NewRouter(Deps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListReposReturnsEnvelope(t *testing.T) {
	router, mock := newMockRouter(t, nil)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM repositories`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner", "name", "full_name", "default_branch", "private", "org_tag", "host_created_at", "host_updated_at", "synced_at",
		}).AddRow(1, "acme", "widgets", "acme/widgets", "main", false, "", nil, nil, now))

	rec := router.do(http.MethodGet, "/api/v1/repos", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got listBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 1, got.Meta.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRepoValidatesFullName(t *testing.T) {
	router, _ := newMockRouter(t, nil)

	rec := router.do(http.MethodPost, "/api/v1/repos", []byte(`{"full_name":"no-slash"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, string(KindValidation), got.Error.Code)
}

func TestCreateRepoTracksOnSuccess(t *testing.T) {
	router, mock := newMockRouter(t, nil)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO repositories`).
		WillReturnRows(sqlmock.NewRows([]string{"synced_at"}).AddRow(now))

	rec := router.do(http.MethodPost, "/api/v1/repos", []byte(`{"full_name":"acme/widgets"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRepoNotFound(t *testing.T) {
	router, mock := newMockRouter(t, nil)

	mock.ExpectExec(`DELETE FROM repositories`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := router.do(http.MethodDelete, "/api/v1/repos/acme/widgets", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncRepoReportsPerRepoFailureInBody(t *testing.T) {
	fakeSync := func(ctx context.Context, owner, name string, opts sync.Options) (sync.Result, error) {
		return sync.Result{Owner: owner, Name: name}, assert.AnError
	}
	router, mock := newMockRouter(t, fakeSync)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM repositories`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner", "name", "full_name", "default_branch", "private", "org_tag", "host_created_at", "host_updated_at", "synced_at",
		}).AddRow(1, "acme", "widgets", "acme/widgets", "main", false, "", nil, nil, now))

	rec := router.do(http.MethodPost, "/api/v1/repos/acme/widgets/sync", nil)
	// a sync failure is reported in the body, never as an HTTP error status
	require.Equal(t, http.StatusOK, rec.Code)

	var got dataBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	view, ok := got.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, view["success"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestBatchSyncRunsThroughRunBatch exercises the wiring from the HTTP
// Surface's batchSync handler down into sync.RunBatch: a credential
// resolution failure for one owner is reported as that repository's
// failure without blocking the rest of the batch (§7 Propagation policy),
// and every repository still gets its own CoordinatorFor call rather than
// a single flat sequential loop. Coordinator.SyncRepository itself talks
// to a real *hostclient.Client, so (mirroring internal/sync/batch_test.go's
// own stubs) this test only exercises the resolution-failure path; neither
// test file covers the grouped/concurrent success path.
func TestBatchSyncRunsThroughRunBatch(t *testing.T) {
	var resolved []string
	coordinatorFor := func(ctx context.Context, owner string) (*sync.Coordinator, string, error) {
		resolved = append(resolved, owner)
		return nil, "", assert.AnError
	}
	router, mock := newMockRouterWithDeps(t, func(db *sqlx.DB) Deps {
		return Deps{Store: warehouse.New(db), CoordinatorFor: coordinatorFor}
	})
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM repositories`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner", "name", "full_name", "default_branch", "private", "org_tag", "host_created_at", "host_updated_at", "synced_at",
		}).
			AddRow(1, "acme", "widgets", "acme/widgets", "main", false, "", nil, nil, now).
			AddRow(2, "other", "gadgets", "other/gadgets", "main", false, "", nil, nil, now))

	rec := router.do(http.MethodPost, "/api/v1/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"acme", "other"}, resolved, "every tracked repository gets its own credential resolution, not a shared one")

	var got dataBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	summary, ok := got.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), summary["total"])
	assert.Equal(t, float64(0), summary["succeeded"])
	assert.Equal(t, float64(2), summary["failed"])
	require.NoError(t, mock.ExpectationsWereMet())
}
