package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/warehouse"
	"github.com/prabasiva/greport/pkg/logger"
)

func newTestCoordinator(t *testing.T) (*Coordinator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := warehouse.New(sqlx.NewDb(db, "postgres"))
	return New(store, nil, logger.New(logger.LoggingConfig{Level: "error"})), mock
}

func TestFinishMapsErrorToFailedState(t *testing.T) {
	c, _ := newTestCoordinator(t)

	ok := c.finish(warehouse.SurfaceIssues, nil)
	assert.Equal(t, StateDone, ok.State)
	assert.Empty(t, ok.Warning)

	failed := c.finish(warehouse.SurfaceIssues, errors.New("boom"))
	assert.Equal(t, StateFailed, failed.State)
	assert.Equal(t, "boom", failed.Warning)
}

func TestResultWarningsCollectsOnlyFailedSurfaces(t *testing.T) {
	result := Result{
		Surfaces: []SurfaceResult{
			{Surface: warehouse.SurfaceIssues, State: StateDone},
			{Surface: warehouse.SurfacePulls, State: StateFailed, Warning: "rate limited"},
		},
	}
	assert.Equal(t, []string{"pulls: rate limited"}, result.Warnings())
}

func TestCursorForcedFullSyncSkipsStore(t *testing.T) {
	c, mock := newTestCoordinator(t)

	since, err := c.cursor(context.Background(), 1, warehouse.SurfaceIssues, Options{Full: true})
	require.NoError(t, err)
	assert.True(t, since.IsZero())
	require.NoError(t, mock.ExpectationsWereMet()) // no query expected
}

func TestCursorNeverSyncedReturnsZeroTime(t *testing.T) {
	c, mock := newTestCoordinator(t)

	mock.ExpectQuery(`SELECT \* FROM sync_status`).
		WillReturnRows(sqlmock.NewRows([]string{"repository_id", "surface", "last_success_at", "last_error", "last_error_at"}))

	since, err := c.cursor(context.Background(), 1, warehouse.SurfaceIssues, Options{})
	require.NoError(t, err)
	assert.True(t, since.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCursorPriorErrorForcesFullResync(t *testing.T) {
	c, mock := newTestCoordinator(t)

	mock.ExpectQuery(`SELECT \* FROM sync_status`).
		WillReturnRows(sqlmock.NewRows([]string{"repository_id", "surface", "last_success_at", "last_error", "last_error_at"}).
			AddRow(1, warehouse.SurfaceIssues, time.Now(), "transport error", time.Now()))

	since, err := c.cursor(context.Background(), 1, warehouse.SurfaceIssues, Options{})
	require.NoError(t, err)
	assert.True(t, since.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCursorSubtractsOverlapFromLastSuccess(t *testing.T) {
	c, mock := newTestCoordinator(t)
	lastSuccess := time.Now().Add(-2 * time.Hour)

	mock.ExpectQuery(`SELECT \* FROM sync_status`).
		WillReturnRows(sqlmock.NewRows([]string{"repository_id", "surface", "last_success_at", "last_error", "last_error_at"}).
			AddRow(1, warehouse.SurfaceIssues, lastSuccess, "", nil))

	since, err := c.cursor(context.Background(), 1, warehouse.SurfaceIssues, Options{})
	require.NoError(t, err)
	assert.WithinDuration(t, lastSuccess.Add(-overlap), since, time.Second)
	require.NoError(t, mock.ExpectationsWereMet())
}
