package httpapi

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/derive"
)

func timeMustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}

func TestQueryStateValidation(t *testing.T) {
	v, err := queryState(httptest.NewRequest("GET", "/x?state=open", nil), "")
	require.NoError(t, err)
	assert.Equal(t, "open", v)

	v, err = queryState(httptest.NewRequest("GET", "/x?state=all", nil), "")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = queryState(httptest.NewRequest("GET", "/x?state=bogus", nil), "")
	require.Error(t, err)
	var typed *Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, KindValidation, typed.Kind)
}

func TestQueryPeriodValidation(t *testing.T) {
	p, err := queryPeriod(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, derive.PeriodWeek, p, "default period is week")

	p, err = queryPeriod(httptest.NewRequest("GET", "/x?period=month", nil))
	require.NoError(t, err)
	assert.Equal(t, derive.PeriodMonth, p)

	_, err = queryPeriod(httptest.NewRequest("GET", "/x?period=year", nil))
	require.Error(t, err)
}

func TestQueryDateParsing(t *testing.T) {
	def := timeMustParse(t, "2020-01-01")
	got, err := queryDate(httptest.NewRequest("GET", "/x", nil), "start_date", def)
	require.NoError(t, err)
	assert.True(t, got.Equal(def))

	got, err = queryDate(httptest.NewRequest("GET", "/x?start_date=2021-06-15", nil), "start_date", def)
	require.NoError(t, err)
	assert.Equal(t, 2021, got.Year())

	_, err = queryDate(httptest.NewRequest("GET", "/x?start_date=not-a-date", nil), "start_date", def)
	require.Error(t, err)
}

func TestQueryCalendarTypes(t *testing.T) {
	types, err := queryCalendarTypes(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Nil(t, types, "no types param means no filter")

	types, err = queryCalendarTypes(httptest.NewRequest("GET", "/x?types=issues,releases", nil))
	require.NoError(t, err)
	assert.True(t, types[derive.EventIssueCreated])
	assert.True(t, types[derive.EventIssueClosed])
	assert.True(t, types[derive.EventReleasePublished])
	assert.False(t, types[derive.EventPRMerged])

	_, err = queryCalendarTypes(httptest.NewRequest("GET", "/x?types=bogus", nil))
	require.Error(t, err)
}

func TestQuerySortBy(t *testing.T) {
	assert.Equal(t, derive.SortByIssues, querySortBy(httptest.NewRequest("GET", "/x", nil)))
	assert.Equal(t, derive.SortByPRs, querySortBy(httptest.NewRequest("GET", "/x?sort_by=prs", nil)))
}
