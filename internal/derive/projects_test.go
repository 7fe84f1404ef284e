package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestFlattenProjectItemProjectsFlatFieldValues(t *testing.T) {
	item := warehouse.ProjectItem{
		NodeID:          "PI_1",
		ContentType:     "Issue",
		Title:           "fix bug",
		State:           "open",
		FieldValuesJSON: `{"Status":"In Progress","Estimate":5,"Priority":"P1"}`,
	}

	view := FlattenProjectItem(item)
	assert.Equal(t, "In Progress", view.FieldValues["Status"])
	assert.Equal(t, "5", view.FieldValues["Estimate"])
	assert.Equal(t, "P1", view.FieldValues["Priority"])
}

func TestFlattenProjectItemHandlesEmptyJSON(t *testing.T) {
	item := warehouse.ProjectItem{NodeID: "PI_2"}
	view := FlattenProjectItem(item)
	assert.Empty(t, view.FieldValues)
}

func TestComputeProjectMetricsGroupsByContentTypeAndStatus(t *testing.T) {
	items := []warehouse.ProjectItem{
		{ContentType: "Issue", FieldValuesJSON: `{"Status":"Done"}`},
		{ContentType: "Issue", FieldValuesJSON: `{"Status":"Done"}`},
		{ContentType: "PullRequest", FieldValuesJSON: `{"Status":"In Progress"}`},
	}

	metrics := ComputeProjectMetrics(items)
	require.Equal(t, 3, metrics.TotalItems)
	assert.Equal(t, 2, metrics.ByContentType["Issue"])
	assert.Equal(t, 1, metrics.ByContentType["PullRequest"])
	assert.Equal(t, 2, metrics.ByStatus["Done"])
}
