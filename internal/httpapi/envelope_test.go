package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationDefaultsAndBounds(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)
	page, perPage := pagination(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPerPage, perPage)

	r = httptest.NewRequest("GET", "/x?page=0&per_page=500", nil)
	page, perPage = pagination(r)
	assert.Equal(t, 1, page, "page below 1 clamps to 1")
	assert.Equal(t, maxPerPage, perPage, "per_page above the cap clamps to maxPerPage")

	r = httptest.NewRequest("GET", "/x?page=3&per_page=10", nil)
	page, perPage = pagination(r)
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, perPage)
}

func TestPaginateSliceReconstructsFullList(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	var seen []int
	perPage := 7
	totalPages := 0
	for page := 1; ; page++ {
		slice, meta := paginateSlice(items, page, perPage)
		if len(slice) == 0 {
			totalPages = meta.TotalPages
			break
		}
		seen = append(seen, slice...)
	}

	assert.Equal(t, items, seen, "concatenating every page reproduces the full list in order")
	assert.Equal(t, 4, totalPages)
}

func TestPaginateSlicePastEndIsEmpty(t *testing.T) {
	items := []string{"a", "b"}
	slice, meta := paginateSlice(items, 5, 10)
	assert.Empty(t, slice)
	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, 1, meta.TotalPages)
}
