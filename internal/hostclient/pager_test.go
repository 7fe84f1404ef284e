package hostclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagerAllDrainsEveryPage(t *testing.T) {
	pages := [][]int{{1, 2}, {3, 4}, {5}}
	calls := 0
	p := newPager(func(ctx context.Context, cursor string) ([]int, string, bool, error) {
		defer func() { calls++ }()
		if calls >= len(pages) {
			return nil, "", false, nil
		}
		hasMore := calls < len(pages)-1
		return pages[calls], "", hasMore, nil
	})

	all, err := p.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, all)
	assert.True(t, p.Done())
}

func TestPagerNextStopsOnDone(t *testing.T) {
	p := newPager(func(ctx context.Context, cursor string) ([]string, string, bool, error) {
		return []string{"only"}, "", false, nil
	})

	page, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, page)
	assert.True(t, p.Done())
}
