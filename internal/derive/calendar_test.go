package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestComputeCalendarIncludesEventsWithinWindow(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	closedAt := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	in := CalendarInput{
		RepositoryFullName: "acme/widgets",
		Issues: []warehouse.Issue{
			{ID: 1, Number: 1, Title: "bug", CreatedAt: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC), ClosedAt: &closedAt},
			{ID: 2, Number: 2, Title: "old", CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	data := ComputeCalendar(in, start, end, nil)
	assert.Equal(t, 2, data.Total) // issue 1 created + closed
	assert.Equal(t, 1, data.ByType[EventIssueCreated])
	assert.Equal(t, 1, data.ByType[EventIssueClosed])
}

func TestComputeCalendarFiltersByRequestedTypes(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	in := CalendarInput{
		RepositoryFullName: "acme/widgets",
		Issues: []warehouse.Issue{
			{ID: 1, Number: 1, Title: "bug", CreatedAt: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)},
		},
		Releases: []warehouse.Release{
			{Tag: "v1.0", Name: "v1.0", PublishedAt: timePtr(time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC))},
		},
	}

	data := ComputeCalendar(in, start, end, map[CalendarEventType]bool{EventReleasePublished: true})
	require.Len(t, data.Events, 1)
	assert.Equal(t, EventReleasePublished, data.Events[0].EventType)
}

func TestComputeCalendarSortsEventsByDate(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	in := CalendarInput{
		RepositoryFullName: "acme/widgets",
		Issues: []warehouse.Issue{
			{ID: 1, Number: 1, Title: "later", CreatedAt: time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)},
			{ID: 2, Number: 2, Title: "earlier", CreatedAt: time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)},
		},
	}

	data := ComputeCalendar(in, start, end, map[CalendarEventType]bool{EventIssueCreated: true})
	require.Len(t, data.Events, 2)
	assert.Equal(t, "earlier", data.Events[0].Title)
	assert.Equal(t, "later", data.Events[1].Title)
}

func timePtr(t time.Time) *time.Time { return &t }
