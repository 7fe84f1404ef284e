package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestComputeSLAClassifiesOk(t *testing.T) {
	now := time.Now()
	issue := warehouse.Issue{ID: 1, Number: 1, State: "open", AuthorLogin: "alice", CreatedAt: now.Add(-2 * time.Hour)}

	report := ComputeSLA([]warehouse.Issue{issue}, nil, DefaultSLAConfig(), now)
	require.Equal(t, 1, report.TotalOpen)
	assert.Equal(t, 1, report.WithinSLA)
	assert.Equal(t, float64(100), report.ComplianceRate)
}

func TestComputeSLAResponseBreached(t *testing.T) {
	now := time.Now()
	issue := warehouse.Issue{ID: 1, Number: 1, State: "open", AuthorLogin: "alice", CreatedAt: now.Add(-30 * time.Hour)}

	report := ComputeSLA([]warehouse.Issue{issue}, nil, DefaultSLAConfig(), now)
	require.Len(t, report.Breaching, 1)
	assert.Equal(t, SLAResponseBreached, report.Breaching[0].Status)
}

func TestComputeSLAResponseMetSuppressesBreach(t *testing.T) {
	now := time.Now()
	issue := warehouse.Issue{ID: 1, Number: 1, State: "open", AuthorLogin: "alice", CreatedAt: now.Add(-30 * time.Hour)}
	events := map[int64][]warehouse.IssueEvent{
		1: {{IssueID: 1, EventType: "commented", ActorLogin: "bob", CreatedAt: now.Add(-20 * time.Hour)}},
	}

	report := ComputeSLA([]warehouse.Issue{issue}, events, DefaultSLAConfig(), now)
	assert.Empty(t, report.Breaching)
	assert.Len(t, report.AtRisk, 0)
	assert.Equal(t, 1, report.WithinSLA)
}

func TestComputeSLAResolutionBreached(t *testing.T) {
	now := time.Now()
	issue := warehouse.Issue{ID: 1, Number: 1, State: "open", AuthorLogin: "alice", CreatedAt: now.Add(-200 * time.Hour)}

	report := ComputeSLA([]warehouse.Issue{issue}, nil, DefaultSLAConfig(), now)
	require.Len(t, report.Breaching, 1)
	assert.Equal(t, SLAResolutionBreached, report.Breaching[0].Status)
}

func TestComputeSLAAtRisk(t *testing.T) {
	now := time.Now()
	// 80% of 168h resolution window = 134.4h; response met so no response breach
	issue := warehouse.Issue{ID: 1, Number: 1, State: "open", AuthorLogin: "alice", CreatedAt: now.Add(-140 * time.Hour)}
	events := map[int64][]warehouse.IssueEvent{
		1: {{IssueID: 1, EventType: "commented", ActorLogin: "bob", CreatedAt: now.Add(-139 * time.Hour)}},
	}

	report := ComputeSLA([]warehouse.Issue{issue}, events, DefaultSLAConfig(), now)
	require.Len(t, report.AtRisk, 1)
	assert.Equal(t, SLAAtRisk, report.AtRisk[0].Status)
}

func TestComputeSLAPriorityOverride(t *testing.T) {
	now := time.Now()
	issue := warehouse.Issue{ID: 1, Number: 1, State: "open", AuthorLogin: "alice", CreatedAt: now.Add(-10 * time.Hour), Labels: []string{"urgent"}}

	cfg := SLAConfig{
		ResponseTimeHours:   24,
		ResolutionTimeHours: 168,
		PriorityOverrides:   map[string]PriorityWindow{"urgent": {ResponseTimeHours: 1, ResolutionTimeHours: 8}},
	}

	report := ComputeSLA([]warehouse.Issue{issue}, nil, cfg, now)
	require.Len(t, report.Breaching, 1)
	assert.Equal(t, SLAResolutionBreached, report.Breaching[0].Status)
}
