package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestComputeVelocityCountsOpenedAndClosedPerBucket(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	today := bucketStart(now, PeriodDay)
	yesterday := priorBucket(today, PeriodDay)

	closedToday := today.Add(2 * time.Hour)
	issues := []warehouse.Issue{
		{ID: 1, CreatedAt: yesterday.Add(time.Hour)},
		{ID: 2, CreatedAt: today.Add(time.Hour), ClosedAt: &closedToday},
	}

	v := ComputeVelocity(issues, PeriodDay, 2, now)
	require.Len(t, v.Buckets, 2)
	assert.Equal(t, 1, v.Buckets[0].Opened) // yesterday
	assert.Equal(t, 1, v.Buckets[1].Opened) // today
	assert.Equal(t, 1, v.Buckets[1].Closed)
}

func TestComputeVelocityTrendIncreasing(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	today := bucketStart(now, PeriodDay)

	var issues []warehouse.Issue
	// 6 buckets: first third quiet, last third busy
	for i := 0; i < 1; i++ {
		issues = append(issues, warehouse.Issue{ID: int64(i + 1), CreatedAt: priorBucket(priorBucket(priorBucket(priorBucket(priorBucket(today, PeriodDay), PeriodDay), PeriodDay), PeriodDay), PeriodDay).Add(time.Hour)})
	}
	for i := 0; i < 10; i++ {
		issues = append(issues, warehouse.Issue{ID: int64(100 + i), CreatedAt: today.Add(time.Hour)})
	}

	v := ComputeVelocity(issues, PeriodDay, 6, now)
	assert.Equal(t, TrendIncreasing, v.Trend)
}

func TestClassifyTrendMatchesWorkedExampleScenario2(t *testing.T) {
	// opened=[5,3,4,2], closed=[1,2,3,5]: firstThird mean(opened)=5,
	// lastThird mean(opened)=2, and 2 < 5*0.9, so the expected verdict is
	// "decreasing" regardless of how busy the buckets were on the closed
	// side.
	buckets := []VelocityBucket{
		{Opened: 5, Closed: 1},
		{Opened: 3, Closed: 2},
		{Opened: 4, Closed: 3},
		{Opened: 2, Closed: 5},
	}

	assert.Equal(t, TrendDecreasing, ClassifyTrend(buckets))
}

func TestComputeVelocitySeedsCumulativeOpenFromPriorState(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	today := bucketStart(now, PeriodDay)
	longAgo := today.AddDate(0, -1, 0)

	issues := []warehouse.Issue{
		{ID: 1, CreatedAt: longAgo}, // still open at bucket start, seeds cumulative
	}

	v := ComputeVelocity(issues, PeriodDay, 1, now)
	require.Len(t, v.Buckets, 1)
	assert.Equal(t, 1, v.Buckets[0].CumulativeOpen)
}
