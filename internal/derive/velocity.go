package derive

import (
	"time"

	"github.com/prabasiva/greport/internal/warehouse"
)

// Trend classification thresholds (§9 Open Question 2): the mean of the last
// third of the buckets compares against the mean of the first third scaled by
// these factors.
// Exposed as package constants so a future config surface can override
// them without changing the classification logic itself.
const (
	velocityIncreaseFactor = 1.1
	velocityDecreaseFactor = 0.9
)

// Trend is the direction of a velocity series.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// VelocityBucket is one period's opened/closed/net counts (§4.5 Velocity).
type VelocityBucket struct {
	BucketStart    time.Time `json:"bucket_start"`
	Opened         int       `json:"opened"`
	Closed         int       `json:"closed"`
	NetChange      int       `json:"net_change"`
	CumulativeOpen int       `json:"cumulative_open"`
}

// VelocityMetrics is the §4.5 Velocity result for a period/last window.
type VelocityMetrics struct {
	Period    Period           `json:"period"`
	Buckets   []VelocityBucket `json:"buckets"`
	AvgOpened float64          `json:"avg_opened"`
	AvgClosed float64          `json:"avg_closed"`
	Trend     Trend            `json:"trend"`
}

// ComputeVelocity implements §4.5 Velocity: the last `last` buckets of
// `period` granularity up to and including now's bucket.
func ComputeVelocity(issues []warehouse.Issue, period Period, last int, now time.Time) VelocityMetrics {
	if last <= 0 {
		last = 1
	}
	nowBucket := bucketStart(now, period)
	firstBucket := nowBucket
	for i := 0; i < last-1; i++ {
		firstBucket = priorBucket(firstBucket, period)
	}

	buckets := make([]VelocityBucket, last)
	starts := make([]time.Time, last)
	b := firstBucket
	for i := 0; i < last; i++ {
		starts[i] = b
		buckets[i] = VelocityBucket{BucketStart: b}
		b = bucketNext(b, period)
	}

	// seed cumulative_open with the count already open at firstBucket's start
	seed := 0
	for _, issue := range issues {
		if issue.CreatedAt.Before(firstBucket) && (issue.ClosedAt == nil || !issue.ClosedAt.Before(firstBucket)) {
			seed++
		}
	}

	for _, issue := range issues {
		if idx, ok := bucketIndex(issue.CreatedAt, starts, period); ok {
			buckets[idx].Opened++
		}
		if issue.ClosedAt != nil {
			if idx, ok := bucketIndex(*issue.ClosedAt, starts, period); ok {
				buckets[idx].Closed++
			}
		}
	}

	cumulative := seed
	var sumOpened, sumClosed float64
	for i := range buckets {
		buckets[i].NetChange = buckets[i].Opened - buckets[i].Closed
		cumulative += buckets[i].NetChange
		buckets[i].CumulativeOpen = cumulative
		sumOpened += float64(buckets[i].Opened)
		sumClosed += float64(buckets[i].Closed)
	}

	return VelocityMetrics{
		Period:    period,
		Buckets:   buckets,
		AvgOpened: sumOpened / float64(last),
		AvgClosed: sumClosed / float64(last),
		Trend:     ClassifyTrend(buckets),
	}
}

func priorBucket(b time.Time, period Period) time.Time {
	switch period {
	case PeriodWeek:
		return b.AddDate(0, 0, -7)
	case PeriodMonth:
		return b.AddDate(0, -1, 0)
	default:
		return b.AddDate(0, 0, -1)
	}
}

func bucketIndex(t time.Time, starts []time.Time, period Period) (int, bool) {
	start := bucketStart(t, period)
	for i, s := range starts {
		if s.Equal(start) {
			return i, true
		}
	}
	return 0, false
}

// ClassifyTrend compares the mean of the first third of buckets' Opened
// count against the mean of the last third's (§4.5 Velocity trend, §8
// scenario 2: opened=[5,3,4,2], closed=[1,2,3,5] classifies as
// "decreasing" because 2 < 5*0.9 — Closed plays no part in the
// comparison). Exported so the aggregator can reclassify trend from
// summed cross-repo buckets rather than from per-repo trends (§4.6).
func ClassifyTrend(buckets []VelocityBucket) Trend {
	n := len(buckets)
	if n == 0 {
		return TrendStable
	}
	third := n / 3
	if third == 0 {
		third = 1
	}
	firstThird := buckets[:third]
	lastThird := buckets[n-third:]

	firstMean := bucketMean(firstThird)
	lastMean := bucketMean(lastThird)

	switch {
	case lastMean > firstMean*velocityIncreaseFactor:
		return TrendIncreasing
	case lastMean < firstMean*velocityDecreaseFactor:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func bucketMean(buckets []VelocityBucket) float64 {
	if len(buckets) == 0 {
		return 0
	}
	var sum float64
	for _, b := range buckets {
		sum += float64(b.Opened)
	}
	return sum / float64(len(buckets))
}
