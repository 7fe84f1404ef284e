// Package derive is the Derivation Layer (§4.5): pure functions of
// warehouse rows and an injected `now`, computing the metrics, velocity,
// burndown, SLA, contributor, calendar, and release-plan views the HTTP
// surface and Aggregator build on. Every definition here is the single
// source of truth other packages refer to rather than re-derive.
package derive

import (
	"math"
	"sort"
	"time"

	"github.com/prabasiva/greport/internal/warehouse"
)

// StaleThresholdDefault is the default age (30 days) past which an open
// issue with no recent update is considered stale.
const StaleThresholdDefault = 30 * 24 * time.Hour

// ageHours is the age of an instant as of now, in floating-point hours,
// never negative (§4.5 Common definitions).
func ageHours(createdAt, now time.Time) float64 {
	h := now.Sub(createdAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// IsStale reports whether an open issue's last update predates the stale
// threshold.
func IsStale(issue warehouse.Issue, now time.Time, threshold time.Duration) bool {
	if issue.State != "open" {
		return false
	}
	return issue.UpdatedAt.Before(now.Add(-threshold))
}

// Period is a velocity/calendar bucketing granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// bucketStart floors t to the start of its period bucket, UTC (§4.5 Period
// bucketing: day = calendar day, week = ISO week starting Monday, month =
// calendar month).
func bucketStart(t time.Time, period Period) time.Time {
	t = t.UTC()
	switch period {
	case PeriodWeek:
		day := t.Truncate(24 * time.Hour)
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default: // PeriodDay
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// bucketNext returns the start of the bucket following b.
func bucketNext(b time.Time, period Period) time.Time {
	switch period {
	case PeriodWeek:
		return b.AddDate(0, 0, 7)
	case PeriodMonth:
		return b.AddDate(0, 1, 0)
	default:
		return b.AddDate(0, 0, 1)
	}
}

// AgeBucket is one row of the open-issue age distribution (§4.5).
type AgeBucket struct {
	Label   string  `json:"label"`
	MinDays float64 `json:"min_days"`
	MaxDays *float64 `json:"max_days,omitempty"`
	Count   int     `json:"count"`
}

var ageBucketDefs = []struct {
	label          string
	minDays        float64
	maxDays        *float64
}{
	{"<1d", 0, ptr(1)},
	{"1-7d", 1, ptr(7)},
	{"7-30d", 7, ptr(30)},
	{"30-90d", 30, ptr(90)},
	{"90d+", 90, nil},
}

func ptr(f float64) *float64 { return &f }

// ageDistribution buckets open issues by age in days (§4.5 Age
// distribution buckets).
func ageDistribution(ages []float64) []AgeBucket {
	out := make([]AgeBucket, len(ageBucketDefs))
	for i, def := range ageBucketDefs {
		out[i] = AgeBucket{Label: def.label, MinDays: def.minDays, MaxDays: def.maxDays}
	}
	for _, hours := range ages {
		days := hours / 24
		for i, def := range ageBucketDefs {
			if days >= def.minDays && (def.maxDays == nil || days < *def.maxDays) {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// SizeBin is a pull request's additions+deletions bucket (§4.5 PR size
// bins).
type SizeBin string

const (
	SizeXS SizeBin = "XS"
	SizeS  SizeBin = "S"
	SizeM  SizeBin = "M"
	SizeL  SizeBin = "L"
	SizeXL SizeBin = "XL"
)

// sizeBin classifies additions+deletions into a SizeBin (§4.5: XS < 10,
// S < 100, M < 500, L < 1000, XL >= 1000).
func sizeBin(changed int) SizeBin {
	switch {
	case changed < 10:
		return SizeXS
	case changed < 100:
		return SizeS
	case changed < 500:
		return SizeM
	case changed < 1000:
		return SizeL
	default:
		return SizeXL
	}
}

// mean returns the arithmetic mean of vals, or 0 for an empty slice.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// median returns the median of vals; the slice is sorted in place.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// daysBetween returns the whole number of days from a to b, rounded up,
// used for the release plan's days_remaining (§4.5: ceil(due_on - now)).
func daysBetween(a, b time.Time) int {
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}

// endOfDay returns the last instant of t's calendar day, UTC.
func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, time.UTC)
}
