package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prabasiva/greport/internal/derive"
)

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func queryString(r *http.Request, key, def string) string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	return v
}

// queryState validates the shared `state ∈ {open, closed, merged, all}`
// parameter (§6.1), returning "" for "all" so downstream filters treat it
// as unfiltered.
func queryState(r *http.Request, def string) (string, error) {
	v := queryString(r, "state", def)
	switch v {
	case "", "all":
		return "", nil
	case "open", "closed", "merged":
		return v, nil
	default:
		return "", validationErr("state must be one of open, closed, merged, all")
	}
}

// queryPeriod validates `period ∈ {day, week, month}` (§6.1).
func queryPeriod(r *http.Request) (derive.Period, error) {
	v := queryString(r, "period", "week")
	switch derive.Period(v) {
	case derive.PeriodDay, derive.PeriodWeek, derive.PeriodMonth:
		return derive.Period(v), nil
	default:
		return "", validationErr("period must be one of day, week, month")
	}
}

// queryDate parses an ISO-8601 `YYYY-MM-DD` date parameter (§6.1).
func queryDate(r *http.Request, key string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, validationErr(key + " must be an ISO-8601 date (YYYY-MM-DD)")
	}
	return t, nil
}

// queryRequiredString requires a non-empty query parameter, used by
// endpoints like burndown/release-notes where §6.1 says "400 if missing".
func queryRequiredString(r *http.Request, key string) (string, error) {
	v := r.URL.Query().Get(key)
	if strings.TrimSpace(v) == "" {
		return "", validationErr(key + " is required")
	}
	return v, nil
}

// queryCalendarTypes parses the comma-separated `types` subset of
// `issues,milestones,releases,pulls` (§6.1) into the calendar event-type
// filter set; an empty result means "no filter" (all types).
func queryCalendarTypes(r *http.Request) (map[derive.CalendarEventType]bool, error) {
	v := r.URL.Query().Get("types")
	if v == "" {
		return nil, nil
	}
	allowed := map[string][]derive.CalendarEventType{
		"issues":     {derive.EventIssueCreated, derive.EventIssueClosed},
		"milestones": {derive.EventMilestoneDue, derive.EventMilestoneClosed},
		"releases":   {derive.EventReleasePublished},
		"pulls":      {derive.EventPRMerged},
	}
	out := map[derive.CalendarEventType]bool{}
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		events, ok := allowed[part]
		if !ok {
			return nil, validationErr("types must be a comma-separated subset of issues,milestones,releases,pulls")
		}
		for _, e := range events {
			out[e] = true
		}
	}
	return out, nil
}

func querySortBy(r *http.Request) derive.ContributorSortBy {
	if queryString(r, "sort_by", "") == "prs" {
		return derive.SortByPRs
	}
	return derive.SortByIssues
}
