package derive

import (
	"time"

	"github.com/prabasiva/greport/internal/warehouse"
)

// BurndownOptions carries the caller-overridable knobs §9 Open Question 3
// resolves as constructor parameters rather than hidden constants.
type BurndownOptions struct {
	// ProjectionWindow is how many trailing real data points the
	// projected-completion slope is fit over. Default 7.
	ProjectionWindow int
}

// DefaultBurndownOptions matches §4.5's stated defaults.
func DefaultBurndownOptions() BurndownOptions {
	return BurndownOptions{ProjectionWindow: 7}
}

// BurndownPoint is one day's remaining/completed/ideal count.
type BurndownPoint struct {
	Date      time.Time `json:"date"`
	Remaining int       `json:"remaining"`
	Completed int       `json:"completed"`
	Ideal     float64   `json:"ideal_burndown"`
}

// BurndownReport is the §4.5 Burndown result for one milestone.
type BurndownReport struct {
	MilestoneTitle      string          `json:"milestone_title"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             time.Time       `json:"end_date"`
	Total               int             `json:"total"`
	Points              []BurndownPoint `json:"points"`
	ProjectedCompletion *time.Time      `json:"projected_completion"`
}

// ComputeBurndown implements §4.5 Burndown over a milestone and the issues
// linked to it (open or closed).
func ComputeBurndown(milestone warehouse.Milestone, issues []warehouse.Issue, now time.Time, opts BurndownOptions) BurndownReport {
	if opts.ProjectionWindow <= 0 {
		opts.ProjectionWindow = 7
	}

	startDate := truncateDay(milestone.CreatedAt)
	endDate := truncateDay(now)
	if milestone.DueOn != nil {
		endDate = truncateDay(*milestone.DueOn)
	}

	total := len(issues)
	report := BurndownReport{
		MilestoneTitle: milestone.Title,
		StartDate:      startDate,
		EndDate:        endDate,
		Total:          total,
	}

	if !endDate.After(startDate) {
		endDate = startDate
	}
	totalDays := daysBetween(startDate, endDate)
	if totalDays < 0 {
		totalDays = 0
	}

	var points []BurndownPoint
	for d := 0; d <= totalDays; d++ {
		date := startDate.AddDate(0, 0, d)
		cutoff := endOfDay(date)

		remaining := 0
		for _, issue := range issues {
			if issue.CreatedAt.After(cutoff) {
				continue
			}
			if issue.ClosedAt == nil || issue.ClosedAt.After(cutoff) {
				remaining++
			}
		}
		completed := total - remaining

		var ideal float64
		if totalDays > 0 {
			ideal = float64(total) * (1 - float64(d)/float64(totalDays))
		}

		points = append(points, BurndownPoint{Date: date, Remaining: remaining, Completed: completed, Ideal: ideal})
	}
	report.Points = points
	report.ProjectedCompletion = projectCompletion(points, now, opts.ProjectionWindow)

	return report
}

// projectCompletion fits a line over the trailing window real points'
// remaining counts and extrapolates to zero (§4.5: "extrapolation from the
// last 7 real points' slope; null if the slope is non-negative").
func projectCompletion(points []BurndownPoint, now time.Time, window int) *time.Time {
	var real []BurndownPoint
	for _, p := range points {
		if !p.Date.After(now) {
			real = append(real, p)
		}
	}
	if len(real) < 2 {
		return nil
	}
	if len(real) > window {
		real = real[len(real)-window:]
	}

	n := float64(len(real))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range real {
		x := float64(i)
		y := float64(p.Remaining)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	if slope >= 0 {
		return nil
	}
	// remaining(x) = intercept + slope*x; find x where it crosses 0.
	zeroX := -intercept / slope
	lastIdx := len(real) - 1
	deltaDays := zeroX - float64(lastIdx)
	if deltaDays < 0 {
		deltaDays = 0
	}
	completion := real[lastIdx].Date.AddDate(0, 0, int(deltaDays+0.5))
	return &completion
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
