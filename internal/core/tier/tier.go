// Package tier picks the storage tier and output granularity that answer a
// date-range query.
package tier

import (
	"errors"
	"fmt"
	"time"

	"github.com/headcount-lab/headcount/internal/core/demographics"
)

// Tier is the storage level a query reads from.
type Tier string

const (
	RawTier     Tier = "raw"
	DailyTier   Tier = "daily_rollup"
	MonthlyTier Tier = "monthly_rollup"
)

// Granularity is the unit of the zero-filled output series.
type Granularity string

const (
	Hourly  Granularity = "hourly"
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

const (
	// RawDailyMaxDays is the widest range (end - start, in days) still served
	// from raw events.
	RawDailyMaxDays = 7
	// DailyRollupMaxDays is the widest range served from daily rollups.
	DailyRollupMaxDays = 31
)

// ErrInvalidRange is returned when end is before start.
var ErrInvalidRange = errors.New("end date is before start date")

// Plan is the routing decision for one inclusive [Start, End] date range.
type Plan struct {
	Tier        Tier
	Granularity Granularity
	Start       time.Time
	End         time.Time
	// DiffDays is End - Start in whole days (0 for a single day).
	DiffDays int
	// Months holds the first day of every touched month, ascending. Only set
	// for the monthly tier.
	Months []time.Time
}

// Select routes a date range. Start and end are calendar dates; their clock
// components and zone are ignored.
func Select(start, end time.Time) (Plan, error) {
	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return Plan{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			start.Format(demographics.DayLayout), end.Format(demographics.DayLayout))
	}

	diff := int(end.Sub(start).Hours() / 24)
	p := Plan{Start: start, End: end, DiffDays: diff}

	switch {
	case diff == 0:
		p.Tier, p.Granularity = RawTier, Hourly
	case diff <= RawDailyMaxDays:
		p.Tier, p.Granularity = RawTier, Daily
	case diff <= DailyRollupMaxDays:
		p.Tier, p.Granularity = DailyTier, Daily
	default:
		p.Tier, p.Granularity = MonthlyTier, Monthly
		p.Months = MonthsBetween(start, end)
	}
	return p, nil
}

// Days enumerates every calendar day of the plan in loc.
func (p Plan) Days(loc *time.Location) []time.Time {
	first := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, loc)
	var days []time.Time
	for i := 0; i <= p.DiffDays; i++ {
		days = append(days, first.AddDate(0, 0, i))
	}
	return days
}

// MonthsBetween lists the first day of each month touched by [start, end].
func MonthsBetween(start, end time.Time) []time.Time {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	var months []time.Time
	for !cur.After(last) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// dateOnly keeps the calendar date of t as written, at UTC midnight, so day
// differences are never skewed by DST.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
