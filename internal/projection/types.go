package projection

import (
	"time"

	"github.com/headcount-lab/headcount/internal/core/demographics"
)

// TodayQuery holds the parameters of a today-stats request.
type TodayQuery struct {
	IncludeDemographics bool
	NoCache             bool
	// Date overrides "today". Zero means the current date in the service zone.
	Date time.Time
}

// RangeQuery holds the parameters of a range-stats request. Start and End are
// inclusive calendar dates.
type RangeQuery struct {
	Start               time.Time
	End                 time.Time
	IncludeDemographics bool
	NoCache             bool
}

// DailyListQuery filters the daily rollup listing. Zero dates are unbounded.
type DailyListQuery struct {
	Start time.Time
	End   time.Time
	Limit int
}

// MonthlyListQuery filters the monthly rollup listing by first-of-month
// bounds. Zero bounds are unbounded.
type MonthlyListQuery struct {
	Start time.Time
	End   time.Time
	Limit int
}

// TodayStatsResponse is the body of GET /v1/stats/today.
type TodayStatsResponse struct {
	Date            string                         `json:"date"`
	Totals          demographics.Totals            `json:"totals"`
	HourlyBreakdown map[string]demographics.Totals `json:"hourly_breakdown"`
	Demographics    *demographics.Demographics     `json:"demographics,omitempty"`
}

// RangeEntry is one point of a range series. Demographics is only set for
// day and month points when requested.
type RangeEntry struct {
	demographics.Totals
	Demographics *demographics.Demographics `json:"demographics,omitempty"`
}

// RangeStatsResponse is the body of GET /v1/stats/range/:start/:end. Exactly
// one of Date, StartDate/EndDate or StartMonth/EndMonth is set, by Type.
type RangeStatsResponse struct {
	Type         string                     `json:"type"`
	Tier         string                     `json:"tier"`
	Date         string                     `json:"date,omitempty"`
	StartDate    string                     `json:"start_date,omitempty"`
	EndDate      string                     `json:"end_date,omitempty"`
	StartMonth   string                     `json:"start_month,omitempty"`
	EndMonth     string                     `json:"end_month,omitempty"`
	Totals       demographics.Totals        `json:"totals"`
	Data         map[string]RangeEntry      `json:"data"`
	Demographics *demographics.Demographics `json:"demographics,omitempty"`
}
