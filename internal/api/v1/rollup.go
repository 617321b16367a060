package v1

import (
	"github.com/headcount-lab/headcount/internal/core/demographics"
)

// DailyRollupRecord is the listing view of one daily rollup.
type DailyRollupRecord struct {
	Date         string                    `json:"date"`
	MaleCount    int64                     `json:"male_count"`
	FemaleCount  int64                     `json:"female_count"`
	TotalCount   int64                     `json:"total_count"`
	Demographics demographics.Demographics `json:"demographics"`
}

// MonthlyRollupRecord is the listing view of one monthly rollup.
type MonthlyRollupRecord struct {
	Year         int                       `json:"year"`
	Month        int                       `json:"month"`
	MonthName    string                    `json:"month_name"`
	MaleCount    int64                     `json:"male_count"`
	FemaleCount  int64                     `json:"female_count"`
	TotalCount   int64                     `json:"total_count"`
	Demographics demographics.Demographics `json:"demographics"`
}

func NewDailyRollupRecord(r demographics.DailyRollup) DailyRollupRecord {
	return DailyRollupRecord{
		Date:         r.Key(),
		MaleCount:    r.Buckets.Male(),
		FemaleCount:  r.Buckets.Female(),
		TotalCount:   r.Buckets.Total(),
		Demographics: r.Buckets.Demographics(),
	}
}

func NewMonthlyRollupRecord(r demographics.MonthlyRollup) MonthlyRollupRecord {
	return MonthlyRollupRecord{
		Year:         r.Year,
		Month:        int(r.Month),
		MonthName:    r.Month.String(),
		MaleCount:    r.Buckets.Male(),
		FemaleCount:  r.Buckets.Female(),
		TotalCount:   r.Buckets.Total(),
		Demographics: r.Buckets.Demographics(),
	}
}
