package postgres

import (
	"fmt"
	"time"

	"github.com/headcount-lab/headcount/internal/core/demographics"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// bucketArgs flattens buckets into positional SQL arguments.
func bucketArgs(b demographics.Buckets) []interface{} {
	args := make([]interface{}, 0, demographics.BucketCount)
	for _, v := range b {
		args = append(args, v)
	}
	return args
}

// bucketDest returns scan destinations for every bucket column.
func bucketDest(b *demographics.Buckets) []interface{} {
	dest := make([]interface{}, 0, demographics.BucketCount)
	for i := range b {
		dest = append(dest, &b[i])
	}
	return dest
}

// scanRawEvent scans id, ts, the bucket columns and consumed.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanRawEvent(row scanner) (demographics.RawEvent, error) {
	var evt demographics.RawEvent
	dest := []interface{}{&evt.ID, &evt.Timestamp}
	dest = append(dest, bucketDest(&evt.Buckets)...)
	dest = append(dest, &evt.Consumed)

	if err := row.Scan(dest...); err != nil {
		return demographics.RawEvent{}, fmt.Errorf("failed to scan raw event row: %w", err)
	}
	return evt, nil
}

func scanDailyRollup(row scanner, loc *time.Location) (demographics.DailyRollup, error) {
	var (
		day    string
		rollup demographics.DailyRollup
	)
	dest := append([]interface{}{&day}, bucketDest(&rollup.Buckets)...)
	if err := row.Scan(dest...); err != nil {
		return demographics.DailyRollup{}, fmt.Errorf("failed to scan daily rollup row: %w", err)
	}

	parsed, err := time.ParseInLocation(demographics.DayLayout, day, loc)
	if err != nil {
		return demographics.DailyRollup{}, fmt.Errorf("parse rollup day %q: %w", day, err)
	}
	rollup.Day = parsed
	return rollup, nil
}

func scanMonthlyRollup(row scanner) (demographics.MonthlyRollup, error) {
	var (
		month  int
		rollup demographics.MonthlyRollup
	)
	dest := append([]interface{}{&rollup.Year, &month}, bucketDest(&rollup.Buckets)...)
	if err := row.Scan(dest...); err != nil {
		return demographics.MonthlyRollup{}, fmt.Errorf("failed to scan monthly rollup row: %w", err)
	}
	rollup.Month = time.Month(month)
	return rollup, nil
}

// dayBounds converts an optional day range into inclusive ISO date strings.
func dayBounds(from, to time.Time, loc *time.Location) (string, string) {
	lo, hi := "0001-01-01", "9999-12-31"
	if !from.IsZero() {
		lo = demographics.DayKey(from, loc)
	}
	if !to.IsZero() {
		hi = demographics.DayKey(to, loc)
	}
	return lo, hi
}

// monthBounds converts an optional month range into inclusive year*100+month keys.
func monthBounds(from, to time.Time) (int, int) {
	lo, hi := 0, 999912
	if !from.IsZero() {
		lo = from.Year()*100 + int(from.Month())
	}
	if !to.IsZero() {
		hi = to.Year()*100 + int(to.Month())
	}
	return lo, hi
}
