package demographics

import (
	"strconv"
	"time"
)

// ComputeTotals sums male, female and total over records.
func ComputeTotals[R Counted](records []R) Totals {
	var t Totals
	for _, r := range records {
		t.add(r.Counts().Totals())
	}
	return t
}

// ComputeDemographics sums every bucket over records and returns the
// per-band breakdown. All bands are present even when zero.
func ComputeDemographics[R Counted](records []R) Demographics {
	return Sum(records).Demographics()
}

// Sum adds every record's buckets together.
func Sum[R Counted](records []R) Buckets {
	var b Buckets
	for _, r := range records {
		b.Add(r.Counts())
	}
	return b
}

// AggregateByHour groups the records that fall on day (in loc) by local hour.
// The result always has the 24 keys "0".."23"; records on other days are
// ignored.
func AggregateByHour[R Timed](records []R, day time.Time, loc *time.Location) map[string]Totals {
	hours := make(map[string]Totals, 24)
	for h := 0; h < 24; h++ {
		hours[strconv.Itoa(h)] = Totals{}
	}
	dayKey := DayKey(day, loc)
	for _, r := range records {
		if DayKey(r.At(), loc) != dayKey {
			continue
		}
		key := strconv.Itoa(r.At().In(loc).Hour())
		t := hours[key]
		t.add(r.Counts().Totals())
		hours[key] = t
	}
	return hours
}

// AggregateByDay groups records by calendar day in loc. Every day in
// [start, end] is present; records outside that range are ignored.
func AggregateByDay[R Timed](records []R, start, end time.Time, loc *time.Location) map[string]Totals {
	days := make(map[string]Totals)
	for _, d := range EnumerateDays(start, end, loc) {
		days[d.Format(DayLayout)] = Totals{}
	}
	for _, r := range records {
		key := DayKey(r.At(), loc)
		t, ok := days[key]
		if !ok {
			continue
		}
		t.add(r.Counts().Totals())
		days[key] = t
	}
	return days
}

// AggregateByMonth maps each requested month (first-of-month date) to the
// totals of its rollup, zero when the month has no rollup.
func AggregateByMonth(records []MonthlyRollup, months []time.Time) map[string]Totals {
	byKey := make(map[string]Totals, len(records))
	for _, m := range records {
		byKey[m.Key()] = m.Buckets.Totals()
	}
	out := make(map[string]Totals, len(months))
	for _, m := range months {
		key := m.Format(MonthLayout)
		out[key] = byKey[key]
	}
	return out
}

// GroupByDay sums records per calendar day in loc. Days without records are
// absent. Used to build daily rollup increments.
func GroupByDay[R Timed](records []R, loc *time.Location) map[string]Buckets {
	out := make(map[string]Buckets)
	for _, r := range records {
		key := DayKey(r.At(), loc)
		b := out[key]
		b.Add(r.Counts())
		out[key] = b
	}
	return out
}

// EnumerateDays lists midnight of every calendar day from start to end
// inclusive, in loc.
func EnumerateDays(start, end time.Time, loc *time.Location) []time.Time {
	first := StartOfDay(start, loc)
	last := StartOfDay(end, loc)
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
