// Package demographics holds the bucketed counter record shared by raw
// events and rollups, plus the pure functions that summarize collections of
// those records.
package demographics

import (
	"fmt"
	"time"
)

// Gender selects one half of a Buckets vector.
type Gender int

const (
	Male Gender = iota
	Female
)

func (g Gender) String() string {
	if g == Female {
		return "female"
	}
	return "male"
}

const (
	// BandCount is the number of age bands per gender.
	BandCount = 6
	// BucketCount is the number of counters in a Buckets vector.
	BucketCount = 2 * BandCount

	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Bands lists the age band labels in bucket order.
var Bands = [BandCount]string{"0-9", "10-19", "20-29", "30-39", "40-49", "50+"}

// BandIndex returns the position of an age band label.
func BandIndex(label string) (int, bool) {
	for i, b := range Bands {
		if b == label {
			return i, true
		}
	}
	return 0, false
}

// Index maps (gender, band) to the bucket position.
// Order: male 0-9 .. male 50+, female 0-9 .. female 50+.
func Index(g Gender, band int) int {
	return int(g)*BandCount + band
}

// Buckets is the 12-counter demographic vector.
// Male, Female and Total are always derived, never stored.
type Buckets [BucketCount]int64

func (b Buckets) Male() int64 {
	var n int64
	for i := 0; i < BandCount; i++ {
		n += b[i]
	}
	return n
}

func (b Buckets) Female() int64 {
	var n int64
	for i := BandCount; i < BucketCount; i++ {
		n += b[i]
	}
	return n
}

func (b Buckets) Total() int64 {
	return b.Male() + b.Female()
}

// Get returns the counter for one gender and band.
func (b Buckets) Get(g Gender, band int) int64 {
	return b[Index(g, band)]
}

// Set replaces the counter for one gender and band.
func (b *Buckets) Set(g Gender, band int, v int64) {
	b[Index(g, band)] = v
}

// Add sums other into b counter by counter.
func (b *Buckets) Add(other Buckets) {
	for i := range b {
		b[i] += other[i]
	}
}

// Validate rejects negative counters.
func (b Buckets) Validate() error {
	for i, v := range b {
		if v < 0 {
			g := Male
			if i >= BandCount {
				g = Female
			}
			return fmt.Errorf("%s %s count must be >= 0, got %d", g, Bands[i%BandCount], v)
		}
	}
	return nil
}

func (b Buckets) Totals() Totals {
	return Totals{Male: b.Male(), Female: b.Female(), Total: b.Total()}
}

func (b Buckets) Demographics() Demographics {
	d := EmptyDemographics()
	for i, label := range Bands {
		d.Male[label] = b[Index(Male, i)]
		d.Female[label] = b[Index(Female, i)]
	}
	return d
}

// Totals is the male/female/total summary of one or more records.
type Totals struct {
	Male   int64 `json:"male" yaml:"male"`
	Female int64 `json:"female" yaml:"female"`
	Total  int64 `json:"total" yaml:"total"`
}

func (t *Totals) add(o Totals) {
	t.Male += o.Male
	t.Female += o.Female
	t.Total += o.Total
}

// Demographics is the per-band breakdown keyed by band label.
type Demographics struct {
	Male   map[string]int64 `json:"male"`
	Female map[string]int64 `json:"female"`
}

// EmptyDemographics returns a breakdown with every band present and zero.
func EmptyDemographics() Demographics {
	d := Demographics{
		Male:   make(map[string]int64, BandCount),
		Female: make(map[string]int64, BandCount),
	}
	for _, label := range Bands {
		d.Male[label] = 0
		d.Female[label] = 0
	}
	return d
}

// Counted is implemented by every record that carries a Buckets vector.
type Counted interface {
	Counts() Buckets
}

// Timed is a Counted record anchored at a point in time.
type Timed interface {
	Counted
	At() time.Time
}

// RawEvent is one per-minute detection record. Only Consumed ever changes
// after insert, and only from false to true during a rollup run.
type RawEvent struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Buckets   Buckets   `json:"-"`
	Consumed  bool      `json:"consumed"`
}

func (e RawEvent) Counts() Buckets { return e.Buckets }
func (e RawEvent) At() time.Time { return e.Timestamp }
func (e RawEvent) Totals() Totals { return e.Buckets.Totals() }

// DailyRollup is the summed counters of every consumed raw event of one
// calendar day. Day is midnight in the service time zone.
type DailyRollup struct {
	Day     time.Time
	Buckets Buckets
}

func (d DailyRollup) Counts() Buckets { return d.Buckets }
func (d DailyRollup) At() time.Time { return d.Day }

// Key returns the ISO date of the rollup.
func (d DailyRollup) Key() string { return d.Day.Format(DayLayout) }

// MonthlyRollup is the sum of every DailyRollup in one calendar month.
type MonthlyRollup struct {
	Year    int
	Month   time.Month
	Buckets Buckets
}

func (m MonthlyRollup) Counts() Buckets { return m.Buckets }

// Key returns the "YYYY-MM" label of the rollup.
func (m MonthlyRollup) Key() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

// DayKey formats t as an ISO date in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
