package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/headcount-lab/headcount/internal/core/demographics"
)

var (
	// ErrValidation marks a payload whose fields are missing or out of range.
	ErrValidation = errors.New("validation error")
	// ErrInvalidPayloadFormat marks a payload that is neither the detailed
	// nor the simple detections form.
	ErrInvalidPayloadFormat = errors.New("invalid payload format")
)

// Payload forms accepted for one gender's counts.
const (
	FormDetailed = "detailed"
	FormSimple   = "simple"
)

type countsKind int

const (
	countsMissing countsKind = iota
	countsSimple
	countsDetailed
	countsInvalid
)

// GenderCounts is one gender's counts: either a single integer (simple form)
// or an object keyed by age band label (detailed form).
type GenderCounts struct {
	kind    countsKind
	simple  int64
	bands   map[string]int64
	badKeys []string
}

// SimpleCounts builds the simple form.
func SimpleCounts(n int64) GenderCounts {
	return GenderCounts{kind: countsSimple, simple: n}
}

// DetailedCounts builds the detailed form.
func DetailedCounts(bands map[string]int64) GenderCounts {
	return GenderCounts{kind: countsDetailed, bands: bands}
}

func (g *GenderCounts) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*g = GenderCounts{kind: countsMissing}
	case data[0] == '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := GenderCounts{kind: countsDetailed, bands: make(map[string]int64, len(raw))}
		for label, v := range raw {
			n, err := strconv.ParseInt(string(bytes.TrimSpace(v)), 10, 64)
			if err != nil {
				out.badKeys = append(out.badKeys, label)
				continue
			}
			out.bands[label] = n
		}
		sort.Strings(out.badKeys)
		*g = out
	default:
		n, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			*g = GenderCounts{kind: countsInvalid}
			return nil
		}
		*g = GenderCounts{kind: countsSimple, simple: n}
	}
	return nil
}

func (g GenderCounts) MarshalJSON() ([]byte, error) {
	switch g.kind {
	case countsSimple:
		return json.Marshal(g.simple)
	case countsDetailed:
		return json.Marshal(g.bands)
	default:
		return []byte("null"), nil
	}
}

// Detections holds both genders' counts.
type Detections struct {
	Male   GenderCounts `json:"male"`
	Female GenderCounts `json:"female"`
}

// Detection is one per-minute ingestion payload.
type Detection struct {
	Timestamp  time.Time  `json:"timestamp"`
	Detections Detections `json:"detections"`
}

// Validate checks required fields and that both genders use the same form.
// Detailed forms must carry an integer for every age band; bands holding a
// non-integer value are named in the error.
func (d *Detection) Validate() error {
	if d.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrValidation)
	}

	male, female := d.Detections.Male, d.Detections.Female
	if male.kind == countsMissing || female.kind == countsMissing {
		return fmt.Errorf("%w: detections must contain 'male' and 'female' keys", ErrValidation)
	}
	if male.kind != female.kind || male.kind == countsInvalid {
		return fmt.Errorf("%w: detections payload must contain either detailed age-gender objects or simple male/female integer counts", ErrInvalidPayloadFormat)
	}

	if male.kind == countsDetailed {
		for _, side := range []struct {
			name   string
			counts GenderCounts
		}{{"male", male}, {"female", female}} {
			var bad []string
			for _, label := range side.counts.badKeys {
				if _, ok := demographics.BandIndex(label); ok {
					bad = append(bad, label)
				}
			}
			if len(bad) > 0 {
				return fmt.Errorf("%w: %s counts must be integers: %s",
					ErrValidation, side.name, strings.Join(bad, ", "))
			}
			for _, label := range demographics.Bands {
				if _, ok := side.counts.bands[label]; !ok {
					return fmt.Errorf("%w: %s %s is missing", ErrValidation, side.name, label)
				}
			}
		}
	}

	if err := d.Buckets().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Form reports which payload form was used. Only meaningful after Validate.
func (d *Detection) Form() string {
	if d.Detections.Male.kind == countsSimple {
		return FormSimple
	}
	return FormDetailed
}

// Buckets maps the payload onto the 12 counters. Simple counts land in the
// 20-29 band; unknown band labels are ignored.
func (d *Detection) Buckets() demographics.Buckets {
	var b demographics.Buckets
	for _, side := range []struct {
		gender demographics.Gender
		counts GenderCounts
	}{{demographics.Male, d.Detections.Male}, {demographics.Female, d.Detections.Female}} {
		switch side.counts.kind {
		case countsSimple:
			band, _ := demographics.BandIndex("20-29")
			b.Set(side.gender, band, side.counts.simple)
		case countsDetailed:
			for label, n := range side.counts.bands {
				if band, ok := demographics.BandIndex(label); ok {
					b.Set(side.gender, band, n)
				}
			}
		}
	}
	return b
}

// DetectionRecord is the stored view of one raw event.
type DetectionRecord struct {
	ID           int64                     `json:"id"`
	Timestamp    time.Time                 `json:"timestamp"`
	MaleCount    int64                     `json:"male_count"`
	FemaleCount  int64                     `json:"female_count"`
	TotalCount   int64                     `json:"total_count"`
	Demographics demographics.Demographics `json:"demographics"`
}

// NewDetectionRecord renders a raw event for API responses.
func NewDetectionRecord(evt demographics.RawEvent) DetectionRecord {
	return DetectionRecord{
		ID:           evt.ID,
		Timestamp:    evt.Timestamp,
		MaleCount:    evt.Buckets.Male(),
		FemaleCount:  evt.Buckets.Female(),
		TotalCount:   evt.Buckets.Total(),
		Demographics: evt.Buckets.Demographics(),
	}
}
