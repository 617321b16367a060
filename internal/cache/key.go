package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

const keyPrefix = "headcount"

// Kind names a family of cached responses. Each kind has its own base TTL.
type Kind string

const (
	KindTodayStats     Kind = "today_stats"
	KindRangeStats     Kind = "range_stats"
	KindDailyRollups   Kind = "daily_rollups"
	KindMonthlyRollups Kind = "monthly_rollups"
)

// Query is the parameter set a cached response depends on.
// Zero-valued fields are left out of the key.
type Query struct {
	Kind                Kind
	Start               time.Time
	End                 time.Time
	Today               time.Time
	IncludeDemographics bool
	Limit               int
	Extra               map[string]string
}

// KeyFor builds the canonical key for q: every set parameter rendered as
// name=value, sorted by name, hashed with xxhash64.
func KeyFor(q Query) string {
	params := make(map[string]string, 5+len(q.Extra))
	if !q.Start.IsZero() {
		params["start"] = q.Start.Format(time.DateOnly)
	}
	if !q.End.IsZero() {
		params["end"] = q.End.Format(time.DateOnly)
	}
	if !q.Today.IsZero() {
		params["today"] = q.Today.Format(time.DateOnly)
	}
	params["include_demographics"] = strconv.FormatBool(q.IncludeDemographics)
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	for k, v := range q.Extra {
		params["x."+k] = v
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}

	return fmt.Sprintf("%s:%s:%016x", keyPrefix, q.Kind, xxhash.Sum64String(b.String()))
}

// kindOf recovers the kind segment of a key built by KeyFor.
func kindOf(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 || parts[0] != keyPrefix {
		return "unknown"
	}
	return parts[1]
}
