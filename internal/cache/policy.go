package cache

import "time"

const (
	DefaultTTL     = 300 * time.Second
	DefaultLiveTTL = 60 * time.Second
)

// Policy decides how long a response may be cached.
type Policy struct {
	// Base TTL per kind. Kinds not listed use Default.
	TTLs    map[Kind]time.Duration
	Default time.Duration
	// LiveTTL caps every response whose range reaches today.
	LiveTTL time.Duration
}

// DefaultPolicy mirrors the stock timeouts: five minutes, one minute when live.
func DefaultPolicy() Policy {
	return Policy{
		TTLs: map[Kind]time.Duration{
			KindTodayStats:     DefaultLiveTTL,
			KindRangeStats:     DefaultTTL,
			KindDailyRollups:   DefaultTTL,
			KindMonthlyRollups: DefaultTTL,
		},
		Default: DefaultTTL,
		LiveTTL: DefaultLiveTTL,
	}
}

// TTL returns the lifetime of a kind response whose range ends at end, as
// seen on the calendar day today. A zero end means "no upper bound", which
// is treated as live.
func (p Policy) TTL(kind Kind, end, today time.Time) time.Duration {
	ttl, ok := p.TTLs[kind]
	if !ok || ttl <= 0 {
		ttl = p.Default
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	live := p.LiveTTL
	if live <= 0 {
		live = DefaultLiveTTL
	}

	if kind == KindTodayStats || end.IsZero() || !dateOf(end).Before(dateOf(today)) {
		return min(ttl, live)
	}
	return ttl
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
