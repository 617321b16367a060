package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/headcount-lab/headcount/internal/cache"
	"github.com/headcount-lab/headcount/internal/core/demographics"
	"github.com/headcount-lab/headcount/internal/core/storage"
	"github.com/headcount-lab/headcount/internal/core/tier"
	"github.com/headcount-lab/headcount/internal/metrics"
)

const (
	DefaultDailyLimit   = 30
	DefaultMonthlyLimit = 12
)

var (
	// ErrInvalidDateFormat marks a date parameter that is not YYYY-MM-DD (or a
	// malformed year/month pair). Maps to HTTP 400.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// ResponseCache is the subset of the response cache the query layer needs.
type ResponseCache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// Service answers today, range and rollup-listing queries. Range queries are
// routed to raw events, daily rollups or monthly rollups by tier.Select and
// every series is zero-filled.
type Service struct {
	rawStore    storage.RawEventStore
	rollupStore storage.RollupStore
	cache       ResponseCache
	policy      cache.Policy
	loc         *time.Location
	nowFn       func() time.Time
}

// NewService creates a new query service. responses may be nil to disable
// caching.
func NewService(
	rawStore storage.RawEventStore,
	rollupStore storage.RollupStore,
	responses ResponseCache,
	policy cache.Policy,
	loc *time.Location,
) *Service {
	if rawStore == nil {
		panic("projection: raw event store must not be nil")
	}
	if rollupStore == nil {
		panic("projection: rollup store must not be nil")
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Service{
		rawStore:    rawStore,
		rollupStore: rollupStore,
		cache:       responses,
		policy:      policy,
		loc:         loc,
		nowFn:       time.Now,
	}
}

// Today returns the current calendar date in the service zone.
func (s *Service) Today() time.Time {
	return demographics.StartOfDay(s.nowFn(), s.loc)
}

// GetTodayStats returns the totals and 24-hour breakdown of one day, today
// unless q.Date is set.
func (s *Service) GetTodayStats(ctx context.Context, q TodayQuery) (*TodayStatsResponse, error) {
	today := s.Today()
	day := today
	if !q.Date.IsZero() {
		day = s.localDate(q.Date)
	}

	key := cache.KeyFor(cache.Query{
		Kind:                cache.KindTodayStats,
		Today:               day,
		IncludeDemographics: q.IncludeDemographics,
	})
	ttl := s.policy.TTL(cache.KindTodayStats, day, today)

	v, err := s.cached(key, ttl, q.NoCache, func() (any, error) {
		events, err := s.rawStore.ListRawEvents(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			return nil, fmt.Errorf("list raw events for %s: %w", day.Format(demographics.DayLayout), err)
		}

		resp := &TodayStatsResponse{
			Date:            day.Format(demographics.DayLayout),
			Totals:          demographics.ComputeTotals(events),
			HourlyBreakdown: demographics.AggregateByHour(events, day, s.loc),
		}
		if q.IncludeDemographics {
			d := demographics.ComputeDemographics(events)
			resp.Demographics = &d
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TodayStatsResponse), nil
}

// GetRangeStats returns the zero-filled series for the inclusive date range
// [q.Start, q.End], read from the tier chosen by tier.Select.
func (s *Service) GetRangeStats(ctx context.Context, q RangeQuery) (*RangeStatsResponse, error) {
	plan, err := tier.Select(q.Start, q.End)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	key := cache.KeyFor(cache.Query{
		Kind:                cache.KindRangeStats,
		Start:               plan.Start,
		End:                 plan.End,
		IncludeDemographics: q.IncludeDemographics,
	})
	ttl := s.policy.TTL(cache.KindRangeStats, plan.End, today)

	v, err := s.cached(key, ttl, q.NoCache, func() (any, error) {
		metrics.QueriesByTier.WithLabelValues(string(plan.Tier)).Inc()
		slog.Debug("[Projection] Range query routed",
			"start", plan.Start.Format(demographics.DayLayout),
			"end", plan.End.Format(demographics.DayLayout),
			"tier", plan.Tier,
			"granularity", plan.Granularity,
		)

		switch plan.Tier {
		case tier.RawTier:
			return s.rangeFromRaw(ctx, plan, q.IncludeDemographics)
		case tier.DailyTier:
			return s.rangeFromDaily(ctx, plan, q.IncludeDemographics)
		default:
			return s.rangeFromMonthly(ctx, plan, q.IncludeDemographics)
		}
	})
	if err != nil {
		return nil, err
	}
	return v.(*RangeStatsResponse), nil
}

func (s *Service) rangeFromRaw(ctx context.Context, plan tier.Plan, withDemo bool) (*RangeStatsResponse, error) {
	days := plan.Days(s.loc)
	first, last := days[0], days[len(days)-1]

	events, err := s.rawStore.ListRawEvents(ctx, first, last.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list raw events: %w", err)
	}

	resp := &RangeStatsResponse{
		Type:   string(plan.Granularity),
		Tier:   string(plan.Tier),
		Totals: demographics.ComputeTotals(events),
		Data:   make(map[string]RangeEntry),
	}

	if plan.Granularity == tier.Hourly {
		resp.Date = first.Format(demographics.DayLayout)
		for hour, totals := range demographics.AggregateByHour(events, first, s.loc) {
			resp.Data[hour] = RangeEntry{Totals: totals}
		}
	} else {
		resp.StartDate = first.Format(demographics.DayLayout)
		resp.EndDate = last.Format(demographics.DayLayout)

		var perDay map[string]demographics.Buckets
		if withDemo {
			perDay = demographics.GroupByDay(events, s.loc)
		}
		for day, totals := range demographics.AggregateByDay(events, first, last, s.loc) {
			resp.Data[day] = entry(totals, perDay, day, withDemo)
		}
	}

	if withDemo {
		d := demographics.ComputeDemographics(events)
		resp.Demographics = &d
	}
	return resp, nil
}

func (s *Service) rangeFromDaily(ctx context.Context, plan tier.Plan, withDemo bool) (*RangeStatsResponse, error) {
	days := plan.Days(s.loc)
	first, last := days[0], days[len(days)-1]

	rollups, err := s.rollupStore.ListDailyRollups(ctx, storage.DailyFilter{From: first, To: last})
	if err != nil {
		return nil, fmt.Errorf("list daily rollups: %w", err)
	}

	perDay := make(map[string]demographics.Buckets, len(rollups))
	for _, r := range rollups {
		perDay[r.Key()] = r.Buckets
	}

	resp := &RangeStatsResponse{
		Type:      string(plan.Granularity),
		Tier:      string(plan.Tier),
		StartDate: first.Format(demographics.DayLayout),
		EndDate:   last.Format(demographics.DayLayout),
		Totals:    demographics.ComputeTotals(rollups),
		Data:      make(map[string]RangeEntry, len(days)),
	}
	for _, d := range days {
		key := d.Format(demographics.DayLayout)
		resp.Data[key] = entry(perDay[key].Totals(), perDay, key, withDemo)
	}
	if withDemo {
		d := demographics.ComputeDemographics(rollups)
		resp.Demographics = &d
	}
	return resp, nil
}

func (s *Service) rangeFromMonthly(ctx context.Context, plan tier.Plan, withDemo bool) (*RangeStatsResponse, error) {
	months := plan.Months
	rollups, err := s.rollupStore.ListMonthlyRollups(ctx, storage.MonthlyFilter{
		From: months[0],
		To:   months[len(months)-1],
	})
	if err != nil {
		return nil, fmt.Errorf("list monthly rollups: %w", err)
	}

	perMonth := make(map[string]demographics.Buckets, len(rollups))
	for _, r := range rollups {
		perMonth[r.Key()] = r.Buckets
	}

	resp := &RangeStatsResponse{
		Type:       string(plan.Granularity),
		Tier:       string(plan.Tier),
		StartMonth: months[0].Format(demographics.MonthLayout),
		EndMonth:   months[len(months)-1].Format(demographics.MonthLayout),
		Totals:     demographics.ComputeTotals(rollups),
		Data:       make(map[string]RangeEntry, len(months)),
	}
	for month, totals := range demographics.AggregateByMonth(rollups, months) {
		resp.Data[month] = entry(totals, perMonth, month, withDemo)
	}
	if withDemo {
		d := demographics.ComputeDemographics(rollups)
		resp.Demographics = &d
	}
	return resp, nil
}

// ListDailyRollups returns daily rollups newest first.
func (s *Service) ListDailyRollups(ctx context.Context, q DailyListQuery) ([]demographics.DailyRollup, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultDailyLimit
	}
	filter := storage.DailyFilter{Limit: q.Limit}
	if !q.Start.IsZero() {
		filter.From = s.localDate(q.Start)
	}
	if !q.End.IsZero() {
		filter.To = s.localDate(q.End)
	}

	key := cache.KeyFor(cache.Query{
		Kind:  cache.KindDailyRollups,
		Start: filter.From,
		End:   filter.To,
		Limit: q.Limit,
	})
	ttl := s.policy.TTL(cache.KindDailyRollups, filter.To, s.Today())

	v, err := s.cached(key, ttl, false, func() (any, error) {
		rollups, err := s.rollupStore.ListDailyRollups(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list daily rollups: %w", err)
		}
		return rollups, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]demographics.DailyRollup), nil
}

// ListMonthlyRollups returns monthly rollups newest first.
func (s *Service) ListMonthlyRollups(ctx context.Context, q MonthlyListQuery) ([]demographics.MonthlyRollup, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultMonthlyLimit
	}
	filter := storage.MonthlyFilter{From: q.Start, To: q.End, Limit: q.Limit}

	key := cache.KeyFor(cache.Query{
		Kind:  cache.KindMonthlyRollups,
		Start: filter.From,
		End:   filter.To,
		Limit: q.Limit,
	})
	// The upper bound is a month; it stays live until that month is over.
	liveEnd := filter.To
	if !liveEnd.IsZero() {
		liveEnd = liveEnd.AddDate(0, 1, -1)
	}
	ttl := s.policy.TTL(cache.KindMonthlyRollups, liveEnd, s.Today())

	v, err := s.cached(key, ttl, false, func() (any, error) {
		rollups, err := s.rollupStore.ListMonthlyRollups(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list monthly rollups: %w", err)
		}
		return rollups, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]demographics.MonthlyRollup), nil
}

// cached serves key from the response cache, or computes and stores it.
// bypass skips the lookup but still refreshes the entry.
func (s *Service) cached(key string, ttl time.Duration, bypass bool, compute func() (any, error)) (any, error) {
	if s.cache != nil && !bypass {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
	}

	v, err := compute()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, v, ttl)
	}
	return v, nil
}

// localDate keeps the calendar date of t as written, at midnight in the
// service zone.
func (s *Service) localDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

func entry(totals demographics.Totals, buckets map[string]demographics.Buckets, key string, withDemo bool) RangeEntry {
	e := RangeEntry{Totals: totals}
	if withDemo {
		d := buckets[key].Demographics()
		e.Demographics = &d
	}
	return e
}
