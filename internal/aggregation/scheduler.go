package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultRunAt is the local wall-clock time of the daily rollup.
const DefaultRunAt = "03:00"

// Runner executes one rollup run.
type Runner interface {
	Run(ctx context.Context) (RunResult, error)
}

// Scheduler runs the rollup once on start, then every day at a fixed
// wall-clock time in the service time zone. It is owned by the caller's
// context: Start returns when that context is cancelled.
type Scheduler struct {
	runner     Runner
	clock      clockwork.Clock
	loc        *time.Location
	hour       int
	minute     int
	runOnStart bool
	trigger    chan struct{}
}

// ParseRunAt parses an "HH:MM" wall-clock time.
func ParseRunAt(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid run_at %q (want HH:MM): %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// NewScheduler creates a daily scheduler. A nil clock means the real clock.
func NewScheduler(runner Runner, clock clockwork.Clock, loc *time.Location, runAt string, runOnStart bool) (*Scheduler, error) {
	if runner == nil {
		panic("aggregation: scheduler runner must not be nil")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	if runAt == "" {
		runAt = DefaultRunAt
	}
	hour, minute, err := ParseRunAt(runAt)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		runner:     runner,
		clock:      clock,
		loc:        loc,
		hour:       hour,
		minute:     minute,
		runOnStart: runOnStart,
		trigger:    make(chan struct{}, 1),
	}, nil
}

// NextRun returns the first scheduled time strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// TriggerNow asks the loop for an immediate run. It never blocks; false
// means a request is already pending.
func (s *Scheduler) TriggerNow() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Start runs until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	slog.Info("[Scheduler] Starting rollup scheduler",
		"run_at", fmt.Sprintf("%02d:%02d", s.hour, s.minute),
		"timezone", s.loc.String(),
		"run_on_start", s.runOnStart,
	)

	if s.runOnStart {
		s.runOnce(ctx, "startup")
	}

	for {
		now := s.clock.Now()
		next := s.NextRun(now)
		timer := s.clock.NewTimer(next.Sub(now))
		slog.Info("[Scheduler] Next rollup scheduled", "at", next)

		select {
		case <-timer.Chan():
			s.runOnce(ctx, "schedule")
		case <-s.trigger:
			timer.Stop()
			s.runOnce(ctx, "manual")
		case <-ctx.Done():
			timer.Stop()
			slog.Info("[Scheduler] Stopping (context cancelled)")
			return nil
		}
	}
}

// runOnce logs failures and keeps the chain alive.
func (s *Scheduler) runOnce(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	result, err := s.runner.Run(ctx)
	if err != nil {
		slog.Error("[Scheduler] Rollup run failed", "reason", reason, "error", err)
		return
	}
	slog.Info("[Scheduler] Rollup run finished",
		"reason", reason,
		"run_id", result.RunID,
		"processed", result.Processed,
	)
}
