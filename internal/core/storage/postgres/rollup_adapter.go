package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/headcount-lab/headcount/internal/core/demographics"
	"github.com/headcount-lab/headcount/internal/core/storage"
	"github.com/lib/pq"
)

// RollupAdapter implements storage.RollupStore using PostgreSQL.
// Consumed marking and daily increments are written in a single transaction,
// the atomicity contract that keeps raw and daily totals equal.
type RollupAdapter struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

// NewRollupAdapter creates a RollupAdapter sharing the given connection.
// loc is the service time zone that rollup days are expressed in.
func NewRollupAdapter(db *sql.DB, loc *time.Location) *RollupAdapter {
	if loc == nil {
		loc = time.Local
	}
	return &RollupAdapter{
		db:  db,
		loc: loc,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CommitDaily marks commit.EventIDs consumed and applies commit.Increments in
// one transaction guarded by a transaction-scoped advisory lock.
func (a *RollupAdapter) CommitDaily(ctx context.Context, commit storage.DailyCommit) error {
	batchSize := commit.BatchSize
	if batchSize <= 0 {
		batchSize = storage.DefaultMarkBatchSize
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rollup commit: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, queryAdvisoryXactLock, rollupLockKey); err != nil {
		return fmt.Errorf("rollup commit: acquire advisory lock: %w", err)
	}

	markStmt, err := tx.PrepareContext(ctx, queryMarkConsumed)
	if err != nil {
		return fmt.Errorf("rollup commit: prepare mark consumed: %w", err)
	}
	defer markStmt.Close()

	for start := 0; start < len(commit.EventIDs); start += batchSize {
		end := min(start+batchSize, len(commit.EventIDs))
		chunk := commit.EventIDs[start:end]

		result, err := markStmt.ExecContext(ctx, pq.Array(chunk))
		if err != nil {
			return fmt.Errorf("rollup commit: mark consumed batch at %d: %w", start, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rollup commit: check mark consumed batch: %w", err)
		}
		if affected != int64(len(chunk)) {
			return fmt.Errorf("rollup commit: marked %d of %d events: %w", affected, len(chunk), storage.ErrConcurrentRollup)
		}
	}

	upsertStmt, err := tx.PrepareContext(ctx, queryIncrementDaily)
	if err != nil {
		return fmt.Errorf("rollup commit: prepare daily upsert: %w", err)
	}
	defer upsertStmt.Close()

	updatedAt := a.now()
	for _, day := range sortedDays(commit.Increments) {
		args := append([]interface{}{day}, bucketArgs(commit.Increments[day])...)
		args = append(args, updatedAt)
		if _, err := upsertStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("rollup commit: upsert day %s: %w", day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rollup commit: commit: %w", err)
	}

	slog.Info("[RollupAdapter] Committed daily rollups",
		"events", len(commit.EventIDs),
		"days", len(commit.Increments),
		"batch_size", batchSize,
	)
	return nil
}

// ListDailyRollups returns rollups matching filter, newest day first.
func (a *RollupAdapter) ListDailyRollups(ctx context.Context, filter storage.DailyFilter) ([]demographics.DailyRollup, error) {
	from, to := dayBounds(filter.From, filter.To, a.loc)

	rows, err := a.db.QueryContext(ctx, queryListDailyRollups, from, to, nullLimit(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("query daily rollups: %w", err)
	}
	defer rows.Close()

	var rollups []demographics.DailyRollup
	for rows.Next() {
		r, err := scanDailyRollup(rows, a.loc)
		if err != nil {
			return nil, err
		}
		rollups = append(rollups, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily rollups: %w", err)
	}
	return rollups, nil
}

// ReplaceMonthly upserts every monthly rollup in one transaction,
// overwriting existing counters.
func (a *RollupAdapter) ReplaceMonthly(ctx context.Context, rollups []demographics.MonthlyRollup) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace monthly: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, queryReplaceMonthly)
	if err != nil {
		return fmt.Errorf("replace monthly: prepare upsert: %w", err)
	}
	defer stmt.Close()

	updatedAt := a.now()
	for _, m := range rollups {
		args := append([]interface{}{m.Year, int(m.Month)}, bucketArgs(m.Buckets)...)
		args = append(args, updatedAt)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("replace monthly: upsert %s: %w", m.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace monthly: commit: %w", err)
	}

	slog.Info("[RollupAdapter] Replaced monthly rollups", "months", len(rollups))
	return nil
}

// ListMonthlyRollups returns rollups matching filter, newest month first.
func (a *RollupAdapter) ListMonthlyRollups(ctx context.Context, filter storage.MonthlyFilter) ([]demographics.MonthlyRollup, error) {
	from, to := monthBounds(filter.From, filter.To)

	rows, err := a.db.QueryContext(ctx, queryListMonthlyRollups, from, to, nullLimit(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("query monthly rollups: %w", err)
	}
	defer rows.Close()

	var rollups []demographics.MonthlyRollup
	for rows.Next() {
		r, err := scanMonthlyRollup(rows)
		if err != nil {
			return nil, err
		}
		rollups = append(rollups, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly rollups: %w", err)
	}
	return rollups, nil
}

// ResetRollups clears consumed flags and deletes every rollup under the same
// advisory lock as CommitDaily, so a reset never interleaves with a commit.
func (a *RollupAdapter) ResetRollups(ctx context.Context) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("reset rollups: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, queryAdvisoryXactLock, rollupLockKey); err != nil {
		return 0, fmt.Errorf("reset rollups: acquire advisory lock: %w", err)
	}

	result, err := tx.ExecContext(ctx, queryResetConsumed)
	if err != nil {
		return 0, fmt.Errorf("reset rollups: clear consumed: %w", err)
	}
	reset, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset rollups: check clear consumed: %w", err)
	}

	if _, err := tx.ExecContext(ctx, queryDeleteDailyRollups); err != nil {
		return 0, fmt.Errorf("reset rollups: delete daily: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryDeleteMonthlyRollups); err != nil {
		return 0, fmt.Errorf("reset rollups: delete monthly: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("reset rollups: commit: %w", err)
	}

	slog.Warn("[RollupAdapter] Reset all rollups", "events_reset", reset)
	return reset, nil
}

// Counts reports raw, unconsumed, daily and monthly row counts from one
// statement snapshot.
func (a *RollupAdapter) Counts(ctx context.Context) (storage.Counts, error) {
	var c storage.Counts
	err := a.db.QueryRowContext(ctx, queryCounts).Scan(
		&c.RawEvents,
		&c.Unconsumed,
		&c.DailyRollups,
		&c.MonthlyRollups,
	)
	if err != nil {
		return storage.Counts{}, fmt.Errorf("read counts: %w", err)
	}
	return c, nil
}

// Purge deletes every raw event and rollup in one transaction.
func (a *RollupAdapter) Purge(ctx context.Context) (storage.Counts, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Counts{}, fmt.Errorf("purge: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, queryAdvisoryXactLock, rollupLockKey); err != nil {
		return storage.Counts{}, fmt.Errorf("purge: acquire advisory lock: %w", err)
	}

	var removed storage.Counts
	targets := []struct {
		query string
		into  *int64
	}{
		{queryDeleteMonthlyRollups, &removed.MonthlyRollups},
		{queryDeleteDailyRollups, &removed.DailyRollups},
		{queryDeleteRawEvents, &removed.RawEvents},
	}
	for _, target := range targets {
		result, err := tx.ExecContext(ctx, target.query)
		if err != nil {
			return storage.Counts{}, fmt.Errorf("purge: %w", err)
		}
		if *target.into, err = result.RowsAffected(); err != nil {
			return storage.Counts{}, fmt.Errorf("purge: rows affected: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.Counts{}, fmt.Errorf("purge: commit: %w", err)
	}

	slog.Warn("[RollupAdapter] Purged all data",
		"raw_events", removed.RawEvents,
		"daily_rollups", removed.DailyRollups,
		"monthly_rollups", removed.MonthlyRollups,
	)
	return removed, nil
}

func sortedDays(increments map[string]demographics.Buckets) []string {
	days := make([]string, 0, len(increments))
	for day := range increments {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

func nullLimit(limit int) sql.NullInt64 {
	if limit <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(limit), Valid: true}
}
