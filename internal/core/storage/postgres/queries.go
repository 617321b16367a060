package postgres

// SQL for raw events and rollups. Bucket columns always appear in the
// demographics.Buckets index order.

const (
	bucketColumns = `
			male_0_9, male_10_19, male_20_29, male_30_39, male_40_49, male_50_plus,
			female_0_9, female_10_19, female_20_29, female_30_39, female_40_49, female_50_plus`

	// rollupLockKey identifies the transaction-scoped advisory lock that
	// serializes daily commits across processes.
	rollupLockKey int64 = 0x68656164636e74

	// querySaveRawEvent inserts one unconsumed per-minute record.
	querySaveRawEvent = `
		INSERT INTO raw_events (ts,` + bucketColumns + `
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	queryListRawEvents = `
		SELECT id, ts,` + bucketColumns + `,
			consumed
		FROM raw_events
		WHERE ts >= $1 AND ts < $2
		ORDER BY ts ASC, id ASC
	`

	// queryListUnconsumed feeds a rollup run. Served by the partial index on
	// unconsumed ids.
	queryListUnconsumed = `
		SELECT id, ts,` + bucketColumns + `,
			consumed
		FROM raw_events
		WHERE consumed = FALSE
		ORDER BY id ASC
	`

	querySumRawBuckets = `
		SELECT
			COALESCE(SUM(male_0_9), 0), COALESCE(SUM(male_10_19), 0), COALESCE(SUM(male_20_29), 0),
			COALESCE(SUM(male_30_39), 0), COALESCE(SUM(male_40_49), 0), COALESCE(SUM(male_50_plus), 0),
			COALESCE(SUM(female_0_9), 0), COALESCE(SUM(female_10_19), 0), COALESCE(SUM(female_20_29), 0),
			COALESCE(SUM(female_30_39), 0), COALESCE(SUM(female_40_49), 0), COALESCE(SUM(female_50_plus), 0)
		FROM raw_events
		WHERE ts >= $1 AND ts < $2
	`

	queryCountRawEvents = `SELECT COUNT(*) FROM raw_events`

	queryCountRawEventsByConsumed = `SELECT COUNT(*) FROM raw_events WHERE consumed = $1`

	queryAdvisoryXactLock = `SELECT pg_advisory_xact_lock($1)`

	// queryMarkConsumed only flips rows still unconsumed; the affected row
	// count tells the caller whether another run got there first.
	queryMarkConsumed = `
		UPDATE raw_events
		SET consumed = TRUE
		WHERE id = ANY($1) AND consumed = FALSE
	`

	// queryIncrementDaily adds a day's increment to its rollup row.
	queryIncrementDaily = `
		INSERT INTO daily_rollups (day,` + bucketColumns + `,
			updated_at
		)
		VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (day) DO UPDATE SET
			male_0_9       = daily_rollups.male_0_9 + EXCLUDED.male_0_9,
			male_10_19     = daily_rollups.male_10_19 + EXCLUDED.male_10_19,
			male_20_29     = daily_rollups.male_20_29 + EXCLUDED.male_20_29,
			male_30_39     = daily_rollups.male_30_39 + EXCLUDED.male_30_39,
			male_40_49     = daily_rollups.male_40_49 + EXCLUDED.male_40_49,
			male_50_plus   = daily_rollups.male_50_plus + EXCLUDED.male_50_plus,
			female_0_9     = daily_rollups.female_0_9 + EXCLUDED.female_0_9,
			female_10_19   = daily_rollups.female_10_19 + EXCLUDED.female_10_19,
			female_20_29   = daily_rollups.female_20_29 + EXCLUDED.female_20_29,
			female_30_39   = daily_rollups.female_30_39 + EXCLUDED.female_30_39,
			female_40_49   = daily_rollups.female_40_49 + EXCLUDED.female_40_49,
			female_50_plus = daily_rollups.female_50_plus + EXCLUDED.female_50_plus,
			updated_at     = EXCLUDED.updated_at
	`

	// queryListDailyRollups returns rollups in [$1, $2], newest first.
	// A NULL limit returns every row.
	queryListDailyRollups = `
		SELECT to_char(day, 'YYYY-MM-DD'),` + bucketColumns + `
		FROM daily_rollups
		WHERE day >= $1::date AND day <= $2::date
		ORDER BY day DESC
		LIMIT $3
	`

	// queryReplaceMonthly overwrites every counter of a month.
	queryReplaceMonthly = `
		INSERT INTO monthly_rollups (year, month,` + bucketColumns + `,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (year, month) DO UPDATE SET
			male_0_9       = EXCLUDED.male_0_9,
			male_10_19     = EXCLUDED.male_10_19,
			male_20_29     = EXCLUDED.male_20_29,
			male_30_39     = EXCLUDED.male_30_39,
			male_40_49     = EXCLUDED.male_40_49,
			male_50_plus   = EXCLUDED.male_50_plus,
			female_0_9     = EXCLUDED.female_0_9,
			female_10_19   = EXCLUDED.female_10_19,
			female_20_29   = EXCLUDED.female_20_29,
			female_30_39   = EXCLUDED.female_30_39,
			female_40_49   = EXCLUDED.female_40_49,
			female_50_plus = EXCLUDED.female_50_plus,
			updated_at     = EXCLUDED.updated_at
	`

	// queryListMonthlyRollups filters on year*100+month so bounds are plain
	// integers.
	queryListMonthlyRollups = `
		SELECT year, month,` + bucketColumns + `
		FROM monthly_rollups
		WHERE (year * 100 + month) BETWEEN $1 AND $2
		ORDER BY year DESC, month DESC
		LIMIT $3
	`

	queryResetConsumed = `UPDATE raw_events SET consumed = FALSE WHERE consumed = TRUE`

	queryDeleteDailyRollups = `DELETE FROM daily_rollups`

	queryDeleteMonthlyRollups = `DELETE FROM monthly_rollups`

	queryDeleteRawEvents = `DELETE FROM raw_events`

	queryCounts = `
		SELECT
			(SELECT COUNT(*) FROM raw_events),
			(SELECT COUNT(*) FROM raw_events WHERE consumed = FALSE),
			(SELECT COUNT(*) FROM daily_rollups),
			(SELECT COUNT(*) FROM monthly_rollups)
	`
)
