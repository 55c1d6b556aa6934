package postgres

// SQL for the shared counter document and its side tables.

const (
	// queryReadDocument fetches the current document and its CAS version.
	queryReadDocument = `
		SELECT document, version
		FROM global_counters
		WHERE id = $1
	`

	// queryInsertDocument creates the document at version 1. A concurrent
	// creator wins the race and ours affects zero rows.
	queryInsertDocument = `
		INSERT INTO global_counters (id, document, version, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (id) DO NOTHING
	`

	// queryUpdateDocument is the compare-and-swap write. Zero rows affected
	// means another writer committed first.
	queryUpdateDocument = `
		UPDATE global_counters
		SET document = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`

	// queryRecordAttempt claims the idempotency token in the same transaction
	// as the document write.
	queryRecordAttempt = `
		INSERT INTO sync_attempts (attempt_id, identity_id, applied_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (attempt_id) DO NOTHING
	`

	queryAttemptApplied = `SELECT EXISTS (SELECT 1 FROM sync_attempts WHERE attempt_id = $1)`

	queryUpsertIdentitySummary = `
		INSERT INTO identity_summaries (
			identity_id, total_calls, today_calls, week_calls,
			day_label, week_label, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (identity_id) DO UPDATE SET
			total_calls = EXCLUDED.total_calls,
			today_calls = EXCLUDED.today_calls,
			week_calls  = EXCLUDED.week_calls,
			day_label   = EXCLUDED.day_label,
			week_label  = EXCLUDED.week_label,
			updated_at  = EXCLUDED.updated_at
	`

	queryTableExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)
	`
)
