package sqlite

import (
	"context"
	"fmt"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	"github.com/aevon-lab/callstats/internal/core/storage"
)

const (
	queryInsertCall = `
		INSERT OR IGNORE INTO call_log (id, number, type, timestamp, duration, cached_name, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	querySelectCalls = `
		SELECT id, number, type, timestamp, duration, cached_name
		FROM call_log
		ORDER BY timestamp ASC, id ASC
	`
)

// SaveRecords inserts records, skipping IDs already present, and returns the
// number of new rows.
func (s *Store) SaveRecords(ctx context.Context, records []v1.CallRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save records: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, queryInsertCall)
	if err != nil {
		return 0, fmt.Errorf("save records: prepare insert: %w", err)
	}
	defer stmt.Close()

	ingestedAt := s.nowFn().UnixMilli()
	inserted := 0
	for _, rec := range records {
		res, err := stmt.ExecContext(ctx,
			rec.ID, rec.Number, string(rec.Type), rec.Timestamp, rec.Duration, rec.CachedName, ingestedAt)
		if err != nil {
			return 0, fmt.Errorf("save records: insert %s: %w", rec.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("save records: rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save records: commit: %w", err)
	}
	return inserted, nil
}

// Records returns the full call log. Read failures are reported as
// storage.ErrSourceUnavailable.
func (s *Store) Records(ctx context.Context) ([]v1.CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, querySelectCalls)
	if err != nil {
		return nil, fmt.Errorf("read call log: %w: %v", storage.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var records []v1.CallRecord
	for rows.Next() {
		var rec v1.CallRecord
		var typ string
		if err := rows.Scan(&rec.ID, &rec.Number, &typ, &rec.Timestamp, &rec.Duration, &rec.CachedName); err != nil {
			return nil, fmt.Errorf("read call log: %w: %v", storage.ErrSourceUnavailable, err)
		}
		rec.Type = v1.CallType(typ)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read call log: %w: %v", storage.ErrSourceUnavailable, err)
	}
	return records, nil
}

// CountRecords returns the size of the call log.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM call_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count call log: %w", err)
	}
	return n, nil
}

var _ storage.CallLog = (*Store)(nil)
