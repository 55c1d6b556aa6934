package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aevon-lab/callstats/internal/core/aggregation"
	"github.com/aevon-lab/callstats/internal/enrichment"
	"github.com/aevon-lab/callstats/internal/projection"
	"github.com/shopspring/decimal"
)

const (
	queryUpsertStatistic = `
		INSERT INTO caller_stats (
			key, number, name, name_source, identity_id, photo_uri,
			total_calls, incoming_calls, outgoing_calls, missed_calls, voicemail_calls, rejected_calls,
			total_duration, average_duration, first_call, last_call, rank_by_count, rank_by_duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			number           = excluded.number,
			name             = excluded.name,
			name_source      = excluded.name_source,
			identity_id      = excluded.identity_id,
			photo_uri        = excluded.photo_uri,
			total_calls      = excluded.total_calls,
			incoming_calls   = excluded.incoming_calls,
			outgoing_calls   = excluded.outgoing_calls,
			missed_calls     = excluded.missed_calls,
			voicemail_calls  = excluded.voicemail_calls,
			rejected_calls   = excluded.rejected_calls,
			total_duration   = excluded.total_duration,
			average_duration = excluded.average_duration,
			first_call       = excluded.first_call,
			last_call        = excluded.last_call,
			rank_by_count    = excluded.rank_by_count,
			rank_by_duration = excluded.rank_by_duration
	`
	querySelectStatistics = `
		SELECT
			key, number, name, name_source, identity_id, photo_uri,
			total_calls, incoming_calls, outgoing_calls, missed_calls, voicemail_calls, rejected_calls,
			total_duration, average_duration, first_call, last_call, rank_by_count, rank_by_duration
		FROM caller_stats
		ORDER BY rank_by_count ASC
	`
	queryUpsertRollup = `
		INSERT INTO daily_rollups (
			date, total_calls, total_duration, incoming_calls, outgoing_calls,
			missed_calls, distinct_callers, average_duration, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_calls      = excluded.total_calls,
			total_duration   = excluded.total_duration,
			incoming_calls   = excluded.incoming_calls,
			outgoing_calls   = excluded.outgoing_calls,
			missed_calls     = excluded.missed_calls,
			distinct_callers = excluded.distinct_callers,
			average_duration = excluded.average_duration,
			updated_at       = excluded.updated_at
	`
	querySelectRollups = `
		SELECT
			date, total_calls, total_duration, incoming_calls, outgoing_calls,
			missed_calls, distinct_callers, average_duration, updated_at
		FROM daily_rollups
		ORDER BY date DESC
		LIMIT ?
	`
)

// ReplaceStatistics swaps the statistic snapshot for stats in one
// transaction: callers missing from stats disappear.
func (s *Store) ReplaceStatistics(ctx context.Context, stats []projection.CallerStatistic) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace statistics: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM caller_stats`); err != nil {
		return fmt.Errorf("replace statistics: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, queryUpsertStatistic)
	if err != nil {
		return fmt.Errorf("replace statistics: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, st := range stats {
		if _, err := stmt.ExecContext(ctx,
			string(st.Key), st.Number, st.Name, string(st.NameSource), st.IdentityID, st.PhotoURI,
			st.TotalCalls, st.IncomingCalls, st.OutgoingCalls, st.MissedCalls, st.VoicemailCalls, st.RejectedCalls,
			st.TotalDuration, st.AverageDuration.String(), toMillis(st.FirstCall), toMillis(st.LastCall),
			st.RankByCount, st.RankByDuration,
		); err != nil {
			return fmt.Errorf("replace statistics: upsert %s: %w", st.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace statistics: commit: %w", err)
	}
	return nil
}

// Statistics returns the current snapshot ordered by count rank.
func (s *Store) Statistics(ctx context.Context) ([]projection.CallerStatistic, error) {
	rows, err := s.db.QueryContext(ctx, querySelectStatistics)
	if err != nil {
		return nil, fmt.Errorf("read statistics: %w", err)
	}
	defer rows.Close()

	var stats []projection.CallerStatistic
	for rows.Next() {
		var st projection.CallerStatistic
		var key, source, avg string
		var first, last int64
		if err := rows.Scan(
			&key, &st.Number, &st.Name, &source, &st.IdentityID, &st.PhotoURI,
			&st.TotalCalls, &st.IncomingCalls, &st.OutgoingCalls, &st.MissedCalls, &st.VoicemailCalls, &st.RejectedCalls,
			&st.TotalDuration, &avg, &first, &last, &st.RankByCount, &st.RankByDuration,
		); err != nil {
			return nil, fmt.Errorf("read statistics: scan: %w", err)
		}
		st.Key = aggregation.CanonicalKey(key)
		st.NameSource = enrichment.NameSource(source)
		if st.AverageDuration, err = decimal.NewFromString(avg); err != nil {
			return nil, fmt.Errorf("read statistics: average for %s: %w", key, err)
		}
		st.FirstCall = fromMillis(first)
		st.LastCall = fromMillis(last)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// UpsertDailyRollup writes or replaces the rollup for its date.
func (s *Store) UpsertDailyRollup(ctx context.Context, r projection.DailyRollup) error {
	_, err := s.db.ExecContext(ctx, queryUpsertRollup,
		r.Date, r.TotalCalls, r.TotalDuration, r.IncomingCalls, r.OutgoingCalls,
		r.MissedCalls, r.DistinctCallers, r.AverageDuration.String(), toMillis(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert daily rollup %s: %w", r.Date, err)
	}
	return nil
}

// DailyRollups returns up to limit rollups, newest first.
func (s *Store) DailyRollups(ctx context.Context, limit int) ([]projection.DailyRollup, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx, querySelectRollups, limit)
	if err != nil {
		return nil, fmt.Errorf("read daily rollups: %w", err)
	}
	defer rows.Close()

	var out []projection.DailyRollup
	for rows.Next() {
		var r projection.DailyRollup
		var avg string
		var updated int64
		if err := rows.Scan(
			&r.Date, &r.TotalCalls, &r.TotalDuration, &r.IncomingCalls, &r.OutgoingCalls,
			&r.MissedCalls, &r.DistinctCallers, &avg, &updated,
		); err != nil {
			return nil, fmt.Errorf("read daily rollups: scan: %w", err)
		}
		if r.AverageDuration, err = decimal.NewFromString(avg); err != nil {
			return nil, fmt.Errorf("read daily rollups: average for %s: %w", r.Date, err)
		}
		r.UpdatedAt = fromMillis(updated)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteAll drops every snapshot and rollup. The call log and metadata stay.
func (s *Store) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete snapshots: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"caller_stats", "daily_rollups"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete snapshots: %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
