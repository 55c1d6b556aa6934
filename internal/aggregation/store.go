package aggregation

import (
	"context"

	"github.com/aevon-lab/callstats/internal/projection"
	"github.com/aevon-lab/callstats/internal/syncdelta"
)

// SnapshotStore is the durable home of refresh output.
//
// Contract: ReplaceStatistics swaps the whole snapshot in one transaction,
// so readers never observe a mix of two refreshes.
type SnapshotStore interface {
	ReplaceStatistics(ctx context.Context, stats []projection.CallerStatistic) error
	Statistics(ctx context.Context) ([]projection.CallerStatistic, error)

	// UpsertDailyRollup replaces the rollup for r.Date.
	UpsertDailyRollup(ctx context.Context, r projection.DailyRollup) error
	// DailyRollups returns up to limit rollups, newest first.
	DailyRollups(ctx context.Context, limit int) ([]projection.DailyRollup, error)

	// DeleteAll drops every snapshot row and rollup.
	DeleteAll(ctx context.Context) error
}

// Syncer contributes local totals to the shared counters.
type Syncer interface {
	Sync(ctx context.Context, local syncdelta.LocalTotals) (syncdelta.Result, error)
}
