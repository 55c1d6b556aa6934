package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aevon-lab/callstats/internal/projection"
	"github.com/aevon-lab/callstats/internal/syncdelta"
)

// ErrRefreshInProgress is returned by TryRun while another refresh runs.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// RefreshResult summarizes one refresh.
type RefreshResult struct {
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration_ns"`
	Records   int                `json:"records"`
	Callers   int                `json:"callers"`
	Summary   projection.Summary `json:"summary"`

	// SourceUnavailable is set when the history could not be read. The run
	// then leaves the stored snapshot and the shared counters untouched.
	SourceUnavailable bool `json:"source_unavailable,omitempty"`

	Sync      *syncdelta.Result `json:"sync,omitempty"`
	SyncError string            `json:"sync_error,omitempty"`
}

// RefreshJob rebuilds the statistic snapshot from the call history and then
// contributes the new local totals to the shared counters. Refreshes are
// serialized.
type RefreshJob struct {
	builder   *projection.Service
	snapshots SnapshotStore
	syncer    Syncer
	nowFn     func() time.Time

	mu sync.Mutex
}

// NewRefreshJob creates a refresh job. A nil syncer skips the sync step.
func NewRefreshJob(builder *projection.Service, snapshots SnapshotStore, syncer Syncer) *RefreshJob {
	return &RefreshJob{
		builder:   builder,
		snapshots: snapshots,
		syncer:    syncer,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// Run waits for any running refresh and then refreshes.
func (j *RefreshJob) Run(ctx context.Context) (RefreshResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.run(ctx)
}

// TryRun refreshes unless a refresh is already running.
func (j *RefreshJob) TryRun(ctx context.Context) (RefreshResult, error) {
	if !j.mu.TryLock() {
		return RefreshResult{}, ErrRefreshInProgress
	}
	defer j.mu.Unlock()
	return j.run(ctx)
}

func (j *RefreshJob) run(ctx context.Context) (RefreshResult, error) {
	start := j.nowFn()
	res := RefreshResult{StartedAt: start}

	records, available := j.builder.LoadHistory(ctx)
	report := j.builder.BuildFromRecords(ctx, records)
	res.Records = len(records)
	res.Callers = len(report.Callers)
	res.Summary = report.Summary

	if !available {
		res.SourceUnavailable = true
		res.Duration = j.nowFn().Sub(start)
		slog.Warn("[RefreshJob] Call history unavailable, keeping stored snapshot")
		return res, nil
	}

	if err := j.snapshots.ReplaceStatistics(ctx, report.Callers); err != nil {
		return res, fmt.Errorf("refresh: persist statistics: %w", err)
	}
	if err := j.snapshots.UpsertDailyRollup(ctx, projection.DailyRollupFor(records, start)); err != nil {
		return res, fmt.Errorf("refresh: persist daily rollup: %w", err)
	}

	// Sync failures never fail the statistics side.
	if j.syncer != nil {
		totals := syncdelta.TotalsFromRecords(records, start)
		syncRes, err := j.syncer.Sync(ctx, totals)
		res.Sync = &syncRes
		if err != nil {
			res.SyncError = err.Error()
			slog.Warn("[RefreshJob] Sync attempt failed", "error", err)
		}
	}

	res.Duration = j.nowFn().Sub(start)
	slog.Info("[RefreshJob] Refresh complete",
		"records", res.Records,
		"callers", res.Callers,
		"duration", res.Duration,
		"sync_state", syncState(res.Sync))
	return res, nil
}

// Reset drops the stored snapshot and rollups. The call history is kept, so
// the next refresh rebuilds them.
func (j *RefreshJob) Reset(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.snapshots.DeleteAll(ctx); err != nil {
		return fmt.Errorf("refresh: reset snapshot: %w", err)
	}
	slog.Info("[RefreshJob] Snapshot reset")
	return nil
}

func syncState(r *syncdelta.Result) string {
	if r == nil {
		return "skipped"
	}
	return r.StateName
}
