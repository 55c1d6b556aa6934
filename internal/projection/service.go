package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	"github.com/aevon-lab/callstats/internal/core/aggregation"
	"github.com/aevon-lab/callstats/internal/core/storage"
	"github.com/aevon-lab/callstats/internal/enrichment"
)

const maxLimit = 1000

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid statistics query")

// Service runs the statistics pipeline: source, aggregate, enrich, rank,
// summarize.
type Service struct {
	source   storage.RecordSource
	enricher *enrichment.Enricher
	workers  int
	nowFn    func() time.Time
}

// NewService creates a projection service. workers > 1 aggregates with the
// partitioned fold.
func NewService(source storage.RecordSource, enricher *enrichment.Enricher, workers int) *Service {
	if enricher == nil {
		enricher = enrichment.NewEnricher(nil, enrichment.Options{})
	}
	return &Service{
		source:   source,
		enricher: enricher,
		workers:  workers,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Load reads the call history. A failing source yields an empty history.
func (s *Service) Load(ctx context.Context) []v1.CallRecord {
	records, _ := s.LoadHistory(ctx)
	return records
}

// LoadHistory is Load that also reports whether the source answered.
// available is false when the empty history stands in for a failed read.
func (s *Service) LoadHistory(ctx context.Context) (records []v1.CallRecord, available bool) {
	if s.source == nil {
		return nil, true
	}
	records, err := s.source.Records(ctx)
	if err != nil {
		slog.Warn("[Projection] Record source unavailable, using empty history",
			"error", err,
			"source_unavailable", errors.Is(err, storage.ErrSourceUnavailable))
		return nil, false
	}
	return records, true
}

// BuildFromRecords runs the pipeline over an already loaded history.
func (s *Service) BuildFromRecords(ctx context.Context, records []v1.CallRecord) *Report {
	var accs *aggregation.Accumulators
	if s.workers > 1 {
		accs = aggregation.AggregateConcurrently(records, s.workers)
	} else {
		accs = aggregation.Aggregate(records)
	}

	stats := Rank(s.enricher.Enrich(ctx, accs.All()))
	return &Report{
		GeneratedAt: s.nowFn(),
		Callers:     stats,
		Summary:     Summarize(stats),
	}
}

// BuildReport loads the history and runs the full pipeline.
func (s *Service) BuildReport(ctx context.Context) *Report {
	records := s.Load(ctx)
	report := s.BuildFromRecords(ctx, records)

	slog.Debug("[Projection] Report built",
		"records", len(records),
		"callers", len(report.Callers))
	return report
}

// TopBy returns the first limit callers in the given order. limit <= 0
// returns every caller.
func (s *Service) TopBy(ctx context.Context, order Order, limit int) ([]CallerStatistic, error) {
	if limit > maxLimit {
		return nil, invalidQueryf("limit must be <= %d", maxLimit)
	}

	sorted := SortBy(s.BuildReport(ctx).Callers, order)
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func invalidQueryf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
