package aggregation

import (
	"context"
	"log/slog"
	"time"
)

const shutdownRunTimeout = 30 * time.Second

// Scheduler runs the refresh job on a periodic interval.
type Scheduler struct {
	interval time.Duration
	job      *RefreshJob
}

// NewScheduler creates a periodic scheduler for job.
func NewScheduler(interval time.Duration, job *RefreshJob) *Scheduler {
	return &Scheduler{interval: interval, job: job}
}

// Start refreshes immediately, then on every tick, until ctx is cancelled.
// One last refresh runs on shutdown so a final sync is attempted.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting refresh scheduler", "interval", s.interval)

	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownRunTimeout)
			defer cancel()

			slog.Info("[Scheduler] Running final refresh before shutdown...")
			s.runOnce(shutdownCtx)
			slog.Info("[Scheduler] Final refresh complete")
			return nil
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.job.Run(ctx); err != nil {
		slog.Error("[Scheduler] Refresh failed", "error", err)
	}
}
