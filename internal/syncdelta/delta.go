package syncdelta

import (
	"time"

	"github.com/aevon-lab/callstats/internal/core/aggregation"
)

// Labels returns the UTC day label and Monday-anchored week-start label for now.
func Labels(now time.Time) (day, week string) {
	return aggregation.DayLabel(now), aggregation.WeekStartLabel(now)
}

// ComputeDelta returns what local has gained since cp. Period counters of a
// checkpoint written for a different day or week count as zero.
func ComputeDelta(cp Checkpoint, local LocalTotals, day, week string) Delta {
	syncedToday := cp.SyncedToday
	if cp.DayLabel != day {
		syncedToday = 0
	}
	syncedWeek := cp.SyncedWeek
	if cp.WeekLabel != week {
		syncedWeek = 0
	}

	return Delta{
		Total: nonNegative(local.Total - cp.LastTotal),
		Today: nonNegative(local.Today - syncedToday),
		Week:  nonNegative(local.Week - syncedWeek),
	}
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
