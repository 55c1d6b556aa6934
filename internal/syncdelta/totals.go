package syncdelta

import (
	"time"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	"github.com/aevon-lab/callstats/internal/core/aggregation"
)

// TotalsFromRecords counts the records aggregation would keep, overall and
// within the UTC day and Monday-anchored week containing now.
func TotalsFromRecords(records []v1.CallRecord, now time.Time) LocalTotals {
	day, week := Labels(now)

	t := LocalTotals{DayLabel: day, WeekLabel: week}
	for _, rec := range records {
		if _, ok := aggregation.KeyFor(rec.Number); !ok {
			continue
		}
		t.Total++

		at := rec.Time()
		if aggregation.DayLabel(at) == day {
			t.Today++
		}
		if aggregation.WeekStartLabel(at) == week {
			t.Week++
		}
	}
	return t
}
