package projection

import (
	"time"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	"github.com/aevon-lab/callstats/internal/core/aggregation"
)

// Summarize reduces a statistic set. O(n), no side effects.
func Summarize(stats []CallerStatistic) Summary {
	var s Summary
	for _, st := range stats {
		s.TotalCalls += st.TotalCalls
		s.TotalDuration += st.TotalDuration
		s.IncomingCalls += st.IncomingCalls
		s.OutgoingCalls += st.OutgoingCalls
		s.MissedCalls += st.MissedCalls
	}
	s.DistinctCallers = len(stats)
	s.AverageDuration = average(s.TotalDuration, s.TotalCalls)
	return s
}

// SummarizeAccumulators is Summarize without enrichment or ranking.
func SummarizeAccumulators(accs []aggregation.Accumulator) Summary {
	var s Summary
	for _, acc := range accs {
		s.TotalCalls += acc.Total
		s.TotalDuration += acc.Duration
		s.IncomingCalls += acc.Incoming
		s.OutgoingCalls += acc.Outgoing
		s.MissedCalls += acc.Missed
	}
	s.DistinctCallers = len(accs)
	s.AverageDuration = average(s.TotalDuration, s.TotalCalls)
	return s
}

// DailyRollupFor summarizes the records that fall on the UTC day of now.
func DailyRollupFor(records []v1.CallRecord, now time.Time) DailyRollup {
	day := aggregation.DayLabel(now)

	var today []v1.CallRecord
	for _, rec := range records {
		if aggregation.DayLabel(rec.Time()) == day {
			today = append(today, rec)
		}
	}

	return DailyRollup{
		Date:      day,
		Summary:   SummarizeAccumulators(aggregation.Aggregate(today).All()),
		UpdatedAt: now.UTC(),
	}
}
