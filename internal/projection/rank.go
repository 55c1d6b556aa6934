package projection

import (
	"sort"
	"time"

	"github.com/aevon-lab/callstats/internal/enrichment"
	"github.com/shopspring/decimal"
)

// Rank converts enriched callers into statistics carrying both dense ranks.
//
// Ties break on the other metric (descending), then on canonical key
// (ascending), so ranks are reproducible for identical input.
func Rank(enriched []enrichment.Enriched) []CallerStatistic {
	stats := make([]CallerStatistic, len(enriched))
	for i, e := range enriched {
		stats[i] = newStatistic(e)
	}

	sortByDuration(stats)
	for i := range stats {
		stats[i].RankByDuration = i + 1
	}

	sortByCount(stats)
	for i := range stats {
		stats[i].RankByCount = i + 1
	}
	return stats
}

// SortBy returns a copy of stats ordered by the chosen rank.
func SortBy(stats []CallerStatistic, order Order) []CallerStatistic {
	out := make([]CallerStatistic, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		if order == OrderByDuration {
			return out[i].RankByDuration < out[j].RankByDuration
		}
		return out[i].RankByCount < out[j].RankByCount
	})
	return out
}

func sortByCount(stats []CallerStatistic) {
	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.TotalCalls != b.TotalCalls {
			return a.TotalCalls > b.TotalCalls
		}
		if a.TotalDuration != b.TotalDuration {
			return a.TotalDuration > b.TotalDuration
		}
		return a.Key < b.Key
	})
}

func sortByDuration(stats []CallerStatistic) {
	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.TotalDuration != b.TotalDuration {
			return a.TotalDuration > b.TotalDuration
		}
		if a.TotalCalls != b.TotalCalls {
			return a.TotalCalls > b.TotalCalls
		}
		return a.Key < b.Key
	})
}

func newStatistic(e enrichment.Enriched) CallerStatistic {
	return CallerStatistic{
		Key:             e.Key,
		Number:          e.Number,
		Name:            e.Name,
		NameSource:      e.NameSource,
		IdentityID:      e.IdentityID,
		PhotoURI:        e.PhotoURI,
		TotalCalls:      e.Total,
		IncomingCalls:   e.Incoming,
		OutgoingCalls:   e.Outgoing,
		MissedCalls:     e.Missed,
		VoicemailCalls:  e.Voicemail,
		RejectedCalls:   e.Rejected,
		TotalDuration:   e.Duration,
		AverageDuration: average(e.Duration, e.Total),
		FirstCall:       fromMillis(e.FirstCall),
		LastCall:        fromMillis(e.LastCall),
	}
}

func average(duration, calls int64) decimal.Decimal {
	if calls == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(duration).DivRound(decimal.NewFromInt(calls), 2)
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
