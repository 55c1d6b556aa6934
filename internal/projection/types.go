package projection

import (
	"time"

	"github.com/aevon-lab/callstats/internal/core/aggregation"
	"github.com/aevon-lab/callstats/internal/enrichment"
	"github.com/shopspring/decimal"
)

// CallerStatistic is the ranked, display-ready row for one caller.
type CallerStatistic struct {
	Key        aggregation.CanonicalKey `json:"key"`
	Number     string                   `json:"number"`
	Name       string                   `json:"name"`
	NameSource enrichment.NameSource    `json:"name_source"`
	IdentityID string                   `json:"identity_id,omitempty"`
	PhotoURI   string                   `json:"photo_uri,omitempty"`

	TotalCalls     int64 `json:"total_calls"`
	IncomingCalls  int64 `json:"incoming_calls"`
	OutgoingCalls  int64 `json:"outgoing_calls"`
	MissedCalls    int64 `json:"missed_calls"`
	VoicemailCalls int64 `json:"voicemail_calls"`
	RejectedCalls  int64 `json:"rejected_calls"`

	TotalDuration   int64           `json:"total_duration"`
	AverageDuration decimal.Decimal `json:"average_duration"`

	FirstCall time.Time `json:"first_call"`
	LastCall  time.Time `json:"last_call"`

	RankByCount    int `json:"rank_by_count"`
	RankByDuration int `json:"rank_by_duration"`
}

// Summary is the reduction over a full statistic set.
type Summary struct {
	TotalCalls      int64           `json:"total_calls"`
	TotalDuration   int64           `json:"total_duration"`
	IncomingCalls   int64           `json:"incoming_calls"`
	OutgoingCalls   int64           `json:"outgoing_calls"`
	MissedCalls     int64           `json:"missed_calls"`
	DistinctCallers int             `json:"distinct_callers"`
	AverageDuration decimal.Decimal `json:"average_duration"`
}

// DailyRollup is the Summary of one UTC day, keyed by its label.
type DailyRollup struct {
	Date string `json:"date"`
	Summary
	UpdatedAt time.Time `json:"updated_at"`
}

// Report is one full pipeline run.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Callers     []CallerStatistic `json:"callers"` // by RankByCount
	Summary     Summary           `json:"summary"`
}

// Order selects which rank a listing follows.
type Order string

const (
	OrderByCount    Order = "count"
	OrderByDuration Order = "duration"
)

// ParseOrder accepts "count" or "duration". Empty means count.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderByCount:
		return OrderByCount, nil
	case OrderByDuration:
		return OrderByDuration, nil
	default:
		return "", invalidQueryf("unknown order %q (want count or duration)", s)
	}
}
