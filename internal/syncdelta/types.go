package syncdelta

import (
	"encoding/json"
	"time"
)

// DayBucket is the day-scoped rolling counter of the shared document.
type DayBucket struct {
	Date        string `json:"date"`
	Calls       int64  `json:"calls"`
	ActiveUsers int    `json:"active_users"`
}

// WeekBucket is the week-scoped rolling counter of the shared document.
type WeekBucket struct {
	WeekStart   string `json:"week_start"`
	Calls       int64  `json:"calls"`
	ActiveUsers int    `json:"active_users"`
}

// GlobalCounterState is the shared counter document every installation
// contributes to. It is only ever changed through a MergeFunc.
type GlobalCounterState struct {
	TotalUsers       int        `json:"total_users"`
	TotalGlobalCalls int64      `json:"total_global_calls"`
	Today            DayBucket  `json:"today"`
	Week             WeekBucket `json:"week"`
}

// DecodeState parses a stored document. Malformed payloads, including
// negative counters, decode to the zero state with ok == false so a merge
// starts from a fresh document instead of failing.
func DecodeState(raw []byte) (state GlobalCounterState, ok bool) {
	if len(raw) == 0 {
		return GlobalCounterState{}, false
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return GlobalCounterState{}, false
	}
	if state.TotalUsers < 0 || state.TotalGlobalCalls < 0 ||
		state.Today.Calls < 0 || state.Today.ActiveUsers < 0 ||
		state.Week.Calls < 0 || state.Week.ActiveUsers < 0 {
		return GlobalCounterState{}, false
	}
	return state, true
}

// Encode serializes the document in its wire shape.
func (s GlobalCounterState) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Checkpoint records what this installation has already contributed.
// It only advances after the shared document confirmed a commit.
type Checkpoint struct {
	LastTotal   int64  `json:"last_total"`
	SyncedToday int64  `json:"synced_today"`
	SyncedWeek  int64  `json:"synced_week"`
	DayLabel    string `json:"day_label"`
	WeekLabel   string `json:"week_label"`
}

// PendingAttempt is written before a merge is submitted. If the process dies
// between the remote commit and the checkpoint write, the next run finds it,
// asks the counter store whether the attempt was applied, and promotes Next
// instead of resubmitting the same delta.
type PendingAttempt struct {
	ID        string     `json:"id"`
	Next      Checkpoint `json:"next"`
	CreatedAt time.Time  `json:"created_at"`
}

// LocalTotals are this installation's own call counts.
//
// DayLabel and WeekLabel name the periods Today and Week were counted for.
// When set, Sync files the contribution under them instead of reading its
// own clock; empty labels mean "current period".
type LocalTotals struct {
	Total int64 `json:"total"`
	Today int64 `json:"today"`
	Week  int64 `json:"week"`

	DayLabel  string `json:"day_label,omitempty"`
	WeekLabel string `json:"week_label,omitempty"`
}

// Labels returns the totals' own period labels, falling back to now.
func (t LocalTotals) Labels(now time.Time) (day, week string) {
	day, week = Labels(now)
	if t.DayLabel != "" {
		day = t.DayLabel
	}
	if t.WeekLabel != "" {
		week = t.WeekLabel
	}
	return day, week
}

// Delta is the net-new contribution since the checkpoint. Never negative.
type Delta struct {
	Total int64 `json:"total"`
	Today int64 `json:"today"`
	Week  int64 `json:"week"`
}

// IsZero reports whether there is nothing to contribute.
func (d Delta) IsZero() bool {
	return d.Total == 0 && d.Today == 0 && d.Week == 0
}

// Attempt identifies one submission to the counter store.
type Attempt struct {
	ID         string
	IdentityID string
}

// IdentitySummary is the per-installation record written after a commit.
type IdentitySummary struct {
	IdentityID string    `json:"identity_id"`
	TotalCalls int64     `json:"total_calls"`
	TodayCalls int64     `json:"today_calls"`
	WeekCalls  int64     `json:"week_calls"`
	DayLabel   string    `json:"day_label"`
	WeekLabel  string    `json:"week_label"`
	UpdatedAt  time.Time `json:"updated_at"`
}
