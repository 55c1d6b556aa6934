package syncdelta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// State is the engine's position in one sync attempt.
type State int

const (
	StateIdle State = iota
	StateComputingDelta
	StateNoOp
	StateSubmitting
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComputingDelta:
		return "computing_delta"
	case StateNoOp:
		return "noop"
	case StateSubmitting:
		return "submitting"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configure an Engine. Enabled is the sync kill switch: a disabled
// engine never touches either store.
type Options struct {
	Enabled    bool
	IdentityID string

	// Timeout bounds one Sync call, including store retries. Zero means 30s.
	Timeout time.Duration

	Now          func() time.Time
	NewAttemptID func() string
}

// Result describes how a Sync call ended.
type Result struct {
	State     State  `json:"-"`
	StateName string `json:"state"`
	Delta     Delta  `json:"delta"`
	AttemptID string `json:"attempt_id,omitempty"`

	// LocalOnly is set when the backend was disabled or unreachable.
	LocalOnly bool `json:"local_only"`

	// Recovered is set when a previously pending attempt was found applied and
	// its checkpoint promoted.
	Recovered bool `json:"recovered,omitempty"`
}

func newResult(s State) Result {
	return Result{State: s, StateName: s.String()}
}

// Engine contributes local call counts to the shared counter document
// exactly once per committed delta. One Engine serves one identity; Sync
// calls are serialized by an in-process guard.
type Engine struct {
	store       CounterStore
	checkpoints CheckpointStore
	opts        Options

	running atomic.Bool
	mu      sync.Mutex
	state   State
}

// NewEngine creates a sync engine. A nil store behaves like Enabled == false.
func NewEngine(store CounterStore, checkpoints CheckpointStore, opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewAttemptID == nil {
		opts.NewAttemptID = uuid.NewString
	}
	if store == nil {
		opts.Enabled = false
	}
	return &Engine{store: store, checkpoints: checkpoints, opts: opts}
}

// Enabled reports whether the engine talks to a backend at all.
func (e *Engine) Enabled() bool {
	return e.opts.Enabled
}

// State returns the current state; StateIdle between calls.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Sync contributes the delta between local and the committed checkpoint.
//
// The checkpoint advances only after the store confirmed the merge. A backend
// that is disabled or unreachable yields a LocalOnly NoOp result and a nil
// error; failures that leave the checkpoint unchanged return ErrSyncFailed.
func (e *Engine) Sync(ctx context.Context, local LocalTotals) (Result, error) {
	if !e.opts.Enabled {
		r := newResult(StateNoOp)
		r.LocalOnly = true
		return r, nil
	}
	if !e.running.CompareAndSwap(false, true) {
		return newResult(StateFailed), ErrSyncInProgress
	}
	defer func() {
		e.setState(StateIdle)
		e.running.Store(false)
	}()

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	e.setState(StateComputingDelta)
	day, week := local.Labels(e.opts.Now())

	cp, recovered, err := e.resolveCheckpoint(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return e.localOnly(err), nil
		}
		return e.fail(fmt.Errorf("%w: resolve checkpoint: %w", ErrSyncFailed, err))
	}

	delta := ComputeDelta(cp, local, day, week)
	if delta.IsZero() {
		slog.Debug("[SyncEngine] Nothing to contribute", "total", local.Total, "day", day, "week", week)
		e.setState(StateNoOp)
		r := newResult(StateNoOp)
		r.Recovered = recovered
		return r, nil
	}

	attempt := Attempt{ID: e.opts.NewAttemptID(), IdentityID: e.opts.IdentityID}
	next := Checkpoint{
		LastTotal:   local.Total,
		SyncedToday: local.Today,
		SyncedWeek:  local.Week,
		DayLabel:    day,
		WeekLabel:   week,
	}

	if err := e.checkpoints.SavePending(ctx, PendingAttempt{ID: attempt.ID, Next: next, CreatedAt: e.opts.Now()}); err != nil {
		return e.fail(fmt.Errorf("%w: save pending attempt: %w", ErrSyncFailed, err))
	}

	e.setState(StateSubmitting)
	slog.Info("[SyncEngine] Submitting delta",
		"attempt_id", attempt.ID,
		"delta_total", delta.Total,
		"delta_today", delta.Today,
		"delta_week", delta.Week,
		"first_contribution", cp.LastTotal == 0,
	)

	err = e.store.Update(ctx, attempt, Merge(delta, cp.LastTotal == 0, day, week))
	switch {
	case err == nil, errors.Is(err, ErrAlreadyApplied):
	case errors.Is(err, ErrConflict):
		// Definitely not applied: drop the pending marker so the next run
		// starts clean.
		if clearErr := e.checkpoints.ClearPending(ctx); clearErr != nil {
			slog.Warn("[SyncEngine] Failed to clear pending attempt", "attempt_id", attempt.ID, "error", clearErr)
		}
		return e.fail(fmt.Errorf("%w: %w", ErrSyncFailed, err))
	case errors.Is(err, ErrUnavailable):
		// Outcome unknown; the pending marker resolves it on the next run.
		return e.localOnly(err), nil
	default:
		return e.fail(fmt.Errorf("%w: submit: %w", ErrSyncFailed, err))
	}

	e.setState(StateCommitted)
	if err := e.checkpoints.CommitCheckpoint(ctx, next); err != nil {
		// The remote side is committed and the pending marker is still on disk,
		// so the next run promotes it instead of resubmitting.
		slog.Error("[SyncEngine] Committed remotely but checkpoint write failed",
			"attempt_id", attempt.ID, "error", err)
	}

	summary := IdentitySummary{
		IdentityID: e.opts.IdentityID,
		TotalCalls: local.Total,
		TodayCalls: local.Today,
		WeekCalls:  local.Week,
		DayLabel:   day,
		WeekLabel:  week,
		UpdatedAt:  e.opts.Now(),
	}
	if err := e.store.WriteIdentitySummary(ctx, summary); err != nil {
		slog.Warn("[SyncEngine] Failed to write identity summary", "identity_id", e.opts.IdentityID, "error", err)
	}

	slog.Info("[SyncEngine] Sync committed",
		"attempt_id", attempt.ID,
		"total", local.Total,
		"day", day,
		"week", week,
	)

	r := newResult(StateCommitted)
	r.Delta = delta
	r.AttemptID = attempt.ID
	r.Recovered = recovered
	return r, nil
}

// resolveCheckpoint loads the committed checkpoint and settles any attempt
// left pending by an interrupted run.
func (e *Engine) resolveCheckpoint(ctx context.Context) (Checkpoint, bool, error) {
	cp, err := e.checkpoints.LoadCheckpoint(ctx)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("load checkpoint: %w", err)
	}

	pending, err := e.checkpoints.LoadPending(ctx)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("load pending attempt: %w", err)
	}
	if pending == nil {
		return cp, false, nil
	}

	applied, err := e.store.AttemptApplied(ctx, pending.ID)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("check pending attempt %s: %w", pending.ID, err)
	}

	if !applied {
		slog.Info("[SyncEngine] Discarding unapplied pending attempt", "attempt_id", pending.ID)
		if err := e.checkpoints.ClearPending(ctx); err != nil {
			return Checkpoint{}, false, fmt.Errorf("clear pending attempt: %w", err)
		}
		return cp, false, nil
	}

	slog.Info("[SyncEngine] Promoting checkpoint of applied pending attempt", "attempt_id", pending.ID)
	if err := e.checkpoints.CommitCheckpoint(ctx, pending.Next); err != nil {
		return Checkpoint{}, false, fmt.Errorf("promote pending attempt: %w", err)
	}
	return pending.Next, true, nil
}

func (e *Engine) fail(err error) (Result, error) {
	e.setState(StateFailed)
	slog.Error("[SyncEngine] Sync failed", "error", err)
	return newResult(StateFailed), err
}

func (e *Engine) localOnly(cause error) Result {
	e.setState(StateNoOp)
	slog.Warn("[SyncEngine] Backend unavailable, staying local-only", "error", cause)
	r := newResult(StateNoOp)
	r.LocalOnly = true
	return r
}

// Global reads the shared document. It returns ErrUnavailable when the
// engine is disabled.
func (e *Engine) Global(ctx context.Context) (GlobalCounterState, error) {
	if !e.opts.Enabled {
		return GlobalCounterState{}, ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	return e.store.Read(ctx)
}
