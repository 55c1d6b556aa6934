package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aevon-lab/callstats/internal/syncdelta"
)

const (
	defaultDocumentID  = "global"
	defaultMaxAttempts = 5
	defaultBackoff     = 50 * time.Millisecond
)

// errVersionLost means the CAS write matched no row.
var errVersionLost = errors.New("document version changed")

// CounterAdapter implements syncdelta.CounterStore on a single PostgreSQL
// row guarded by a version column. The attempt token and the document write
// commit in one transaction, which is what makes a resubmitted attempt
// detectable.
type CounterAdapter struct {
	db          *sql.DB
	documentID  string
	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
}

// NewCounterAdapter creates an adapter sharing the given connection.
// Empty documentID uses "global"; maxAttempts <= 0 uses 5.
func NewCounterAdapter(db *sql.DB, documentID string, maxAttempts int) *CounterAdapter {
	if documentID == "" {
		documentID = defaultDocumentID
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &CounterAdapter{
		db:          db,
		documentID:  documentID,
		maxAttempts: maxAttempts,
		backoff:     defaultBackoff,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PingContext lets the adapter double as a health check.
func (a *CounterAdapter) PingContext(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Read returns the current document. Missing and malformed documents read as
// the zero state.
func (a *CounterAdapter) Read(ctx context.Context) (syncdelta.GlobalCounterState, error) {
	var raw []byte
	var version int64
	err := a.db.QueryRowContext(ctx, queryReadDocument, a.documentID).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return syncdelta.GlobalCounterState{}, nil
	}
	if err != nil {
		return syncdelta.GlobalCounterState{}, classify("read global counters", err)
	}

	state, ok := syncdelta.DecodeState(raw)
	if !ok {
		slog.Warn("[CounterAdapter] Stored document is malformed, reading as zero",
			"document_id", a.documentID,
			"version", version)
	}
	return state, nil
}

// Update runs read-merge-write until the version check passes, up to
// maxAttempts times.
func (a *CounterAdapter) Update(ctx context.Context, attempt syncdelta.Attempt, fn syncdelta.MergeFunc) error {
	var lastErr error
	for i := 1; i <= a.maxAttempts; i++ {
		err := a.tryUpdate(ctx, attempt, fn)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, syncdelta.ErrAlreadyApplied):
			return err
		case errors.Is(err, errVersionLost) || isConflict(err):
			lastErr = err
			slog.Debug("[CounterAdapter] Lost commit race, retrying",
				"attempt_id", attempt.ID,
				"try", i,
				"max_attempts", a.maxAttempts)
			if err := a.wait(ctx, i); err != nil {
				return classify("update global counters", err)
			}
		default:
			return classify("update global counters", err)
		}
	}
	return fmt.Errorf("update global counters after %d attempts: %w: %v", a.maxAttempts, syncdelta.ErrConflict, lastErr)
}

func (a *CounterAdapter) tryUpdate(ctx context.Context, attempt syncdelta.Attempt, fn syncdelta.MergeFunc) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var raw []byte
	var version int64
	err = tx.QueryRowContext(ctx, queryReadDocument, a.documentID).Scan(&raw, &version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read document: %w", err)
	}

	current, _ := syncdelta.DecodeState(raw)
	payload, err := fn(current).Encode()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	now := a.now()
	res, err := tx.ExecContext(ctx, queryRecordAttempt, attempt.ID, attempt.IdentityID, now)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	} else if n == 0 {
		return syncdelta.ErrAlreadyApplied
	}

	if version == 0 {
		res, err = tx.ExecContext(ctx, queryInsertDocument, a.documentID, payload, now)
	} else {
		res, err = tx.ExecContext(ctx, queryUpdateDocument, payload, now, a.documentID, version)
	}
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if n == 0 {
		return errVersionLost
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.Debug("[CounterAdapter] Committed document",
		"attempt_id", attempt.ID,
		"version", version+1)
	return nil
}

func (a *CounterAdapter) wait(ctx context.Context, try int) error {
	if a.backoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(a.backoff * time.Duration(try))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// AttemptApplied reports whether the attempt token was committed.
func (a *CounterAdapter) AttemptApplied(ctx context.Context, attemptID string) (bool, error) {
	var applied bool
	if err := a.db.QueryRowContext(ctx, queryAttemptApplied, attemptID).Scan(&applied); err != nil {
		return false, classify("check attempt", err)
	}
	return applied, nil
}

// WriteIdentitySummary upserts the per-installation record.
func (a *CounterAdapter) WriteIdentitySummary(ctx context.Context, summary syncdelta.IdentitySummary) error {
	_, err := a.db.ExecContext(ctx, queryUpsertIdentitySummary,
		summary.IdentityID,
		summary.TotalCalls,
		summary.TodayCalls,
		summary.WeekCalls,
		summary.DayLabel,
		summary.WeekLabel,
		summary.UpdatedAt,
	)
	return classify("write identity summary", err)
}

var _ syncdelta.CounterStore = (*CounterAdapter)(nil)
