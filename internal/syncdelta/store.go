package syncdelta

import "context"

// CounterStore is the remote shared-counter document.
type CounterStore interface {
	// Read returns the current document. A missing or malformed document reads
	// as the zero state.
	Read(ctx context.Context) (GlobalCounterState, error)

	// Update applies fn to the document with optimistic concurrency, retrying
	// on conflicting commits, and records attempt.ID in the same commit.
	// Returns ErrAlreadyApplied if attempt.ID was committed before, ErrConflict
	// when retries are exhausted and ErrUnavailable when the store is unreachable.
	Update(ctx context.Context, attempt Attempt, fn MergeFunc) error

	// AttemptApplied reports whether an attempt ID has been committed.
	AttemptApplied(ctx context.Context, attemptID string) (bool, error)

	// WriteIdentitySummary upserts the per-identity record. Not transactional.
	WriteIdentitySummary(ctx context.Context, summary IdentitySummary) error
}

// CheckpointStore is the local durable home of the Checkpoint.
type CheckpointStore interface {
	// LoadCheckpoint returns the zero Checkpoint when none was committed yet.
	LoadCheckpoint(ctx context.Context) (Checkpoint, error)

	// LoadPending returns nil when no attempt is outstanding.
	LoadPending(ctx context.Context) (*PendingAttempt, error)
	SavePending(ctx context.Context, pending PendingAttempt) error
	ClearPending(ctx context.Context) error

	// CommitCheckpoint stores cp and clears any pending attempt atomically.
	CommitCheckpoint(ctx context.Context, cp Checkpoint) error
}
