package syncdelta

import "errors"

var (
	// ErrUnavailable means the counter store cannot be reached or is disabled.
	ErrUnavailable = errors.New("counter store unavailable")

	// ErrConflict means a concurrent commit won the optimistic update and the
	// store ran out of retries.
	ErrConflict = errors.New("counter store transaction conflict")

	// ErrAlreadyApplied is returned by CounterStore.Update when the attempt ID
	// has been committed before.
	ErrAlreadyApplied = errors.New("sync attempt already applied")

	// ErrSyncFailed wraps every failure that left the checkpoint unchanged.
	ErrSyncFailed = errors.New("sync failed")

	// ErrSyncInProgress is returned when another sync for this identity is running.
	ErrSyncInProgress = errors.New("sync already in progress")
)
