package storage

import (
	"context"
	"errors"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
)

// ErrSourceUnavailable marks a call-history source that could not be read.
// Consumers treat it as an empty history rather than a fatal error.
var ErrSourceUnavailable = errors.New("call record source unavailable")

// RecordSource yields the raw call history. No ordering or filtering is
// guaranteed; consumers must classify and drop malformed numbers themselves.
type RecordSource interface {
	Records(ctx context.Context) ([]v1.CallRecord, error)
}

// CallLog is a RecordSource that also accepts new records.
type CallLog interface {
	RecordSource

	// SaveRecords persists records idempotently by ID and returns how many
	// were new. Records whose ID already exists are skipped, not overwritten.
	SaveRecords(ctx context.Context, records []v1.CallRecord) (int, error)
}
