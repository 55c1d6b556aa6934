package v1

import (
	"fmt"
	"time"
)

// CallType is the kind of call a record describes.
type CallType string

const (
	CallIncoming  CallType = "incoming"
	CallOutgoing  CallType = "outgoing"
	CallMissed    CallType = "missed"
	CallVoicemail CallType = "voicemail"
	CallRejected  CallType = "rejected"
)

// Valid reports whether t is one of the known call types.
func (t CallType) Valid() bool {
	switch t {
	case CallIncoming, CallOutgoing, CallMissed, CallVoicemail, CallRejected:
		return true
	}
	return false
}

// CallRecord is one entry of the raw call history.
// Records are immutable once produced by the history source.
type CallRecord struct {
	// ID is the identifier assigned by the history source.
	// It MUST be unique within one call log; ingestion dedupes on it.
	ID string `json:"id" yaml:"id"`

	// Number is the raw phone number exactly as the source reported it.
	// It may contain formatting, a country code, or a private-caller sentinel.
	Number string `json:"number" yaml:"number"`

	Type CallType `json:"type" yaml:"type"`

	// Timestamp is when the call started, in epoch milliseconds.
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`

	// Duration is the connected time in seconds.
	Duration int64 `json:"duration" yaml:"duration"`

	// CachedName is the caller name the source attached to the record, if any.
	CachedName string `json:"cached_name,omitempty" yaml:"cached_name"`
}

// Time returns the record timestamp as a UTC time.
func (r CallRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}

// Validate ensures the record carries the fields ingestion requires.
// The number itself is not checked here: private and malformed numbers are
// legitimate history entries and are classified during aggregation.
func (r *CallRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}

	if !r.Type.Valid() {
		return fmt.Errorf("unknown call type %q", r.Type)
	}

	if r.Timestamp <= 0 {
		return fmt.Errorf("timestamp is required")
	}

	if r.Duration < 0 {
		return fmt.Errorf("duration must be >= 0, got %d", r.Duration)
	}

	return nil
}
