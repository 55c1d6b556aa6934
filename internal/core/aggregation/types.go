package aggregation

// CanonicalKey identifies one caller within an aggregation pass.
// Two records with the same key are the same caller.
type CanonicalKey string

// PrivateKey collects every withheld, blocked or unknown caller.
const PrivateKey CanonicalKey = "PRIVATE"

// Accumulator is the running total for one caller during one aggregation pass.
// Counters only ever grow; FirstCall/LastCall are a running min/max.
type Accumulator struct {
	Key CanonicalKey

	// Number is a representative raw number for the caller, taken from the
	// most recent record so the choice does not depend on fold order.
	Number string

	// CachedName is the most recent non-empty caller-supplied name.
	CachedName string
	// NameNumber is the raw number of the record CachedName came from.
	NameNumber string

	Incoming  int64
	Outgoing  int64
	Missed    int64
	Voicemail int64
	Rejected  int64

	// Total counts every record, including types without a dedicated counter.
	Total    int64
	Duration int64 // seconds

	FirstCall int64 // epoch millis
	LastCall  int64 // epoch millis

	numberAt recordStamp
	nameAt   recordStamp
}

// recordStamp orders records by (timestamp, id) so representative fields are
// picked deterministically regardless of input order.
type recordStamp struct {
	ts int64
	id string
	ok bool
}

func (s recordStamp) before(o recordStamp) bool {
	if !s.ok {
		return o.ok
	}
	if !o.ok {
		return false
	}
	if s.ts != o.ts {
		return s.ts < o.ts
	}
	return s.id < o.id
}
