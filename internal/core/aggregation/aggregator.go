package aggregation

import (
	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	"github.com/aevon-lab/callstats/internal/core/phone"
)

// counterFunc bumps the per-type counter a record contributes to.
type counterFunc func(*Accumulator)

// Counters is the registry of per-type counters.
// Types without an entry still count toward Accumulator.Total.
var Counters = map[v1.CallType]counterFunc{
	v1.CallIncoming:  func(a *Accumulator) { a.Incoming++ },
	v1.CallOutgoing:  func(a *Accumulator) { a.Outgoing++ },
	v1.CallMissed:    func(a *Accumulator) { a.Missed++ },
	v1.CallVoicemail: func(a *Accumulator) { a.Voicemail++ },
	v1.CallRejected:  func(a *Accumulator) { a.Rejected++ },
}

// KeyFor classifies a raw number. Private callers map to PrivateKey; numbers
// with too few digits are rejected (ok == false) and must be dropped.
func KeyFor(number string) (CanonicalKey, bool) {
	if phone.IsPrivate(number) {
		return PrivateKey, true
	}
	if !phone.IsValid(number) {
		return "", false
	}
	return CanonicalKey(phone.Normalize(number)), true
}

// Aggregate folds records into one accumulator per canonical key.
// The result does not depend on record order.
func Aggregate(records []v1.CallRecord) *Accumulators {
	accs := NewAccumulators()
	for _, rec := range records {
		accs.Add(rec)
	}
	return accs
}

// apply folds a single record into acc.
func (acc *Accumulator) apply(rec v1.CallRecord) {
	if count, ok := Counters[rec.Type]; ok {
		count(acc)
	}
	acc.Total++
	if rec.Duration > 0 {
		acc.Duration += rec.Duration
	}

	if acc.Total == 1 || rec.Timestamp < acc.FirstCall {
		acc.FirstCall = rec.Timestamp
	}
	if acc.Total == 1 || rec.Timestamp > acc.LastCall {
		acc.LastCall = rec.Timestamp
	}

	stamp := recordStamp{ts: rec.Timestamp, id: rec.ID, ok: true}
	if acc.numberAt.before(stamp) {
		acc.Number = rec.Number
		acc.numberAt = stamp
	}
	if rec.CachedName != "" && acc.nameAt.before(stamp) {
		acc.CachedName = rec.CachedName
		acc.NameNumber = rec.Number
		acc.nameAt = stamp
	}
}

// Merge folds src into acc. Counters add, timestamps take min/max, and the
// representative number and name follow the most recent record of either side.
func (acc *Accumulator) Merge(src Accumulator) {
	if src.Total == 0 {
		return
	}
	if acc.Total == 0 {
		key := acc.Key
		*acc = src
		if key != "" {
			acc.Key = key
		}
		return
	}

	acc.Incoming += src.Incoming
	acc.Outgoing += src.Outgoing
	acc.Missed += src.Missed
	acc.Voicemail += src.Voicemail
	acc.Rejected += src.Rejected
	acc.Total += src.Total
	acc.Duration += src.Duration

	if src.FirstCall < acc.FirstCall {
		acc.FirstCall = src.FirstCall
	}
	if src.LastCall > acc.LastCall {
		acc.LastCall = src.LastCall
	}
	if acc.numberAt.before(src.numberAt) {
		acc.Number = src.Number
		acc.numberAt = src.numberAt
	}
	if acc.nameAt.before(src.nameAt) {
		acc.CachedName = src.CachedName
		acc.NameNumber = src.NameNumber
		acc.nameAt = src.nameAt
	}
}
