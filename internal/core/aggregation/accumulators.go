package aggregation

import (
	"sort"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
)

// Accumulators is the keyed container for one aggregation pass: accumulators
// live in a contiguous arena and are reached only through the key index.
// Not safe for concurrent use; concurrent folds use one container per worker.
type Accumulators struct {
	arena []Accumulator
	index map[CanonicalKey]int
}

// NewAccumulators returns an empty container.
func NewAccumulators() *Accumulators {
	return &Accumulators{index: make(map[CanonicalKey]int)}
}

// slot returns the arena position for key, creating a zeroed accumulator on
// first use. Pointers into the arena must not be held across calls to slot.
func (a *Accumulators) slot(key CanonicalKey) int {
	if i, ok := a.index[key]; ok {
		return i
	}
	a.arena = append(a.arena, Accumulator{Key: key})
	i := len(a.arena) - 1
	a.index[key] = i
	return i
}

// Add folds one record. It returns false when the record was dropped because
// its number is neither valid nor private.
func (a *Accumulators) Add(rec v1.CallRecord) bool {
	key, ok := KeyFor(rec.Number)
	if !ok {
		return false
	}
	a.arena[a.slot(key)].apply(rec)
	return true
}

// MergeFrom folds every accumulator of other into a.
func (a *Accumulators) MergeFrom(other *Accumulators) {
	if other == nil {
		return
	}
	for _, src := range other.arena {
		a.arena[a.slot(src.Key)].Merge(src)
	}
}

// Get returns a copy of the accumulator for key.
func (a *Accumulators) Get(key CanonicalKey) (Accumulator, bool) {
	i, ok := a.index[key]
	if !ok {
		return Accumulator{}, false
	}
	return a.arena[i], true
}

// Len returns the number of distinct callers.
func (a *Accumulators) Len() int {
	return len(a.arena)
}

// Keys returns the canonical keys in ascending order.
func (a *Accumulators) Keys() []CanonicalKey {
	keys := make([]CanonicalKey, 0, len(a.arena))
	for _, acc := range a.arena {
		keys = append(keys, acc.Key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// All returns copies of every accumulator ordered by key.
func (a *Accumulators) All() []Accumulator {
	out := make([]Accumulator, len(a.arena))
	copy(out, a.arena)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
