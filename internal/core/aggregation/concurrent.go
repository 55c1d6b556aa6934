package aggregation

import (
	"sync"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	"github.com/aevon-lab/callstats/internal/core/partition"
)

// AggregateConcurrently folds records across workers. Records are sharded by
// the partition of their canonical key, so each caller is folded by exactly
// one worker; the per-worker containers are merged at the end.
// The result equals Aggregate(records).
func AggregateConcurrently(records []v1.CallRecord, workers int) *Accumulators {
	if workers <= 1 || len(records) < workers {
		return Aggregate(records)
	}

	shards := make([][]v1.CallRecord, workers)
	for _, rec := range records {
		key, ok := KeyFor(rec.Number)
		if !ok {
			continue
		}
		s := partition.Shard(string(key), workers)
		shards[s] = append(shards[s], rec)
	}

	results := make([]*Accumulators, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = Aggregate(shards[i])
		}(i)
	}
	wg.Wait()

	merged := NewAccumulators()
	for _, local := range results {
		merged.MergeFrom(local)
	}
	return merged
}
