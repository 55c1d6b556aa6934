package partition

import "hash/fnv"

// Count is the fixed number of logical partitions canonical keys hash into.
const Count = 256

// For returns the partition ID for a canonical caller key.
// Stable and deterministic: the same key always maps to the same partition.
func For(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % Count)
}

// Shard maps key onto one of n workers through its partition, so every
// record of a caller lands on the same worker. n <= 1 always yields 0.
func Shard(key string, n int) int {
	if n <= 1 {
		return 0
	}
	return For(key) % n
}
