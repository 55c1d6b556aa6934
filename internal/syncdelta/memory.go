package syncdelta

import (
	"context"
	"fmt"
	"sync"
)

const defaultMaxAttempts = 5

// MemoryCounterStore is an in-memory CounterStore with version-checked
// updates. Useful for testing and single-process development.
type MemoryCounterStore struct {
	mu          sync.Mutex
	doc         GlobalCounterState
	version     int64
	applied     map[string]struct{}
	summaries   map[string]IdentitySummary
	maxAttempts int

	// injected faults
	conflicts   int
	unavailable bool

	reads   int
	updates int
}

// NewMemoryCounterStore creates an empty store. maxAttempts <= 0 uses 5.
func NewMemoryCounterStore(maxAttempts int) *MemoryCounterStore {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &MemoryCounterStore{
		applied:     make(map[string]struct{}),
		summaries:   make(map[string]IdentitySummary),
		maxAttempts: maxAttempts,
	}
}

// InjectConflicts makes the next n commit attempts lose to a concurrent writer.
func (s *MemoryCounterStore) InjectConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = n
}

// SetUnavailable toggles simulated unreachability.
func (s *MemoryCounterStore) SetUnavailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = v
}

// Calls returns how many Read and Update calls reached the store.
func (s *MemoryCounterStore) Calls() (reads, updates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.updates
}

// Summary returns the identity summary written for id.
func (s *MemoryCounterStore) Summary(id string) (IdentitySummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.summaries[id]
	return sum, ok
}

func (s *MemoryCounterStore) Read(_ context.Context) (GlobalCounterState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.unavailable {
		return GlobalCounterState{}, ErrUnavailable
	}
	return s.doc, nil
}

func (s *MemoryCounterStore) Update(ctx context.Context, attempt Attempt, fn MergeFunc) error {
	for i := 0; i < s.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		s.mu.Lock()
		s.updates++
		if s.unavailable {
			s.mu.Unlock()
			return ErrUnavailable
		}
		if _, ok := s.applied[attempt.ID]; ok {
			s.mu.Unlock()
			return ErrAlreadyApplied
		}
		readVersion := s.version
		next := fn(s.doc)

		if s.conflicts > 0 {
			// A concurrent writer committed between our read and our write.
			s.conflicts--
			s.version++
		}
		if s.version != readVersion {
			s.mu.Unlock()
			continue
		}

		s.doc = next
		s.version++
		s.applied[attempt.ID] = struct{}{}
		s.mu.Unlock()
		return nil
	}
	return fmt.Errorf("%w: gave up after %d attempts", ErrConflict, s.maxAttempts)
}

func (s *MemoryCounterStore) AttemptApplied(_ context.Context, attemptID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return false, ErrUnavailable
	}
	_, ok := s.applied[attemptID]
	return ok, nil
}

func (s *MemoryCounterStore) WriteIdentitySummary(_ context.Context, summary IdentitySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return ErrUnavailable
	}
	s.summaries[summary.IdentityID] = summary
	return nil
}

// MemoryCheckpointStore is an in-memory CheckpointStore.
type MemoryCheckpointStore struct {
	mu         sync.Mutex
	checkpoint Checkpoint
	pending    *PendingAttempt
}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{}
}

func (s *MemoryCheckpointStore) LoadCheckpoint(_ context.Context) (Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoint, nil
}

func (s *MemoryCheckpointStore) LoadPending(_ context.Context) (*PendingAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil, nil
	}
	p := *s.pending
	return &p, nil
}

func (s *MemoryCheckpointStore) SavePending(_ context.Context, pending PendingAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &pending
	return nil
}

func (s *MemoryCheckpointStore) ClearPending(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	return nil
}

func (s *MemoryCheckpointStore) CommitCheckpoint(_ context.Context, cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint = cp
	s.pending = nil
	return nil
}
