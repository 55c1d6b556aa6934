package syncdelta

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 21, 12, 0, 0, 0, time.UTC) // Tuesday

func newTestEngine(store CounterStore, checkpoints CheckpointStore) *Engine {
	n := 0
	return NewEngine(store, checkpoints, Options{
		Enabled:    true,
		IdentityID: "install-1",
		Now:        func() time.Time { return fixedNow },
		NewAttemptID: func() string {
			n++
			return fmt.Sprintf("attempt-%d", n)
		},
	})
}

func TestEngine_FirstSyncCommitsAndAdvancesCheckpoint(t *testing.T) {
	store := NewMemoryCounterStore(3)
	checkpoints := NewMemoryCheckpointStore()
	engine := newTestEngine(store, checkpoints)

	res, err := engine.Sync(context.Background(), LocalTotals{Total: 10, Today: 2, Week: 6})
	require.NoError(t, err)
	require.Equal(t, StateCommitted, res.State)
	require.Equal(t, Delta{Total: 10, Today: 2, Week: 6}, res.Delta)
	require.Equal(t, StateIdle, engine.State())

	doc, err := store.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, doc.TotalUsers)
	require.Equal(t, int64(10), doc.TotalGlobalCalls)
	require.Equal(t, DayBucket{Date: "2025-01-21", Calls: 2, ActiveUsers: 1}, doc.Today)
	require.Equal(t, WeekBucket{WeekStart: "2025-01-20", Calls: 6, ActiveUsers: 1}, doc.Week)

	cp, _ := checkpoints.LoadCheckpoint(context.Background())
	require.Equal(t, Checkpoint{LastTotal: 10, SyncedToday: 2, SyncedWeek: 6, DayLabel: "2025-01-21", WeekLabel: "2025-01-20"}, cp)
	pending, _ := checkpoints.LoadPending(context.Background())
	require.Nil(t, pending)

	summary, ok := store.Summary("install-1")
	require.True(t, ok)
	require.Equal(t, int64(10), summary.TotalCalls)
}

func TestEngine_RepeatWithoutNewCallsIsNoOp(t *testing.T) {
	store := NewMemoryCounterStore(3)
	engine := newTestEngine(store, NewMemoryCheckpointStore())
	local := LocalTotals{Total: 4, Today: 4, Week: 4}

	_, err := engine.Sync(context.Background(), local)
	require.NoError(t, err)
	_, updatesAfterFirst := store.Calls()

	res, err := engine.Sync(context.Background(), local)
	require.NoError(t, err)
	require.Equal(t, StateNoOp, res.State)
	require.True(t, res.Delta.IsZero())

	_, updates := store.Calls()
	require.Equal(t, updatesAfterFirst, updates)
}

func TestEngine_SecondContributionDoesNotCountUserAgain(t *testing.T) {
	store := NewMemoryCounterStore(3)
	engine := newTestEngine(store, NewMemoryCheckpointStore())

	_, err := engine.Sync(context.Background(), LocalTotals{Total: 4, Today: 4, Week: 4})
	require.NoError(t, err)
	res, err := engine.Sync(context.Background(), LocalTotals{Total: 6, Today: 6, Week: 6})
	require.NoError(t, err)
	require.Equal(t, Delta{Total: 2, Today: 2, Week: 2}, res.Delta)

	doc, _ := store.Read(context.Background())
	require.Equal(t, 1, doc.TotalUsers)
	require.Equal(t, int64(6), doc.TotalGlobalCalls)
	require.Equal(t, int64(6), doc.Today.Calls)
	// Each committed positive delta marks the identity active again.
	require.Equal(t, 2, doc.Today.ActiveUsers)
}

func TestEngine_ConflictsAreRetried(t *testing.T) {
	store := NewMemoryCounterStore(3)
	store.InjectConflicts(2)
	engine := newTestEngine(store, NewMemoryCheckpointStore())

	res, err := engine.Sync(context.Background(), LocalTotals{Total: 3, Today: 3, Week: 3})
	require.NoError(t, err)
	require.Equal(t, StateCommitted, res.State)

	doc, _ := store.Read(context.Background())
	require.Equal(t, int64(3), doc.TotalGlobalCalls)
}

func TestEngine_ExhaustedConflictsLeaveCheckpointUnchanged(t *testing.T) {
	store := NewMemoryCounterStore(2)
	store.InjectConflicts(5)
	checkpoints := NewMemoryCheckpointStore()
	engine := newTestEngine(store, checkpoints)

	res, err := engine.Sync(context.Background(), LocalTotals{Total: 3, Today: 3, Week: 3})
	require.ErrorIs(t, err, ErrSyncFailed)
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, StateFailed, res.State)

	cp, _ := checkpoints.LoadCheckpoint(context.Background())
	require.Equal(t, Checkpoint{}, cp)
	pending, _ := checkpoints.LoadPending(context.Background())
	require.Nil(t, pending)

	// The same delta is recomputed and lands once the contention clears.
	store.InjectConflicts(0)
	res, err = engine.Sync(context.Background(), LocalTotals{Total: 3, Today: 3, Week: 3})
	require.NoError(t, err)
	require.Equal(t, Delta{Total: 3, Today: 3, Week: 3}, res.Delta)
}

func TestEngine_UnavailableBackendIsLocalOnly(t *testing.T) {
	store := NewMemoryCounterStore(3)
	store.SetUnavailable(true)
	checkpoints := NewMemoryCheckpointStore()
	engine := newTestEngine(store, checkpoints)

	res, err := engine.Sync(context.Background(), LocalTotals{Total: 8, Today: 1, Week: 1})
	require.NoError(t, err)
	require.True(t, res.LocalOnly)
	require.Equal(t, StateNoOp, res.State)

	cp, _ := checkpoints.LoadCheckpoint(context.Background())
	require.Equal(t, Checkpoint{}, cp)

	// Backend comes back: the pending attempt was never applied, so it is
	// discarded and the full delta is submitted.
	store.SetUnavailable(false)
	res, err = engine.Sync(context.Background(), LocalTotals{Total: 9, Today: 2, Week: 2})
	require.NoError(t, err)
	require.Equal(t, StateCommitted, res.State)
	require.Equal(t, Delta{Total: 9, Today: 2, Week: 2}, res.Delta)

	doc, _ := store.Read(context.Background())
	require.Equal(t, int64(9), doc.TotalGlobalCalls)
}

func TestEngine_DisabledNeverTouchesStores(t *testing.T) {
	store := NewMemoryCounterStore(3)
	engine := NewEngine(store, NewMemoryCheckpointStore(), Options{Enabled: false})

	res, err := engine.Sync(context.Background(), LocalTotals{Total: 100, Today: 100, Week: 100})
	require.NoError(t, err)
	require.True(t, res.LocalOnly)
	require.False(t, engine.Enabled())

	reads, updates := store.Calls()
	require.Zero(t, reads)
	require.Zero(t, updates)

	_, err = engine.Global(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestEngine_NilStoreIsLocalOnly(t *testing.T) {
	engine := NewEngine(nil, NewMemoryCheckpointStore(), Options{Enabled: true})
	require.False(t, engine.Enabled())

	res, err := engine.Sync(context.Background(), LocalTotals{Total: 1})
	require.NoError(t, err)
	require.True(t, res.LocalOnly)
}

// commitFailingCheckpoints simulates a crash between the remote commit and
// the local checkpoint write.
type commitFailingCheckpoints struct {
	*MemoryCheckpointStore
	failures int
}

func (s *commitFailingCheckpoints) CommitCheckpoint(ctx context.Context, cp Checkpoint) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("disk full")
	}
	return s.MemoryCheckpointStore.CommitCheckpoint(ctx, cp)
}

func TestEngine_RecoversAppliedPendingAttemptWithoutResubmitting(t *testing.T) {
	store := NewMemoryCounterStore(3)
	checkpoints := &commitFailingCheckpoints{MemoryCheckpointStore: NewMemoryCheckpointStore(), failures: 1}
	engine := newTestEngine(store, checkpoints)

	res, err := engine.Sync(context.Background(), LocalTotals{Total: 5, Today: 5, Week: 5})
	require.NoError(t, err)
	require.Equal(t, StateCommitted, res.State)

	cp, _ := checkpoints.LoadCheckpoint(context.Background())
	require.Equal(t, Checkpoint{}, cp, "checkpoint write failed")
	pending, _ := checkpoints.LoadPending(context.Background())
	require.NotNil(t, pending)

	res, err = engine.Sync(context.Background(), LocalTotals{Total: 5, Today: 5, Week: 5})
	require.NoError(t, err)
	require.True(t, res.Recovered)
	require.Equal(t, StateNoOp, res.State)

	doc, _ := store.Read(context.Background())
	require.Equal(t, int64(5), doc.TotalGlobalCalls, "delta must not be applied twice")
	require.Equal(t, 1, doc.TotalUsers)

	cp, _ = checkpoints.LoadCheckpoint(context.Background())
	require.Equal(t, int64(5), cp.LastTotal)
}

// blockingStore holds Update open until released.
type blockingStore struct {
	*MemoryCounterStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) Update(ctx context.Context, attempt Attempt, fn MergeFunc) error {
	close(s.entered)
	<-s.release
	return s.MemoryCounterStore.Update(ctx, attempt, fn)
}

func TestEngine_RejectsConcurrentSync(t *testing.T) {
	store := &blockingStore{
		MemoryCounterStore: NewMemoryCounterStore(3),
		entered:            make(chan struct{}),
		release:            make(chan struct{}),
	}
	engine := newTestEngine(store, NewMemoryCheckpointStore())

	done := make(chan error, 1)
	go func() {
		_, err := engine.Sync(context.Background(), LocalTotals{Total: 1, Today: 1, Week: 1})
		done <- err
	}()

	<-store.entered
	require.Equal(t, StateSubmitting, engine.State())

	_, err := engine.Sync(context.Background(), LocalTotals{Total: 2, Today: 2, Week: 2})
	require.ErrorIs(t, err, ErrSyncInProgress)

	close(store.release)
	require.NoError(t, <-done)
	require.Equal(t, StateIdle, engine.State())
}

func TestState_String(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "committed", StateCommitted.String())
	require.Equal(t, "state(42)", State(42).String())
}

func TestEngine_TotalsCountedBeforeMidnightKeepTheirDay(t *testing.T) {
	day1 := time.Date(2025, 1, 21, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 22, 0, 0, 1, 0, time.UTC)

	var records []v1.CallRecord
	for i := 0; i < 5; i++ {
		records = append(records, v1.CallRecord{
			ID: fmt.Sprintf("d1-%d", i), Number: "5551234567", Type: v1.CallIncoming,
			Timestamp: day1.Add(time.Duration(i) * time.Minute).UnixMilli(),
		})
	}

	store := NewMemoryCounterStore(3)
	checkpoints := NewMemoryCheckpointStore()
	engine := newTestEngine(store, checkpoints)
	engine.opts.Now = func() time.Time { return day2 }

	// Counted at 23:59:59, submitted after the clock crossed midnight.
	res, err := engine.Sync(context.Background(), TotalsFromRecords(records, day1.Add(59*time.Minute+59*time.Second)))
	require.NoError(t, err)
	require.Equal(t, Delta{Total: 5, Today: 5, Week: 5}, res.Delta)

	doc, err := store.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, DayBucket{Date: "2025-01-21", Calls: 5, ActiveUsers: 1}, doc.Today)

	cp, err := checkpoints.LoadCheckpoint(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-01-21", cp.DayLabel)

	for i := 0; i < 3; i++ {
		records = append(records, v1.CallRecord{
			ID: fmt.Sprintf("d2-%d", i), Number: "5551234568", Type: v1.CallOutgoing,
			Timestamp: day2.Add(time.Duration(i+1) * time.Minute).UnixMilli(),
		})
	}

	local := TotalsFromRecords(records, day2.Add(10*time.Minute))
	require.Equal(t, int64(3), local.Today)

	res, err = engine.Sync(context.Background(), local)
	require.NoError(t, err)
	require.Equal(t, Delta{Total: 3, Today: 3, Week: 3}, res.Delta)

	doc, err = store.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, DayBucket{Date: "2025-01-22", Calls: 3, ActiveUsers: 1}, doc.Today)
	require.Equal(t, WeekBucket{WeekStart: "2025-01-20", Calls: 8, ActiveUsers: 2}, doc.Week)

	cp, err = checkpoints.LoadCheckpoint(context.Background())
	require.NoError(t, err)
	require.Equal(t, Checkpoint{LastTotal: 8, SyncedToday: 3, SyncedWeek: 8, DayLabel: "2025-01-22", WeekLabel: "2025-01-20"}, cp)
}
