package scheduler

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firecash/backend/internal/domain/ledger"
	"github.com/firecash/backend/internal/domain/shared"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// memoryObligationStore implements the claim contract in memory: FireDue
// claims, materializes, and advances under one lock, so concurrent callers
// partition the due set exactly like the database does with row locks.
type memoryObligationStore struct {
	mu          sync.Mutex
	obligations map[uuid.UUID]*ledger.Obligation
	entries     []*ledger.Transaction
}

func newMemoryObligationStore() *memoryObligationStore {
	return &memoryObligationStore{obligations: make(map[uuid.UUID]*ledger.Obligation)}
}

func (s *memoryObligationStore) add(o *ledger.Obligation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obligations[o.ID] = o
}

func (s *memoryObligationStore) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *memoryObligationStore) entriesFor(obligationAccount uuid.UUID) []*ledger.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ledger.Transaction
	for _, e := range s.entries {
		if e.AccountID == obligationAccount {
			out = append(out, e)
		}
	}
	return out
}

func (s *memoryObligationStore) FireDue(_ context.Context, now time.Time, limit int) ([]ledger.FireResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*ledger.Obligation, 0)
	for _, o := range s.obligations {
		if o.IsDue(now) {
			due = append(due, o)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextOccursAt.Before(due[j].NextOccursAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	var results []ledger.FireResult
	for _, o := range due {
		occurred := o.Advance()
		entry, err := o.MaterializedEntry(occurred)
		if err != nil {
			return nil, err
		}
		s.entries = append(s.entries, entry)
		results = append(results, ledger.FireResult{
			ObligationID:  o.ID,
			TransactionID: entry.ID,
			OccurredAt:    occurred,
			NextOccursAt:  o.NextOccursAt,
		})
	}
	return results, nil
}

func (s *memoryObligationStore) Save(_ context.Context, o *ledger.Obligation) error {
	s.add(o)
	return nil
}

func (s *memoryObligationStore) Update(_ context.Context, o *ledger.Obligation) error {
	s.add(o)
	return nil
}

func (s *memoryObligationStore) FindByID(_ context.Context, id uuid.UUID) (*ledger.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.obligations[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (s *memoryObligationStore) FindByAccount(_ context.Context, accountID uuid.UUID) ([]*ledger.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ledger.Obligation
	for _, o := range s.obligations {
		if o.AccountID == accountID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memoryObligationStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.obligations, id)
	return nil
}

func newStoreObligation(t *testing.T, intervalDays int, next time.Time) *ledger.Obligation {
	t.Helper()
	o, err := ledger.NewObligation(uuid.New(), decimal.NewFromInt(100), "EUR", ledger.EntryExpense, "rent", intervalDays, next)
	require.NoError(t, err)
	return o
}

func newTestScheduler(store *memoryObligationStore, clock Clock) *ObligationScheduler {
	return NewObligationScheduler(Config{TickInterval: time.Hour, BatchLimit: 100}, store, clock, nil)
}

func TestRunOnce_FiresDueObligationOnce(t *testing.T) {
	next := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}

	store := newMemoryObligationStore()
	obligation := newStoreObligation(t, 30, next)
	store.add(obligation)

	s := newTestScheduler(store, clock)
	fired, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	entries := store.entriesFor(obligation.AccountID)
	require.Len(t, entries, 1)
	assert.Equal(t, next, entries[0].OccurredAt, "entry is dated at the pre-advance occurrence")
	assert.Equal(t, next.AddDate(0, 0, 30), obligation.NextOccursAt)
}

func TestRunOnce_NothingDueIsANoOp(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	store := newMemoryObligationStore()
	store.add(newStoreObligation(t, 30, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	s := newTestScheduler(store, clock)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		fired, err := s.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, fired)
	}
	assert.Zero(t, store.entryCount(), "idle ticks write nothing")
}

func TestRunOnce_AlreadyFiredObligationWaitsFullInterval(t *testing.T) {
	next := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: next}

	store := newMemoryObligationStore()
	obligation := newStoreObligation(t, 7, next)
	store.add(obligation)

	s := newTestScheduler(store, clock)
	ctx := context.Background()

	fired, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	// Ticks later the same day and the next day must not refire.
	for _, at := range []time.Time{next.Add(time.Hour), next.Add(25 * time.Hour)} {
		clock.Set(at)
		fired, err = s.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, fired)
	}

	clock.Set(next.AddDate(0, 0, 7))
	fired, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired, "fires again exactly one interval later")
}

func TestRunOnce_DowntimeCatchUpIsDateBasedAndIncremental(t *testing.T) {
	// An obligation due 2024-01-01 with a 30-day interval, with the
	// scheduler down until 2024-03-05: each tick consumes one interval, and
	// the entry dates stay on the 01-01/01-31/03-01 grid instead of sliding
	// to the processing date.
	next := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}

	store := newMemoryObligationStore()
	obligation := newStoreObligation(t, 30, next)
	store.add(obligation)

	s := newTestScheduler(store, clock)
	ctx := context.Background()

	total := 0
	for i := 0; i < 5; i++ {
		fired, err := s.RunOnce(ctx)
		require.NoError(t, err)
		total += fired
	}
	assert.Equal(t, 3, total, "three missed occurrences, one per tick")

	entries := store.entriesFor(obligation.AccountID)
	require.Len(t, entries, 3)
	dates := []time.Time{entries[0].OccurredAt, entries[1].OccurredAt, entries[2].OccurredAt}
	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, dates)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), obligation.NextOccursAt)
}

func TestConcurrentSchedulers_ExactlyOneEntryPerObligation(t *testing.T) {
	// Several scheduler instances against one store, all ticking at once:
	// every due obligation yields exactly one entry.
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: now}

	store := newMemoryObligationStore()
	const obligationCount = 50
	for i := 0; i < obligationCount; i++ {
		store.add(newStoreObligation(t, 14, now.AddDate(0, 0, -1)))
	}

	const instances = 8
	var wg sync.WaitGroup
	fired := make([]int, instances)
	for i := 0; i < instances; i++ {
		s := newTestScheduler(store, clock)
		wg.Add(1)
		go func(idx int, s *ObligationScheduler) {
			defer wg.Done()
			n, err := s.RunOnce(context.Background())
			assert.NoError(t, err)
			fired[idx] = n
		}(i, s)
	}
	wg.Wait()

	total := 0
	for _, n := range fired {
		total += n
	}
	assert.Equal(t, obligationCount, total, "instances partition the due set")
	assert.Equal(t, obligationCount, store.entryCount())
}

func TestRunOnce_RespectsBatchLimit(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: now}

	store := newMemoryObligationStore()
	for i := 0; i < 10; i++ {
		store.add(newStoreObligation(t, 30, now.AddDate(0, 0, -1)))
	}

	s := NewObligationScheduler(Config{TickInterval: time.Hour, BatchLimit: 4}, store, clock, nil)
	ctx := context.Background()

	fired, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, fired)

	fired, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, fired)

	fired, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fired, "the remainder lands on the next tick")
}

func TestTriggerManualRun_RequiresRunningScheduler(t *testing.T) {
	store := newMemoryObligationStore()
	s := newTestScheduler(store, &fakeClock{now: time.Now()})

	_, err := s.TriggerManualRun(context.Background())
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestStartStop_Lifecycle(t *testing.T) {
	store := newMemoryObligationStore()
	s := newTestScheduler(store, &fakeClock{now: time.Now()})
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx), "start is idempotent")
	assert.True(t, s.GetStatus().IsRunning)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	require.NoError(t, s.Stop(stopCtx), "stop is idempotent")
	assert.False(t, s.GetStatus().IsRunning)
}

func TestGetStatus_TracksTickOutcomes(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: now}

	store := newMemoryObligationStore()
	store.add(newStoreObligation(t, 30, now.AddDate(0, 0, -1)))

	s := newTestScheduler(store, clock)
	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	status := s.GetStatus()
	require.NotNil(t, status.LastTickAt)
	assert.Equal(t, now, *status.LastTickAt)
	assert.Equal(t, 1, status.LastFired)
	assert.Equal(t, uint64(1), status.TotalFired)
	assert.Empty(t, status.LastError)
}
