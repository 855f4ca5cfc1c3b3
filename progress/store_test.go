package progress

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for deterministic timing tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func fivePhases(est float64) []PhaseSpec {
	specs := make([]PhaseSpec, 5)
	for i := range specs {
		specs[i] = PhaseSpec{Name: fmt.Sprintf("phase%d", i+1), EstimateSeconds: est}
	}
	return specs
}

func TestStore_CreateAndExists(t *testing.T) {
	s := NewStore()

	id := s.Create()
	require.NotEmpty(t, id)
	assert.True(t, s.Exists(id))

	rec, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusInProgress, rec.Status)
	assert.Equal(t, 0, rec.Percentage)
	assert.Nil(t, rec.Result)

	// Ids are unique across jobs.
	assert.NotEqual(t, id, s.Create())
}

func TestStore_InitPhases(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	id := s.Create()
	s.InitPhases(id, fivePhases(30))

	rec, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, 5, rec.TotalPhases)
	assert.Equal(t, float64(150), rec.TotalRemainingSeconds)
	assert.Equal(t, float64(0), rec.TotalElapsedSeconds)
	require.Len(t, rec.PhaseTimings, 5)
	assert.Nil(t, rec.PhaseTimings[0].StartTime)
}

func TestStore_AdvanceFreezesFinishedPhase(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	id := s.Create()
	s.InitPhases(id, fivePhases(30))

	s.Advance(id, 1, "phase1", 20)
	clock.Advance(10 * time.Second)
	s.Advance(id, 2, "phase2", 40)

	rec, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, 2, rec.PhaseIndex)
	assert.Equal(t, "phase2", rec.Stage)
	assert.Equal(t, 40, rec.Percentage)

	require.NotNil(t, rec.PhaseTimings[0].ActualDurationSeconds)
	assert.InDelta(t, 10, *rec.PhaseTimings[0].ActualDurationSeconds, 0.001)
	require.NotNil(t, rec.PhaseTimings[1].StartTime)
	assert.Nil(t, rec.PhaseTimings[1].ActualDurationSeconds)

	// Elapsed: 10s frozen + 0s active. Remaining: 30 active + 3*30 future.
	assert.InDelta(t, 10, rec.TotalElapsedSeconds, 0.001)
	assert.InDelta(t, 120, rec.TotalRemainingSeconds, 0.001)
}

func TestStore_ElapsedPlusRemainingApproximatesEstimates(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	id := s.Create()
	s.InitPhases(id, fivePhases(30))

	// Each phase runs exactly on estimate.
	for i := 1; i <= 5; i++ {
		s.Advance(id, i, fmt.Sprintf("phase%d", i), i*20)
		rec, _ := s.Get(id)
		assert.InDelta(t, 150, rec.TotalElapsedSeconds+rec.TotalRemainingSeconds, 0.001,
			"phase %d", i)
		assert.GreaterOrEqual(t, rec.TotalRemainingSeconds, float64(0))
		clock.Advance(30 * time.Second)
	}
}

func TestStore_RemainingNeverNegativeOnOverrun(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	id := s.Create()
	s.InitPhases(id, []PhaseSpec{{Name: "only", EstimateSeconds: 5}})

	s.Advance(id, 1, "only", 50)
	clock.Advance(2 * time.Minute)
	s.Advance(id, 1, "only", 60)

	rec, _ := s.Get(id)
	assert.Equal(t, float64(0), rec.TotalRemainingSeconds)
	assert.InDelta(t, 120, rec.TotalElapsedSeconds, 0.001)
}

func TestStore_Complete(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	id := s.Create()
	s.InitPhases(id, fivePhases(30))
	s.Advance(id, 1, "phase1", 20)
	clock.Advance(12 * time.Second)

	s.Complete(id, map[string]string{"analysis": "done"})

	rec, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, 100, rec.Percentage)
	assert.NotNil(t, rec.Result)
	assert.Equal(t, float64(0), rec.TotalRemainingSeconds)
	require.NotNil(t, rec.PhaseTimings[0].ActualDurationSeconds)
	assert.InDelta(t, 12, *rec.PhaseTimings[0].ActualDurationSeconds, 0.001)

	// Completing an absent job is a harmless no-op.
	s.Complete("missing", "x")
}

func TestStore_ResultNonNilIffCompleted(t *testing.T) {
	s := NewStore()

	done := s.Create()
	s.Complete(done, "payload")
	rec, _ := s.Get(done)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.NotNil(t, rec.Result)

	failed := s.Create()
	s.Fail(failed, "boom")
	rec, _ = s.Get(failed)
	assert.Equal(t, StatusError, rec.Status)
	assert.Nil(t, rec.Result)

	running := s.Create()
	rec, _ = s.Get(running)
	assert.Equal(t, StatusInProgress, rec.Status)
	assert.Nil(t, rec.Result)
}

func TestStore_TerminalRecordsRejectMutation(t *testing.T) {
	s := NewStore()

	id := s.Create()
	s.InitPhases(id, fivePhases(30))
	s.Fail(id, "generation failed")

	s.Advance(id, 3, "phase3", 60)
	s.Complete(id, "late result")

	rec, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusError, rec.Status)
	assert.Equal(t, "generation failed", rec.Error)
	assert.Nil(t, rec.Result)
}

func TestStore_GetReturnsSnapshot(t *testing.T) {
	s := NewStore()

	id := s.Create()
	s.InitPhases(id, fivePhases(30))

	rec, _ := s.Get(id)
	rec.Stage = "tampered"
	rec.PhaseTimings[0].EstimateSeconds = 999

	fresh, _ := s.Get(id)
	assert.Equal(t, "Queued", fresh.Stage)
	assert.Equal(t, float64(30), fresh.PhaseTimings[0].EstimateSeconds)
}

func TestStore_SweepEvictsIdleRecords(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now), WithTTL(10*time.Minute))

	stale := s.Create()
	s.Complete(stale, "old result")

	clock.Advance(11 * time.Minute)
	fresh := s.Create()

	assert.Equal(t, 1, s.Sweep())
	assert.False(t, s.Exists(stale), "expired record evicted regardless of status")
	assert.True(t, s.Exists(fresh))
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	id := s.Create()
	s.Complete(id, "consumed")

	s.Delete(id)
	assert.False(t, s.Exists(id))
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	s := NewStore()
	id := s.Create()
	s.InitPhases(id, fivePhases(10))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 5; i++ {
			s.Advance(id, i, fmt.Sprintf("phase%d", i), i*20)
		}
		s.Complete(id, "done")
	}()

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				rec, ok := s.Get(id)
				if !ok {
					continue
				}
				// A reader must only ever see fully-formed records.
				assert.GreaterOrEqual(t, rec.Percentage, 0)
				assert.LessOrEqual(t, rec.Percentage, 100)
				if rec.Status == StatusCompleted {
					assert.NotNil(t, rec.Result)
				}
			}
		}()
	}
	wg.Wait()
}
