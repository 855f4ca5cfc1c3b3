package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/advokit/advokit/logging"
)

const (
	// DefaultTTL is how long a record may sit idle before the sweep deletes
	// it, regardless of status.
	DefaultTTL = 10 * time.Minute
	// DefaultSweepInterval is how often the background sweep runs.
	DefaultSweepInterval = 5 * time.Minute
)

// Store is a concurrency-safe map of job progress records. Mutations build a
// fresh record and swap it into the map slot whole, so concurrent readers
// only ever see fully-formed snapshots. See the package doc for the
// ownership discipline.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record

	ttl    time.Duration
	sweep  time.Duration
	now    func() time.Time
	logger logging.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL overrides the idle eviction window.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// WithSweepInterval overrides the background sweep cadence.
func WithSweepInterval(d time.Duration) StoreOption {
	return func(s *Store) { s.sweep = d }
}

// WithClock overrides the wall clock, used by timing tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore constructs an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		records: make(map[string]*Record),
		ttl:     DefaultTTL,
		sweep:   DefaultSweepInterval,
		now:     time.Now,
		logger:  logging.NoOpLogger{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create allocates a globally unique job id with an initial in_progress
// record at 0% and returns the id.
func (s *Store) Create() string {
	id := uuid.NewString()
	now := s.now()
	rec := &Record{
		JobID:      id,
		Stage:      "Queued",
		Percentage: 0,
		Status:     StatusInProgress,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.mu.Lock()
	s.records[id] = rec
	s.mu.Unlock()
	return id
}

// InitPhases installs the ordered phase timings with their estimates and
// seeds the remaining-time projection with their sum.
func (s *Store) InitPhases(jobID string, phases []PhaseSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.records[jobID]
	if !ok || old.Status.Terminal() {
		return
	}
	rec := old.Clone()
	rec.PhaseTimings = make([]PhaseTiming, len(phases))
	var total float64
	for i, p := range phases {
		rec.PhaseTimings[i] = PhaseTiming{Name: p.Name, EstimateSeconds: p.EstimateSeconds}
		total += p.EstimateSeconds
	}
	rec.TotalPhases = len(phases)
	rec.TotalRemainingSeconds = total
	rec.UpdatedAt = s.now()
	s.records[jobID] = rec
}

// Advance moves the job to the given 1-based phase, freezing the actual
// duration of any phase that just finished and recomputing the elapsed and
// remaining projections. Stage and percentage are set verbatim.
func (s *Store) Advance(jobID string, phaseIndex int, stage string, percentage int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.records[jobID]
	if !ok || old.Status.Terminal() {
		return
	}
	now := s.now()
	rec := old.Clone()

	if phaseIndex > rec.PhaseIndex && rec.PhaseIndex >= 1 {
		freezePhase(rec, rec.PhaseIndex-1, now)
	}
	if i := phaseIndex - 1; i >= 0 && i < len(rec.PhaseTimings) && rec.PhaseTimings[i].StartTime == nil {
		start := now
		rec.PhaseTimings[i].StartTime = &start
	}

	rec.PhaseIndex = phaseIndex
	rec.Stage = stage
	rec.Percentage = percentage
	rec.TotalElapsedSeconds, rec.TotalRemainingSeconds = projectTimings(rec, phaseIndex, now)
	rec.UpdatedAt = now
	s.records[jobID] = rec
}

// Complete marks the job finished at 100% and attaches the result. A missing
// record makes this a no-op, so late completions after expiry are harmless.
func (s *Store) Complete(jobID string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.records[jobID]
	if !ok || old.Status.Terminal() {
		return
	}
	now := s.now()
	rec := old.Clone()
	if rec.PhaseIndex >= 1 {
		freezePhase(rec, rec.PhaseIndex-1, now)
	}
	rec.Status = StatusCompleted
	rec.Stage = "Completed"
	rec.Percentage = 100
	rec.Result = result
	rec.TotalElapsedSeconds = frozenElapsed(rec)
	rec.TotalRemainingSeconds = 0
	rec.UpdatedAt = now
	s.records[jobID] = rec
}

// Fail marks the job failed with the given message. Once terminal, no
// further mutation is accepted.
func (s *Store) Fail(jobID string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.records[jobID]
	if !ok || old.Status.Terminal() {
		return
	}
	now := s.now()
	rec := old.Clone()
	if rec.PhaseIndex >= 1 {
		freezePhase(rec, rec.PhaseIndex-1, now)
	}
	rec.Status = StatusError
	rec.Stage = "Failed"
	rec.Error = message
	rec.TotalRemainingSeconds = 0
	rec.UpdatedAt = now
	s.records[jobID] = rec
}

// Get returns a deep-copy snapshot of the record, never the live value.
func (s *Store) Get(jobID string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[jobID]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Exists reports whether a record is currently tracked.
func (s *Store) Exists(jobID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[jobID]
	return ok
}

// Delete removes a record, typically after the caller consumed the result.
func (s *Store) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, jobID)
}

// Sweep deletes every record idle beyond the TTL, regardless of status, and
// returns how many were evicted.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, rec := range s.records {
		if now.Sub(rec.UpdatedAt) > s.ttl {
			delete(s.records, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps on the configured interval until the context is cancelled.
// Callers start it once, detached, alongside the HTTP server.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("evicted expired job records", "count", n)
			}
		}
	}
}

// Len returns the number of tracked records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// freezePhase fixes the actual duration of the phase at index i using its
// start time and now. Already-frozen phases are left alone.
func freezePhase(rec *Record, i int, now time.Time) {
	if i < 0 || i >= len(rec.PhaseTimings) {
		return
	}
	pt := &rec.PhaseTimings[i]
	if pt.StartTime == nil || pt.ActualDurationSeconds != nil {
		return
	}
	d := now.Sub(*pt.StartTime).Seconds()
	pt.ActualDurationSeconds = &d
}

// projectTimings recomputes the elapsed/remaining projection: frozen
// durations plus active-phase runtime on one side; the active phase's unspent
// estimate plus untouched estimates on the other. Remaining never goes
// negative even when a phase overruns its estimate.
func projectTimings(rec *Record, phaseIndex int, now time.Time) (elapsed, remaining float64) {
	active := phaseIndex - 1
	for i, pt := range rec.PhaseTimings {
		switch {
		case pt.ActualDurationSeconds != nil:
			elapsed += *pt.ActualDurationSeconds
		case i == active && pt.StartTime != nil:
			phaseElapsed := now.Sub(*pt.StartTime).Seconds()
			elapsed += phaseElapsed
			if left := pt.EstimateSeconds - phaseElapsed; left > 0 {
				remaining += left
			}
		case i > active:
			remaining += pt.EstimateSeconds
		}
	}
	return elapsed, remaining
}

// frozenElapsed sums the frozen durations only, used once a job is terminal.
func frozenElapsed(rec *Record) float64 {
	var sum float64
	for _, pt := range rec.PhaseTimings {
		if pt.ActualDurationSeconds != nil {
			sum += *pt.ActualDurationSeconds
		}
	}
	return sum
}
