package progress

import "time"

// Status is the lifecycle state of a job record. Terminal statuses are never
// mutated again except by expiry deletion.
type Status string

const (
	// StatusInProgress marks a job whose pipeline is still running.
	StatusInProgress Status = "in_progress"
	// StatusCompleted marks a successfully finished job carrying a result.
	StatusCompleted Status = "completed"
	// StatusError marks a failed job carrying an error message.
	StatusError Status = "error"
)

// Terminal reports whether the status accepts no further mutation.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// PhaseSpec declares one pipeline phase and its duration estimate, installed
// before the pipeline starts.
type PhaseSpec struct {
	Name            string
	EstimateSeconds float64
}

// PhaseTiming is the per-phase bookkeeping behind the time-estimation model.
// StartTime is set when the phase becomes active; ActualDurationSeconds is
// frozen once the next phase begins.
type PhaseTiming struct {
	Name                  string     `json:"name"`
	EstimateSeconds       float64    `json:"estimateSeconds"`
	StartTime             *time.Time `json:"startTime,omitempty"`
	ActualDurationSeconds *float64   `json:"actualDurationSeconds,omitempty"`
}

// Record is one job's observable progress. All fields are written by the
// store under its lock; callers only ever hold deep copies.
type Record struct {
	JobID                 string        `json:"jobId"`
	Stage                 string        `json:"stage"`
	Percentage            int           `json:"percentage"`
	Status                Status        `json:"status"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
	Error                 string        `json:"error,omitempty"`
	Result                any           `json:"result,omitempty"`
	PhaseIndex            int           `json:"phaseIndex"`
	TotalPhases           int           `json:"totalPhases"`
	PhaseTimings          []PhaseTiming `json:"phaseTimings,omitempty"`
	TotalElapsedSeconds   float64       `json:"totalElapsedSeconds"`
	TotalRemainingSeconds float64       `json:"totalRemainingSeconds"`
}

// Clone returns a deep copy safe to hand to readers.
func (r *Record) Clone() *Record {
	clone := *r
	if r.PhaseTimings != nil {
		clone.PhaseTimings = make([]PhaseTiming, len(r.PhaseTimings))
		for i, pt := range r.PhaseTimings {
			cp := pt
			if pt.StartTime != nil {
				t := *pt.StartTime
				cp.StartTime = &t
			}
			if pt.ActualDurationSeconds != nil {
				d := *pt.ActualDurationSeconds
				cp.ActualDurationSeconds = &d
			}
			clone.PhaseTimings[i] = cp
		}
	}
	return &clone
}

// EstimateTotalSeconds sums the installed phase estimates.
func (r *Record) EstimateTotalSeconds() float64 {
	var sum float64
	for _, pt := range r.PhaseTimings {
		sum += pt.EstimateSeconds
	}
	return sum
}
