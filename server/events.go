package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/advokit/advokit/progress"
)

// SSE event names emitted by the stream endpoint.
const (
	eventConnected = "connected"
	eventProgress  = "progress"
	eventComplete  = "complete"
	eventError     = "error"
)

// ProgressEvent is the wire shape both transports emit. It is the single
// projection of a progress record; the stream and the poll endpoint must
// never compute progress independently of it.
type ProgressEvent struct {
	JobID            string          `json:"jobId"`
	Stage            string          `json:"stage"`
	Status           progress.Status `json:"status"`
	Percentage       int             `json:"percentage"`
	PhaseIndex       int             `json:"phaseIndex"`
	TotalPhases      int             `json:"totalPhases"`
	ElapsedSeconds   float64         `json:"elapsedSeconds"`
	RemainingSeconds float64         `json:"remainingSeconds"`
	Error            string          `json:"error,omitempty"`
	Result           any             `json:"result,omitempty"`
}

// projectRecord maps a store snapshot onto the wire shape. The result payload
// rides along only on terminal completion.
func projectRecord(rec *progress.Record) ProgressEvent {
	ev := ProgressEvent{
		JobID:            rec.JobID,
		Stage:            rec.Stage,
		Status:           rec.Status,
		Percentage:       rec.Percentage,
		PhaseIndex:       rec.PhaseIndex,
		TotalPhases:      rec.TotalPhases,
		ElapsedSeconds:   rec.TotalElapsedSeconds,
		RemainingSeconds: rec.TotalRemainingSeconds,
		Error:            rec.Error,
	}
	if rec.Status == progress.StatusCompleted {
		ev.Result = rec.Result
	}
	return ev
}

// anchorTimes recomputes the displayed timer against a caller-supplied anchor
// so the clock a client shows stays continuous across phase boundaries, which
// reset the store's internal per-phase timers.
func anchorTimes(ev ProgressEvent, rec *progress.Record, anchor, now time.Time) ProgressEvent {
	if anchor.IsZero() || anchor.After(now) {
		return ev
	}
	elapsed := now.Sub(anchor).Seconds()
	ev.ElapsedSeconds = elapsed
	if rec.Status == progress.StatusInProgress {
		remaining := rec.EstimateTotalSeconds() - elapsed
		if remaining < 0 {
			remaining = 0
		}
		ev.RemainingSeconds = remaining
	}
	return ev
}

// terminalEventName maps a terminal status to its SSE event name.
func terminalEventName(status progress.Status) string {
	if status == progress.StatusError {
		return eventError
	}
	return eventComplete
}

// writeSSE writes one event in text/event-stream framing and flushes.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializing %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("writing %s event: %w", event, err)
	}
	flusher.Flush()
	return nil
}
