// Package pipeline runs the detached multi-phase campaign generation job:
// research, landscape analysis, persona profile, influence tactics,
// discussion points, objection handling, and optional supporting materials.
//
// Phases execute strictly in order; each phase's prompt builds on the text
// the previous phases produced. The orchestrator is the sole writer of its
// job's progress record and reports a phase boundary to the progress store
// before every phase starts. A failed required phase aborts the run through
// progress.Store.Fail, so a job is never left in_progress forever. Failures
// of individual material kinds and individual research queries are
// tolerated.
package pipeline
