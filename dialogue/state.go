package dialogue

import (
	"time"
)

// Stakeholder is one person collected by the stakeholder loop. LinkedIn is
// empty when the user had no profile link to share.
type Stakeholder struct {
	Name     string `json:"name"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Message is one entry of the append-only conversation transcript.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot captures everything undo must restore. One snapshot is pushed per
// forward turn and popped per undo, so the stack length always equals forward
// turns minus undos. The transcript is append-only and therefore excluded.
type Snapshot struct {
	StepID       string         `json:"stepId"`
	Collected    map[string]any `json:"collected"`
	Stakeholders []Stakeholder  `json:"stakeholders,omitempty"`
	Draft        Stakeholder    `json:"draft"`
	InLoop       bool           `json:"inLoop"`
}

// State is the full conversational state, owned by the caller and round-
// tripped through every dialogue turn. Only Engine.Transition mutates it.
type State struct {
	CurrentStepID string         `json:"currentStepId"`
	Collected     map[string]any `json:"collected"`
	Stakeholders  []Stakeholder  `json:"stakeholders,omitempty"`
	Draft         Stakeholder    `json:"draft"`
	InLoop        bool           `json:"inLoop"`
	Messages      []Message      `json:"messages,omitempty"`
	History       []Snapshot     `json:"history,omitempty"`
}

// NewState returns an empty state positioned at the given step.
func NewState(firstStepID string) *State {
	return &State{
		CurrentStepID: firstStepID,
		Collected:     map[string]any{},
	}
}

// snapshot deep-copies the undoable portion of the state.
func (s *State) snapshot() Snapshot {
	return Snapshot{
		StepID:       s.CurrentStepID,
		Collected:    cloneCollected(s.Collected),
		Stakeholders: cloneStakeholders(s.Stakeholders),
		Draft:        s.Draft,
		InLoop:       s.InLoop,
	}
}

// restore overwrites the undoable portion of the state from a snapshot.
func (s *State) restore(snap Snapshot) {
	s.CurrentStepID = snap.StepID
	s.Collected = cloneCollected(snap.Collected)
	s.Stakeholders = cloneStakeholders(snap.Stakeholders)
	s.Draft = snap.Draft
	s.InLoop = snap.InLoop
}

func (s *State) appendMessage(role, text string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Text: text, Timestamp: at})
}

func cloneCollected(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch vv := v.(type) {
		case []string:
			out[k] = append([]string(nil), vv...)
		case []Stakeholder:
			out[k] = cloneStakeholders(vv)
		default:
			out[k] = v
		}
	}
	return out
}

func cloneStakeholders(in []Stakeholder) []Stakeholder {
	if in == nil {
		return nil
	}
	return append([]Stakeholder(nil), in...)
}

// CollectedString returns the collected value for field as a trimmed string,
// or "" when absent or not textual. JSON round-trips degrade typed values, so
// lookups stay tolerant of decoded forms.
func (s *State) CollectedString(field string) string {
	v, ok := s.Collected[field]
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// CollectedStrings returns the collected value for field as a string slice,
// tolerating both the in-process []string form and the []any form produced
// by a JSON round-trip through the client.
func (s *State) CollectedStrings(field string) []string {
	v, ok := s.Collected[field]
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
