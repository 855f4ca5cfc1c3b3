package testutil

import (
	"github.com/advokit/advokit/dialogue"
)

// StateBuilder helps construct dialogue states with fluent chaining for
// tests. Example:
//
//	st := NewStateBuilder("topic").Collect("company_name", "Acme").Build()
type StateBuilder struct {
	stepID       string
	collected    map[string]any
	stakeholders []dialogue.Stakeholder
	inLoop       bool
}

// NewStateBuilder creates a new builder for a state positioned at the given
// step. Use chainable methods (Collect, Stakeholder, InLoop) then call Build.
func NewStateBuilder(stepID string) *StateBuilder {
	return &StateBuilder{stepID: stepID, collected: map[string]any{}}
}

// Collect sets or overwrites a collected answer (chainable).
func (b *StateBuilder) Collect(field string, val any) *StateBuilder {
	b.collected[field] = val
	return b
}

// Stakeholder appends one stakeholder to the loop's accumulated list
// (chainable).
func (b *StateBuilder) Stakeholder(name, linkedin string) *StateBuilder {
	b.stakeholders = append(b.stakeholders, dialogue.Stakeholder{Name: name, LinkedIn: linkedin})
	return b
}

// InLoop marks the state as inside the stakeholder loop (chainable).
func (b *StateBuilder) InLoop() *StateBuilder {
	b.inLoop = true
	return b
}

// Build returns a *dialogue.State with the configured answers.
func (b *StateBuilder) Build() *dialogue.State {
	st := dialogue.NewState(b.stepID)
	for k, v := range b.collected {
		st.Collected[k] = v
	}
	st.Stakeholders = append(st.Stakeholders, b.stakeholders...)
	st.InLoop = b.inLoop
	return st
}
