// Package dialogue implements the stateless conversational step-flow engine
// driving the campaign intake interview. The engine owns branching, the
// repeatable stakeholder loop, skip handling and full undo over a
// catalog.Catalog, expressed as a single transition function over
// caller-supplied state.
//
// The server never retains conversational state between turns: the full State
// travels to the client inside every response and is sent back with the next
// message. Given a fixed clock the transition function is pure, which keeps
// horizontally scaled deployments free of session affinity and makes the
// engine trivially testable.
package dialogue
