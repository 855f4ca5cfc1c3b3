// Package catalog defines the immutable dialogue graph used by the intake
// conversation. A Catalog is an ordered list of Step definitions, including a
// single repeatable stakeholder loop bounded by an entry step and a
// continuation step. The catalog itself carries no conversational state; step
// numbering helpers take the stakeholder count as input so callers can project
// positions for an open-ended loop without storing derived values.
package catalog
