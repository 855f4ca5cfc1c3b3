// Package search defines the web-search collaborator contract used by the
// research phase of the generation pipeline, plus a DuckDuckGo-backed
// implementation. Search failures are tolerated per query by the caller, so
// implementations should surface errors rather than retry internally.
package search
