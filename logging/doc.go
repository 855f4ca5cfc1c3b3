// Package logging provides a minimal logging interface and adapters for
// Advokit.
//
// The Logger interface defines the standard structured logging methods
// (Debug, Info, Warn, Error) used across the intake engine, progress store,
// pipeline and HTTP server. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, embedding)
//
// The interface is intentionally minimal so embedders can plug any structured
// logger without vendor lock-in.
package logging
