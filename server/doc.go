// Package server exposes the intake dialogue, job start, and progress
// gateway over HTTP. Progress is observable two ways, a Server-Sent Events
// stream and a single-shot poll, and both render from the same projection
// of the progress store snapshot, so the two transports can never drift.
//
// Closing a stream or abandoning polling only stops observation; the
// detached pipeline keeps running and its record stays retrievable until the
// TTL sweep evicts it.
package server
