// Package progress provides the in-memory, TTL-evicted store of job progress
// records observed by streaming and polling clients while a generation
// pipeline runs detached.
//
// The store follows a strict ownership split: the detached pipeline goroutine
// is the sole writer of a given job's record, while any number of readers may
// poll concurrently. Every mutation is applied as a whole-record replacement
// under the store lock and every read returns a deep copy, so a reader never
// observes a half-updated record. Records disappear only through the periodic
// TTL sweep or an explicit delete after the caller consumes the result.
package progress
