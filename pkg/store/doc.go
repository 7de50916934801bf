// Package store persists policy subjects (and their privacy preferences)
// and requesters (and their declared access needs).
//
// Two backends implement the Store interface:
//
//   - MemoryStore: fast, no persistence, the default
//   - SQLiteStore: durable single-file storage using WAL mode
//
// Both are safe for concurrent use. Missing records are reported with
// ErrNotFound so callers can translate them to a not_found API error.
package store
