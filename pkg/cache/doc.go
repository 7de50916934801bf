// Package cache implements the per-tier decision cache: a thread-safe,
// content-addressed store mapping evaluation fingerprints to cached
// Grant/Deny decisions.
//
// # Semantics
//
// Entries are keyed by fingerprint and stamped with their creation time.
// Lookup takes the freshness window as an argument, since the window is
// the subject's own retention tolerance rather than a cache-wide constant,
// and treats any entry older than the window as absent, regardless of whether
// the sweeper has physically evicted it yet. Only Grant and Deny are ever
// stored; evaluation errors are not decisions and never enter the cache.
//
// # Invalidation
//
// Entries are indexed by the subject whose preference they were derived
// from, so a preference update can purge exactly that subject's entries
// (InvalidateSubject) without disturbing anyone else, independent of TTL.
// Policy version changes need no purge at all: the version participates
// in the fingerprint, so entries computed under an old version become
// unreachable and are reclaimed by the sweeper or LRU eviction.
package cache
