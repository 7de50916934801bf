package cache

import (
	"fmt"
	"sync"
	"time"

	"veridian-hq/callisto/pkg/decision"
)

// Entry is a cached decision with its provenance.
type Entry struct {
	// Fingerprint is the content-addressed key the entry was stored under.
	Fingerprint decision.Fingerprint

	// Decision is the cached Grant or Deny.
	Decision decision.Decision

	// SubjectID identifies whose preference the fingerprint was derived
	// from, for targeted invalidation.
	SubjectID string

	// PolicyVersion is the hierarchy version the decision was computed under.
	PolicyVersion string

	// CreatedAt is when the entry was stored. Read validity is
	// now - CreatedAt < the caller's TTL window.
	CreatedAt time.Time

	// LastAccessedAt orders entries for LRU eviction.
	LastAccessedAt time.Time

	// storeTTL bounds the entry's physical lifetime for the sweeper.
	storeTTL time.Duration
}

// Recorder receives cache events for metrics. Implemented by
// telemetry/metrics.DecisionCacheMetrics; a nil Recorder disables recording.
type Recorder interface {
	RecordHit(tier string)
	RecordMiss(tier string)
	RecordEviction(tier string, count int)
	SetEntries(tier string, count int)
}

// DecisionCache is a thread-safe decision cache for one tier. It supports
// concurrent lookups and stores, TTL-scoped reads, LRU eviction at
// capacity, a background sweep of expired entries, and per-subject
// invalidation.
type DecisionCache struct {
	// tier names this cache instance in logs and metrics ("local",
	// "authoritative", ...).
	tier string

	// entries maps fingerprints to cached decisions.
	entries map[decision.Fingerprint]*Entry

	// bySubject indexes live fingerprints by subject for targeted purges.
	bySubject map[string]map[decision.Fingerprint]struct{}

	// maxEntries caps the cache size (0 = unlimited).
	maxEntries int

	// mu protects entries and bySubject.
	mu sync.RWMutex

	// recorder receives hit/miss/eviction events; may be nil.
	recorder Recorder

	// stopCh signals the sweep goroutine to stop.
	stopCh   chan struct{}
	stopOnce sync.Once

	// sweepInterval is how often the background sweep runs.
	sweepInterval time.Duration
}

// Config configures a DecisionCache.
type Config struct {
	// Tier names the cache instance for metrics and invalidation logs.
	Tier string

	// MaxEntries is the maximum number of entries before LRU eviction.
	// Default: 100,000. Zero uses the default; negative means unlimited.
	MaxEntries int

	// SweepInterval is how often expired entries are physically removed.
	// Default: 1 minute.
	SweepInterval time.Duration

	// Recorder receives cache metrics events. Optional.
	Recorder Recorder
}

// New creates a decision cache and starts its background sweeper.
// Call Close when the cache is no longer needed.
func New(cfg Config) *DecisionCache {
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = 100000
	}
	if cfg.MaxEntries < 0 {
		cfg.MaxEntries = 0
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}

	c := &DecisionCache{
		tier:          cfg.Tier,
		entries:       make(map[decision.Fingerprint]*Entry),
		bySubject:     make(map[string]map[decision.Fingerprint]struct{}),
		maxEntries:    cfg.MaxEntries,
		recorder:      cfg.Recorder,
		stopCh:        make(chan struct{}),
		sweepInterval: cfg.SweepInterval,
	}

	go c.sweepLoop()

	return c
}

// Tier returns the tier name this cache was created for.
func (c *DecisionCache) Tier() string {
	return c.tier
}

// Lookup returns the cached decision for fingerprint if an entry exists
// and is younger than ttl. Stale entries are treated as absent whether or
// not the sweeper has removed them yet.
func (c *DecisionCache) Lookup(fp decision.Fingerprint, ttl time.Duration) (decision.Decision, bool) {
	c.mu.RLock()
	entry, ok := c.entries[fp]
	if !ok {
		c.mu.RUnlock()
		c.recordMiss()
		return "", false
	}
	if ttl <= 0 || time.Since(entry.CreatedAt) >= ttl {
		c.mu.RUnlock()
		c.recordMiss()
		return "", false
	}
	dec := entry.Decision
	c.mu.RUnlock()

	// Refresh access time for LRU ordering.
	c.mu.Lock()
	if entry, ok := c.entries[fp]; ok {
		entry.LastAccessedAt = time.Now()
	}
	c.mu.Unlock()

	c.recordHit()
	return dec, true
}

// Store inserts or overwrites a decision for fingerprint. Only Grant and
// Deny are storable; anything else is rejected so an evaluation error can
// never poison subsequent lookups. ttl bounds the entry's physical
// lifetime for the sweeper; reads apply their own window.
func (c *DecisionCache) Store(fp decision.Fingerprint, dec decision.Decision, subjectID, policyVersion string, ttl time.Duration) error {
	if !dec.Valid() {
		return fmt.Errorf("refusing to cache non-decision %q", dec)
	}
	if fp == "" {
		return fmt.Errorf("fingerprint cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[fp]; !exists {
			c.evictLRU()
		}
	}

	if old, exists := c.entries[fp]; exists {
		c.unindex(old)
	}

	now := time.Now()
	entry := &Entry{
		Fingerprint:    fp,
		Decision:       dec,
		SubjectID:      subjectID,
		PolicyVersion:  policyVersion,
		CreatedAt:      now,
		LastAccessedAt: now,
		storeTTL:       ttl,
	}
	c.entries[fp] = entry
	c.index(entry)
	c.setEntriesLocked()

	return nil
}

// InvalidateSubject removes every entry derived from the subject's
// preference, regardless of age, and returns how many were removed.
func (c *DecisionCache) InvalidateSubject(subjectID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	fps, ok := c.bySubject[subjectID]
	if !ok {
		return 0
	}

	removed := 0
	for fp := range fps {
		delete(c.entries, fp)
		removed++
	}
	delete(c.bySubject, subjectID)
	c.setEntriesLocked()

	if c.recorder != nil && removed > 0 {
		c.recorder.RecordEviction(c.tier, removed)
	}
	return removed
}

// Size returns the current number of entries, including any expired
// entries the sweeper has not yet removed.
func (c *DecisionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *DecisionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[decision.Fingerprint]*Entry)
	c.bySubject = make(map[string]map[decision.Fingerprint]struct{})
	c.setEntriesLocked()
}

// Close stops the background sweeper. The cache must not be used after
// Close.
func (c *DecisionCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// index adds the entry to the subject index. Write lock held.
func (c *DecisionCache) index(entry *Entry) {
	if entry.SubjectID == "" {
		return
	}
	fps, ok := c.bySubject[entry.SubjectID]
	if !ok {
		fps = make(map[decision.Fingerprint]struct{})
		c.bySubject[entry.SubjectID] = fps
	}
	fps[entry.Fingerprint] = struct{}{}
}

// unindex removes the entry from the subject index. Write lock held.
func (c *DecisionCache) unindex(entry *Entry) {
	if entry.SubjectID == "" {
		return
	}
	if fps, ok := c.bySubject[entry.SubjectID]; ok {
		delete(fps, entry.Fingerprint)
		if len(fps) == 0 {
			delete(c.bySubject, entry.SubjectID)
		}
	}
}

// evictLRU removes the least recently accessed entry. Write lock held.
func (c *DecisionCache) evictLRU() {
	var oldest *Entry
	for _, entry := range c.entries {
		if oldest == nil || entry.LastAccessedAt.Before(oldest.LastAccessedAt) {
			oldest = entry
		}
	}
	if oldest != nil {
		delete(c.entries, oldest.Fingerprint)
		c.unindex(oldest)
		if c.recorder != nil {
			c.recorder.RecordEviction(c.tier, 1)
		}
	}
}

// sweepLoop periodically removes physically expired entries.
func (c *DecisionCache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stopCh:
			return
		}
	}
}

// Sweep removes entries past their stored lifetime and returns how many
// were removed. Normally driven by the internal ticker; also invoked by
// the maintenance scheduler.
func (c *DecisionCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for fp, entry := range c.entries {
		if entry.storeTTL > 0 && now.Sub(entry.CreatedAt) >= entry.storeTTL {
			delete(c.entries, fp)
			c.unindex(entry)
			removed++
		}
	}
	if removed > 0 {
		c.setEntriesLocked()
		if c.recorder != nil {
			c.recorder.RecordEviction(c.tier, removed)
		}
	}
	return removed
}

func (c *DecisionCache) setEntriesLocked() {
	if c.recorder != nil {
		c.recorder.SetEntries(c.tier, len(c.entries))
	}
}

func (c *DecisionCache) recordHit() {
	if c.recorder != nil {
		c.recorder.RecordHit(c.tier)
	}
}

func (c *DecisionCache) recordMiss() {
	if c.recorder != nil {
		c.recorder.RecordMiss(c.tier)
	}
}
