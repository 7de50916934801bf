package hierarchy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Registry holds the live hierarchy for a deployment. Replacement is an
// atomic swap: concurrent readers observe either the previous hierarchy or
// the new one in full.
type Registry struct {
	mu        sync.RWMutex
	hierarchy *Hierarchy
	version   string
	loadTime  time.Time
}

// NewRegistry creates an empty registry. Current returns ErrNoHierarchy
// until the first successful Replace.
func NewRegistry() *Registry {
	return &Registry{}
}

// Replace installs a new hierarchy and returns its version token.
// The hierarchy must have been built with New, so it is already validated;
// a nil hierarchy is rejected and leaves the registry untouched.
func (r *Registry) Replace(h *Hierarchy) (string, error) {
	if h == nil {
		return "", &InvalidPolicyError{Set: "hierarchy", Message: "hierarchy cannot be nil"}
	}

	version := computeVersion(h)

	r.mu.Lock()
	r.hierarchy = h
	r.version = version
	r.loadTime = time.Now()
	r.mu.Unlock()

	return version, nil
}

// Current returns the active hierarchy and its version token.
func (r *Registry) Current() (*Hierarchy, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.hierarchy == nil {
		return nil, "", ErrNoHierarchy
	}
	return r.hierarchy, r.version, nil
}

// Version returns the active version token, or the empty string when no
// hierarchy is installed. The token has no semantics beyond equality.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the active hierarchy was installed.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

// computeVersion derives a content-addressed version token from the node
// sets. Identical taxonomies map to identical tokens, so re-installing an
// unchanged hierarchy does not invalidate cached decisions.
func computeVersion(h *Hierarchy) string {
	hash := sha256.New()
	for _, n := range h.attributes.Nodes() {
		fmt.Fprintf(hash, "a:%s:%d:%d\n", n.ID, n.Left, n.Right)
	}
	for _, n := range h.purposes.Nodes() {
		fmt.Fprintf(hash, "p:%s:%d:%d\n", n.ID, n.Left, n.Right)
	}
	return hex.EncodeToString(hash.Sum(nil)[:16])
}
