package store

import (
	"sync"

	"github.com/devdash/resourceview/internal/objects"
)

// EnrichmentCache maps a container runtime id to the environment
// variables harvested from the container runtime. It is the one piece
// of state shared between the reconciler (reader) and the enricher
// tasks (writers), so unlike Raw it is safe for concurrent use.
type EnrichmentCache struct {
	mu   sync.RWMutex
	byID map[string][]objects.EnvVar
}

// NewEnrichmentCache builds an empty cache.
func NewEnrichmentCache() *EnrichmentCache {
	return &EnrichmentCache{byID: map[string][]objects.EnvVar{}}
}

// Get returns the cached env vars for runtimeID and whether an entry
// exists at all.
func (c *EnrichmentCache) Get(runtimeID string) ([]objects.EnvVar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.byID[runtimeID]
	return v, ok
}

// Set records the harvested env vars for runtimeID. Only ever called
// by an enricher task.
func (c *EnrichmentCache) Set(runtimeID string, env []objects.EnvVar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[runtimeID] = env
}

// InFlight is the set of runtime ids an enrichment task has been
// scheduled for. It is owned exclusively by the reconciler, so unlike
// EnrichmentCache it needs no lock.
type InFlight struct {
	ids map[string]bool
}

// NewInFlight builds an empty in-flight set.
func NewInFlight() *InFlight {
	return &InFlight{ids: map[string]bool{}}
}

// Has reports whether runtimeID already has (or has ever had) an
// enrichment task scheduled.
func (f *InFlight) Has(runtimeID string) bool { return f.ids[runtimeID] }

// Mark records that an enrichment task has been scheduled for
// runtimeID. Entries are never removed: enrichment failures are not
// retried until the container is recreated with a new runtime id.
func (f *InFlight) Mark(runtimeID string) { f.ids[runtimeID] = true }
