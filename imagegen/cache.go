package imagegen

import (
	"sync"
)

// Cache memoizes completed batches by request fingerprint for the
// lifetime of the session. Entries never expire or evict; growth is
// bounded by how many distinct parameter sets a session submits, which
// is acceptable for an interactive tool. The cache is not persisted.
//
// Thread Safety: safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[Fingerprint]Batch
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[Fingerprint]Batch),
	}
}

// Lookup returns the cached batch for a fingerprint, if present.
// The returned batch is a copy; callers cannot mutate the cached entry.
func (c *Cache) Lookup(fp Fingerprint) (Batch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	batch, ok := c.entries[fp]
	if !ok {
		return nil, false
	}
	return copyBatch(batch), true
}

// Store records a completed batch under a fingerprint. The batch is
// copied in, so later caller-side mutation cannot corrupt the entry.
func (c *Cache) Store(fp Fingerprint, batch Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fp] = copyBatch(batch)
}

// Len returns the number of cached batches.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func copyBatch(batch Batch) Batch {
	out := make(Batch, len(batch))
	copy(out, batch)
	return out
}
