// Package hashcache implements the content-addressed cache used to
// store render passes, framebuffers, and pipelines keyed by a
// description's content hash rather than its identity. It owns the
// lifetime of whatever backend object it stores: a hit returns the
// object created by an earlier miss, reference-identical to it.
//
// The cache itself carries no lock: the render-graph core runs under
// a single-threaded cooperative scheduling model, so the
// double-checked locking a concurrent cache would need (see
// PipelineCacheCore in the dependency this package is grounded on) is
// unnecessary weight here.
package hashcache

// Entry pairs a cached value with opaque metadata used only by
// InvalidateWhere predicates. Meta is never consulted by Find or
// FindOrCreate — it exists purely so callers can tag entries (e.g.
// "this framebuffer targets the backbuffer") without a second map.
type Entry[V any] struct {
	Value V
	Meta  any
}

// Cache is a map from a 64-bit content hash to a backend object of
// type V, plus the metadata it was inserted with.
type Cache[V any] struct {
	entries map[uint64]Entry[V]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[uint64]Entry[V])}
}

// Find returns the entry stored under key, if any.
func (c *Cache[V]) Find(key uint64) (V, bool) {
	e, ok := c.entries[key]
	return e.Value, ok
}

// FindOrCreate returns the cached value for key, calling create and
// inserting its result on a miss. create is invoked at most once per
// miss; its error, if non-nil, is propagated and nothing is cached.
func (c *Cache[V]) FindOrCreate(key uint64, meta any, create func() (V, error)) (V, error) {
	if e, ok := c.entries[key]; ok {
		return e.Value, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = Entry[V]{Value: v, Meta: meta}
	return v, nil
}

// Delete removes the entry stored under key, if any.
func (c *Cache[V]) Delete(key uint64) {
	delete(c.entries, key)
}

// InvalidateWhere removes every entry whose Meta satisfies pred. It is
// used solely by the swap-chain resize path, to drop every
// framebuffer tagged as targeting the backbuffer.
func (c *Cache[V]) InvalidateWhere(pred func(meta any) bool) {
	for k, e := range c.entries {
		if pred(e.Meta) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int { return len(c.entries) }

// Clear removes every entry from the cache.
func (c *Cache[V]) Clear() { clear(c.entries) }
