// Package cache keeps the most recently read or written raw body per
// song ID in memory, saving storage reads on the hot read path. The
// mapping is unbounded for the lifetime of the process; song collections
// are small relative to available memory.
package cache

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Cache is a concurrent ID -> raw body mapping. A put replaces, never
// merges; the engine invalidates on every write and delete so a cached
// value is never served for a deleted or superseded document.
type Cache struct {
	m *xsync.MapOf[string, string]
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{m: xsync.NewMapOf[string, string]()}
}

// Get returns the cached body for id, if present.
func (c *Cache) Get(id string) (string, bool) {
	return c.m.Load(id)
}

// Put stores the body for id, replacing any previous value.
func (c *Cache) Put(id, body string) {
	c.m.Store(id, body)
}

// Invalidate drops the entry for id, if any.
func (c *Cache) Invalidate(id string) {
	c.m.Delete(id)
}

// Clear drops every entry. Used by the admin reindex, which treats the
// cache as suspect alongside the index.
func (c *Cache) Clear() {
	c.m.Clear()
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	return c.m.Size()
}
