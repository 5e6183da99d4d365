package engine

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// lockTable hands out per-ID locks so the engine can serialize the
// check-then-write sequence for one song without blocking operations on
// other songs. Entries are reference counted and removed when the last
// holder releases, so the table never grows with the ID space.
type lockTable struct {
	m *xsync.MapOf[string, *lockEntry]
}

type lockEntry struct {
	mu   sync.RWMutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{m: xsync.NewMapOf[string, *lockEntry]()}
}

func (t *lockTable) acquire(id string) *lockEntry {
	e, _ := t.m.Compute(id, func(old *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			old = &lockEntry{}
		}
		old.refs++
		return old, false
	})
	return e
}

func (t *lockTable) release(id string) {
	t.m.Compute(id, func(old *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			return old, true
		}
		old.refs--
		return old, old.refs <= 0
	})
}

// Lock takes the exclusive lock for id and returns the release func.
func (t *lockTable) Lock(id string) func() {
	e := t.acquire(id)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		t.release(id)
	}
}

// RLock takes the shared lock for id, serializing the caller only
// against an in-flight write for the same id.
func (t *lockTable) RLock(id string) func() {
	e := t.acquire(id)
	e.mu.RLock()
	return func() {
		e.mu.RUnlock()
		t.release(id)
	}
}
