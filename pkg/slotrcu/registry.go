// pkg/slotrcu/registry.go
package slotrcu

import "sync"

// epochRegistry is the mapping from a stable reader id to that reader's
// shared epoch counter. It is the single mutual-exclusion point in the
// whole package: mutation only happens on Reader construction/destruction
// and during the Writer's retire scan, so contention is expected to be
// low.
//
// Grounded on pkg/cowbtree/epoch.go's EpochManager.readers (a sync.Map
// keyed by reader id) and pkg/mvcc/manager.go's TransactionManager
// (map[uint64]*Transaction guarded by a plain mutex, ids handed out by an
// incrementing counter). This module uses a plain mutex + map rather than
// sync.Map: insert/remove are already serialized against each other (both
// need the same lock to keep snapshot() well-defined), so sync.Map's
// extra indirection buys nothing here.
type epochRegistry struct {
	mu      sync.Mutex
	entries map[uint64]*epoch
	free    []uint64
	next    uint64
}

func newEpochRegistry() *epochRegistry {
	return &epochRegistry{
		entries: make(map[uint64]*epoch),
	}
}

// insert adds a reference to e and returns a stable id, never reusing an
// id that is currently in use. Ids are recycled from removed entries
// (mirroring the original Rust implementation's use of a slab allocator)
// rather than growing without bound.
func (r *epochRegistry) insert(e *epoch) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id uint64
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		id = r.next
		r.next++
	}

	r.entries[id] = e
	return id
}

// remove releases the registry's reference to the counter at id.
func (r *epochRegistry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
	r.free = append(r.free, id)
}

// snapshot captures every currently-registered counter under the
// registry's lock, so the set of live readers is well-defined at the
// instant it is taken. After it returns, the caller may load the returned
// counters at will — they are independently atomic.
func (r *epochRegistry) snapshot() []*epoch {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*epoch, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}
