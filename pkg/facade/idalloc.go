package facade

import (
	"sort"
	"sync"
)

// idAllocator assigns the small sequential ids spec §9 calls for: the
// lowest tombstoned id is reused before the counter advances. Only the
// leader ever calls Next — followers learn ids from the replicated
// commands that carry them — so a single mutex is enough.
type idAllocator struct {
	mu   sync.Mutex
	next uint32
	free []uint32 // ascending, lowest reused first
}

func newIDAllocator() *idAllocator {
	return &idAllocator{next: 1}
}

// Resync recomputes the counter from the ids currently present in the
// Application State and drops every tombstone. Call it whenever a node
// (re)becomes leader: per spec §4.2, a restart only recovers the
// high-water mark, not which ids were ever deleted, so there is nothing
// to resync tombstones from.
func (a *idAllocator) Resync(present []uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var max uint32
	for _, id := range present {
		if id > max {
			max = id
		}
	}
	a.next = max + 1
	a.free = nil
}

// Next returns the next id to assign, preferring the lowest tombstoned id.
func (a *idAllocator) Next() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.free) > 0 {
		id := a.free[0]
		a.free = a.free[1:]
		return id
	}
	id := a.next
	a.next++
	return id
}

// Release tombstones id for reuse by a future Next call.
func (a *idAllocator) Release(id uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := sort.Search(len(a.free), func(i int) bool { return a.free[i] >= id })
	a.free = append(a.free, 0)
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = id
}
