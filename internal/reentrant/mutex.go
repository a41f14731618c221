// Package reentrant provides a mutex that the owning goroutine may
// acquire multiple times without deadlocking.
//
// Go's sync.Mutex deliberately refuses reentrancy, but a callback wrapper
// must hold its lock for the full duration of a user call, so a callback
// that tears down its own owner from inside its body re-enters the same
// lock on the same goroutine. The implementation is the classic fallback
// for languages without a native recursive lock: a plain mutex guarded by
// an owner tag and a re-entry depth counter.
package reentrant

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// Mutex is a reentrant mutual exclusion lock. The zero value is unlocked.
//
// On platforms where goroutine ids are unavailable (goid.Get returns 0)
// the mutex degrades to a plain, non-reentrant mutex: exclusion is
// preserved, re-entry deadlocks.
//
// A Mutex must not be copied after first use.
type Mutex struct {
	mu    sync.Mutex
	owner atomic.Int64
	depth int
}

// Lock acquires the mutex. If the calling goroutine already holds it, the
// re-entry depth is bumped instead of deadlocking; every Lock must be
// paired with exactly one Unlock.
func (m *Mutex) Lock() {
	gid := goid.Get()
	// owner can only equal a nonzero gid if this goroutine set it, so the
	// depth field is touched by one goroutine at a time. A zero gid must
	// never match the unheld owner tag (also zero), or every goroutine
	// would be granted the re-entry fast path on a mutex nobody holds.
	if gid != 0 && m.owner.Load() == gid {
		m.depth++
		return
	}
	m.mu.Lock()
	m.owner.Store(gid)
	m.depth = 1
}

// Unlock releases one level of the mutex. The mutex unlocks for other
// goroutines once the depth returns to zero. Unlock by a goroutine that
// does not hold the mutex panics.
func (m *Mutex) Unlock() {
	if m.owner.Load() != goid.Get() {
		panic("reentrant: Unlock of mutex not held by calling goroutine")
	}
	m.depth--
	if m.depth > 0 {
		return
	}
	m.owner.Store(0)
	m.mu.Unlock()
}
