package safecall

import (
	"runtime"
	"weak"

	"go.uber.org/zap"

	"github.com/wippyai/safecall/internal/reentrant"
)

// state is the shared core behind every wrapper in the arity family,
// generic over the callable's full signature F. All copies of a wrapper
// alias one state: cancelling one alias cancels them all.
//
// Locking discipline: the callable slot (fn, live) is read or mutated
// only while holding mu, and mu stays held for the entire duration of a
// user call. state never holds mu while calling into the registry, and
// the registry never holds its table lock while acquiring mu (the sweep
// invokes cancel entries after dropping it). With neither lock ever
// nested inside the other, teardown can block on in-flight calls with no
// risk of deadlock.
type state[F any] struct {
	mu      reentrant.Mutex
	fn      F
	live    bool
	name    string
	reg     weak.Pointer[Registry]
	entry   *cancelEntry
	cleanup runtime.Cleanup
}

// releaseArg carries what the GC cleanup needs to deregister a dead
// wrapper. It must not reference the state itself.
type releaseArg struct {
	reg weak.Pointer[Registry]
	id  uint64
}

// newState builds the wrapper core, eagerly constructs its cancellation
// entry, and registers with the registry. If the registry is already
// cancelled the callable is never stored and the wrapper comes out
// cancelled, so a wrap racing with owner teardown can never leave a live
// callable behind.
func newState[F any](r *Registry, fn F, name string) *state[F] {
	s := &state[F]{
		name: name,
		reg:  weak.Make(r),
	}
	if !r.cancelled.Load() {
		s.fn = fn
		s.live = true
	}
	s.entry = &cancelEntry{id: r.nextID(), name: name, cancel: s.clear}

	// Backstop for wrappers abandoned without Release: once every
	// external reference drops, remove the table entry so the registry
	// cannot grow without bound.
	s.cleanup = runtime.AddCleanup(s, releaseEntry, releaseArg{reg: s.reg, id: s.entry.id})

	r.register(s.entry)
	return s
}

func releaseEntry(a releaseArg) {
	if r := a.reg.Value(); r != nil {
		r.unregister(a.id)
	}
}

// clear empties the callable slot. This is the cancellation action: it is
// idempotent, and once it has run the wrapper never becomes callable
// again. Blocks until a call in flight on another goroutine releases the
// wrapper lock; re-entered freely by the goroutine already inside a call.
func (s *state[F]) clear() {
	s.mu.Lock()
	var zero F
	s.fn = zero
	s.live = false
	s.mu.Unlock()
	Logger().Debug("wrapper cancelled", zap.String("wrapper", s.name))
}

// cancel clears the slot and then best-effort removes the wrapper's entry
// from the registry. The registry call is made without holding the
// wrapper lock, and is ignored when the registry is already gone or torn
// down.
func (s *state[F]) cancel() {
	s.clear()
	if r := s.reg.Value(); r != nil {
		r.unregister(s.entry.id)
	}
}

// release is the deterministic destruction path: cancel plus stopping the
// GC cleanup, which has nothing left to do.
func (s *state[F]) release() {
	s.cancel()
	s.cleanup.Stop()
}

// cancelled reports whether the callable slot is empty.
func (s *state[F]) cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.live
}
