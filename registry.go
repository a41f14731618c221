package safecall

import (
	"sync"
	"sync/atomic"
	"weak"

	"go.uber.org/zap"
)

// Registry tracks every live wrapper created from one owner and revokes
// all of them when the owner is torn down.
//
// Embed a Registry by value in the owner struct, one per owner; the zero
// value is ready to use. Place it after the fields callbacks touch so it
// is the first thing torn down when the owner unwinds. A Registry must
// not be copied after first use.
//
// The table holds weak references only: the registry never keeps a
// wrapper alive, and a wrapper whose external references all drop is
// removed from the table rather than accumulating forever.
type Registry struct {
	entries   map[uint64]weak.Pointer[cancelEntry]
	observers []Observer
	lastID    atomic.Uint64
	cancelled atomic.Bool
	mu        sync.Mutex
	obsMu     sync.RWMutex
}

// Close performs the one-time mass cancellation sweep: every wrapper still
// registered has its callable slot cleared, and the table is released.
//
// The cancelled flag is set before the table is drained, so a wrap racing
// with Close either registers first (and is swept) or observes the flag
// and comes out cancelled. The table lock is dropped before any entry is
// invoked: each cancellation acquires that wrapper's own lock, so Close
// still blocks until calls in flight on other goroutines drain, but never
// while holding the table lock — the registry must not hold its own lock
// while acquiring a wrapper's, or a callable cancelling its own wrapper
// concurrently with teardown could deadlock against the sweep.
// Cancellation order across wrappers is unspecified.
//
// Close is idempotent and always returns nil; the error return only
// satisfies io.Closer.
func (r *Registry) Close() error {
	if !r.cancelled.CompareAndSwap(false, true) {
		return nil
	}
	Logger().Debug("registry teardown")

	r.mu.Lock()
	table := r.entries
	r.entries = nil
	r.mu.Unlock()

	var swept []Event
	for id, wp := range table {
		e := wp.Value()
		if e == nil {
			continue
		}
		e.invoke()
		swept = append(swept, Event{Kind: EventCancelled, ID: id, Name: e.name})
	}

	for _, ev := range swept {
		r.notify(ev)
	}
	r.notify(Event{Kind: EventTeardown})
	return nil
}

// Len reports the number of wrappers currently registered. Diagnostic
// only; the value may be stale by the time it is read.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// register inserts a cancellation entry keyed by wrapper identity. If the
// registry is already cancelled the entry is invoked instead, closing the
// race where the owner is torn down between the wrap call and
// registration.
func (r *Registry) register(e *cancelEntry) {
	if r.cancelled.Load() {
		e.invoke()
		return
	}
	r.mu.Lock()
	// Teardown may have started after the flag check above.
	if r.cancelled.Load() {
		r.mu.Unlock()
		e.invoke()
		return
	}
	if r.entries == nil {
		r.entries = make(map[uint64]weak.Pointer[cancelEntry])
	}
	r.entries[e.id] = weak.Make(e)
	r.mu.Unlock()

	Logger().Debug("adding cancellation entry",
		zap.Uint64("id", e.id), zap.String("wrapper", e.name))
	r.notify(Event{Kind: EventWrapped, ID: e.id, Name: e.name})
}

// unregister erases the entry for the given wrapper identity. A no-op
// once the registry is cancelled (the table is already drained) and safe
// to call with an identity not present.
func (r *Registry) unregister(id uint64) {
	if r.cancelled.Load() {
		return
	}
	r.mu.Lock()
	_, present := r.entries[id]
	if present {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if present {
		Logger().Debug("removing cancellation entry", zap.Uint64("id", id))
		r.notify(Event{Kind: EventReleased, ID: id})
	}
}

// nextID allocates a wrapper identity. Identity 0 is never issued.
func (r *Registry) nextID() uint64 {
	return r.lastID.Add(1)
}
