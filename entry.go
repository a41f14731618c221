package safecall

// cancelEntry is a single revocable action bound to one wrapper: invoking
// it clears that wrapper's callable slot. The wrapper state owns the only
// strong reference; the registry tracks entries through weak pointers, so
// a wrapper that outlives its registry simply has no entry left to remove.
type cancelEntry struct {
	cancel func()
	name   string
	id     uint64
}

// invoke runs the cancellation action. Safe to call more than once:
// clearing an already-empty callable slot has no further effect.
func (e *cancelEntry) invoke() {
	e.cancel()
}
