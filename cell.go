package safecall

import "sync"

// Cell is a shared, mutable function slot for self-referential callbacks.
//
// A closure cannot capture its own wrapper handle at construction time,
// because the handle does not exist yet. Construct the cell first, wrap a
// closure that invokes Cell.Load, then Store the wrapper's Call method:
//
//	cell := safecall.NewCell[func(int)]()
//	w := safecall.WrapProc1(&owner.cb, func(n int) {
//	    if n > 0 {
//	        cell.Load()(n - 1)
//	    }
//	})
//	cell.Store(w.Call)
//
// Re-invocation then goes through the wrapper, so recursion stops being
// effective the moment the wrapper is cancelled.
type Cell[F any] struct {
	mu sync.Mutex
	fn F
}

// NewCell returns an empty cell. Load before the first Store returns the
// zero value of F (nil for function types).
func NewCell[F any]() *Cell[F] {
	return &Cell[F]{}
}

// Store replaces the cell's function.
func (c *Cell[F]) Store(fn F) {
	c.mu.Lock()
	c.fn = fn
	c.mu.Unlock()
}

// Load returns the cell's current function.
func (c *Cell[F]) Load() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fn
}
