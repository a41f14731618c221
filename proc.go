package safecall

import "go.uber.org/zap"

// Proc wraps a niladic void callable. A cancelled Proc's Call is a pure
// no-op; there is no default policy because there is nothing to return.
type Proc struct {
	handle[func()]
}

// Proc1 wraps a void callable taking one argument.
type Proc1[A any] struct {
	handle[func(A)]
}

// Proc2 wraps a void callable taking two arguments.
type Proc2[A, B any] struct {
	handle[func(A, B)]
}

// WrapProc produces a cancellable handle around a void callable.
func WrapProc(r *Registry, fn func(), opts ...Option) *Proc {
	o := buildOptions(opts)
	w := &Proc{}
	w.s = newState(r, fn, o.name)
	return w
}

// WrapProc1 is WrapProc for callables taking one argument.
func WrapProc1[A any](r *Registry, fn func(A), opts ...Option) *Proc1[A] {
	o := buildOptions(opts)
	w := &Proc1[A]{}
	w.s = newState(r, fn, o.name)
	return w
}

// WrapProc2 is WrapProc for callables taking two arguments.
func WrapProc2[A, B any](r *Registry, fn func(A, B), opts ...Option) *Proc2[A, B] {
	o := buildOptions(opts)
	w := &Proc2[A, B]{}
	w.s = newState(r, fn, o.name)
	return w
}

// Call invokes the wrapped callable, or does nothing if the wrapper has
// been cancelled. Locking and reentrancy follow Func.Call.
func (w *Proc) Call() {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		Logger().Debug("ignoring call on cancelled wrapper", zap.String("wrapper", s.name))
		return
	}
	s.fn()
}

// Call invokes the wrapped callable. See Proc.Call for semantics.
func (w *Proc1[A]) Call(a A) {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		Logger().Debug("ignoring call on cancelled wrapper", zap.String("wrapper", s.name))
		return
	}
	s.fn(a)
}

// Call invokes the wrapped callable. See Proc.Call for semantics.
func (w *Proc2[A, B]) Call(a A, b B) {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		Logger().Debug("ignoring call on cancelled wrapper", zap.String("wrapper", s.name))
		return
	}
	s.fn(a, b)
}
