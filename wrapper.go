package safecall

import "go.uber.org/zap"

// handle carries the methods shared by the whole wrapper family.
type handle[F any] struct {
	s *state[F]
}

// Cancel clears the wrapper's callable slot and removes its registry
// entry. Idempotent: cancelling more than once, or after the teardown
// sweep already did, has no further effect. The configured default is
// retained.
func (h handle[F]) Cancel() {
	h.s.cancel()
}

// Release is Cancel plus retiring the wrapper's GC backstop. Call it when
// a wrapper is no longer needed and its owner may live on; dropping every
// reference achieves the same eventually, Release does it now.
func (h handle[F]) Release() {
	h.s.release()
}

// Cancelled reports whether the wrapper has been cancelled. Validity is
// monotonic: once true, it stays true.
func (h handle[F]) Cancelled() bool {
	return h.s.cancelled()
}

// Name returns the diagnostic label given at construction, if any.
func (h handle[F]) Name() string {
	return h.s.name
}

// Func wraps a niladic callable returning R.
//
// Wrappers have reference semantics: every copy, including a copy of the
// dereferenced struct, aliases the same underlying state and default
// policy. Cancelling one alias cancels them all. The same holds for
// Func1, Func2 and the Proc family.
type Func[R any] struct {
	handle[func() R]
	def *defaultPolicy[R]
}

// Func1 wraps a callable taking one argument and returning R.
type Func1[A, R any] struct {
	handle[func(A) R]
	def *defaultPolicy[R]
}

// Func2 wraps a callable taking two arguments and returning R.
type Func2[A, B, R any] struct {
	handle[func(A, B) R]
	def *defaultPolicy[R]
}

// Wrap produces a cancellable handle around fn. Once the registry is torn
// down, Call returns the zero value of R. The handle's Call method value
// has the same signature as fn and may be passed anywhere a plain
// function is expected.
func Wrap[R any](r *Registry, fn func() R, opts ...Option) *Func[R] {
	o := buildOptions(opts)
	w := &Func[R]{def: &defaultPolicy[R]{single: o.singleUse}}
	w.s = newState(r, fn, o.name)
	return w
}

// Wrap1 is Wrap for callables taking one argument.
func Wrap1[A, R any](r *Registry, fn func(A) R, opts ...Option) *Func1[A, R] {
	o := buildOptions(opts)
	w := &Func1[A, R]{def: &defaultPolicy[R]{single: o.singleUse}}
	w.s = newState(r, fn, o.name)
	return w
}

// Wrap2 is Wrap for callables taking two arguments.
func Wrap2[A, B, R any](r *Registry, fn func(A, B) R, opts ...Option) *Func2[A, B, R] {
	o := buildOptions(opts)
	w := &Func2[A, B, R]{def: &defaultPolicy[R]{single: o.singleUse}}
	w.s = newState(r, fn, o.name)
	return w
}

// WrapDefault is Wrap with an explicit default: after cancellation, Call
// returns def instead of the zero value.
func WrapDefault[R any](r *Registry, def R, fn func() R, opts ...Option) *Func[R] {
	o := buildOptions(opts)
	w := &Func[R]{def: &defaultPolicy[R]{value: def, single: o.singleUse}}
	w.s = newState(r, fn, o.name)
	return w
}

// WrapDefault1 is WrapDefault for callables taking one argument.
func WrapDefault1[A, R any](r *Registry, def R, fn func(A) R, opts ...Option) *Func1[A, R] {
	o := buildOptions(opts)
	w := &Func1[A, R]{def: &defaultPolicy[R]{value: def, single: o.singleUse}}
	w.s = newState(r, fn, o.name)
	return w
}

// WrapDefault2 is WrapDefault for callables taking two arguments.
func WrapDefault2[A, B, R any](r *Registry, def R, fn func(A, B) R, opts ...Option) *Func2[A, B, R] {
	o := buildOptions(opts)
	w := &Func2[A, B, R]{def: &defaultPolicy[R]{value: def, single: o.singleUse}}
	w.s = newState(r, fn, o.name)
	return w
}

// Call invokes the wrapped callable, or falls back to the default policy
// if the wrapper has been cancelled. The wrapper's lock is held for the
// full duration of the call, including the callable's own execution, so
// teardown cannot cancel a wrapper mid-call; the lock is reentrant, so
// the callable may invoke its own wrapper or tear down its own owner.
// Panics from the callable propagate unmodified.
func (w *Func[R]) Call() R {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		Logger().Debug("ignoring call on cancelled wrapper", zap.String("wrapper", s.name))
		return w.def.take()
	}
	return s.fn()
}

// Call invokes the wrapped callable. See Func.Call for semantics.
func (w *Func1[A, R]) Call(a A) R {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		Logger().Debug("ignoring call on cancelled wrapper", zap.String("wrapper", s.name))
		return w.def.take()
	}
	return s.fn(a)
}

// Call invokes the wrapped callable. See Func.Call for semantics.
func (w *Func2[A, B, R]) Call(a A, b B) R {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		Logger().Debug("ignoring call on cancelled wrapper", zap.String("wrapper", s.name))
		return w.def.take()
	}
	return s.fn(a, b)
}
