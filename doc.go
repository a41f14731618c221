// Package safecall provides lifetime-bound callback safety for Go.
//
// A transient owner object hands out callable wrappers to asynchronous
// consumers (timers, worker goroutines, queues). When the owner is torn
// down, every wrapper it produced is revoked: any later invocation, even
// one racing concurrently with teardown, becomes a harmless no-op or
// yields a caller-chosen default value instead of touching freed owner
// state.
//
// # Architecture Overview
//
// The library is organized around three cooperating pieces:
//
//	Registry       Per-owner table tracking every live wrapper; mass-cancels
//	               all of them on Close.
//	Func*/Proc*    The wrapper family: a cancellable handle around one user
//	               callable, with a per-wrapper reentrant lock and a
//	               default-result policy.
//	cancelEntry    A single revocable action ("forget the callable") shared
//	               between a wrapper and its registry.
//
// # Quick Start
//
// Embed a Registry by value in the owner, wrap callbacks through it, and
// close the registry when the owner goes away:
//
//	type Session struct {
//	    conn *Conn
//
//	    // Keep the registry last so it is torn down first.
//	    cb safecall.Registry
//	}
//
//	func (s *Session) Close() error { return s.cb.Close() }
//
//	func (s *Session) Start() {
//	    ping := safecall.WrapProc(&s.cb, func() { s.conn.Ping() })
//	    go every(time.Second, ping.Call)
//	}
//
// After s.Close() returns, ping.Call is a no-op forever. A wrapper with a
// result type falls back to a default:
//
//	status := safecall.WrapDefault(&s.cb, "closed", func() string {
//	    return s.conn.Status()
//	})
//	status.Call() // "closed" once the session is gone
//
// # Wrapper Family
//
// Go has no variadic type parameters, so one generic wrapper per arity is
// provided: Func, Func1, Func2 for value-returning callables and Proc,
// Proc1, Proc2 for void ones. Wrap* constructors pick the zero value of the
// result type as the fallback; WrapDefault* take an explicit default. The
// method value w.Call is an ordinary func with the callable's own
// signature and can be handed anywhere a plain function is expected.
//
// # Concurrency
//
// Any number of goroutines may invoke wrappers while the owner is being
// torn down. Each wrapper holds its own reentrant lock for the full
// duration of a call, so Registry.Close blocks until in-flight calls
// drain; a callback may even close its own owner's registry from inside
// its body without deadlocking. See the package tests and testbed for the
// exact guarantees.
//
// # Memory Model
//
// The registry holds only weak references to its wrappers and a wrapper
// holds only a weak reference to its registry, so neither side keeps the
// other alive. A wrapper whose external references all drop removes its
// own table entry (deterministically via Release, or through a GC cleanup
// as a backstop), so long-lived owners do not accumulate dead entries.
//
// # Diagnostics
//
// The package logs lifecycle events at debug level through an injectable
// zap logger (no-op by default, see SetLogger) and supports lifecycle
// observers on each Registry for tests and tooling.
package safecall
