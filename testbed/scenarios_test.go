// Race scenarios for owner teardown against concurrent wrapper calls.
//
// Four timings are exercised, matching the ways an owner can go away
// relative to its callbacks: after all calls complete, before any call,
// concurrently with an in-flight call, and from inside a call body.
package testbed

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wippyai/safecall"
)

// session is the guinea-pig owner: wrapped callbacks dereference its
// pointer member, so any call that slips past cancellation crashes the
// test instead of failing an assertion.
type session struct {
	secret *string
	cb     safecall.Registry
}

func newSession(s string) *session {
	return &session{secret: &s}
}

func (s *session) Close() error {
	err := s.cb.Close()
	s.secret = nil
	return err
}

func TestReleaseAfterCalls(t *testing.T) {
	s := newSession("alive")
	status := safecall.WrapDefault(&s.cb, "closed", func() string { return *s.secret })
	ping := safecall.WrapProc(&s.cb, func() { _ = *s.secret }, safecall.WithName("ping"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if got := status.Call(); got != "alive" {
			t.Errorf("expected 'alive', got %q", got)
		}
		ping.Call()
	}()
	<-done

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := status.Call(); got != "closed" {
		t.Fatalf("expected 'closed' after teardown, got %q", got)
	}
	ping.Call() // no-op, must not dereference s.secret
}

func TestReleaseBeforeCalls(t *testing.T) {
	s := newSession("alive")
	status := safecall.WrapDefault(&s.cb, "closed", func() string { return *s.secret })
	ping := safecall.WrapProc(&s.cb, func() { _ = *s.secret })

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if got := status.Call(); got != "closed" {
			t.Errorf("expected 'closed', got %q", got)
		}
		ping.Call()
	}()
	<-done
}

func TestReleaseDuringCall(t *testing.T) {
	s := newSession("alive")

	entered := make(chan struct{})
	proceed := make(chan struct{})
	var seq atomic.Int32
	var callSeq, closeSeq int32

	slow := safecall.WrapDefault(&s.cb, "closed", func() string {
		close(entered)
		<-proceed
		v := *s.secret
		callSeq = seq.Add(1)
		return v
	}, safecall.WithName("slow"))

	callDone := make(chan string, 1)
	go func() {
		callDone <- slow.Call()
	}()
	<-entered

	closeDone := make(chan struct{})
	go func() {
		defer close(closeDone)
		s.Close()
		closeSeq = seq.Add(1)
	}()

	// Teardown must block on the in-flight call.
	select {
	case <-closeDone:
		t.Fatal("teardown completed while a call was in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(proceed)

	if got := <-callDone; got != "alive" {
		t.Fatalf("in-flight call saw %q", got)
	}
	<-closeDone

	if callSeq >= closeSeq {
		t.Fatalf("teardown (%d) did not wait for the call (%d)", closeSeq, callSeq)
	}
	if !slow.Cancelled() {
		t.Fatal("wrapper not cancelled after teardown")
	}
	if got := slow.Call(); got != "closed" {
		t.Fatalf("expected 'closed' after teardown, got %q", got)
	}
}

func TestReleaseInsideCall(t *testing.T) {
	s := newSession("alive")

	w := safecall.WrapDefault(&s.cb, "closed", func() string {
		v := *s.secret
		// Owner deletes itself from inside its own callback.
		s.Close()
		return v
	}, safecall.WithName("suicidal"))

	done := make(chan string, 1)
	go func() {
		done <- w.Call()
	}()

	select {
	case got := <-done:
		if got != "alive" {
			t.Fatalf("expected 'alive', got %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("in-call teardown deadlocked")
	}

	if !w.Cancelled() {
		t.Fatal("wrapper not cancelled after in-call teardown")
	}
	if got := w.Call(); got != "closed" {
		t.Fatalf("expected 'closed', got %q", got)
	}
}

func TestTeardownStress(t *testing.T) {
	const wrappers = 32
	const callers = 8

	s := newSession("alive")
	var ws [wrappers]*safecall.Func[string]
	for i := range ws {
		ws[i] = safecall.WrapDefault(&s.cb, "closed", func() string { return *s.secret })
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for c := 0; c < callers; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				got := ws[(c+i)%wrappers].Call()
				if got != "alive" && got != "closed" {
					t.Errorf("caller %d saw %q", c, got)
					return
				}
			}
		}(c)
	}

	time.Sleep(20 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// After teardown returns, every wrapper registered at the time of the
	// race is observably cancelled.
	for i, w := range ws {
		if !w.Cancelled() {
			t.Fatalf("wrapper %d live after teardown", i)
		}
	}

	close(stop)
	wg.Wait()

	for i, w := range ws {
		if got := w.Call(); got != "closed" {
			t.Fatalf("wrapper %d: expected 'closed', got %q", i, got)
		}
	}
}

func TestSelfCancelDuringTeardown(t *testing.T) {
	// A callable cancelling its own wrapper while teardown sweeps the
	// registry exercises both lock domains from both sides at once.
	for i := 0; i < 200; i++ {
		s := newSession("alive")
		started := make(chan struct{})
		var w *safecall.Func[string]
		w = safecall.WrapDefault(&s.cb, "closed", func() string {
			close(started)
			w.Cancel()
			return "self-cancelled"
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			w.Call()
		}()

		<-started
		s.Close()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("self-cancel racing teardown deadlocked")
		}
		if !w.Cancelled() {
			t.Fatal("wrapper not cancelled after teardown")
		}
	}
}

func TestConcurrentWrapAndTeardown(t *testing.T) {
	s := newSession("alive")

	var wg sync.WaitGroup
	var made sync.Map
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 64; i++ {
				w := safecall.WrapDefault(&s.cb, "closed", func() string { return *s.secret })
				made.Store(w, struct{}{})
			}
		}(g)
	}

	time.Sleep(time.Millisecond)
	s.Close()
	wg.Wait()

	// Wrappers created before teardown were swept; wrappers created after
	// were cancelled at construction. Either way none may reach the owner.
	made.Range(func(k, _ any) bool {
		w := k.(*safecall.Func[string])
		if !w.Cancelled() {
			t.Error("live wrapper survived teardown race")
			return false
		}
		if got := w.Call(); got != "closed" {
			t.Errorf("expected 'closed', got %q", got)
			return false
		}
		return true
	})
}
