// Command scenarios exercises the safecall contract under the four owner
// teardown timings: after all calls complete, before any call, while a
// call is in flight, and from inside a call body.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/safecall"
)

var scenarioNames = []string{"after", "before", "during", "inside"}

func main() {
	var (
		scenario    = flag.String("scenario", "after", "Teardown timing: after, before, during or inside")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay before the caller goroutine starts invoking")
		verbose     = flag.Bool("v", false, "Enable debug logging")
		list        = flag.Bool("list", false, "List scenarios and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		safecall.SetLogger(logger)
	}

	if *list {
		fmt.Println("Scenarios:")
		for _, name := range scenarioNames {
			fmt.Printf("  %-8s %s\n", name, scenarioDescription(name))
		}
		return
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*delay); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	lines, err := runScenario(*scenario, *delay)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, line := range lines {
		fmt.Println(line)
	}
}

func scenarioDescription(name string) string {
	switch name {
	case "after":
		return "release owner after all callbacks have finished"
	case "before":
		return "release owner before any callback has been called"
	case "during":
		return "release owner while a callback is running"
	case "inside":
		return "release owner from inside a callback"
	}
	return ""
}

// transcript collects output lines from the caller and teardown
// goroutines.
type transcript struct {
	mu    sync.Mutex
	lines []string
}

func (tr *transcript) logf(format string, args ...any) {
	tr.mu.Lock()
	tr.lines = append(tr.lines, fmt.Sprintf(format, args...))
	tr.mu.Unlock()
}

// demoOwner is the transient owner under test. Its callbacks dereference
// the pointer member; surviving teardown is the whole demonstration.
type demoOwner struct {
	secret *string
	cb     safecall.Registry
}

func newDemoOwner() *demoOwner {
	s := "owner state intact"
	return &demoOwner{secret: &s}
}

func (o *demoOwner) Close() error {
	err := o.cb.Close()
	o.secret = nil
	return err
}

func runScenario(name string, delay time.Duration) ([]string, error) {
	found := false
	for _, n := range scenarioNames {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown scenario %q (want %s)", name, strings.Join(scenarioNames, ", "))
	}

	tr := &transcript{}
	owner := newDemoOwner()
	tr.logf("scenario %s: %s", name, scenarioDescription(name))

	peek := safecall.WrapProc(&owner.cb, func() {
		if name == "during" {
			tr.logf("peek: sleeping %v inside the callback", 2*delay)
			time.Sleep(2 * delay)
		}
		tr.logf("peek: %s", *owner.secret)
		if name == "inside" {
			tr.logf("peek: releasing owner from inside the callback")
			owner.Close()
		}
	}, safecall.WithName("peek"))

	status := safecall.WrapDefault(&owner.cb, "cancelled default value", func() string {
		return *owner.secret
	}, safecall.WithName("status"))

	cell := safecall.NewCell[func(int)]()
	countdown := safecall.WrapProc1(&owner.cb, func(n int) {
		tr.logf("countdown: %d", n)
		if n > 0 {
			cell.Load()(n - 1)
		}
	}, safecall.WithName("countdown"))
	cell.Store(countdown.Call)

	if name == "before" {
		tr.logf("releasing owner before any call")
		owner.Close()
	}

	calls := make(chan struct{})
	go func() {
		defer close(calls)
		time.Sleep(delay)
		peek.Call()
		tr.logf("status: %s", status.Call())
		countdown.Call(3)
	}()

	switch name {
	case "after":
		<-calls
		tr.logf("releasing owner after calls completed")
		owner.Close()
	case "during":
		// Land in the middle of peek's sleep.
		time.Sleep(delay + delay/2)
		tr.logf("releasing owner during an in-flight call")
		owner.Close()
		tr.logf("teardown returned; in-flight call had finished")
	}
	<-calls

	tr.logf("post-teardown status: %s", status.Call())
	peek.Call() // no-op
	tr.logf("all wrappers cancelled: %v",
		peek.Cancelled() && status.Cancelled() && countdown.Cancelled())

	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.lines, nil
}
