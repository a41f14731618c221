package safecall

// EventKind identifies a wrapper lifecycle transition.
type EventKind uint8

const (
	// EventWrapped fires when a wrapper registers with the registry.
	EventWrapped EventKind = iota
	// EventCancelled fires for each wrapper revoked by the teardown sweep.
	EventCancelled
	// EventReleased fires when a wrapper deregisters on its own,
	// independent of teardown.
	EventReleased
	// EventTeardown fires once, after the sweep completes.
	EventTeardown
)

// Event describes one wrapper lifecycle transition.
type Event struct {
	Name string
	ID   uint64
	Kind EventKind
}

// Observer receives notifications about wrapper lifecycle events.
//
// Observers are diagnostic: notifications are delivered outside the
// wrapper and table locks and must not be used to synchronize with
// in-flight calls.
type Observer interface {
	OnCallbackEvent(Event)
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnCallbackEvent(e)
	}
}
