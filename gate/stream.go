package gate

import (
	"fmt"
)

// StateRunner executes a claimed StateGate against durable state and
// returns the events it wants dispatched next, in order. Package gate
// never imports store/refs/wal directly; package runner implements this
// interface and is injected at Stream construction so the dependency
// only runs one way.
type StateRunner interface {
	RunStateGate(g StateGate, e Event) ([]Event, error)
}

// Stream is one single-threaded dispatch context: a root Stream created
// from a Router, or a child Stream spawned to isolate a nested emit
// (e.g. a subquery) while still sharing the Router's registry and Log.
type Stream struct {
	router     *Router
	id         string
	parentID   string
	pending    []Event
	eventCount int
	gateCount  int
	typeCounts map[string]int
}

// Router owns the signature registry, the StateRunner, and the shared
// structured Log every Stream it spawns writes into.
type Router struct {
	registry *Registry
	runner   StateRunner
	log      *Log
	nextID   uint64
}

// NewRouter builds a Router over registry, delegating StateGate
// execution to runner and recording every dispatch into log.
func NewRouter(registry *Registry, runner StateRunner, log *Log) *Router {
	return &Router{registry: registry, runner: runner, log: log}
}

// NewStream starts a fresh root Stream with no parent.
func (r *Router) NewStream() *Stream {
	r.nextID++
	return &Stream{router: r, id: fmt.Sprintf("stream-%d", r.nextID)}
}

// NewChild spawns a Stream nested under s, sharing the Router (and so
// the registry and Log) but with its own independent pending queue and
// counters.
func (s *Stream) NewChild() *Stream {
	s.router.nextID++
	return &Stream{
		router:   s.router,
		id:       fmt.Sprintf("stream-%d", s.router.nextID),
		parentID: s.id,
	}
}

// ID returns this stream's identifier.
func (s *Stream) ID() string { return s.id }

// Emit dispatches e depth-first: if a claimed gate produces further
// events, each is fully processed — recursively, to any depth — before
// Emit returns to its caller. A gate that panics during Transform is
// recovered and turned into an error event rather than unwinding the
// whole dispatch (spec §4.E). An event with no claiming gate is simply
// appended to pending, unconsumed.
func (s *Stream) Emit(e Event) {
	s.eventCount++
	if s.typeCounts == nil {
		s.typeCounts = make(map[string]int)
	}
	s.typeCounts[e.Type]++

	g, ok := s.router.registry.Lookup(e.Type)
	if !ok {
		s.router.log.record(s.id, s.parentID, e.Type, "", e.Data)
		s.pending = append(s.pending, e)
		return
	}
	s.gateCount++
	s.router.log.record(s.id, s.parentID, e.Type, g.Signature(), e.Data)

	switch claimed := g.(type) {
	case PureGate:
		follow, err := s.runPure(claimed, e)
		if err != nil {
			s.Emit(ErrorEvent(err.Error(), claimed.Signature()))
			return
		}
		if follow != nil {
			s.Emit(*follow)
		}
	case StateGate:
		follows, err := s.runState(claimed, e)
		if err != nil {
			s.Emit(ErrorEvent(err.Error(), claimed.Signature()))
			return
		}
		for _, f := range follows {
			s.Emit(f)
		}
	default:
		// Registered under an interface neither PureGate nor StateGate
		// satisfies — a programming error in registration, not a
		// runtime condition.
		s.Emit(ErrorEvent(fmt.Sprintf("gate %q is neither pure nor stateful", g.Signature()), g.Signature()))
	}
}

func (s *Stream) runPure(g PureGate, e Event) (follow *Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gate %q panicked: %v", g.Signature(), r)
		}
	}()
	return g.Transform(e)
}

func (s *Stream) runState(g StateGate, e Event) (follows []Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gate %q panicked: %v", g.Signature(), r)
		}
	}()
	return s.router.runner.RunStateGate(g, e)
}

// Pending returns a shallow copy of the events this stream has
// accumulated without a claiming gate. Mutating the returned slice does
// not affect the stream's internal state.
func (s *Stream) Pending() []Event {
	out := make([]Event, len(s.pending))
	copy(out, s.pending)
	return out
}

// EventCount returns the number of Emit calls this stream has made,
// including ones that recursed into follow-up events.
func (s *Stream) EventCount() int { return s.eventCount }

// GateCount returns the number of emits that were claimed by a
// registered gate.
func (s *Stream) GateCount() int { return s.gateCount }

// EventCounts returns a shallow copy of how many times each event type
// was Emit'd on this stream, claimed or not — the breakdown backing
// the gatedb_events_total{type} counter.
func (s *Stream) EventCounts() map[string]int {
	out := make(map[string]int, len(s.typeCounts))
	for k, v := range s.typeCounts {
		out[k] = v
	}
	return out
}
