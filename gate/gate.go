package gate

// Gate is the common identity every registered handler carries: a
// unique signature string that events route by. PureGate and StateGate
// each embed Gate and add their own transform method(s) — two small
// interfaces rather than one large one, the way the teacher's
// ast.Expression/ast.Statement split responsibilities instead of one
// do-everything Node interface.
type Gate interface {
	Signature() string
}

// PureGate claims an event, transforms it synchronously, and either
// consumes it (returns nil) or hands back a follow-up event for the
// Stream to dispatch next.
type PureGate interface {
	Gate
	Transform(e Event) (*Event, error)
}

// StateGate claims an event that needs durable state: Reads declares
// what to resolve before Transform runs, and Transform returns the
// MutationBatch describing what to write and what to emit next.
type StateGate interface {
	Gate
	Reads(e Event) *ReadSet
	Transform(e Event, st *State) (*MutationBatch, error)
}

// funcPureGate adapts a plain function to PureGate, the gate-package
// equivalent of http.HandlerFunc — most gates in this codebase are
// registered this way rather than as named types.
type funcPureGate struct {
	sig string
	fn  func(Event) (*Event, error)
}

// PureFunc builds a PureGate from a signature and a transform function.
func PureFunc(signature string, fn func(Event) (*Event, error)) PureGate {
	return &funcPureGate{sig: signature, fn: fn}
}

func (g *funcPureGate) Signature() string                  { return g.sig }
func (g *funcPureGate) Transform(e Event) (*Event, error)   { return g.fn(e) }

// funcStateGate adapts a pair of plain functions to StateGate.
type funcStateGate struct {
	sig       string
	reads     func(Event) *ReadSet
	transform func(Event, *State) (*MutationBatch, error)
}

// StateFunc builds a StateGate from a signature and a reads/transform
// function pair.
func StateFunc(signature string, reads func(Event) *ReadSet, transform func(Event, *State) (*MutationBatch, error)) StateGate {
	return &funcStateGate{sig: signature, reads: reads, transform: transform}
}

func (g *funcStateGate) Signature() string                                 { return g.sig }
func (g *funcStateGate) Reads(e Event) *ReadSet                            { return g.reads(e) }
func (g *funcStateGate) Transform(e Event, st *State) (*MutationBatch, error) {
	return g.transform(e, st)
}
